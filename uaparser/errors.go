package uaparser

import "errors"

var (
	ErrInvalidPattern   = errors.New("invalid pattern")
	ErrEmptyGroup       = errors.New("rule group has no patterns")
	ErrUnknownTransform = errors.New("unknown transform")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrInvalidFieldSpec = errors.New("invalid field spec")
	ErrInvalidAliasMap  = errors.New("invalid alias map")
	ErrParsingRules     = errors.New("failed to parse rules")
)
