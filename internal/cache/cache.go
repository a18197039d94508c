package cache

import (
	"context"
	"errors"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/streamrail/ua-classifier/uaparser"
)

var (
	// ErrMiss is returned by Get when no result is stored for the user agent.
	ErrMiss = errors.New("cache miss")

	ErrFailedToParseRedisURL = errors.New("failed to parse redis connection string")
	ErrRedisNotReady         = errors.New("redis did not become ready")
)

// Cache stores classification results by user agent.
type Cache interface {
	Get(ctx context.Context, ua string) (*uaparser.Result, error)
	Set(ctx context.Context, ua string, res *uaparser.Result) error
	Ping(ctx context.Context) error
	Close() error
}

// Key returns the storage key of ua: prefix followed by the hex xxhash of
// the user agent.
func Key(prefix, ua string) string {
	return prefix + strconv.FormatUint(xxhash.Sum64String(ua), 16)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (*uaparser.Result, error) { return nil, ErrMiss }

func (Nop) Set(context.Context, string, *uaparser.Result) error { return nil }

func (Nop) Ping(context.Context) error { return nil }

func (Nop) Close() error { return nil }
