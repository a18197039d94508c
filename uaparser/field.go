package uaparser

// Field names a slot of a category record.
type Field string

const (
	FieldName         Field = "name"
	FieldVersion      Field = "version"
	FieldMajor        Field = "major"
	FieldArchitecture Field = "architecture"
	FieldVendor       Field = "vendor"
	FieldModel        Field = "model"
	FieldType         Field = "type"
)

type specKind uint8

const (
	kindDirect specKind = iota
	kindConstant
	kindComputed
	kindReplace
)

func (k specKind) String() string {
	switch k {
	case kindDirect:
		return "direct"
	case kindConstant:
		return "constant"
	case kindComputed:
		return "computed"
	case kindReplace:
		return "replace"
	}
	return "unknown"
}

// FieldSpec binds one capture slot of a matched alternative to a record field.
// The variant is fixed when the spec is built; evaluation never inspects the
// captured value to decide what to do.
type FieldSpec struct {
	kind  specKind
	field Field

	value string
	fn    *Transform

	expr string
	repl string
	re   *Pattern
}

// Direct binds the captured substring verbatim.
func Direct(field Field) FieldSpec {
	return FieldSpec{kind: kindDirect, field: field}
}

// Constant always binds value. Its capture slot is still counted so that the
// specs after it keep their positional alignment.
func Constant(field Field, value string) FieldSpec {
	return FieldSpec{kind: kindConstant, field: field, value: value}
}

// Computed binds fn applied to the captured substring.
func Computed(field Field, fn Transform) FieldSpec {
	return FieldSpec{kind: kindComputed, field: field, fn: &fn}
}

// ReplaceThen replaces every match of expr in the captured substring with
// repl ($n tokens expand to submatches) and passes the result through the
// optional transform. An empty capture binds an empty value and skips both
// steps. expr is compiled together with the group that owns the spec.
func ReplaceThen(field Field, expr, repl string, then ...Transform) FieldSpec {
	spec := FieldSpec{kind: kindReplace, field: field, expr: expr, repl: repl}
	if len(then) > 0 {
		fn := then[0]
		spec.fn = &fn
	}
	return spec
}

// Field returns the record field the spec writes.
func (s FieldSpec) Field() Field { return s.field }

// Consumes reports whether the spec reads its capture slot.
func (s FieldSpec) Consumes() bool { return s.kind != kindConstant }

// String describes the spec for logs and error messages.
func (s FieldSpec) String() string {
	switch s.kind {
	case kindConstant:
		return string(s.field) + "=" + s.value
	case kindComputed:
		return string(s.field) + "|" + s.fn.Name
	case kindReplace:
		out := string(s.field) + "~s/" + s.expr + "/" + s.repl + "/"
		if s.fn != nil {
			out += "|" + s.fn.Name
		}
		return out
	}
	return string(s.field)
}

func (s FieldSpec) apply(captured string) string {
	switch s.kind {
	case kindConstant:
		return s.value
	case kindComputed:
		return s.fn.Apply(captured)
	case kindReplace:
		if captured == "" {
			return ""
		}
		out := s.re.ReplaceAllString(captured, s.repl)
		if s.fn != nil {
			out = s.fn.Apply(out)
		}
		return out
	}
	return captured
}
