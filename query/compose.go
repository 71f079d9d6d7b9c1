package query

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// blankLines matches runs of empty (or tab-only) lines left behind by
// conditional fragments that rendered to nothing.
var blankLines = regexp.MustCompile(`(\n\t*\n)+`)

// Build composes a Query from the literal parts of a template and the values
// interpolated between them, so len(values) is len(parts)-1. Missing trailing
// values count as "no value".
//
// Each value is classified in this order:
//   - nil, including a nil *Query from Cond: contributes nothing
//   - strings and numbers: written as raw SQL text, never parameterized
//   - Parameter, or Params holding exactly one Parameter: bound by name
//   - *Query: its named SQL is inlined and its parameters merged
//   - slices: queries are concatenated, parameters joined with ", "
//
// Anything else is rejected. Parameters are deduplicated by name across the
// whole composition; the first value registered for a name wins.
func Build(parts []string, values ...any) (*Query, error) {
	if len(parts) < 1 {
		return nil, ErrInvalidQueryTemplate
	}
	if len(values) > len(parts)-1 {
		return nil, newError(KindInvalidQueryTemplate,
			"invalid query template: %d literal parts cannot hold %d values", len(parts), len(values))
	}

	c := &composer{seen: make(map[string]struct{})}

	var sb strings.Builder
	sb.WriteString(parts[0])
	for i, part := range parts[1:] {
		var value any
		if i < len(values) {
			value = values[i]
		}
		if err := c.interpolate(&sb, value); err != nil {
			return nil, err
		}
		sb.WriteString(part)
	}

	return &Query{
		namedSQL: blankLines.ReplaceAllString(sb.String(), "\n"),
		params:   c.params,
	}, nil
}

// MustBuild is like Build but panics on error. It is meant for queries
// declared at package level and for tests.
func MustBuild(parts []string, values ...any) *Query {
	q, err := Build(parts, values...)
	if err != nil {
		panic(err)
	}
	return q
}

type composer struct {
	params []Parameter
	seen   map[string]struct{}
}

func (c *composer) add(p Parameter) {
	if _, ok := c.seen[p.Name]; ok {
		return
	}
	c.seen[p.Name] = struct{}{}
	c.params = append(c.params, p)
}

func (c *composer) merge(q *Query) {
	for _, p := range q.params {
		c.add(p)
	}
}

func (c *composer) interpolate(sb *strings.Builder, value any) error {
	if isNil(value) {
		return nil
	}
	if text, ok := rawText(value); ok {
		sb.WriteString(text)
		return nil
	}
	if p, ok := asParameter(value); ok {
		c.add(p)
		sb.WriteString(placeholderToken(p.Name))
		return nil
	}
	if q, ok := value.(*Query); ok {
		c.merge(q)
		sb.WriteString(q.namedSQL)
		return nil
	}
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return c.interpolateSequence(sb, rv)
	}
	return unhandledCase(value)
}

// interpolateSequence expects every element to be of the same kind as the
// first. Elements are validated before anything is registered.
func (c *composer) interpolateSequence(sb *strings.Builder, rv reflect.Value) error {
	n := rv.Len()
	if n == 0 {
		return nil
	}

	first := rv.Index(0).Interface()
	if isNil(first) {
		return ErrArrayOfUndefined
	}

	if _, ok := first.(*Query); ok {
		queries := make([]*Query, n)
		for i := range queries {
			q, ok := rv.Index(i).Interface().(*Query)
			if !ok || q == nil {
				return ErrInconsistentArrayTypes
			}
			queries[i] = q
		}
		for _, q := range queries {
			c.merge(q)
			sb.WriteString(q.namedSQL)
		}
		return nil
	}

	if _, ok := asParameter(first); ok {
		tokens := make([]string, n)
		params := make([]Parameter, n)
		for i := range params {
			p, ok := asParameter(rv.Index(i).Interface())
			if !ok {
				return ErrInconsistentArrayTypes
			}
			params[i] = p
			tokens[i] = placeholderToken(p.Name)
		}
		for _, p := range params {
			c.add(p)
		}
		sb.WriteString(strings.Join(tokens, ", "))
		return nil
	}

	return unhandledArrayType(first)
}

func asParameter(value any) (Parameter, bool) {
	switch v := value.(type) {
	case Parameter:
		return v, true
	case *Parameter:
		if v != nil {
			return *v, true
		}
	case Params:
		if len(v) == 1 {
			return v[0], true
		}
	}
	return Parameter{}, false
}

// rawText accepts any string or numeric kind, so named types such as Raw are
// written through as text.
func rawText(value any) (string, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	default:
		return "", false
	}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
