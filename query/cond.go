package query

// TemplateFunc applies a template conditionally. It returns a nil *Query,
// which Build treats as "no value", when its condition does not hold.
type TemplateFunc func(parts []string, values ...any) (*Query, error)

// Must applies the template and panics on a build error, so a conditional
// fragment can be written inline as a Build value.
func (f TemplateFunc) Must(parts []string, values ...any) *Query {
	q, err := f(parts, values...)
	if err != nil {
		panic(err)
	}
	return q
}

// Cond includes its template only when condition is true.
//
//	query.Build([]string{"SELECT 1 ", " FROM a"},
//		query.Cond(withTotal).Must([]string{", sum(total)"}))
func Cond(condition bool) TemplateFunc {
	return func(parts []string, values ...any) (*Query, error) {
		if !condition {
			return nil, nil
		}
		return Build(parts, values...)
	}
}

// CondFn is the curried form of Cond. The predicate runs each time the
// returned template is applied.
//
//	included := query.CondFn(func(col string) bool { return slices.Contains(cols, col) })
//	included("email").Must([]string{", email"})
func CondFn[T any](predicate func(T) bool) func(T) TemplateFunc {
	return func(input T) TemplateFunc {
		return func(parts []string, values ...any) (*Query, error) {
			if !predicate(input) {
				return nil, nil
			}
			return Build(parts, values...)
		}
	}
}

// Comment always renders to the empty string. It documents a template in
// place without contributing SQL.
func Comment(parts []string, values ...any) string {
	return ""
}
