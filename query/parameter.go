package query

import (
	"reflect"
	"strconv"
)

// Parameter is a named value bound positionally at execution time. Its
// identity within a query is its Name.
type Parameter struct {
	Name  string
	Value any
	Type  string
}

// Params is what Param returns: a single Parameter for a scalar value, or
// one Parameter per element for a slice value.
type Params []Parameter

// Param creates the parameters for name. A slice or array value expands to
// name_0, name_1, ... in element order, which is how IN (...) lists are
// written. []byte is bound as one value. The optional typ is a free-form hint
// copied onto every produced Parameter.
//
// Param panics when name is empty.
func Param(name string, value any, typ ...string) Params {
	if name == "" {
		panic("pitwall: parameter name must not be empty")
	}

	hint := ""
	if len(typ) > 0 {
		hint = typ[0]
	}

	rv := reflect.ValueOf(value)
	if isSequence(rv) {
		params := make(Params, rv.Len())
		for i := range params {
			params[i] = Parameter{
				Name:  indexedName(name, i),
				Value: rv.Index(i).Interface(),
				Type:  hint,
			}
		}
		return params
	}

	return Params{{Name: name, Value: value, Type: hint}}
}

// isSequence treats slices and arrays as element lists, except byte slices
// which drivers bind as a single bytea value.
func isSequence(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	default:
		return false
	}
}

func indexedName(name string, i int) string {
	return name + "_" + strconv.Itoa(i)
}

// placeholderToken is the named marker written into namedSQL. The bracketed
// form cannot occur in legitimate SQL and is removed by plain substring
// replacement when positional SQL is rendered.
func placeholderToken(name string) string {
	return ":param[" + name + "]/param:"
}
