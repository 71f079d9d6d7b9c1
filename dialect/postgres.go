package dialect

import (
	"fmt"
	"strconv"
)

// Postgres binds parameters as $1, $2, ... in order.
type Postgres struct{}

func NewPostgresDialect() Dialect {
	return &Postgres{}
}

func (Postgres) Name() string {
	return "postgres"
}

func (Postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// DumpValue writes numbers bare and quotes everything else. Embedded quotes
// are left untouched so the dump mirrors the bound value exactly.
func (Postgres) DumpValue(v any) string {
	switch val := v.(type) {
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []byte:
		return "'" + string(val) + "'"
	default:
		return "'" + fmt.Sprint(val) + "'"
	}
}
