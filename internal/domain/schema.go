package domain

// Logical schema types after alias normalization.
const (
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeObject = "object"
)

var typeAliases = map[string]string{
	"int":     TypeInt,
	"int32":   TypeInt,
	"int64":   TypeInt,
	"float":   TypeFloat,
	"float32": TypeFloat,
	"float64": TypeFloat,
}

// NormalizeType maps a runtime or declared type name onto int, float or object.
func NormalizeType(name string) string {
	if t, ok := typeAliases[name]; ok {
		return t
	}
	return TypeObject
}

// ColumnSpec is a single declared column.
type ColumnSpec struct {
	Name string
	Type string
}

// Bounds is an inclusive numeric interval.
type Bounds struct {
	Min float64
	Max float64
}

// Contains reports whether both extremes lie within the bounds.
func (b Bounds) Contains(lo, hi float64) bool {
	return lo >= b.Min && hi <= b.Max
}

// RangeRules hold the limits used by the range check.
type RangeRules struct {
	AgeColumn   string
	Age         Bounds
	HourColumns []string
	Hours       Bounds
}

// DefaultHourColumns are the hour-valued columns checked against 0-24.
var DefaultHourColumns = []string{
	"Technology_Usage_Hours",
	"Social_Media_Usage_Hours",
	"Gaming_Hours",
	"Screen_Time_Hours",
	"Sleep_Hours",
	"Physical_Activity_Hours",
}

// DefaultRangeRules returns the stock age and hour limits.
func DefaultRangeRules() RangeRules {
	return RangeRules{
		AgeColumn:   "Age",
		Age:         Bounds{Min: 0, Max: 120},
		HourColumns: append([]string(nil), DefaultHourColumns...),
		Hours:       Bounds{Min: 0, Max: 24},
	}
}

// SchemaSpec is the expected shape of the raw dataset. It is read-only once built.
type SchemaSpec struct {
	columns []ColumnSpec
	types   map[string]string
	ranges  RangeRules
}

// NewSchemaSpec keeps the column order given.
func NewSchemaSpec(columns []ColumnSpec, ranges RangeRules) SchemaSpec {
	types := make(map[string]string, len(columns))
	cols := make([]ColumnSpec, 0, len(columns))
	for _, c := range columns {
		if _, dup := types[c.Name]; dup {
			continue
		}
		types[c.Name] = c.Type
		cols = append(cols, c)
	}
	ranges.HourColumns = append([]string(nil), ranges.HourColumns...)
	return SchemaSpec{columns: cols, types: types, ranges: ranges}
}

// Columns returns the declared columns in order.
func (s SchemaSpec) Columns() []ColumnSpec {
	return append([]ColumnSpec(nil), s.columns...)
}

// TypeOf returns the declared type of a column.
func (s SchemaSpec) TypeOf(name string) (string, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Ranges returns the range rules.
func (s SchemaSpec) Ranges() RangeRules {
	r := s.ranges
	r.HourColumns = append([]string(nil), s.ranges.HourColumns...)
	return r
}
