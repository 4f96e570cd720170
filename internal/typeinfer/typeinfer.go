// Package typeinfer derives a parameter or column type from the suffix of its
// name, using an ordered table where the first matching suffix wins.
package typeinfer

import (
	"fmt"
	"strings"
)

type TypeTag int

const (
	Unknown TypeTag = iota
	String
	Boolean
	Short
	Int
	Long
	Float
	Double
	Decimal
	Binary
	Date
	Collection
)

var tagNames = map[TypeTag]string{
	Unknown:    "unknown",
	String:     "string",
	Boolean:    "boolean",
	Short:      "short",
	Int:        "int",
	Long:       "long",
	Float:      "float",
	Double:     "double",
	Decimal:    "decimal",
	Binary:     "binary",
	Date:       "date",
	Collection: "collection",
}

var goTypes = map[TypeTag]string{
	Unknown:    "any",
	String:     "string",
	Boolean:    "bool",
	Short:      "int16",
	Int:        "int32",
	Long:       "int64",
	Float:      "float32",
	Double:     "float64",
	Decimal:    "decimal.Decimal",
	Binary:     "[]byte",
	Date:       "time.Time",
	Collection: "[]any",
}

var tagAliases = map[string]TypeTag{
	"bool":    Boolean,
	"integer": Int,
	"int32":   Int,
	"int16":   Short,
	"int64":   Long,
	"bigint":  Long,
	"float32": Float,
	"float64": Double,
	"numeric": Decimal,
	"bytes":   Binary,
	"time":    Date,
	"list":    Collection,
	"set":     Collection,
	"any":     Unknown,
}

func (t TypeTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TypeTag(%d)", int(t))
}

// GoType is the Go type a renderer declares for a value of this kind.
func (t TypeTag) GoType() string {
	if gt, ok := goTypes[t]; ok {
		return gt
	}
	return "any"
}

// Import is the package GoType depends on, or "" for builtin types.
func (t TypeTag) Import() string {
	switch t {
	case Decimal:
		return "github.com/shopspring/decimal"
	case Date:
		return "time"
	}
	return ""
}

func (t TypeTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TypeTag) UnmarshalText(text []byte) error {
	tag, err := ParseTypeTag(string(text))
	if err != nil {
		return err
	}
	*t = tag
	return nil
}

func ParseTypeTag(s string) (TypeTag, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for tag, n := range tagNames {
		if n == name {
			return tag, nil
		}
	}
	if tag, ok := tagAliases[name]; ok {
		return tag, nil
	}
	return Unknown, fmt.Errorf("unknown type %q", s)
}

type Rule struct {
	Postfix string  `yaml:"postfix" json:"postfix"`
	Type    TypeTag `yaml:"type" json:"type"`
}

// Table is consulted in order. Ambiguous suffixes resolve to whichever rule
// comes first, not to the longest match.
type Table []Rule

// Infer returns the type of the first rule whose postfix ends name.
func (t Table) Infer(name string) TypeTag {
	for _, r := range t {
		if strings.HasSuffix(name, r.Postfix) {
			return r.Type
		}
	}
	return Unknown
}

// DefaultTable returns a fresh copy of the built-in suffix table.
func DefaultTable() Table {
	return Table{
		{"String", String},
		{"_string", String},
		{"Text", String},
		{"_text", String},
		{"Name", String},
		{"_name", String},
		{"Bool", Boolean},
		{"_bool", Boolean},
		{"Short", Short},
		{"_short", Short},
		{"Int", Int},
		{"_int", Int},
		{"Long", Long},
		{"_long", Long},
		{"Id", Long},
		{"_id", Long},
		{"Number", Long},
		{"_number", Long},
		{"Count", Long},
		{"_count", Long},
		{"Size", Long},
		{"_size", Long},
		{"Float", Float},
		{"_float", Float},
		{"Double", Double},
		{"_double", Double},
		{"Numeric", Decimal},
		{"_numeric", Decimal},
		{"Binary", Binary},
		{"_binary", Binary},
		{"Date", Date},
		{"_date", Date},
		{"List", Collection},
		{"_list", Collection},
		{"Collection", Collection},
		{"_collection", Collection},
		{"Set", Collection},
		{"_set", Collection},
	}
}
