// Package model holds the structured form of a queries file that renderers
// consume: queries split into selects and updates, each with typed parameters
// and, for selects, typed result columns.
package model

import (
	"github.com/terminally-online/querygen/internal/typeinfer"
)

type Category string

const (
	CategorySelect Category = "select"
	CategoryUpdate Category = "update"
)

// ParamSpec is a named, typed parameter. Two specs are the same parameter
// when their names are equal, whatever their types.
type ParamSpec struct {
	Name string            `yaml:"name" json:"name"`
	Type typeinfer.TypeTag `yaml:"type" json:"type"`
}

type ColumnSpec = ParamSpec

type QueryModel struct {
	Name          string       `yaml:"name" json:"name"`
	Category      Category     `yaml:"category" json:"category"`
	Params        []ParamSpec  `yaml:"params,omitempty" json:"params,omitempty"`
	Columns       []ColumnSpec `yaml:"columns,omitempty" json:"columns,omitempty"`
	IsTemplate    bool         `yaml:"template,omitempty" json:"template,omitempty"`
	SQL           string       `yaml:"sql" json:"sql"`
	PositionalSQL string       `yaml:"positional_sql" json:"positional_sql"`
	Args          []string     `yaml:"args,omitempty" json:"args,omitempty"`
}

func (q *QueryModel) IsSelect() bool {
	return q.Category == CategorySelect
}

// Param looks a parameter up by its (possibly camel-cased) name.
func (q *QueryModel) Param(name string) (ParamSpec, bool) {
	for _, p := range q.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

type RootModel struct {
	PackageName             string       `yaml:"package" json:"package"`
	ClassName               string       `yaml:"class" json:"class"`
	AccessModifier          string       `yaml:"access_modifier" json:"access_modifier"`
	SourceFileName          string       `yaml:"source" json:"source"`
	Features                Features     `yaml:"features" json:"features"`
	TemplateValueConstraint string       `yaml:"template_value_constraint,omitempty" json:"template_value_constraint,omitempty"`
	Selects                 []QueryModel `yaml:"selects" json:"selects"`
	Updates                 []QueryModel `yaml:"updates" json:"updates"`
}

func (r *RootModel) IsPublic() bool {
	return r.AccessModifier == AccessPublic
}

// All returns selects followed by updates.
func (r *RootModel) All() []QueryModel {
	all := make([]QueryModel, 0, len(r.Selects)+len(r.Updates))
	all = append(all, r.Selects...)
	all = append(all, r.Updates...)
	return all
}

func (r *RootModel) Len() int {
	return len(r.Selects) + len(r.Updates)
}

const AccessPublic = "public"
