package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/terminally-online/querygen/internal/naming"
	"github.com/terminally-online/querygen/internal/parser"
	"github.com/terminally-online/querygen/internal/sqlscan"
	"github.com/terminally-online/querygen/internal/typeinfer"
)

var (
	ErrInvalidQueryName = errors.New("invalid query name")
	ErrConfiguration    = errors.New("invalid model configuration")
)

const (
	DefaultSelectPattern           = `^select[a-zA-Z][a-zA-Z0-9_$]*$`
	DefaultUpdatePattern           = `^(?:insert|update|delete|create|drop)[a-zA-Z][a-zA-Z0-9_$]*$`
	DefaultTemplatePattern         = `^[a-zA-Z0-9_$]*Template$`
	DefaultTemplateValueConstraint = `^[a-zA-Z0-9_$]*$`
)

type BuilderOptions struct {
	SelectPattern           *regexp.Regexp
	UpdatePattern           *regexp.Regexp
	TemplatePattern         *regexp.Regexp
	TemplateValueConstraint *regexp.Regexp
	Types                   typeinfer.Table
	Extractor               sqlscan.ParamExtractor
	Features                Features
	Public                  bool
}

func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		SelectPattern:           regexp.MustCompile(DefaultSelectPattern),
		UpdatePattern:           regexp.MustCompile(DefaultUpdatePattern),
		TemplatePattern:         regexp.MustCompile(DefaultTemplatePattern),
		TemplateValueConstraint: regexp.MustCompile(DefaultTemplateValueConstraint),
		Types:                   typeinfer.DefaultTable(),
		Extractor:               sqlscan.SQLParams{Style: sqlscan.StyleDollar},
		Features:                DefaultFeatures(),
		Public:                  true,
	}
}

// Builder classifies parsed queries and derives their parameters and result
// columns. It keeps no state between Build calls.
type Builder struct {
	opts BuilderOptions
}

func NewBuilder(opts BuilderOptions) (*Builder, error) {
	switch {
	case opts.SelectPattern == nil:
		return nil, fmt.Errorf("%w: select pattern is nil", ErrConfiguration)
	case opts.UpdatePattern == nil:
		return nil, fmt.Errorf("%w: update pattern is nil", ErrConfiguration)
	case opts.Types == nil:
		return nil, fmt.Errorf("%w: type table is nil", ErrConfiguration)
	case opts.Extractor == nil:
		return nil, fmt.Errorf("%w: parameter extractor is nil", ErrConfiguration)
	}
	if opts.Features.TemplateSubstitution {
		if opts.TemplatePattern == nil {
			return nil, fmt.Errorf("%w: template pattern is nil", ErrConfiguration)
		}
		if opts.TemplateValueConstraint == nil {
			return nil, fmt.Errorf("%w: template value constraint is nil", ErrConfiguration)
		}
	}

	opts.Types = append(typeinfer.Table(nil), opts.Types...)
	return &Builder{opts: opts}, nil
}

// Build turns queries into a RootModel. fullName is "package.TypeName"; the
// package part may itself contain dots or slashes.
func (b *Builder) Build(queries *parser.QuerySet, fullName, sourceFileName string) (*RootModel, error) {
	pkg, class, err := SplitFullName(fullName)
	if err != nil {
		return nil, err
	}
	if queries == nil || queries.Len() == 0 {
		return nil, fmt.Errorf("%w: no queries to build", ErrConfiguration)
	}

	root := &RootModel{
		PackageName:    pkg,
		ClassName:      class,
		SourceFileName: sourceFileName,
		Features:       b.opts.Features,
		Selects:        []QueryModel{},
		Updates:        []QueryModel{},
	}
	if b.opts.Public {
		root.AccessModifier = AccessPublic
	}
	if b.opts.TemplateValueConstraint != nil {
		root.TemplateValueConstraint = b.opts.TemplateValueConstraint.String()
	}

	for _, q := range queries.Queries() {
		query, err := b.buildQuery(q)
		if err != nil {
			return nil, err
		}
		if query.Category == CategorySelect {
			root.Selects = append(root.Selects, query)
		} else {
			root.Updates = append(root.Updates, query)
		}
	}

	return root, nil
}

func (b *Builder) buildQuery(q parser.NamedQuery) (QueryModel, error) {
	category, err := b.Classify(q.Name)
	if err != nil {
		return QueryModel{}, err
	}

	extracted, err := b.opts.Extractor.Extract(q.SQL)
	if err != nil {
		return QueryModel{}, fmt.Errorf("query [%s]: %w", q.Name, err)
	}

	args := make([]string, len(extracted.Args))
	for i, arg := range extracted.Args {
		args[i] = b.identifier(arg)
	}

	return QueryModel{
		Name:          q.Name,
		Category:      category,
		Params:        b.specs(extracted.Names),
		Columns:       b.specs(sqlscan.ExtractColumns(q.SQL)),
		IsTemplate:    b.opts.Features.TemplateSubstitution && b.opts.TemplatePattern.MatchString(q.Name),
		SQL:           q.SQL,
		PositionalSQL: extracted.PositionalSQL,
		Args:          args,
	}, nil
}

// Classify tests name against the select pattern, then the update pattern.
func (b *Builder) Classify(name string) (Category, error) {
	if b.opts.SelectPattern.MatchString(name) {
		return CategorySelect, nil
	}
	if b.opts.UpdatePattern.MatchString(name) {
		return CategoryUpdate, nil
	}
	return "", fmt.Errorf("%w: [%s], names must match select pattern [%s] or update pattern [%s]",
		ErrInvalidQueryName, name, b.opts.SelectPattern, b.opts.UpdatePattern)
}

// specs converts raw names into typed specs, keeping the first of any names
// that collide after camel-casing.
func (b *Builder) specs(raw []string) []ParamSpec {
	specs := make([]ParamSpec, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		name := b.identifier(r)
		if seen[name] {
			continue
		}
		seen[name] = true
		specs = append(specs, ParamSpec{Name: name, Type: b.opts.Types.Infer(name)})
	}
	return specs
}

func (b *Builder) identifier(raw string) string {
	if b.opts.Features.UnderscoreToCamel {
		return naming.UnderscoreToCamel(raw)
	}
	return raw
}

// SplitFullName splits "package.TypeName" at the last dot.
func SplitFullName(fullName string) (pkg, class string, err error) {
	i := strings.LastIndex(fullName, ".")
	if i <= 0 || i == len(fullName)-1 {
		return "", "", fmt.Errorf("%w: full name [%s] must be package.TypeName", ErrConfiguration, fullName)
	}
	return fullName[:i], fullName[i+1:], nil
}

// ClassNameFromFile derives a type name from a queries file name, e.g.
// "user_queries.sql" becomes "UserQueries".
func ClassNameFromFile(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		if r == '-' || r == '.' || r == ' ' {
			return '_'
		}
		return r
	}, base)

	name := naming.UnderscoreToCamel("_" + strings.TrimLeft(base, "_"))
	if name == "" || name == "_" {
		return "Queries"
	}
	return name
}
