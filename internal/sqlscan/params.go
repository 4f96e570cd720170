package sqlscan

import (
	"errors"
	"fmt"
	"strings"

	sqlparams "github.com/mikeschinkel/go-sqlparams"
)

var ErrUnknownStyle = errors.New("unknown placeholder style")

// NamedParams is what an extractor finds in one statement. Names holds each
// :name parameter once, in order of first appearance. PositionalSQL is the
// statement rewritten to driver placeholders and Args lists the parameter
// name bound to each placeholder position.
type NamedParams struct {
	Names         []string
	PositionalSQL string
	Args          []string
}

type ParamExtractor interface {
	Extract(sql string) (NamedParams, error)
}

type Style string

const (
	StyleDollar   Style = "dollar"
	StyleQuestion Style = "question"
	StyleAt       Style = "at"
)

func Styles() []Style {
	return []Style{StyleDollar, StyleQuestion, StyleAt}
}

func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case "", StyleDollar, "postgres", "pgx":
		return StyleDollar, nil
	case StyleQuestion, "mysql", "sqlite":
		return StyleQuestion, nil
	case StyleAt, "sqlserver", "mssql":
		return StyleAt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

func (s Style) format() (sqlparams.FormatParamFunc, error) {
	switch s {
	case StyleDollar, "":
		return func(i int) string { return fmt.Sprintf("$%d", i) }, nil
	case StyleQuestion:
		return func(int) string { return "?" }, nil
	case StyleAt:
		return func(i int) string { return fmt.Sprintf("@p%d", i) }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, string(s))
}

// hashMask stands in for '#' while go-sqlparams scans a statement.
const hashMask = "\x00"

// SQLParams extracts :name parameters with go-sqlparams, which skips string
// literals, quoted identifiers, comments and :: casts. Only the question style
// keeps the library's MySQL reading of '#' as a line comment; for Postgres and
// SQL Server '#' is an operator or part of a name.
type SQLParams struct {
	Style Style
}

func (p SQLParams) Extract(sql string) (NamedParams, error) {
	format, err := p.Style.format()
	if err != nil {
		return NamedParams{}, err
	}

	masked := p.Style != StyleQuestion && strings.Contains(sql, "#") && !strings.Contains(sql, hashMask)
	src := sql
	if masked {
		src = strings.ReplaceAll(sql, "#", hashMask)
	}

	parsed, err := sqlparams.ParseSQL(sqlparams.SQLQuery(src), format)
	if err != nil {
		return NamedParams{}, fmt.Errorf("failed to extract parameters: %w", err)
	}

	params := parsed.Parameters()
	result := NamedParams{
		Names:         make([]string, 0, len(params)),
		PositionalSQL: string(parsed.SQL),
	}
	if masked {
		result.PositionalSQL = strings.ReplaceAll(result.PositionalSQL, hashMask, "#")
	}
	for _, param := range params {
		result.Names = append(result.Names, string(param.Name))
	}

	// ? placeholders carry no index, so each occurrence binds its own arg.
	if p.Style == StyleQuestion {
		occurrences := parsed.Occurrences()
		result.Args = make([]string, 0, len(occurrences))
		for _, tok := range occurrences {
			result.Args = append(result.Args, string(tok.Name))
		}
	} else {
		result.Args = append([]string(nil), result.Names...)
	}

	return result, nil
}
