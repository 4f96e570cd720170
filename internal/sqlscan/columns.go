package sqlscan

import (
	"regexp"
	"strings"
)

var (
	columnsFromRegex = regexp.MustCompile(`(?is)\s+from\s+.*`)
	columnNameRegex  = regexp.MustCompile(`^[a-zA-Z0-9_$]+$`)
)

// ExtractColumns returns the result column names of a select statement in
// select-list order. It is a heuristic, not a SQL parser: the last word of
// each select-list expression is taken as the column name, and anything that
// is not a plain identifier is dropped. Statements that do not start with
// "select" yield nil.
func ExtractColumns(sql string) []string {
	sql = strings.TrimLeft(sql, " \t\r\n")
	if len(sql) < len("select") || !strings.EqualFold(sql[:len("select")], "select") {
		return nil
	}

	list := stripParens(sql)
	if loc := columnsFromRegex.FindStringIndex(list); loc != nil {
		list = list[:loc[0]]
	}

	var columns []string
	for _, expr := range strings.Split(list, ",") {
		fields := strings.Fields(expr)
		if len(fields) == 0 {
			continue
		}
		name := fields[len(fields)-1]
		if columnNameRegex.MatchString(name) {
			columns = append(columns, name)
		}
	}
	return columns
}

// stripParens drops everything inside parentheses, keeping only the outermost
// pair as a marker, so function arguments and subqueries cannot contribute
// commas or a "from" keyword.
func stripParens(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	level := 0
	for _, r := range sql {
		switch {
		case r == '(':
			if level == 0 {
				b.WriteRune(r)
			}
			level++
		case r == ')':
			level--
			if level == 0 {
				b.WriteRune(r)
			}
		case level == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
