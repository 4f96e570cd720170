// Package validate checks generated queries against a live Postgres server.
// Each query is prepared and deallocated; nothing is executed.
package validate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/terminally-online/querygen/internal/model"
	"github.com/terminally-online/querygen/internal/sqlscan"
)

// Preparer is the subset of *pgx.Conn the checker needs.
type Preparer interface {
	Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error)
	Deallocate(ctx context.Context, name string) error
}

type Status int

const (
	StatusValid Status = iota
	StatusInvalid
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "ok"
	case StatusInvalid:
		return "invalid"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

type Result struct {
	Query   string
	Status  Status
	Err     error
	Params  int
	Columns int
	// Warning is set when the server reports a different shape than the
	// one inferred from the SQL text.
	Warning string
}

type Checker struct {
	conn      Preparer
	extractor sqlscan.ParamExtractor
}

func NewChecker(conn Preparer) *Checker {
	return &Checker{
		conn:      conn,
		extractor: sqlscan.SQLParams{Style: sqlscan.StyleDollar},
	}
}

// Connect opens a pgx connection for use with NewChecker.
func Connect(ctx context.Context, databaseURL string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

// Check prepares the selects of root and then its updates. Template
// queries are skipped since their text is only complete at run time.
func (c *Checker) Check(ctx context.Context, root *model.RootModel) ([]Result, error) {
	queries := root.All()
	results := make([]Result, 0, len(queries))

	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, c.checkQuery(ctx, fmt.Sprintf("querygen_%d", i), q))
	}

	return results, nil
}

func (c *Checker) checkQuery(ctx context.Context, stmt string, q model.QueryModel) Result {
	result := Result{Query: q.Name}

	if q.IsTemplate {
		result.Status = StatusSkipped
		return result
	}

	params, err := c.extractor.Extract(q.SQL)
	if err != nil {
		result.Status = StatusInvalid
		result.Err = err
		return result
	}

	sd, err := c.conn.Prepare(ctx, stmt, params.PositionalSQL)
	if err != nil {
		result.Status = StatusInvalid
		result.Err = err
		return result
	}
	_ = c.conn.Deallocate(ctx, stmt)

	result.Status = StatusValid
	result.Params = len(sd.ParamOIDs)
	result.Columns = len(sd.Fields)

	var warnings []string
	if q.IsSelect() && len(q.Columns) > 0 && len(q.Columns) != len(sd.Fields) {
		warnings = append(warnings, fmt.Sprintf("%d column(s) inferred from the SQL text, server returns %d", len(q.Columns), len(sd.Fields)))
	}
	if result.Params != len(params.Names) {
		warnings = append(warnings, fmt.Sprintf("%d named parameter(s), server expects %d", len(params.Names), result.Params))
	}
	result.Warning = strings.Join(warnings, "; ")

	return result
}

func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Status == StatusInvalid {
			n++
		}
	}
	return n
}

// FormatError renders err with the SQLSTATE and position when the server
// supplied them.
func FormatError(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err.Error()
	}

	var b strings.Builder
	b.WriteString(pgErr.Message)
	fmt.Fprintf(&b, " (SQLSTATE %s", pgErr.Code)
	if pgErr.Position > 0 {
		fmt.Fprintf(&b, ", position %d", pgErr.Position)
	}
	b.WriteString(")")
	if pgErr.Hint != "" {
		b.WriteString("\n  hint: ")
		b.WriteString(pgErr.Hint)
	}
	return b.String()
}
