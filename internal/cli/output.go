package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/terminally-online/querygen/internal/model"
)

var (
	successFmt = color.New(color.FgGreen).SprintfFunc()
	skipFmt    = color.New(color.FgYellow).SprintfFunc()
	failFmt    = color.New(color.FgRed, color.Bold).SprintfFunc()
	nameFmt    = color.New(color.FgCyan).SprintFunc()
)

type printer struct {
	out     io.Writer
	err     io.Writer
	verbose bool
	quiet   bool
}

func newPrinter(cmd *cobra.Command) *printer {
	return &printer{
		out:     cmd.OutOrStdout(),
		err:     cmd.ErrOrStderr(),
		verbose: verbose && !quiet,
		quiet:   quiet,
	}
}

func (p *printer) Info(format string, args ...any) {
	if !p.quiet {
		fmt.Fprintf(p.out, format+"\n", args...)
	}
}

func (p *printer) Detail(format string, args ...any) {
	if p.verbose {
		fmt.Fprintf(p.out, format+"\n", args...)
	}
}

func (p *printer) Success(format string, args ...any) {
	if !p.quiet {
		fmt.Fprintln(p.out, successFmt(format, args...))
	}
}

func (p *printer) Skip(format string, args ...any) {
	if !p.quiet {
		fmt.Fprintln(p.out, skipFmt(format, args...))
	}
}

func (p *printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.err, skipFmt("warning: "+format, args...))
}

func (p *printer) Fail(format string, args ...any) {
	fmt.Fprintln(p.err, failFmt(format, args...))
}

// describeQuery renders one line per query for --verbose, for example
// "select selectUser(userId long) -> userName string, createdDate date".
func describeQuery(q model.QueryModel) string {
	var b strings.Builder
	b.WriteString(string(q.Category))
	b.WriteString(" ")
	b.WriteString(nameFmt(q.Name))
	b.WriteString("(")
	b.WriteString(joinSpecs(q.Params))
	b.WriteString(")")
	if q.IsTemplate {
		b.WriteString(" template")
	}
	if len(q.Columns) > 0 {
		b.WriteString(" -> ")
		b.WriteString(joinSpecs(q.Columns))
	}
	return b.String()
}

func joinSpecs(specs []model.ParamSpec) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.Name + " " + s.Type.String()
	}
	return strings.Join(parts, ", ")
}
