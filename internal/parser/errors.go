package parser

import (
	"errors"
	"fmt"
)

var (
	ErrStructure     = errors.New("malformed queries file")
	ErrNameNotFound  = fmt.Errorf("%w: query name not found on start", ErrStructure)
	ErrEmptyQuery    = fmt.Errorf("%w: no SQL found for query name", ErrStructure)
	ErrNoQueries     = fmt.Errorf("%w: no queries found", ErrStructure)
	ErrDuplicateName = errors.New("duplicate SQL query name")

	ErrConfiguration     = errors.New("invalid parser configuration")
	ErrUnsupportedFormat = errors.New("unsupported queries file format")
)

// ParseError locates a failure inside a queries file. Line is 1-based and
// zero when the failure is not tied to a line.
type ParseError struct {
	Path string
	Line int
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	msg := e.Err.Error()
	if e.Name != "" && !errors.Is(e.Err, ErrDuplicateName) {
		msg = fmt.Sprintf("%s: [%s]", msg, e.Name)
	}
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, msg)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
