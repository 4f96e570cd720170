package parser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	DefaultNamePattern    = `^\s*/\*{2}\s*(.*?)\s*\*/\s*$`
	DefaultCommentPattern = `^\s*(?:--.*)?$`
	DefaultBodyPattern    = `^\s*(.*?)(?:\s*--.*)?\s*$`
	DefaultDelimiter      = " "

	maxLineSize = 1024 * 1024
)

var (
	defaultNameRegex    = regexp.MustCompile(DefaultNamePattern)
	defaultCommentRegex = regexp.MustCompile(DefaultCommentPattern)
	defaultBodyRegex    = regexp.MustCompile(DefaultBodyPattern)
)

type state int

const (
	stateStarted state = iota
	stateCollecting
)

// Parser splits a queries file into named SQL blocks. Each block starts with
// a name marker line, e.g. "/** selectUsers */", and runs until the next one.
// A Parser holds no mutable state and may be shared between goroutines.
type Parser struct {
	nameRegex    *regexp.Regexp
	commentRegex *regexp.Regexp
	bodyRegex    *regexp.Regexp
	delimiter    string
}

type Option func(*Parser)

// WithNamePattern sets the name marker matcher; capture group 1 is the name.
func WithNamePattern(re *regexp.Regexp) Option {
	return func(p *Parser) { p.nameRegex = re }
}

// WithCommentPattern sets the matcher for lines skipped everywhere.
func WithCommentPattern(re *regexp.Regexp) Option {
	return func(p *Parser) { p.commentRegex = re }
}

// WithBodyPattern sets the per-line transform; capture group 1 is kept. A nil
// pattern keeps body lines verbatim.
func WithBodyPattern(re *regexp.Regexp) Option {
	return func(p *Parser) { p.bodyRegex = re }
}

func WithDelimiter(delimiter string) Option {
	return func(p *Parser) { p.delimiter = delimiter }
}

func NewParser(opts ...Option) (*Parser, error) {
	p := &Parser{
		nameRegex:    defaultNameRegex,
		commentRegex: defaultCommentRegex,
		bodyRegex:    defaultBodyRegex,
		delimiter:    DefaultDelimiter,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.nameRegex == nil {
		return nil, fmt.Errorf("%w: name pattern is nil", ErrConfiguration)
	}
	if p.nameRegex.NumSubexp() < 1 {
		return nil, fmt.Errorf("%w: name pattern [%s] has no capture group", ErrConfiguration, p.nameRegex)
	}
	if p.commentRegex == nil {
		return nil, fmt.Errorf("%w: comment pattern is nil", ErrConfiguration)
	}
	if p.bodyRegex != nil && p.bodyRegex.NumSubexp() < 1 {
		return nil, fmt.Errorf("%w: body pattern [%s] has no capture group", ErrConfiguration, p.bodyRegex)
	}
	return p, nil
}

func (p *Parser) ParseString(content string) (*QuerySet, error) {
	return p.Parse(strings.NewReader(content), "")
}

// Parse reads r to the end and returns its queries in file order. Any
// structural violation fails the whole file; nothing partial is returned.
// The reader is not closed.
func (p *Parser) Parse(r io.Reader, path string) (*QuerySet, error) {
	set := NewQuerySet(path)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	current := stateStarted
	var name string
	var nameLine int
	var sql strings.Builder
	lineNum := 0

	flush := func() error {
		body := sql.String()
		if strings.TrimSpace(body) == "" {
			return &ParseError{Path: path, Line: nameLine, Name: name, Err: ErrEmptyQuery}
		}
		if err := set.Add(name, body, nameLine); err != nil {
			return &ParseError{Path: path, Line: nameLine, Name: name, Err: err}
		}
		sql.Reset()
		return nil
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if p.commentRegex.MatchString(line) {
			continue
		}

		switch current {
		case stateStarted:
			matches := p.nameRegex.FindStringSubmatch(line)
			if matches == nil {
				return nil, &ParseError{
					Path: path,
					Line: lineNum,
					Err:  fmt.Errorf("%w, regex: [%s]", ErrNameNotFound, p.nameRegex),
				}
			}
			name = matches[1]
			nameLine = lineNum
			current = stateCollecting

		case stateCollecting:
			if matches := p.nameRegex.FindStringSubmatch(line); matches != nil {
				if err := flush(); err != nil {
					return nil, err
				}
				name = matches[1]
				nameLine = lineNum
				continue
			}

			body := p.bodyLine(line)
			if body == "" {
				continue
			}
			if sql.Len() > 0 {
				sql.WriteString(p.delimiter)
			}
			sql.WriteString(body)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Path: path, Line: lineNum, Err: fmt.Errorf("failed to read queries: %w", err)}
	}

	if current == stateStarted {
		return nil, &ParseError{Path: path, Err: ErrNoQueries}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return set, nil
}

func (p *Parser) bodyLine(line string) string {
	if p.bodyRegex == nil {
		return line
	}
	matches := p.bodyRegex.FindStringSubmatch(line)
	if matches == nil {
		return line
	}
	return matches[1]
}
