package parser

import "fmt"

type NamedQuery struct {
	Name string
	SQL  string
	Line int
}

// QuerySet maps query names to SQL text and iterates in the order the names
// were first added.
type QuerySet struct {
	Path    string
	queries []NamedQuery
	index   map[string]int
}

func NewQuerySet(path string) *QuerySet {
	return &QuerySet{
		Path:  path,
		index: make(map[string]int),
	}
}

func (s *QuerySet) Add(name, sql string, line int) error {
	if _, exists := s.index[name]; exists {
		return fmt.Errorf("%w: [%s]", ErrDuplicateName, name)
	}
	s.index[name] = len(s.queries)
	s.queries = append(s.queries, NamedQuery{Name: name, SQL: sql, Line: line})
	return nil
}

func (s *QuerySet) Get(name string) (string, bool) {
	i, ok := s.index[name]
	if !ok {
		return "", false
	}
	return s.queries[i].SQL, true
}

func (s *QuerySet) Len() int {
	return len(s.queries)
}

func (s *QuerySet) Names() []string {
	names := make([]string, len(s.queries))
	for i, q := range s.queries {
		names[i] = q.Name
	}
	return names
}

// Queries returns a copy of the queries in file order.
func (s *QuerySet) Queries() []NamedQuery {
	out := make([]NamedQuery, len(s.queries))
	copy(out, s.queries)
	return out
}
