package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{
			name: "sql",
			path: "queries.sql",
			content: `/** selectUsers */
select id, name from users
/** insertUser */
insert into users (name) values (:name)
`,
		},
		{
			name: "json",
			path: "queries.json",
			content: `{
  "selectUsers": "select id, name from users",
  "insertUser": "insert into users (name) values (:name)"
}`,
		},
		{
			name: "yaml",
			path: "queries.yaml",
			content: `selectUsers: select id, name from users
insertUser: |
  insert into users (name) values (:name)
`,
		},
		{
			name: "properties",
			path: "queries.properties",
			content: `# generated
selectUsers = select id, name from users
insertUser = insert into users (name) \
    values (:name)
`,
		},
		{
			name: "xml",
			path: "queries.xml",
			content: `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE properties SYSTEM "http://java.sun.com/dtd/properties.dtd">
<properties>
  <entry key="selectUsers">select id, name from users</entry>
  <entry key="insertUser">insert into users (name) values (:name)</entry>
</properties>`,
		},
	}

	p := mustParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Load([]byte(tt.content), tt.path, p)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			names := set.Names()
			if strings.Join(names, ",") != "selectUsers,insertUser" {
				t.Errorf("names = %v, want [selectUsers insertUser]", names)
			}
			if sql, _ := set.Get("selectUsers"); sql != "select id, name from users" {
				t.Errorf("selectUsers sql = %q", sql)
			}
			if sql, _ := set.Get("insertUser"); sql != "insert into users (name) values (:name)" {
				t.Errorf("insertUser sql = %q", sql)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		wantErr error
	}{
		{"unknown extension", "queries.txt", "select 1", ErrUnsupportedFormat},
		{"json duplicate", "q.json", `{"a": "select 1", "a": "select 2"}`, ErrDuplicateName},
		{"json not a mapping", "q.json", `["select 1"]`, ErrStructure},
		{"json nested value", "q.json", `{"a": {"b": "select 1"}}`, ErrStructure},
		{"json null value", "q.json", `{"a": null}`, ErrStructure},
		{"json number value", "q.json", `{"selectFoo": 1}`, ErrStructure},
		{"json bool value", "q.json", `{"selectFoo": true}`, ErrStructure},
		{"yaml int value", "q.yaml", "selectFoo: 42\n", ErrStructure},
		{"json empty value", "q.json", `{"a": "  "}`, ErrEmptyQuery},
		{"json empty object", "q.json", `{}`, ErrNoQueries},
		{"yaml empty document", "q.yml", ``, ErrNoQueries},
		{"properties empty", "q.properties", "# nothing\n", ErrNoQueries},
		{"xml wrong root", "q.xml", `<queries><entry key="a">select 1</entry></queries>`, ErrStructure},
		{"xml missing key", "q.xml", `<properties><entry>select 1</entry></properties>`, ErrStructure},
		{"xml duplicate", "q.xml", `<properties><entry key="a">select 1</entry><entry key="a">select 2</entry></properties>`, ErrDuplicateName},
	}

	p := mustParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.content), tt.path, p)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queries.sql")
	if err := os.WriteFile(path, []byte("/** selectOne */\nselect 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	set, err := LoadFile(path, mustParser(t))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if set.Path != path {
		t.Errorf("path = %q, want %q", set.Path, path)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.sql"), mustParser(t)); !os.IsNotExist(errors.Unwrap(err)) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestIsQueriesFile(t *testing.T) {
	for path, want := range map[string]bool{
		"a.sql":        true,
		"a.SQL":        true,
		"a.yml":        true,
		"a.properties": true,
		"a.xml":        true,
		"a.go":         false,
		"README":       false,
	} {
		if got := IsQueriesFile(path); got != want {
			t.Errorf("IsQueriesFile(%q) = %v, want %v", path, got, want)
		}
	}
}
