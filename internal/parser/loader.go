package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"
)

// Extensions lists the queries file formats LoadFile understands.
var Extensions = []string{".sql", ".json", ".yaml", ".yml", ".properties", ".xml"}

// LoadFile reads a queries file, choosing the format by extension. SQL files
// go through p; the other formats are flat name to SQL mappings.
func LoadFile(path string, p *Parser) (*QuerySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read queries file: %w", err)
	}
	return Load(data, path, p)
}

func Load(data []byte, path string, p *Parser) (*QuerySet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sql":
		if p == nil {
			return nil, fmt.Errorf("%w: parser is nil", ErrConfiguration)
		}
		return p.Parse(bytes.NewReader(data), path)
	case ".json", ".yaml", ".yml":
		return loadMapping(data, path)
	case ".properties":
		return loadProperties(data, path)
	case ".xml":
		return loadXML(data, path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// IsQueriesFile reports whether LoadFile accepts the file's extension.
func IsQueriesFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// JSON is a subset of YAML, so both go through yaml.v3 nodes to keep key order.
func loadMapping(data []byte, path string) (*QuerySet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %v", ErrStructure, err)}
	}

	set := NewQuerySet(path)
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, &ParseError{Path: path, Err: ErrNoQueries}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Path: path, Line: root.Line, Err: fmt.Errorf("%w: expected a mapping of query names to SQL", ErrStructure)}
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.ScalarNode || value.ShortTag() != "!!str" {
			return nil, &ParseError{Path: path, Line: key.Line, Name: key.Value, Err: fmt.Errorf("%w: query SQL must be a string", ErrStructure)}
		}
		if err := addQuery(set, path, key.Value, value.Value, key.Line); err != nil {
			return nil, err
		}
	}

	if set.Len() == 0 {
		return nil, &ParseError{Path: path, Err: ErrNoQueries}
	}
	return set, nil
}

func loadProperties(data []byte, path string) (*QuerySet, error) {
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %v", ErrStructure, err)}
	}

	set := NewQuerySet(path)
	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		if err := addQuery(set, path, key, value, 0); err != nil {
			return nil, err
		}
	}

	if set.Len() == 0 {
		return nil, &ParseError{Path: path, Err: ErrNoQueries}
	}
	return set, nil
}

// loadXML reads the XML properties layout:
//
//	<properties>
//	  <entry key="selectFoo">select ...</entry>
//	</properties>
func loadXML(data []byte, path string) (*QuerySet, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %v", ErrStructure, err)}
	}

	root := doc.SelectElement("properties")
	if root == nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: missing <properties> root element", ErrStructure)}
	}

	set := NewQuerySet(path)
	for _, entry := range root.SelectElements("entry") {
		key := entry.SelectAttrValue("key", "")
		if key == "" {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: <entry> without key attribute", ErrStructure)}
		}
		if err := addQuery(set, path, key, entry.Text(), 0); err != nil {
			return nil, err
		}
	}

	if set.Len() == 0 {
		return nil, &ParseError{Path: path, Err: ErrNoQueries}
	}
	return set, nil
}

func addQuery(set *QuerySet, path, name, sql string, line int) error {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return &ParseError{Path: path, Line: line, Name: name, Err: ErrEmptyQuery}
	}
	if err := set.Add(name, sql, line); err != nil {
		return &ParseError{Path: path, Line: line, Name: name, Err: err}
	}
	return nil
}
