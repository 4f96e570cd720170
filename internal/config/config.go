package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/terminally-online/querygen/internal/model"
	"github.com/terminally-online/querygen/internal/parser"
	"github.com/terminally-online/querygen/internal/sqlscan"
	"github.com/terminally-online/querygen/internal/typeinfer"
)

const DefaultFile = "querygen.yaml"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Queries       string  `yaml:"queries"`
	Out           string  `yaml:"out"`
	Package       string  `yaml:"package"`
	Class         string  `yaml:"class"`
	Language      string  `yaml:"language"`
	Public        *bool   `yaml:"public"`
	CheckFileDate *bool   `yaml:"check_file_date"`
	Placeholder   string  `yaml:"placeholder"`
	Delimiter     *string `yaml:"delimiter"`
	Template      string  `yaml:"template"`

	Patterns Patterns         `yaml:"patterns"`
	Features Features         `yaml:"features"`
	Types    []typeinfer.Rule `yaml:"types"`

	DatabaseURL     string `yaml:"database_url"`
	Schema          string `yaml:"schema"`
	PostgresVersion string `yaml:"postgres_version"`
}

// Patterns are matched against whole names or lines; they are anchored when
// compiled. Body is a pointer so that an explicit empty value can switch the
// line transform off.
type Patterns struct {
	Name          string  `yaml:"name"`
	Comment       string  `yaml:"comment"`
	Body          *string `yaml:"body"`
	Select        string  `yaml:"select"`
	Update        string  `yaml:"update"`
	Template      string  `yaml:"template"`
	TemplateValue string  `yaml:"template_value"`
}

type Features struct {
	UnderscoreToCamel     *bool `yaml:"underscore_to_camel"`
	TemplateSubstitution  *bool `yaml:"template_substitution"`
	CheckSingleRowUpdates *bool `yaml:"check_single_row_updates"`
	BatchInserts          *bool `yaml:"batch_inserts"`
	IterableExtensions    *bool `yaml:"iterable_extensions"`
	CloseableIterables    *bool `yaml:"closeable_iterables"`
	ColumnInterfaces      *bool `yaml:"column_interfaces"`
}

type Flags struct {
	URL             string
	Schema          string
	PostgresVersion string
	Queries         string
	Out             string
	Package         string
	Class           string
	Language        string
	Placeholder     string
	Template        string
}

// Load reads a querygen.yaml file. A .env file next to it, or in the working
// directory, is loaded first so that ${VAR} references can use it.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(filepath.Dir(path)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w: %v", ErrInvalidConfig, err)
	}
	for i, rule := range cfg.Types {
		if rule.Postfix == "" {
			return nil, fmt.Errorf("%w: types[%d]: postfix is required", ErrInvalidConfig, i)
		}
	}

	cfg.Queries = expandEnv(cfg.Queries)
	cfg.Out = expandEnv(cfg.Out)
	cfg.Package = expandEnv(cfg.Package)
	cfg.Class = expandEnv(cfg.Class)
	cfg.Language = expandEnv(cfg.Language)
	cfg.Placeholder = expandEnv(cfg.Placeholder)
	cfg.Template = expandEnv(cfg.Template)
	cfg.DatabaseURL = expandEnv(cfg.DatabaseURL)
	cfg.Schema = expandEnv(cfg.Schema)
	cfg.PostgresVersion = expandEnv(cfg.PostgresVersion)

	return &cfg, nil
}

// LoadDotEnv loads .env from each directory that has one. Variables already
// set in the environment win.
func LoadDotEnv(dirs ...string) error {
	seen := make(map[string]bool)
	for _, dir := range append(dirs, ".") {
		path := filepath.Clean(filepath.Join(dir, ".env"))
		if seen[path] {
			continue
		}
		seen[path] = true

		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) GetDatabaseURL(flags *Flags) (string, error) {
	if flags != nil && flags.URL != "" {
		return flags.URL, nil
	}
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	return "", fmt.Errorf("database_url is required (set in config or pass --url flag)")
}

func (c *Config) GetSchema(flags *Flags) string {
	if flags != nil && flags.Schema != "" {
		return flags.Schema
	}
	return c.Schema
}

func (c *Config) GetPostgresVersion(flags *Flags) string {
	if flags != nil && flags.PostgresVersion != "" {
		return flags.PostgresVersion
	}
	if c.PostgresVersion != "" {
		return c.PostgresVersion
	}
	return "16"
}

func (c *Config) GetQueries(flags *Flags) (string, error) {
	if flags != nil && flags.Queries != "" {
		return flags.Queries, nil
	}
	if c.Queries != "" {
		return c.Queries, nil
	}
	return "", fmt.Errorf("queries is required (set in config or pass --queries flag)")
}

func (c *Config) GetOut(flags *Flags) string {
	if flags != nil && flags.Out != "" {
		return flags.Out
	}
	if c.Out != "" {
		return c.Out
	}
	return "queries"
}

func (c *Config) GetPackage(flags *Flags) string {
	if flags != nil && flags.Package != "" {
		return flags.Package
	}
	if c.Package != "" {
		return c.Package
	}
	return packageFromOut(c.GetOut(flags))
}

// packageFromOut names the package after the output directory, which is the
// parent of out when out names a .go file.
func packageFromOut(out string) string {
	dir := out
	if strings.EqualFold(filepath.Ext(out), ".go") {
		dir = filepath.Dir(out)
	}
	if dir == "." || dir == "" {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
	}
	return filepath.Base(dir)
}

// GetClass returns the configured type name, or one derived from the
// queries file name when none is set.
func (c *Config) GetClass(flags *Flags, queriesFile string) string {
	if flags != nil && flags.Class != "" {
		return flags.Class
	}
	if c.Class != "" {
		return c.Class
	}
	return model.ClassNameFromFile(queriesFile)
}

func (c *Config) GetLanguage(flags *Flags) string {
	if flags != nil && flags.Language != "" {
		return flags.Language
	}
	if c.Language != "" {
		return c.Language
	}
	return "go"
}

func (c *Config) GetPlaceholder(flags *Flags) (sqlscan.Style, error) {
	value := c.Placeholder
	if flags != nil && flags.Placeholder != "" {
		value = flags.Placeholder
	}
	style, err := sqlscan.ParseStyle(value)
	if err != nil {
		return "", fmt.Errorf("%w: placeholder: %v", ErrInvalidConfig, err)
	}
	return style, nil
}

// GetTemplate returns the custom template body, or "" for the built-in one.
func (c *Config) GetTemplate(flags *Flags) (string, error) {
	path := c.Template
	if flags != nil && flags.Template != "" {
		path = flags.Template
	}
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(data), nil
}

func (c *Config) IsPublic() bool {
	return boolOr(c.Public, true)
}

func (c *Config) CheckFileDateEnabled() bool {
	return boolOr(c.CheckFileDate, true)
}

func (c *Config) GetFeatures() model.Features {
	defaults := model.DefaultFeatures()
	return model.Features{
		UnderscoreToCamel:     boolOr(c.Features.UnderscoreToCamel, defaults.UnderscoreToCamel),
		TemplateSubstitution:  boolOr(c.Features.TemplateSubstitution, defaults.TemplateSubstitution),
		CheckSingleRowUpdates: boolOr(c.Features.CheckSingleRowUpdates, defaults.CheckSingleRowUpdates),
		BatchInserts:          boolOr(c.Features.BatchInserts, defaults.BatchInserts),
		IterableExtensions:    boolOr(c.Features.IterableExtensions, defaults.IterableExtensions),
		CloseableIterables:    boolOr(c.Features.CloseableIterables, defaults.CloseableIterables),
		ColumnInterfaces:      boolOr(c.Features.ColumnInterfaces, defaults.ColumnInterfaces),
	}
}

// GetTypes returns the configured suffix table, which replaces the default
// table entirely when present.
func (c *Config) GetTypes() typeinfer.Table {
	if len(c.Types) == 0 {
		return typeinfer.DefaultTable()
	}
	return append(typeinfer.Table(nil), c.Types...)
}

func (c *Config) ParserOptions() ([]parser.Option, error) {
	var opts []parser.Option

	if c.Patterns.Name != "" {
		re, err := compileAnchored("patterns.name", c.Patterns.Name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, parser.WithNamePattern(re))
	}
	if c.Patterns.Comment != "" {
		re, err := compileAnchored("patterns.comment", c.Patterns.Comment)
		if err != nil {
			return nil, err
		}
		opts = append(opts, parser.WithCommentPattern(re))
	}
	if c.Patterns.Body != nil {
		var re *regexp.Regexp
		if *c.Patterns.Body != "" {
			var err error
			if re, err = compileAnchored("patterns.body", *c.Patterns.Body); err != nil {
				return nil, err
			}
		}
		opts = append(opts, parser.WithBodyPattern(re))
	}
	if c.Delimiter != nil {
		opts = append(opts, parser.WithDelimiter(*c.Delimiter))
	}

	return opts, nil
}

func (c *Config) NewParser() (*parser.Parser, error) {
	opts, err := c.ParserOptions()
	if err != nil {
		return nil, err
	}
	return parser.NewParser(opts...)
}

func (c *Config) BuilderOptions(flags *Flags) (model.BuilderOptions, error) {
	opts := model.DefaultBuilderOptions()
	opts.Types = c.GetTypes()
	opts.Features = c.GetFeatures()
	opts.Public = c.IsPublic()

	style, err := c.GetPlaceholder(flags)
	if err != nil {
		return opts, err
	}
	opts.Extractor = sqlscan.SQLParams{Style: style}

	patterns := []struct {
		key   string
		value string
		dst   **regexp.Regexp
	}{
		{"patterns.select", c.Patterns.Select, &opts.SelectPattern},
		{"patterns.update", c.Patterns.Update, &opts.UpdatePattern},
		{"patterns.template", c.Patterns.Template, &opts.TemplatePattern},
		{"patterns.template_value", c.Patterns.TemplateValue, &opts.TemplateValueConstraint},
	}
	for _, p := range patterns {
		if p.value == "" {
			continue
		}
		re, err := compileAnchored(p.key, p.value)
		if err != nil {
			return opts, err
		}
		*p.dst = re
	}

	return opts, nil
}

func (c *Config) NewBuilder(flags *Flags) (*model.Builder, error) {
	opts, err := c.BuilderOptions(flags)
	if err != nil {
		return nil, err
	}
	return model.NewBuilder(opts)
}

// compileAnchored compiles pattern so that it must match the whole input.
func compileAnchored(key, pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return re, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return os.ExpandEnv(s)
}
