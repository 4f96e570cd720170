package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/terminally-online/querygen/internal/config"
	"github.com/terminally-online/querygen/internal/model"
	"github.com/terminally-online/querygen/internal/parser"
)

// sharedFile holds the package helpers when a directory of query files is
// generated into one package.
const sharedFile = "querygen.go"

type pipeline struct {
	cfg     *config.Config
	flags   *config.Flags
	parser  *parser.Parser
	builder *model.Builder
	pkg     string
}

func newPipeline(cfg *config.Config, flags *config.Flags) (*pipeline, error) {
	p, err := cfg.NewParser()
	if err != nil {
		return nil, err
	}
	b, err := cfg.NewBuilder(flags)
	if err != nil {
		return nil, err
	}
	return &pipeline{
		cfg:     cfg,
		flags:   flags,
		parser:  p,
		builder: b,
		pkg:     cfg.GetPackage(flags),
	}, nil
}

// build loads one query file and turns it into a model.
func (p *pipeline) build(path string) (*model.RootModel, error) {
	set, err := parser.LoadFile(path, p.parser)
	if err != nil {
		return nil, err
	}

	fullName := p.pkg + "." + p.cfg.GetClass(p.flags, path)
	root, err := p.builder.Build(set, fullName, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// buildAll builds every file in order and stops at the first error.
func (p *pipeline) buildAll(files []string) ([]*model.RootModel, error) {
	roots := make([]*model.RootModel, 0, len(files))
	for _, f := range files {
		root, err := p.build(f)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, nil
}

// queryFiles expands path into the query files it names. A directory
// contributes the files LoadFile understands, non-recursively, in name order.
func queryFiles(path string) (files []string, isDir bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read queries: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, false, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read queries directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !parser.IsQueriesFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	if len(files) == 0 {
		return nil, true, fmt.Errorf("no query files found in %s (extensions: %s)", path, strings.Join(parser.Extensions, ", "))
	}
	return files, true, nil
}

// outputPath returns where the code for queriesFile goes. An out ending in
// .go names the file itself, anything else is a directory.
func outputPath(out, queriesFile string) string {
	if strings.EqualFold(filepath.Ext(out), ".go") {
		return out
	}
	base := filepath.Base(queriesFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(out, stem+".go")
}

// upToDate reports whether out exists, is not empty and is newer than in.
func upToDate(in, out string) bool {
	outInfo, err := os.Stat(out)
	if err != nil || outInfo.Size() == 0 {
		return false
	}
	inInfo, err := os.Stat(in)
	if err != nil {
		return false
	}
	return outInfo.ModTime().After(inInfo.ModTime())
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
