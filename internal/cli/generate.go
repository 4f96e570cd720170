package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terminally-online/querygen/internal/codegen"
	_ "github.com/terminally-online/querygen/internal/codegen/golang"
	"github.com/terminally-online/querygen/internal/model"
)

var force bool

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate code from query files",
	Long: `Generate typed accessors for every query in a file, or in every query file
of a directory.

Query files are .sql files of named blocks, or flat name to SQL mappings in
.json, .yaml, .properties or .xml. A single file is generated into one
self-contained file. A directory is generated into one file per query file
plus ` + sharedFile + `, which holds the declarations they share.

Output that is newer than its query file is left alone unless --force is
given or check_file_date is false.

Example:
  querygen generate --queries sql/users.sql --out internal/store`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := newPrinter(cmd)

		queriesPath, err := cfg.GetQueries(&flags)
		if err != nil {
			return err
		}
		files, isDir, err := queryFiles(queriesPath)
		if err != nil {
			return err
		}

		renderer, err := newRenderer()
		if err != nil {
			return err
		}

		p, err := newPipeline(cfg, &flags)
		if err != nil {
			return err
		}

		outPath := cfg.GetOut(&flags)
		if !isDir {
			return generateFile(out, p, renderer, files[0], outputPath(outPath, files[0]))
		}
		return generateDir(out, p, renderer, files, outPath)
	},
}

func init() {
	generateCmd.Flags().StringVarP(&flags.Out, "out", "o", "", "output file or directory (default: queries)")
	generateCmd.Flags().StringVar(&flags.Language, "language", "", "target language (default: go)")
	generateCmd.Flags().StringVar(&flags.Template, "template", "", "custom template file")
	generateCmd.Flags().BoolVarP(&force, "force", "f", false, "regenerate even when the output is up to date")
}

func newRenderer() (codegen.Renderer, error) {
	language := cfg.GetLanguage(&flags)
	body, err := cfg.GetTemplate(&flags)
	if err != nil {
		return nil, err
	}
	renderer, err := codegen.GetWithTemplate(language, body)
	if err != nil {
		return nil, fmt.Errorf("failed to get generator: %w (available: %v)", err, codegen.Languages())
	}
	return renderer, nil
}

func skipUpToDate(in, target string) bool {
	return !force && cfg.CheckFileDateEnabled() && upToDate(in, target)
}

func generateFile(out *printer, p *pipeline, renderer codegen.Renderer, in, target string) error {
	if skipUpToDate(in, target) {
		out.Skip("%s is up to date", target)
		return nil
	}

	root, err := p.build(in)
	if err != nil {
		return err
	}
	logModel(out, root)

	var buf bytes.Buffer
	if err := renderer.Render(&buf, root); err != nil {
		return fmt.Errorf("failed to generate %s: %w", target, err)
	}
	if err := writeFile(target, buf.Bytes()); err != nil {
		return err
	}

	out.Success("Generated %s (%d selects, %d updates)", target, len(root.Selects), len(root.Updates))
	return nil
}

func generateDir(out *printer, p *pipeline, renderer codegen.Renderer, files []string, outDir string) error {
	if strings.EqualFold(filepath.Ext(outDir), ".go") {
		return fmt.Errorf("out must be a directory when queries is a directory, got %s", outDir)
	}
	if cfg.Class != "" || flags.Class != "" {
		return fmt.Errorf("class cannot be set when queries is a directory; type names come from the file names")
	}
	pr, ok := renderer.(codegen.PackageRenderer)
	if !ok {
		return fmt.Errorf("language %s cannot generate a directory of query files", renderer.Language())
	}

	targets := make(map[string]string, len(files))
	for _, f := range files {
		target := outputPath(outDir, f)
		if filepath.Base(target) == sharedFile {
			return fmt.Errorf("%s: output would overwrite %s", f, sharedFile)
		}
		if prev, ok := targets[target]; ok {
			return fmt.Errorf("%s and %s would both generate %s", prev, f, target)
		}
		targets[target] = f
	}

	roots, err := p.buildAll(files)
	if err != nil {
		return err
	}

	sharedPath := filepath.Join(outDir, sharedFile)
	written := 0
	for i, root := range roots {
		target := outputPath(outDir, files[i])
		if skipUpToDate(files[i], target) {
			out.Skip("%s is up to date", target)
			continue
		}
		logModel(out, root)

		var buf bytes.Buffer
		if err := pr.RenderPart(&buf, root); err != nil {
			return fmt.Errorf("failed to generate %s: %w", target, err)
		}
		if err := writeFile(target, buf.Bytes()); err != nil {
			return err
		}
		written++
		out.Success("Generated %s (%d selects, %d updates)", target, len(root.Selects), len(root.Updates))
	}

	if written == 0 && upToDate(files[0], sharedPath) {
		return nil
	}

	var buf bytes.Buffer
	if err := pr.RenderShared(&buf, roots); err != nil {
		return fmt.Errorf("failed to generate %s: %w", sharedPath, err)
	}
	if err := writeFile(sharedPath, buf.Bytes()); err != nil {
		return err
	}
	out.Success("Generated %s", sharedPath)
	return nil
}

func logModel(out *printer, root *model.RootModel) {
	out.Detail("%s.%s from %s", root.PackageName, root.ClassName, root.SourceFileName)
	if names := root.Features.Names(); len(names) > 0 {
		out.Detail("  features: %s", strings.Join(names, ", "))
	}
	for _, q := range root.All() {
		out.Detail("  %s", describeQuery(q))
	}
}
