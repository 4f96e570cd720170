package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docsCmd = &cobra.Command{
	Use:    "docs [dir]",
	Short:  "Write markdown documentation for every command",
	Args:   cobra.MaximumNArgs(1),
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir := "./docs"
		if len(args) > 0 {
			outDir = args[0]
		}

		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create docs directory: %w", err)
		}

		root := cmd.Root()
		root.DisableAutoGenTag = true
		if err := doc.GenMarkdownTree(root, outDir); err != nil {
			return fmt.Errorf("failed to generate docs: %w", err)
		}

		newPrinter(cmd).Success("Documentation written to %s", outDir)
		return nil
	},
}
