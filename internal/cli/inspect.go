package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/terminally-online/querygen/internal/model"
)

var (
	outputFile string
	asJSON     bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the model built from query files",
	Long: `Parse and classify the query files and print the resulting model: each
query's category, its parameters and columns with their inferred types, and the
SQL with positional placeholders.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		queriesPath, err := cfg.GetQueries(&flags)
		if err != nil {
			return err
		}
		files, _, err := queryFiles(queriesPath)
		if err != nil {
			return err
		}

		p, err := newPipeline(cfg, &flags)
		if err != nil {
			return err
		}
		roots, err := p.buildAll(files)
		if err != nil {
			return err
		}

		data, err := encodeModels(roots, asJSON)
		if err != nil {
			return err
		}

		if outputFile != "" {
			if err := os.WriteFile(outputFile, data, 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			newPrinter(cmd).Info("Model written to %s", outputFile)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	inspectCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of YAML")
}

// encodeModels writes one YAML document per model, or a JSON array.
func encodeModels(roots []*model.RootModel, asJSON bool) ([]byte, error) {
	if asJSON {
		data, err := json.MarshalIndent(roots, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode model: %w", err)
		}
		return append(data, '\n'), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, root := range roots {
		if err := enc.Encode(root); err != nil {
			return nil, fmt.Errorf("failed to encode model: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}
	return buf.Bytes(), nil
}
