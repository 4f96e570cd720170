package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terminally-online/querygen/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	flags   config.Flags
	verbose bool
	quiet   bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "querygen",
	Short: "Generate typed query accessors from named SQL files",
	Long: `Querygen reads files of named SQL queries and generates typed Go code
for running them: one method per query, parameter structs with types inferred
from parameter names, and row structs for selects.

Queries whose name matches the select pattern become selects, those matching
the update pattern become updates.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "docs" {
			return nil
		}

		var err error
		if _, statErr := os.Stat(cfgFile); os.IsNotExist(statErr) {
			cfg = &config.Config{}
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
		} else {
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "querygen %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultFile, "config file path")
	rootCmd.PersistentFlags().StringVarP(&flags.Queries, "queries", "q", "", "queries file or directory")
	rootCmd.PersistentFlags().StringVar(&flags.Package, "package", "", "package of the generated code")
	rootCmd.PersistentFlags().StringVar(&flags.Class, "class", "", "name of the generated type")
	rootCmd.PersistentFlags().StringVar(&flags.Placeholder, "placeholder", "", "placeholder style: dollar, question or at")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print per-query detail")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "only print errors")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(versionCmd)
}

func SetVersion(v string) {
	version = v
}

func Execute() error {
	return rootCmd.Execute()
}

func Root() *cobra.Command {
	return rootCmd
}
