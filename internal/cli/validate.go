package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terminally-online/querygen/internal/docker"
	"github.com/terminally-online/querygen/internal/model"
	"github.com/terminally-online/querygen/internal/validate"
)

var useDocker bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check queries against a Postgres database",
	Long: `Prepare every query on a Postgres server to check that its SQL parses and
that the tables and columns it names exist. Nothing is executed.

With --docker the queries are prepared on a temporary Postgres container with
the schema file applied, so no database needs to be running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := newPrinter(cmd)

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

		if !useDocker {
			dbURL, err := cfg.GetDatabaseURL(&flags)
			if err != nil {
				return err
			}
			return checkQueries(ctx, out, dbURL, roots)
		}

		schemaFile := cfg.GetSchema(&flags)
		if schemaFile == "" {
			return fmt.Errorf("schema is required with --docker (set in config or pass --schema flag)")
		}

		dockerCfg := docker.DefaultPostgresConfig()
		dockerCfg.Version = cfg.GetPostgresVersion(&flags)

		out.Info("Starting Postgres %s container...", dockerCfg.Version)
		return docker.WithPostgres(ctx, dockerCfg, []string{schemaFile}, func(c *docker.Container) error {
			defer out.Info("Stopping container...")
			return checkQueries(ctx, out, c.ConnectionString(), roots)
		})
	},
}

func init() {
	validateCmd.Flags().StringVar(&flags.URL, "url", "", "database connection URL")
	validateCmd.Flags().StringVar(&flags.Schema, "schema", "", "schema file applied to the --docker container")
	validateCmd.Flags().StringVar(&flags.PostgresVersion, "postgres-version", "", "postgres version for --docker (default: 16)")
	validateCmd.Flags().BoolVar(&useDocker, "docker", false, "validate against a temporary Postgres container")
}

func checkQueries(ctx context.Context, out *printer, dbURL string, roots []*model.RootModel) error {
	conn, err := validate.Connect(ctx, dbURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	checker := validate.NewChecker(conn)
	total, failed := 0, 0
	for _, root := range roots {
		results, err := checker.Check(ctx, root)
		if err != nil {
			return err
		}
		reportResults(out, root, results)
		total += len(results)
		failed += validate.Failed(results)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed validation", failed, total)
	}
	out.Success("All %d queries are valid.", total)
	return nil
}

func reportResults(out *printer, root *model.RootModel, results []validate.Result) {
	out.Info("%s:", root.SourceFileName)
	for _, r := range results {
		switch r.Status {
		case validate.StatusValid:
			out.Success("  ✓ %s", r.Query)
			out.Detail("    %d parameter(s), %d column(s)", r.Params, r.Columns)
		case validate.StatusSkipped:
			out.Skip("  ○ %s (template)", r.Query)
		case validate.StatusInvalid:
			out.Fail("  ✗ %s: %s", r.Query, validate.FormatError(r.Err))
		}
		if r.Warning != "" {
			out.Warn("%s: %s", r.Query, r.Warning)
		}
	}
}
