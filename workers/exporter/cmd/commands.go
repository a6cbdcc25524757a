package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"firds/shared/config"
)

// runOptions holds command-line overrides for a single run
type runOptions struct {
	envFiles   []string
	from       string
	to         string
	start      int
	rows       int
	fileType   string
	workspace  string
	skipUpload bool
}

func newRootCommand(opts *runOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "firds-exporter",
		Short: "Export FIRDS DLTINS instrument attributes to CSV",
		Long: `Export FIRDS DLTINS instrument attributes to CSV.

Fetches the ESMA FIRDS file index, downloads the first DLTINS archive in
the publication window, extracts the general attributes of every
instrument and uploads them as CSV to object storage.

Without a subcommand the exporter runs once, or serves Lambda
invocations when started inside AWS Lambda.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, opts, "")
		},
	}

	rootCmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "additional .env files to load")
	addRunFlags(rootCmd, opts)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one export and exit",
		Example: `  firds-exporter run --from 2021-01-17 --to 2021-01-19
  firds-exporter run --skip-upload --workspace ./out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, opts, "cli")
		},
	}
	addRunFlags(runCmd, opts)

	lambdaCmd := &cobra.Command{
		Use:   "lambda",
		Short: "Serve AWS Lambda invocations, one export per event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, opts, "lambda")
		},
	}

	rootCmd.AddCommand(runCmd, lambdaCmd)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVar(&opts.from, "from", config.DefaultSourceFrom, "first publication date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.to, "to", config.DefaultSourceTo, "last publication date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.start, "start", 0, "index result offset")
	cmd.Flags().IntVar(&opts.rows, "rows", 100, "index results per request")
	cmd.Flags().StringVar(&opts.fileType, "file-type", config.DefaultSourceFileType, "file type to locate in the index")
	cmd.Flags().StringVarP(&opts.workspace, "workspace", "w", ".", "directory for downloaded and generated artifacts")
	cmd.Flags().BoolVar(&opts.skipUpload, "skip-upload", false, "write the CSV locally without uploading it")
}

// flagOverrides turns the flags set on the command line into a config
// update. Flags left at their defaults do not override the environment.
func flagOverrides(cmd *cobra.Command, opts *runOptions, runtimeAdapter string) (func(*config.Config), error) {
	flags := cmd.Flags()

	var updates []func(*config.Config)

	if flags.Changed("from") {
		from, err := config.ParseDate(opts.from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from: %w", err)
		}
		updates = append(updates, func(c *config.Config) { c.Source.From = from })
	}
	if flags.Changed("to") {
		to, err := config.ParseDate(opts.to)
		if err != nil {
			return nil, fmt.Errorf("invalid --to: %w", err)
		}
		updates = append(updates, func(c *config.Config) { c.Source.To = to })
	}
	if flags.Changed("start") {
		updates = append(updates, func(c *config.Config) { c.Source.Start = opts.start })
	}
	if flags.Changed("rows") {
		updates = append(updates, func(c *config.Config) { c.Source.Rows = opts.rows })
	}
	if flags.Changed("file-type") {
		updates = append(updates, func(c *config.Config) { c.Source.FileType = opts.fileType })
	}
	if flags.Changed("workspace") {
		updates = append(updates, func(c *config.Config) { c.Workspace.Dir = opts.workspace })
	}
	if flags.Changed("skip-upload") && opts.skipUpload {
		updates = append(updates, func(c *config.Config) { c.Sink.Upload = false })
	}
	if runtimeAdapter != "" {
		updates = append(updates, func(c *config.Config) { c.Adapters.Runtime = runtimeAdapter })
	}

	return func(c *config.Config) {
		for _, update := range updates {
			update(c)
		}
	}, nil
}
