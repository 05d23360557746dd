package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/fwtable/internal/dataset"
	"github.com/oakwood-commons/fwtable/internal/filter"
	"github.com/oakwood-commons/fwtable/internal/limiter"
	"github.com/oakwood-commons/fwtable/internal/tablecfg"
	"github.com/oakwood-commons/fwtable/pkg/loader"
	"github.com/oakwood-commons/fwtable/pkg/logger"
	"github.com/oakwood-commons/fwtable/pkg/settings"
	"github.com/oakwood-commons/fwtable/pkg/table"
)

// renderOptions holds the flag values of one invocation.
type renderOptions struct {
	run     *settings.Run
	columns []string
	where   string
	debug   bool
	limits  limiter.Config
}

func addRenderFlags(fs *pflag.FlagSet, o *renderOptions) {
	fs.StringVarP(&o.run.ConfigPath, "config", "c", "", "path to a YAML table config file (columns: field, header, align, format, provider, locale, total)")
	fs.StringArrayVar(&o.columns, "column", nil, "column override FIELD[:header=TEXT,align=left|center|right,format=SPEC,provider=fmt|locale|humanize,locale=TAG,total] (repeatable)")
	fs.StringVarP(&o.where, "where", "w", "", "CEL expression selecting records, with the record bound to '_'. Example: '_.score > 10'")
	fs.IntVar(&o.limits.Limit, "limit", 0, "Limit total number of records displayed")
	fs.IntVar(&o.limits.Offset, "offset", 0, "Skip the first N records")
	fs.IntVar(&o.limits.Tail, "tail", 0, "Show the last N records (mutually exclusive with --limit; ignores --offset)")
	fs.BoolVar(&o.run.NoColor, "no-color", false, "disable header and separator styling")
}

func newRootCmd() *cobra.Command {
	o := &renderOptions{run: settings.NewCliParams()}

	cmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Render records as a fixed-width text table",
		Long: `Render a list of records from YAML, JSON, NDJSON or TOML as a fixed-width
text table. Columns follow the field order of the first record. Column headers,
alignment, number formatting and a totals row are configured with --config or
--column.`,
		Example: "\n  fwtable scores.yaml --column score:align=right,total\n" +
			"  fwtable sales.json -c table.yaml --where '_.region == \"north\"'\n" +
			"  cat files.ndjson | fwtable --column size:provider=humanize,format=bytes,total --tail 20\n",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if o.debug {
				o.run.MinLogLevel = -1
			}
			lgr := logger.Get(o.run.MinLogLevel).WithValues("command", cmd.Name())
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = logger.WithLogger(ctx, &lgr)
			cmd.SetContext(settings.IntoContext(ctx, o.run))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				o.run.Input = args[0]
			}
			return runRender(cmd.Context(), o, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	addRenderFlags(cmd.Flags(), o)
	cmd.PersistentFlags().Int8Var(&o.run.MinLogLevel, "log-level", 0, "minimum log level: -1 debug, 0 info, 1 warn, 2 error")
	cmd.PersistentFlags().BoolVar(&o.debug, "debug", false, "enable debug logging (same as --log-level -1)")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print " + settings.CliBinaryName + " version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return err
		},
	}
}

// cliVersionString builds the version line printed by the version command.
func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime)
}

func runRender(ctx context.Context, o *renderOptions, stdin io.Reader, stdout io.Writer) error {
	lgr := *logger.FromContext(ctx)

	if err := o.limits.Validate(); err != nil {
		return fmt.Errorf("record limiting error: %w", err)
	}

	columns, err := collectColumns(o)
	if err != nil {
		return err
	}

	records, err := readRecords(o.run.Input, stdin, lgr)
	if err != nil {
		return err
	}
	lgr.V(1).Info("loaded records", "input", o.run.Input, "count", len(records))

	schema, err := dataset.Infer(records)
	if err != nil {
		return fmt.Errorf("infer columns: %w", err)
	}

	builder := table.NewBuilder(schema)
	if err := tablecfg.Apply(builder, columns); err != nil {
		return err
	}
	cfg, err := builder.Build()
	if err != nil {
		return err
	}

	if o.where != "" {
		f, err := filter.New()
		if err != nil {
			return err
		}
		pred, err := f.Compile(o.where)
		if err != nil {
			return fmt.Errorf("--where: %w", err)
		}
		if records, err = pred.Apply(records); err != nil {
			return fmt.Errorf("--where: %w", err)
		}
		lgr.V(1).Info("filtered records", "expression", o.where, "count", len(records))
	}

	records = limiter.Apply(o.limits, records)

	t, err := table.Layout(records, cfg)
	if err != nil {
		return err
	}
	lgr.V(1).Info("rendered table", "rows", len(t.Rows), "width", t.Width(), "totals", t.HasTotals())

	_, err = fmt.Fprintln(stdout, styleTable(t, useColor(o.run.NoColor, stdout)))
	return err
}

// collectColumns returns the config file columns followed by --column flags.
func collectColumns(o *renderOptions) ([]tablecfg.Column, error) {
	var columns []tablecfg.Column
	if o.run.ConfigPath != "" {
		f, err := tablecfg.Load(o.run.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load table config: %w", err)
		}
		columns = append(columns, f.Columns...)
	}
	for _, spec := range o.columns {
		c, err := tablecfg.ParseColumnFlag(spec)
		if err != nil {
			return nil, fmt.Errorf("--column: %w", err)
		}
		columns = append(columns, c)
	}
	return columns, nil
}

func readRecords(input string, stdin io.Reader, lgr logr.Logger) ([]loader.Record, error) {
	var (
		data []byte
		err  error
	)
	if input == "" || input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	records, err := loader.LoadRecordsWithLogger(data, lgr)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return records, nil
}

var rootCmd = newRootCmd()

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
