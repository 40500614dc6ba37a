package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/gofhir/phenomapper"
	"github.com/gofhir/phenomapper/loader"
	"github.com/gofhir/phenomapper/model"
	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/date"
	"github.com/gofhir/phenomapper/stream"
	"github.com/gofhir/phenomapper/worker"
)

func validateCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema>",
		Short: "Validate a dataset against a data model schema",
		Long: `Validate a dataset against a data model schema.

The schema is a YAML data model, or a CSV, TSV or Excel table with one field
per row. Rows come from --data (CSV, TSV or .xlsx) or from a SQL query
(--sql-driver, --dsn, --query).

Examples:
  phenomapper validate model.yaml --data cohort.csv
  phenomapper validate fields.csv --data cohort.tsv --compliance strict
  phenomapper validate fields.xlsx --data cohort.xlsx --sheet Baseline
  phenomapper validate model.yaml --sql-driver postgres \
      --dsn "postgres://localhost/registry?sslmode=disable" \
      --query "SELECT * FROM participants" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, err := cmd.Flags().GetStringToString("column")
			if err != nil {
				return err
			}
			return runValidate(cmd.Context(), cfg, args[0], columns)
		},
	}

	f := cmd.Flags()
	f.String("data", "", "CSV, TSV or Excel data file")
	f.String("sheet", "", "worksheet of an Excel data file (default: first sheet)")
	f.String("sql-driver", "", "database/sql driver name, e.g. postgres")
	f.String("dsn", "", "database connection string")
	f.String("query", "", "query returning the dataset rows")
	f.String("compliance", "lenient", "compliance level: lenient, strict")
	f.String("date-order", "day", "reading of ambiguous dates: day, month")
	f.Int("workers", 0, "number of validation workers (0 = number of CPUs)")
	f.Int("max-issues", 0, "maximum number of issues to report (0 = unlimited)")
	f.String("format", "text", "report format: text, json")
	f.Bool("quiet", false, "print only errors")
	f.Bool("stream", false, "validate --data row by row without loading it into memory")
	f.String("model-name", "", "data model name for tabular schemas (default: file name)")
	f.Bool("parse-value-sets", true, "parse the data type column of tabular schemas into value sets")
	f.Bool("parse-ordinals", false, "split leading section numbers off field names")
	f.Bool("remove-line-breaks", true, "replace line breaks in schema text by spaces")
	f.StringToString("column", nil, "column mapping override, e.g. --column age_column=AGE")
	return cmd
}

func runValidate(ctx context.Context, cfg *config, schemaPath string, columns map[string]string) error {
	v := cfg.v
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	level, err := compliance.Parse(v.GetString("compliance"))
	if err != nil {
		return err
	}
	order, err := date.ParseOrder(v.GetString("date-order"))
	if err != nil {
		return err
	}
	format := strings.ToLower(v.GetString("format"))
	if format != formatText && format != formatJSON {
		return fmt.Errorf("unknown report format %q", format)
	}

	reg, err := cfg.registry()
	if err != nil {
		return err
	}

	name := v.GetString("model-name")
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(schemaPath), filepath.Ext(schemaPath))
	}
	schema, err := loader.OpenSchema(schemaPath, loader.SchemaOptions{
		Name:             name,
		Resources:        reg.Systems(),
		ParseValueSets:   v.GetBool("parse-value-sets"),
		Level:            level,
		RemoveLineBreaks: v.GetBool("remove-line-breaks"),
		ParseOrdinals:    v.GetBool("parse-ordinals"),
	})
	if err != nil {
		return err
	}

	mapping := schema.ColumnMapping()
	for key, col := range columns {
		if !strings.HasSuffix(key, model.ColumnSuffix) {
			key += model.ColumnSuffix
		}
		mapping[key] = col
	}

	opts := []phenomapper.Option{
		phenomapper.WithCompliance(level),
		phenomapper.WithDateOrder(order),
		phenomapper.WithWorkerCount(v.GetInt("workers")),
		phenomapper.WithMaxIssues(v.GetInt("max-issues")),
		phenomapper.WithTerminology(reg),
	}
	validator, err := phenomapper.New(schema.Model, opts...)
	if err != nil {
		return err
	}

	if v.GetBool("stream") {
		return runStream(ctx, validator, v.GetString("data"), tableOptions(cfg), mapping, format, v.GetBool("quiet"))
	}

	table, source, err := readData(ctx, cfg)
	if err != nil {
		return err
	}

	res, runErr := validator.ValidateTable(ctx, table, mapping)
	if res == nil {
		return runErr
	}

	rep := report{
		Source:  source,
		Schema:  schemaPath,
		Result:  res,
		Metrics: validator.Metrics().Snapshot(),
	}
	if runErr != nil {
		rep.Error = runErr.Error()
	}
	if err := rep.write(os.Stdout, format, v.GetBool("quiet")); err != nil {
		return err
	}
	if runErr != nil || !res.Valid {
		return errInvalid
	}
	return nil
}

func tableOptions(cfg *config) []loader.TableOption {
	if sheet := cfg.v.GetString("sheet"); sheet != "" {
		return []loader.TableOption{loader.WithSheet(sheet)}
	}
	return nil
}

// readData reads the dataset from the data file or the SQL source and
// returns it along with a description of where it came from.
func readData(ctx context.Context, cfg *config) (model.Table, string, error) {
	v := cfg.v
	path := v.GetString("data")
	driver := v.GetString("sql-driver")

	switch {
	case path != "" && driver != "":
		return model.Table{}, "", fmt.Errorf("--data and --sql-driver are mutually exclusive")
	case path != "":
		table, err := loader.ReadTableFile(path, tableOptions(cfg)...)
		return table, path, err
	case driver != "":
		query := v.GetString("query")
		if query == "" {
			return model.Table{}, "", fmt.Errorf("--query is required with --sql-driver")
		}
		src, err := loader.OpenSQL(ctx, driver, v.GetString("dsn"))
		if err != nil {
			return model.Table{}, "", err
		}
		defer src.Close()
		table, err := src.Table(ctx, query)
		return table, driver + " query", err
	default:
		return model.Table{}, "", fmt.Errorf("no dataset given: use --data or --sql-driver")
	}
}

func runStream(ctx context.Context, validator *phenomapper.Validator, path string, tableOpts []loader.TableOption, mapping map[string]string, format string, quiet bool) error {
	if path == "" {
		return fmt.Errorf("--stream requires --data")
	}
	rows, closer, err := loader.OpenTableFile(path, tableOpts...)
	if err != nil {
		return err
	}
	defer closer.Close()

	results, err := validator.ValidateStream(ctx, rows.Header(), rows, mapping)
	if err != nil {
		return err
	}

	if format == formatText {
		// Print issues as rows complete; the summary follows.
		tee := make(chan *worker.JobResult)
		go func() {
			defer close(tee)
			for r := range results {
				if r.Instance != nil {
					for _, iss := range r.Instance.Issues() {
						if quiet && !iss.IsError() {
							continue
						}
						fmt.Fprintf(os.Stdout, "  %s [%s] %s%s\n", severityLabel(iss.Severity), iss.Code, iss.Diagnostics, location(iss))
					}
				}
				tee <- r
			}
		}()
		results = tee
	}

	summary := stream.Aggregate(results)
	rep := streamReport{Source: path, Summary: summary, Metrics: validator.Metrics().Snapshot()}
	if err := rep.write(os.Stdout, format); err != nil {
		return err
	}
	if summary.HasErrors() {
		return errInvalid
	}
	return nil
}
