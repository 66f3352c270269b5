package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/KaramelBytes/retailboard/internal/report"
	"github.com/KaramelBytes/retailboard/internal/source"
	"github.com/KaramelBytes/retailboard/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	reportFormat string
	reportOutput string
)

// reportEnvelope wraps a report document with the run that produced it.
type reportEnvelope struct {
	RunID  string          `json:"run_id"`
	Report report.Document `json:"report"`
}

var reportCmd = &cobra.Command{
	Use:   "report <name>",
	Short: "Build one report and print or save it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := mustConfig()
		if err != nil {
			return err
		}
		def, ok := report.Lookup(args[0])
		if !ok {
			return fmt.Errorf("%w %q (see 'retailboard reports')", report.ErrUnknownReport, args[0])
		}
		format := strings.ToLower(strings.TrimSpace(reportFormat))
		if _, err := extension(format, true); err != nil {
			return err
		}

		inputs, err := loadDatasets(cmd.Context(), c.SourceOptions(), []string{def.Dataset})
		if err != nil {
			return err
		}
		start := time.Now()
		rep, err := def.Build(inputs[def.Dataset], c.Params())
		if err != nil {
			return err
		}
		runLog().WithFields(logrus.Fields{
			"report":  rep.Name,
			"rows":    rep.Len(),
			"elapsed": time.Since(start).Round(time.Microsecond),
		}).Info("report built")

		out, err := render(rep, format)
		if err != nil {
			return err
		}
		if reportOutput == "" {
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))
			return nil
		}
		if err := utils.SafeWriteFile(reportOutput, out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%d rows) to %s\n", rep.Name, rep.Len(), reportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "markdown", "output format: markdown | json | series")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write to this file instead of stdout")
}

// extension validates a format and returns its file extension. series is only
// offered for single reports.
func extension(format string, allowSeries bool) (string, error) {
	switch format {
	case "markdown", "md":
		return "md", nil
	case "json":
		return "json", nil
	case "series":
		if allowSeries {
			return "json", nil
		}
	}
	if allowSeries {
		return "", fmt.Errorf("unsupported --format: %s (use markdown|json|series)", format)
	}
	return "", fmt.Errorf("unsupported --format: %s (use markdown|json)", format)
}

func render(rep *report.Report, format string) ([]byte, error) {
	switch format {
	case "json":
		return utils.PrettyJSON(reportEnvelope{RunID: runID, Report: rep.Document()})
	case "series":
		return utils.PrettyJSON(rep.Series())
	default:
		return []byte(rep.Markdown()), nil
	}
}

// loadDatasets opens the configured source and loads the given datasets.
func loadDatasets(ctx context.Context, opt source.Options, datasets []string) (map[string]*record.RecordSet, error) {
	l, err := source.Open(opt)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	lg := runLog().WithField("source", opt.Kind)
	lg.WithField("datasets", strings.Join(datasets, ",")).Debug("loading datasets")
	return source.LoadAll(ctx, l, datasets, lg)
}
