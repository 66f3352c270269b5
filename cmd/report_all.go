package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/retailboard/internal/report"
	"github.com/KaramelBytes/retailboard/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	raOnly      []string
	raOutputDir string
	raFormat    string
	raQuiet     bool
)

var reportAllCmd = &cobra.Command{
	Use:   "report-all",
	Short: "Build every report (or a subset) concurrently and write one file per report",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := mustConfig()
		if err != nil {
			return err
		}
		format := strings.ToLower(strings.TrimSpace(raFormat))
		ext, err := extension(format, false)
		if err != nil {
			return err
		}
		var names []string
		for _, n := range raOnly {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		datasets, err := report.Needed(names)
		if err != nil {
			return err
		}
		inputs, err := loadDatasets(cmd.Context(), c.SourceOptions(), datasets)
		if err != nil {
			return err
		}

		start := time.Now()
		outcomes, err := report.BuildAll(inputs, names, c.Params(), c.Parallelism)
		if err != nil {
			return err
		}
		failed := 0
		for i, o := range outcomes {
			lg := runLog().WithFields(logrus.Fields{"report": o.Name, "elapsed": o.Elapsed.Round(time.Microsecond)})
			if o.Err != nil {
				failed++
				lg.WithError(o.Err).Error("report failed")
				if !raQuiet {
					fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] ✗ %s: %v\n", i+1, len(outcomes), o.Name, o.Err)
				}
				continue
			}
			out, err := render(o.Report, format)
			if err != nil {
				return err
			}
			path := filepath.Join(raOutputDir, utils.FileName(o.Name, ext))
			if err := utils.SafeWriteFile(path, out); err != nil {
				return err
			}
			lg.WithField("rows", o.Report.Len()).Debug("report written")
			if !raQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] ✓ %s (%d rows)\n", i+1, len(outcomes), o.Name, o.Report.Len())
			}
		}
		runLog().WithFields(logrus.Fields{
			"reports": len(outcomes),
			"failed":  failed,
			"elapsed": time.Since(start).Round(time.Millisecond),
		}).Info("batch finished")
		if failed > 0 {
			return fmt.Errorf("%d of %d reports failed", failed, len(outcomes))
		}
		if !raQuiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d reports to %s\n", len(outcomes), raOutputDir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportAllCmd)
	reportAllCmd.Flags().StringSliceVar(&raOnly, "only", nil, "comma-separated report names to build (default: all)")
	reportAllCmd.Flags().StringVarP(&raOutputDir, "output-dir", "o", "reports", "directory for the report files")
	reportAllCmd.Flags().StringVarP(&raFormat, "format", "f", "markdown", "output format: markdown | json")
	reportAllCmd.Flags().BoolVar(&raQuiet, "quiet", false, "suppress progress output")
}
