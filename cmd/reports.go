package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/KaramelBytes/retailboard/internal/report"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List available reports with their dataset and required fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDATASET\tREQUIRES\tTITLE")
		for _, d := range report.Definitions() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Name, d.Dataset, strings.Join(d.Requires, ","), d.Title)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
}
