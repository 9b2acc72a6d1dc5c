package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesdash/internal/dashboard"
	"github.com/KaramelBytes/salesdash/internal/utils"
)

var (
	repFilters      filterFlags
	repTop          int
	repTopSecondary int
	repPreview      int
	repJSON         bool
	repOutputPath   string
)

var reportCmd = &cobra.Command{
	Use:   "report [files...]",
	Short: "Print the sales dashboard for the selected months, cities and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := repFilters.selection(cmd)
		if err != nil {
			return err
		}
		t, err := loadTable(cmd, args)
		if err != nil {
			return err
		}
		opt := dashboardOptions()
		if cmd.Flags().Changed("top") {
			opt.TopN = repTop
		}
		if cmd.Flags().Changed("top-secondary") {
			opt.SecondaryTopN = repTopSecondary
		}
		preview := cfg.PreviewRows
		if cmd.Flags().Changed("preview") {
			preview = repPreview
		}

		v := dashboard.Compute(t, sel, opt)
		var out []byte
		if repJSON {
			b, err := utils.PrettyJSON(v)
			if err != nil {
				return err
			}
			out = append(b, '\n')
		} else {
			out = []byte(v.Markdown(preview))
		}

		if repOutputPath != "" {
			if err := utils.SafeWriteFile(repOutputPath, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Report written to %s (%d rows)\n", repOutputPath, v.Summary.Rows)
		} else {
			fmt.Fprint(cmd.OutOrStdout(), string(out))
		}
		if v.Empty {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", v.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	repFilters.register(reportCmd)
	reportCmd.Flags().IntVar(&repTop, "top", 10, "number of products in the main ranking (overrides config)")
	reportCmd.Flags().IntVar(&repTopSecondary, "top-secondary", 5, "number of products in the short ranking (overrides config)")
	reportCmd.Flags().IntVar(&repPreview, "preview", 5, "filtered rows to preview (0 to omit; overrides config)")
	reportCmd.Flags().BoolVar(&repJSON, "json", false, "emit the dashboard as JSON")
	reportCmd.Flags().StringVarP(&repOutputPath, "output", "o", "", "optional path to write the report")
}
