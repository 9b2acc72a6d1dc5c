package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesdash/internal/dashboard"
	"github.com/KaramelBytes/salesdash/internal/export"
)

var (
	expFilters    filterFlags
	expOutputPath string
)

var exportCmd = &cobra.Command{
	Use:   "export -o <file.csv|file.xlsx> [files...]",
	Short: "Write the filtered rows as CSV or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		if expOutputPath == "" {
			return fmt.Errorf("--output is required")
		}
		sel, err := expFilters.selection(cmd)
		if err != nil {
			return err
		}
		t, err := loadTable(cmd, args)
		if err != nil {
			return err
		}
		rows := dashboard.Filter(t, sel)
		if len(rows) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", dashboard.EmptyMessage)
		}
		if err := export.WriteFile(expOutputPath, rows); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d of %d rows to %s\n", len(rows), t.Len(), expOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	expFilters.register(exportCmd)
	exportCmd.Flags().StringVarP(&expOutputPath, "output", "o", "", "output path (.csv or .xlsx)")
}
