package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesdash/internal/sales"
)

var (
	listMonths   bool
	listCities   bool
	listProducts bool
)

var listCmd = &cobra.Command{
	Use:   "list [files...]",
	Short: "List the months, cities or products present in the data",
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 0
		for _, b := range []bool{listMonths, listCities, listProducts} {
			if b {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("specify exactly one of --months, --cities or --products")
		}
		t, err := loadTable(cmd, args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch {
		case listMonths:
			for _, m := range t.Months {
				fmt.Fprintln(out, sales.MonthName(m))
			}
		case listCities:
			for _, c := range t.Cities {
				fmt.Fprintf(out, "%s\t%s\n", c, t.Colors[c])
			}
		default:
			for _, p := range t.Products {
				fmt.Fprintln(out, p)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listMonths, "months", false, "list months in calendar order")
	listCmd.Flags().BoolVar(&listCities, "cities", false, "list city labels with their chart colors")
	listCmd.Flags().BoolVar(&listProducts, "products", false, "list products")
}
