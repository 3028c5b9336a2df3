package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagTargetColumn string
	flagSourceColumn string
	flagSourceValue  string
)

var correspondCmd = &cobra.Command{
	Use:   "correspond",
	Short: "Fetch an ephemeris and look up a cross-column correspondence",
	Long: `Finds the first row where the source column holds the given value and
prints the target column's value at that row.`,
	RunE: runCorrespond,
}

func init() {
	correspondCmd.Flags().StringVar(&flagTargetColumn, "target-column", "", "column to read the result from")
	correspondCmd.Flags().StringVar(&flagSourceColumn, "source-column", "", "column to search in")
	correspondCmd.Flags().StringVar(&flagSourceValue, "value", "", "value to search for")
	correspondCmd.MarkFlagRequired("target-column")
	correspondCmd.MarkFlagRequired("source-column")
	correspondCmd.MarkFlagRequired("value")
}

func runCorrespond(cmd *cobra.Command, args []string) error {
	table, err := fetchTable()
	if err != nil {
		return err
	}

	result, found, err := table.Correspond(flagTargetColumn, flagSourceColumn, flagSourceValue)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("value %q not found in column %q", flagSourceValue, flagSourceColumn)
	}
	fmt.Println(result)
	return nil
}
