package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagColumn string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch an ephemeris and print a summary or one column",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&flagColumn, "column", "", "print this column's values instead of a summary")
}

func runFetch(cmd *cobra.Command, args []string) error {
	table, err := fetchTable()
	if err != nil {
		return err
	}

	if flagColumn != "" {
		values, err := table.ValuesFor(flagColumn)
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Println(v)
		}
		return nil
	}

	fmt.Printf("%d rows, %d columns\n", table.Len(), len(table.ColumnTitles()))
	for _, title := range table.ColumnTitles() {
		fmt.Printf("  %s\n", title)
	}
	return nil
}
