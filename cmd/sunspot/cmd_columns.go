package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Fetch an ephemeris and list its column titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := fetchTable()
		if err != nil {
			return err
		}
		for _, title := range table.ColumnTitles() {
			fmt.Println(title)
		}
		return nil
	},
}
