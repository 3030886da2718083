package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/careermatch/internal/board"
)

var boardSort string

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "List the public job board",
	Long:  "List the public job board, newest first or by popularity. Works without logging in.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		order, err := board.ParseSortOrder(boardSort)
		if err != nil {
			return err
		}
		client := current.client.WithTokens(optionalTokens{sessions: current.sessions})
		items, err := client.JobBoard(cmd.Context(), order.String())
		if err != nil {
			return err
		}
		board.Sort(items, order)
		return current.printer.Board(items)
	},
}

func init() {
	boardCmd.Flags().StringVar(&boardSort, "sort", string(board.Latest), "Sort order: latest or popular")
	rootCmd.AddCommand(boardCmd)
}
