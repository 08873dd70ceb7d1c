package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexigraph/lexigraph/pkg/retrieval"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the retrieval modes",
	Run: func(cmd *cobra.Command, args []string) {
		for _, info := range retrieval.ModeCatalog() {
			fmt.Printf("%-16s %s\n", info.Name, info.Description)
			fmt.Printf("%-16s stages: %s\n\n", "", strings.Join(info.Stages, " -> "))
		}
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
