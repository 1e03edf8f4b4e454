package main

import (
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gpedic/go-que/internal/targets"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available targets",
		Long:  "Display the targets that run steps can dispatch to, with their methods.",
		Run: func(cmd *cobra.Command, _ []string) {
			names := make([]string, 0, len(a.targets))
			for name := range a.targets {
				names = append(names, name)
			}

			sort.Strings(names)

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Target", "Methods"})
			table.SetAutoWrapText(false)
			table.SetBorder(false)

			for _, name := range names {
				table.Append([]string{name, strings.Join(targets.Methods(a.targets[name]), ", ")})
			}

			table.Render()
		},
	}
}
