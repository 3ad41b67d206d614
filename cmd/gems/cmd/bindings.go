package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-gems/framework/app"
	"github.com/km-arc/go-gems/framework/container"
)

var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "List the application container's components",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApplication()
		defer a.Close()
		return printBindings(cmd.OutOrStdout(), a)
	},
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the registered HTTP routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApplication()
		defer a.Close()
		return printRoutes(cmd.OutOrStdout(), a)
	},
}

func init() {
	rootCmd.AddCommand(bindingsCmd)
	rootCmd.AddCommand(routesCmd)
}

func printBindings(out io.Writer, a *app.Application) error {
	keys := a.Bindings()
	sort.Strings(keys)

	table := tablewriter.NewWriter(out)
	table.Header("Key", "Adapter", "Resolved")
	for _, key := range keys {
		adapter := "Instance"
		if ad := a.Adapter(key); ad != nil {
			adapter = container.Describe(ad)
		}
		table.Append(key, adapter, fmt.Sprint(a.Resolved(key)))
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\nTotal components: %d\n", len(keys))
	return err
}

func printRoutes(out io.Writer, a *app.Application) error {
	table := tablewriter.NewWriter(out)
	table.Header("Method", "Pattern")
	for _, r := range a.Router().Routes() {
		table.Append(r.Method, r.Pattern)
	}
	return table.Render()
}
