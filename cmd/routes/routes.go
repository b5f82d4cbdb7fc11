// Package routes implements the `collector routes` commands for
// inspecting the route table.
package routes

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/collector/cmd/common"
	"github.com/jonesrussell/north-cloud/collector/internal/config"
)

// Command creates the routes command group.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Inspect the URL route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCommand(), newResolveCommand())
	return cmd
}

// newListCommand creates `routes list`, rendering the configured routes
// as a table.
func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return err
			}

			if len(deps.Config.Routes) == 0 {
				deps.Logger.Info("no routes configured")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "Name", "Patterns", "Read More", "Source Match"})

			for i, route := range deps.Config.Routes {
				t.AppendRow(table.Row{
					i + 1,
					route.Name,
					len(route.Patterns),
					firstNonEmpty(route.Locator.ReadMore, deps.Config.Resolve.Locator.ReadMore),
					sourceMatch(route),
				})
			}

			t.Render()
			return nil
		},
	}
}

// newResolveCommand creates `routes resolve URL`, printing which route a
// URL would take.
func newResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve URL",
		Short: "Show which route a URL matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return err
			}

			routeTable, err := config.CompileRoutes(deps.Config.Routes, deps.Config.Resolve.Locator)
			if err != nil {
				return err
			}

			name, _, err := routeTable.Resolve(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}

// sourceMatch describes a route's source-link matching for display.
func sourceMatch(route config.Route) string {
	switch {
	case route.Locator.SourceContains != "":
		return "contains: " + route.Locator.SourceContains
	case route.Locator.SourceParentContains != "":
		return "parent: " + route.Locator.SourceParentContains
	default:
		return "-"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
