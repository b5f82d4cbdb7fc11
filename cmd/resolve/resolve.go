// Package resolve implements the `collector resolve` command: run the
// resolution chains for the given URLs once and write the item batch.
package resolve

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/collector/cmd/common"
	"github.com/jonesrussell/north-cloud/collector/internal/config"
	"github.com/jonesrussell/north-cloud/collector/internal/locator"
	"github.com/jonesrussell/north-cloud/collector/internal/pipeline"
)

// Command creates the resolve command.
func Command() *cobra.Command {
	var (
		output  string
		noRoute bool
	)

	cmd := &cobra.Command{
		Use:   "resolve URL [URL...]",
		Short: "Resolve summary URLs into article items",
		Long: `Resolve each URL through its route's link configuration and write
the finished articles as a JSON-lines batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return err
			}

			if output == "" {
				output = deps.Config.Watch.Output
			}

			table, err := config.CompileRoutes(deps.Config.Routes, deps.Config.Resolve.Locator)
			if err != nil {
				return err
			}

			groups, err := groupByRoute(table, args, deps.Config.Resolve.Locator, noRoute)
			if err != nil {
				return err
			}

			writer := pipeline.NewWriter(output, deps.Logger)
			for _, group := range groups {
				items, resolveErr := deps.ResolveGroup(cmd.Context(), group.locator, group.urls)
				if resolveErr != nil {
					return resolveErr
				}
				if len(items) == 0 {
					continue
				}

				path, writeErr := writer.WriteBatch(items)
				if writeErr != nil {
					return writeErr
				}
				if path != "" {
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "base path for the output JSON-lines file")
	cmd.Flags().BoolVar(&noRoute, "default-locator", false,
		"resolve unrouted URLs with the default locator instead of failing")
	return cmd
}

// urlGroup is a set of URLs sharing one locator configuration.
type urlGroup struct {
	locator locator.Config
	urls    []string
}

// groupByRoute buckets the URLs by their matching route, preserving URL
// order within each group. An unrouted URL is an error unless fallback
// resolution was requested.
func groupByRoute(
	table *config.RouteTable,
	urls []string,
	fallback locator.Config,
	allowUnrouted bool,
) ([]urlGroup, error) {
	const unroutedKey = ""

	order := make([]string, 0, len(urls))
	byRoute := make(map[string]*urlGroup)

	for _, url := range urls {
		name, loc, err := table.Resolve(url)
		if err != nil {
			if !errors.Is(err, config.ErrNoRoute) {
				return nil, err
			}
			if !allowUnrouted {
				return nil, err
			}
			name, loc = unroutedKey, fallback
		}

		group, ok := byRoute[name]
		if !ok {
			group = &urlGroup{locator: loc}
			byRoute[name] = group
			order = append(order, name)
		}
		group.urls = append(group.urls, url)
	}

	groups := make([]urlGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, *byRoute[name])
	}
	return groups, nil
}
