// Package watch implements the `collector watch` command: the long-lived
// loop that polls feeds, regenerates synthetic feeds, and resolves new
// entries into item batches.
package watch

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/collector/cmd/common"
	"github.com/jonesrussell/north-cloud/collector/internal/config"
	"github.com/jonesrussell/north-cloud/collector/internal/feed"
	"github.com/jonesrussell/north-cloud/collector/internal/feedgen"
	"github.com/jonesrussell/north-cloud/collector/internal/locator"
	"github.com/jonesrussell/north-cloud/collector/internal/logger"
	"github.com/jonesrussell/north-cloud/collector/internal/pipeline"
)

// Command creates the watch command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch feeds and resolve new entries continuously",
		Long: `Poll the configured feeds on a schedule. Each cycle regenerates the
synthetic feeds, collects new entries, routes them through the route
table, resolves them, and writes the surviving items as a JSON-lines
batch. The loop runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, deps)
		},
	}
}

// run wires the watch loop from the configuration and blocks until the
// context is cancelled.
func run(ctx context.Context, deps *common.Deps) error {
	cfg := deps.Config

	store, err := feed.OpenStore(cfg.Watch.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	routeTable, err := config.CompileRoutes(cfg.Routes, cfg.Resolve.Locator)
	if err != nil {
		return err
	}

	feedStore := pipeline.NewFeedStore(cfg.Watch.FeedDir, deps.Logger)
	if err = feedStore.Init(); err != nil {
		return err
	}

	writer := pipeline.NewWriter(cfg.Watch.Output, deps.Logger)
	generator := feedgen.NewGenerator(deps.Fetcher, deps.Logger)
	poller := feed.NewPoller(feed.NewHTTPFetcher(http.DefaultClient), store, deps.Logger)

	dispatcher := &dispatcher{
		deps:   deps,
		routes: routeTable,
		writer: writer,
		log:    deps.Logger.WithComponent("watch"),
	}

	var refresh func(ctx context.Context)
	if len(cfg.Feeds) > 0 {
		refresh = func(ctx context.Context) {
			feedStore.StoreAll(generator.GenerateAll(ctx, cfg.Feeds))
		}
	}

	watcher := feed.NewWatcher(poller, cfg.Watch.FeedURLs, dispatcher.dispatch, refresh, deps.Logger)

	if cfg.Watch.Cron != "" {
		return watcher.RunCron(ctx, cfg.Watch.Cron)
	}
	return watcher.Run(ctx, cfg.Watch.Interval)
}

// dispatcher routes new entry URLs, resolves each group, and writes the
// resulting batch. Everything here is per-cycle and must never stop the
// loop, so failures are logged and dropped.
type dispatcher struct {
	deps   *common.Deps
	routes *config.RouteTable
	writer *pipeline.Writer
	log    logger.Interface
}

func (d *dispatcher) dispatch(ctx context.Context, urls []string) {
	groups := d.group(urls)

	for _, group := range groups {
		items, err := d.deps.ResolveGroup(ctx, group.locator, group.urls)
		if err != nil {
			d.log.Error("resolution failed", "route", group.name, "error", err)
			continue
		}
		if len(items) == 0 {
			continue
		}

		path, err := d.writer.WriteBatch(items)
		if err != nil {
			d.log.Error("batch write failed", "route", group.name, "error", err)
			continue
		}
		if path != "" {
			d.log.Info("batch written", "route", group.name, "path", path, "items", len(items))
		}
	}
}

// routeGroup is one route's share of a cycle's new URLs.
type routeGroup struct {
	name    string
	locator locator.Config
	urls    []string
}

// group buckets URLs by route, keeping route and URL order. Unrouted
// URLs are logged and skipped; a feed may legitimately carry entries the
// collector has no route for.
func (d *dispatcher) group(urls []string) []routeGroup {
	order := make([]string, 0, len(urls))
	byRoute := make(map[string]*routeGroup)

	for _, url := range urls {
		name, loc, err := d.routes.Resolve(url)
		if err != nil {
			d.log.Warn("no route for entry, skipping", "url", url)
			continue
		}

		group, ok := byRoute[name]
		if !ok {
			group = &routeGroup{name: name, locator: loc}
			byRoute[name] = group
			order = append(order, name)
		}
		group.urls = append(group.urls, url)
	}

	groups := make([]routeGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, *byRoute[name])
	}
	return groups
}
