// Package common provides the shared dependency wiring for the collector
// subcommands: configuration loading, logger construction, and the
// resolver stack assembled per locator configuration.
package common

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/collector/internal/article"
	"github.com/jonesrussell/north-cloud/collector/internal/config"
	"github.com/jonesrussell/north-cloud/collector/internal/extract"
	"github.com/jonesrussell/north-cloud/collector/internal/fetch"
	"github.com/jonesrussell/north-cloud/collector/internal/locator"
	"github.com/jonesrussell/north-cloud/collector/internal/logger"
	"github.com/jonesrussell/north-cloud/collector/internal/resolve"
)

// Flag values bound by the root command.
var (
	// CfgFile is the --config flag value.
	CfgFile string

	// Debug is the --debug flag value; it forces the log level down.
	Debug bool
)

// Deps holds the dependencies every subcommand starts from.
type Deps struct {
	Config  *config.Config
	Logger  logger.Interface
	Fetcher *fetch.Client
}

// NewCommandDeps loads the configuration and builds the logger and the
// shared fetch transport.
func NewCommandDeps() (*Deps, error) {
	cfg, err := config.Load(CfgFile)
	if err != nil {
		return nil, err
	}

	if Debug {
		cfg.Logger.Level = logger.DebugLevel
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	fetcher, err := fetch.NewClient(cfg.Fetch, log)
	if err != nil {
		return nil, fmt.Errorf("build fetch client: %w", err)
	}

	return &Deps{Config: cfg, Logger: log, Fetcher: fetcher}, nil
}

// ResolveGroup builds a resolution engine for one locator configuration
// and resolves the URLs with it.
func (d *Deps) ResolveGroup(
	ctx context.Context,
	loc locator.Config,
	urls []string,
) ([]*article.Item, error) {
	linkLocator, err := locator.New(loc, d.Logger)
	if err != nil {
		return nil, fmt.Errorf("build locator: %w", err)
	}

	assembler := article.NewAssembler(extract.New(d.Logger), d.Logger)
	engine := resolve.NewEngine(d.Fetcher, assembler, linkLocator, d.Config.Resolve.Lang, d.Logger)

	return engine.ResolveAll(ctx, urls, d.Config.Resolve.Concurrency), nil
}
