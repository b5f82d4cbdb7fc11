package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/jonesrussell/north-cloud/collector/internal/locator"
)

// ErrNoRoute is returned when no route pattern matches a URL.
var ErrNoRoute = errors.New("no route matches URL")

// Route maps URL patterns to a locator configuration. Patterns are
// regular expressions searched anywhere in the URL.
type Route struct {
	// Name identifies the route in logs and `routes list`.
	Name string `yaml:"name" mapstructure:"name"`

	// Patterns are evaluated in order; the first match anywhere in the
	// list wins.
	Patterns []string `yaml:"patterns" mapstructure:"patterns"`

	// Locator overrides the link configuration for matching URLs. Zero
	// fields fall back to the default locator config.
	Locator locator.Config `yaml:"locator" mapstructure:"locator"`
}

// RouteTable resolves URLs to locator configurations.
type RouteTable struct {
	routes   []compiledRoute
	fallback locator.Config
}

type compiledRoute struct {
	name     string
	patterns []*regexp.Regexp
	locator  locator.Config
}

// CompileRoutes compiles the route patterns and merges each route's
// locator overrides over the fallback config. Invalid patterns and
// conflicting merged locator options fail here.
func CompileRoutes(routes []Route, fallback locator.Config) (*RouteTable, error) {
	table := &RouteTable{
		routes:   make([]compiledRoute, 0, len(routes)),
		fallback: fallback,
	}

	for i, route := range routes {
		if len(route.Patterns) == 0 {
			return nil, fmt.Errorf("route %d (%s): no patterns", i, route.Name)
		}

		compiled := compiledRoute{
			name:    route.Name,
			locator: mergeLocator(fallback, route.Locator),
		}

		if err := compiled.locator.Validate(); err != nil {
			return nil, fmt.Errorf("route %d (%s): %w", i, route.Name, err)
		}

		for _, pattern := range route.Patterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("route %d (%s): pattern %q: %w", i, route.Name, pattern, err)
			}
			compiled.patterns = append(compiled.patterns, re)
		}

		table.routes = append(table.routes, compiled)
	}

	return table, nil
}

// Resolve returns the route name and locator config for a URL. Routes
// are tried in order, patterns within a route in order; the first match
// wins. No match is ErrNoRoute.
func (t *RouteTable) Resolve(url string) (string, locator.Config, error) {
	for _, route := range t.routes {
		for _, re := range route.patterns {
			if re.MatchString(url) {
				return route.name, route.locator, nil
			}
		}
	}
	return "", locator.Config{}, fmt.Errorf("%s: %w", url, ErrNoRoute)
}

// Names returns the route names in evaluation order.
func (t *RouteTable) Names() []string {
	names := make([]string, 0, len(t.routes))
	for _, route := range t.routes {
		names = append(names, route.name)
	}
	return names
}

// PatternCount returns how many patterns the named route carries, for
// display.
func (t *RouteTable) PatternCount(name string) int {
	for _, route := range t.routes {
		if route.name == name {
			return len(route.patterns)
		}
	}
	return 0
}

// mergeLocator overlays the route's non-zero locator fields on the
// fallback config.
func mergeLocator(base, override locator.Config) locator.Config {
	if override.ReadMore != "" {
		base.ReadMore = override.ReadMore
	}
	if override.ReadMoreXPath != "" {
		base.ReadMoreXPath = override.ReadMoreXPath
	}
	if override.ReadNext != "" {
		base.ReadNext = override.ReadNext
	}
	if override.ReadNextContains != "" {
		base.ReadNextContains = override.ReadNextContains
	}
	if override.SourceContains != "" {
		base.SourceContains = override.SourceContains
	}
	if override.SourceParentContains != "" {
		base.SourceParentContains = override.SourceParentContains
	}
	return base
}
