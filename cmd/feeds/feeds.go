// Package feeds implements the `collector feeds` command: generate every
// configured synthetic feed once and store the files.
package feeds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/collector/cmd/common"
	"github.com/jonesrussell/north-cloud/collector/internal/feedgen"
	"github.com/jonesrussell/north-cloud/collector/internal/pipeline"
)

// Command creates the feeds command.
func Command() *cobra.Command {
	var feedDir string

	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Generate the configured synthetic feeds",
		Long: `Scrape each configured listing page and write its Atom or RSS feed
file, overwriting previous generations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return err
			}

			if len(deps.Config.Feeds) == 0 {
				deps.Logger.Info("no feeds configured")
				return nil
			}

			if feedDir == "" {
				feedDir = deps.Config.Watch.FeedDir
			}

			store := pipeline.NewFeedStore(feedDir, deps.Logger)
			if err = store.Init(); err != nil {
				return err
			}

			generator := feedgen.NewGenerator(deps.Fetcher, deps.Logger)
			items := generator.GenerateAll(cmd.Context(), deps.Config.Feeds)
			stored := store.StoreAll(items)

			if stored < len(deps.Config.Feeds) {
				return fmt.Errorf("generated %d of %d feeds", stored, len(deps.Config.Feeds))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&feedDir, "feed-dir", "", "directory for generated feed files")
	return cmd
}
