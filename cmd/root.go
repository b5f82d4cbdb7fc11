// Package cmd implements the command-line interface for the collector.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/collector/cmd/common"
	cmdfeeds "github.com/jonesrussell/north-cloud/collector/cmd/feeds"
	cmdresolve "github.com/jonesrussell/north-cloud/collector/cmd/resolve"
	cmdroutes "github.com/jonesrussell/north-cloud/collector/cmd/routes"
	cmdwatch "github.com/jonesrussell/north-cloud/collector/cmd/watch"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "collector",
	Short: "Resolve summary pages into full articles",
	Long: `collector follows "read more" links, next-page chains, and source
links to turn summary pages into complete, deduplicated article items,
and generates feeds for pages that have none.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	// load .env early so the config layer sees its variables
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&common.CfgFile, "config", "",
		"config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&common.Debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "collector version %s\n", version)
		},
	})

	rootCmd.AddCommand(cmdresolve.Command())
	rootCmd.AddCommand(cmdwatch.Command())
	rootCmd.AddCommand(cmdfeeds.Command())
	rootCmd.AddCommand(cmdroutes.Command())
}
