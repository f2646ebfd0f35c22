// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contentstruct/contentstruct/internal/config"
)

var (
	// Global flags
	rootDirFlag    string
	configPathFlag string
	jsonOutput     bool

	// Resolved values
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cstruct",
	Short: "Content structure indexer",
	Long: `cstruct indexes a markdown content tree into a relational structure
database plus a content-addressable blob store. Documents, their inline
items, and their embedded assets become queryable rows; asset payloads are
stored once per content hash, so repeated runs only record what changed.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that work without a project
		switch cmd.Name() {
		case "version", "completion", "help":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		dir := rootDirFlag
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to determine working directory: %w", err)
			}
			dir = wd
		}

		var err error
		cfg, err = config.Load(dir, configPathFlag)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDirFlag, "root", "r", "", "Project root directory (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Path to config file (default: <root>/structure.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}

func isJSONOutput() bool {
	return jsonOutput
}
