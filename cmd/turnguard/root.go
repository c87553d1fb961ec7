package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "turnguard",
	Short: "Moderated multi-agent chat pipeline",
	Long: `turnguard orchestrates a pipeline of specialized agents that turn a
user's text/image message into a moderated, context-aware reply.

Every turn passes through input moderation, modality analysis, an action
decision gated by a local allow-list, and response synthesis, before the
user/assistant pair is committed atomically to the context store.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	Execute()
}
