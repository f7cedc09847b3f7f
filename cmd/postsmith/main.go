// Package main 是 postsmith 命令行入口，提供 serve、generate 与 version 子命令。
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "postsmith",
	Short: "Generate platform-ready social posts with research and engagement predictions",
	Long: `postsmith researches a topic, writes two variants per post, formats them for
the target platform and predicts engagement for each variant.

Run "postsmith serve" for the web form or "postsmith generate" to write a CSV
content schedule directly.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
