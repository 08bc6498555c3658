package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stackgen-cli/batectify/internal/logger"
)

var (
	version   = "1.0.0"
	colorMode string
	logLevel  string
	logJSON   bool
)

var rootCmd = &cobra.Command{
	Use:   "batectify",
	Short: "Convert Docker Compose files to batect configuration",
	Long: color.New(color.FgCyan).Sprint(`
batectify - Docker Compose to batect converter

`) + `Translate the services of a Docker Compose file into batect containers.
Anything batect cannot express is dropped and reported, never silently lost.

` + color.New(color.FgYellow).Sprint(`Read-only analysis only. No Docker commands executed.
`),
	Version:      version,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Color output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		switch colorMode {
		case "never":
			color.NoColor = true
		case "always":
			color.NoColor = false
		}

		logger.Init(&logger.Config{
			Level:  logger.Level(logLevel),
			Output: os.Stderr,
			JSON:   logJSON,
		})
	}
}
