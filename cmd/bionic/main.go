package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/HiveWang/bionic/store"
)

var version = "dev"

var (
	cacheDir string
	verbose  bool
)

var log = newLogger()

var rootCmd = &cobra.Command{
	Use:   "bionic",
	Short: "Inspect and maintain bionic artifact caches",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	// Flags are parsed by the time this runs, so the logger picks up
	// --verbose here rather than at process start.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = newLogger()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bionic version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Operate on a local artifact cache",
}

var cacheLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List cached artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := store.NewFS(cacheDir)
		if err != nil {
			return err
		}
		entries, err := fs.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("cache is empty")
			return nil
		}
		heading := color.New(color.Bold)
		heading.Printf("%-24s %-16s %-20s %s\n",
			"ENTITY", "FINGERPRINT", "CREATED", "LOCATION")
		for _, entry := range entries {
			fmt.Printf("%-24s %-16s %-20s %s\n",
				entry.Meta.Entity,
				shortFingerprint(entry.Meta.Fingerprint),
				entry.Meta.CreatedAt.Format("2006-01-02 15:04:05"),
				entry.ArtifactURL)
		}
		return nil
	},
}

var cacheValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Verify cached artifacts against their recorded content hashes",
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := store.NewFS(cacheDir)
		if err != nil {
			return err
		}
		if err := store.ValidateAll(cmd.Context(), fs); err != nil {
			return err
		}
		color.Green("cache ok")
		return nil
	},
}

func shortFingerprint(fingerprint string) string {
	if len(fingerprint) > 12 {
		return fingerprint[:12]
	}
	return fingerprint
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir",
		".bionic-cache", "path to the local artifact cache")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v",
		false, "enable debug logging")
	cacheCmd.AddCommand(cacheLsCmd, cacheValidateCmd)
	rootCmd.AddCommand(cacheCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
