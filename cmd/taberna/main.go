// Package main is the entry point for the taberna CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Hector-302/projecto-taberna/internal/config"
	"github.com/Hector-302/projecto-taberna/internal/session"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Local deployments keep backend credentials in a .env next to the
	// binary; absence is fine.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taberna",
		Short:         "A roleplay chat set in the tavern El Jabalí Gris",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), serveCmd(), playCmd(), configCmd(), saveCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("taberna %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Configuration OK (store: %s, model: %s)\n", cfg.Session.Store, cfg.LLM.Model)
			return nil
		},
	})
	return cmd
}

func saveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save file management",
	}
	wipe := &cobra.Command{
		Use:   "wipe",
		Short: "Delete the save file (start a fresh game)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := session.WipeFile(cfg.Session.SavePath); err != nil {
				return err
			}
			fmt.Printf("Save file removed: %s\n", cfg.Session.SavePath)
			return nil
		},
	}
	wipe.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.AddCommand(wipe)
	return cmd
}

// loadConfig reads the config named by the --config flag, or the first file
// found in the standard locations. With no file anywhere the compiled-in
// defaults apply, so the game runs out of the box.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = resolveConfigPath()
	}
	if path == "" {
		return config.Default(), nil
	}

	return config.Load(path)
}

// resolveConfigPath searches standard locations for a config file.
// Search order: $XDG_CONFIG_HOME/taberna/taberna.yaml → ./taberna.yaml
func resolveConfigPath() string {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "taberna", "taberna.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "taberna", "taberna.yaml"))
	}

	candidates = append(candidates, "taberna.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func newLogger(level string) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
}
