package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/octobridge/octobridge/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set by the build via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "octobridge",
	Short:   "GitHub tool server with OAuth onboarding",
	Long:    `A server that exposes a curated GitHub tool catalogue over HTTP and MCP stdio, with an OAuth2 authorization-code flow for acquiring user tokens.`,
	Version: version,
}

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP server: the OAuth authorization flow plus the bearer-authenticated tool endpoints.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := config.Load(viper.GetViper())
		if err := cfg.ValidateHTTP(); err != nil {
			return err
		}
		return runHTTP(cfg, newLogger(cfg.LogLevel))
	},
}

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Start the stdio MCP server",
	Long:  `Start the MCP server on stdin/stdout, authenticating upstream calls with a personal access token from the environment.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := config.Load(viper.GetViper())
		if err := cfg.ValidateStdio(); err != nil {
			return err
		}
		return runStdio(cfg, newLogger(cfg.LogLevel))
	},
}

func init() {
	rootCmd.SetVersionTemplate("{{.Short}}\n{{.Version}}\n")

	rootCmd.PersistentFlags().String("client-id", "", "OAuth application client ID")
	rootCmd.PersistentFlags().String("client-secret", "", "OAuth application client secret")
	rootCmd.PersistentFlags().String("redirect-uri", "", "OAuth callback URL registered with the application")
	rootCmd.PersistentFlags().String("client-origin", "", "Origin the callback redirects back to")
	rootCmd.PersistentFlags().String("host", "", "GitHub hostname (empty for github.com)")
	rootCmd.PersistentFlags().String("listen-address", ":8080", "HTTP listen address")
	rootCmd.PersistentFlags().String("token", "", "Personal access token for the stdio surface")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	viper.SetEnvPrefix("octobridge")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(httpCmd)
	rootCmd.AddCommand(stdioCmd)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
