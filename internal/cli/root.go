package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"pickupwatch/pkg/config"
	"pickupwatch/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every command
type options struct {
	configPath string
	envFile    string
	country    string
	models     string
	zip        string
}

// NewRootCommand builds the pickupwatch command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "pickupwatch",
		Short: "Watch Apple Store pickup availability",
		Long: `pickupwatch solves the storefront verification challenge, queries
in-store pickup availability for the selected models near a postal code,
and pushes the stores that have stock to Telegram or WeChat Work.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Configuration file (yaml or json)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Environment file loaded before the configuration, missing is fine")
	flags.StringVar(&opts.country, "country", "", "Country name or index, overrides selection.country")
	flags.StringVar(&opts.models, "models", "", `Space separated model selectors, e.g. "1 2"`)
	flags.StringVar(&opts.zip, "zip", "", "Postal code or zip selector")

	root.AddCommand(
		newCheckCommand(opts),
		newWatchCommand(opts),
		newSolveCommand(),
		newNotifyTestCommand(opts),
	)
	return root
}

// Execute runs the root command against os.Args
func Execute() error {
	err := NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	_ = logger.Sync()
	return err
}

// loadConfig reads, validates and applies flag overrides, then initializes logging
func (o *options) loadConfig() (*config.Config, error) {
	if err := loadEnvFile(o.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if o.country != "" {
		cfg.Selection.Country = o.country
	}
	if o.models != "" {
		cfg.Selection.Models = o.models
	}
	if o.zip != "" {
		cfg.Selection.Zip = o.zip
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}

	if err := logger.InitLogger(logger.Options{
		Development: cfg.App.IsDevelopment(),
		Level:       cfg.App.LogLevel,
		File:        cfg.App.LogFile,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// loadEnvFile exports variables from path without overriding the environment
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
