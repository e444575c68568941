package cli

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"datasense-quiz-client/internal/config"
	"datasense-quiz-client/internal/infra/api"
)

var (
	configPath string
	apiBase    string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "quiz-client",
		Short: "Terminal client for the DataSense quiz platform",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&apiBase, "api", os.Getenv("QUIZ_API_URL"), "override the API base URL")
	cmd.AddCommand(NewListCmd(&configPath, &apiBase))
	cmd.AddCommand(NewRegisterCmd(&configPath, &apiBase))
	cmd.AddCommand(NewTakeCmd(&configPath, &apiBase))
	return cmd
}

// loadConfig reads the config file if present and applies flag overrides.
// A missing file falls back to defaults so the CLI works out of the box.
func loadConfig(path, baseOverride string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	if baseOverride != "" {
		cfg.API.BaseURL = baseOverride
	}
	return cfg, nil
}

func newAPIClient(cfg config.Config) *api.Client {
	var httpClient *http.Client
	if cfg.API.Timeout != "" {
		httpClient = &http.Client{
			Timeout: config.Duration(cfg.API.Timeout, 30*time.Second),
		}
	}
	return api.NewClient(cfg.API.BaseURL, httpClient)
}
