package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gvp-client/cmd/gvp/globals"
	"gvp-client/cmd/gvp/utils"
	"gvp-client/internal/components/chrono"
	"gvp-client/internal/components/telemetry"
	"gvp-client/internal/configutil"
	"gvp-client/internal/restyutil"
	"gvp-client/pkg/gvp"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const configName = "gvp.json5"

type Config struct {
	BaseUrl          string           `json:"base_url"`
	EventsUrl        string           `json:"events_url"`
	Proxy            string           `json:"proxy"`
	UserAgent        string           `json:"user_agent"`
	TimeoutSeconds   int              `json:"timeout_seconds"`
	RateLimit        float64          `json:"rate_limit"`
	CloudflareBypass bool             `json:"cloudflare_bypass"`
	Telemetry        telemetry.Config `json:"telemetry"`
}

var (
	configPath *string
	verbose    *bool
	outputJson *bool
	outputDump *bool
	recordDir  *string
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "", "Path to a config file, gvp.json5 is searched for upwards from the working directory by default.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log requests and other debug information.")
	outputJson = rootCmd.PersistentFlags().Bool("json", false, "Print results as json.")
	outputDump = rootCmd.PersistentFlags().Bool("dump", false, "Print results as go literals.")
	recordDir = rootCmd.PersistentFlags().String("record", "", "Write every http exchange into this directory, it is cleared first.")
	rootCmd.MarkFlagsMutuallyExclusive("json", "dump")
}

var rootCmd = &cobra.Command{
	Use:   "gvp",
	Short: "gvp is a CLI for the web service of Gymnázium na Vítězné pláni.",

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)
		if builtin(cmd) {
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		otel, err := telemetry.SetupOtel(cmd.Context(), "gvp-cli", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup otel: %w", err)
		}

		clock, err := chrono.NewStandardImpl()
		if err != nil {
			return fmt.Errorf("load timezone: %w", err)
		}
		var record restyutil.Output
		if *recordDir != "" {
			output, err := restyutil.NewFilesystemOutput(*recordDir)
			if err != nil {
				return fmt.Errorf("prepare record directory: %w", err)
			}
			record = output
		}

		client, err := gvp.NewClient(gvp.Options{
			BaseUrl:          cfg.BaseUrl,
			EventsUrl:        cfg.EventsUrl,
			Timeout:          time.Duration(cfg.TimeoutSeconds) * time.Second,
			Proxy:            cfg.Proxy,
			UserAgent:        cfg.UserAgent,
			RateLimit:        cfg.RateLimit,
			CloudflareBypass: cfg.CloudflareBypass,
			Record:           record,
		}, clock, telemetry.SlogAPI{})
		if err != nil {
			return err
		}

		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
			Client: client,
			Otel:   otel,
		}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if builtin(cmd) {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		err := globals.Get(cmd.Context()).Otel.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

// builtin reports whether cmd is one of cobra's own commands, which work
// without a config or a client.
func builtin(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

// loadConfig reads the config file, then applies .env and the environment on
// top of it. A missing config file is not an error.
func loadConfig() (Config, error) {
	var cfg Config
	var err error
	if *configPath != "" {
		cfg, err = configutil.ReadConfig[Config](*configPath)
	} else {
		cfg, err = configutil.ReadRecursively[Config](configName)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	if err != nil && *configPath != "" {
		return Config{}, err
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if value, ok := os.LookupEnv("GVP_BASE_URL"); ok {
		cfg.BaseUrl = value
	}
	if value, ok := os.LookupEnv("GVP_EVENTS_URL"); ok {
		cfg.EventsUrl = value
	}
	if value, ok := os.LookupEnv("GVP_PROXY"); ok {
		cfg.Proxy = value
	}

	return cfg, nil
}

func outputMode() utils.OutputMode {
	switch {
	case *outputJson:
		return utils.OUTPUT_JSON
	case *outputDump:
		return utils.OUTPUT_DUMP
	}
	return utils.OUTPUT_TABLE
}

func client(cmd *cobra.Command) *gvp.Client {
	return globals.Get(cmd.Context()).Client
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
