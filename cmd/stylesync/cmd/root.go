package cmd

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qurvii/stylesync/internal/api"
	"github.com/qurvii/stylesync/internal/config"
	"github.com/qurvii/stylesync/internal/session"
)

var (
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "stylesync",
	Short: "StyleSync Operations Terminal",
	Long: color.New(color.FgCyan, color.Bold).Sprint(`
  ____  _         _      ____
 / ___|| |_ _   _| | ___/ ___| _   _ _ __   ___
 \___ \| __| | | | |/ _ \___ \| | | | '_ \ / __|
  ___) | |_| |_| | |  __/___) | |_| | | | | (__
 |____/ \__|\__, |_|\___|____/ \__, |_| |_|\___|
            |___/              |___/
`) + `
StyleSync Operations Terminal - Multi-channel product catalog toolkit

Normalize marketplace feed exports, push listings to the catalog API,
and browse products across AJIO, Tata CLiQ, Shopify, Nykaa and Myntra.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv()
		if verbose {
			if l, err := zap.NewDevelopment(); err == nil {
				logger = l
			}
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Trace API requests")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(configCmd)
}

// newClient wires config, session store and API client together for a
// command run.
func newClient() (*api.Client, *session.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		color.Yellow("  Warning: Could not load config, using defaults")
		cfg = config.DefaultConfig()
	}

	store, err := session.NewStore("")
	if err != nil {
		return nil, nil, nil, err
	}
	if err := store.Load(); err != nil {
		return nil, nil, nil, err
	}

	client := api.NewClient(
		cfg.API.BaseURL,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second,
		store,
		api.WithLogger(logger),
	)
	return client, store, cfg, nil
}
