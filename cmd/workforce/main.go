package main

import (
	"os"

	"github.com/go-pkgz/lgr"
	"github.com/spf13/cobra"

	"workforce-mgmt/internal/config"
)

// app carries state shared by subcommands after the root pre-run.
type app struct {
	configPath string
	debug      bool
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "workforce",
		Short:         "workforce - task lifecycle and assignment service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.debug {
				cfg.Log.Debug = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			setupLog(cfg.Log.Debug)
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to YAML config (default $WORKFORCE_CONFIG)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newTaskCmd(a))
	return root
}

func setupLog(debug bool) {
	opts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if debug {
		opts = append(opts, lgr.Debug, lgr.CallerFile, lgr.CallerFunc)
	}
	lgr.Setup(opts...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}
