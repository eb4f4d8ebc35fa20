package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quiverhttp/quiver/pkg/collection"
	appconfig "github.com/quiverhttp/quiver/pkg/config"
	"github.com/quiverhttp/quiver/pkg/document"
	"github.com/quiverhttp/quiver/pkg/environment"
	"github.com/quiverhttp/quiver/pkg/history"
	"github.com/quiverhttp/quiver/pkg/output"
)

// app bundles the loaded configuration and the document stores every
// command works with.
type app struct {
	cfg          *appconfig.Config
	collections  *collection.Store
	environments *environment.Store
	history      *history.Store
}

func newApp() (*app, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return &app{
		cfg:          cfg,
		collections:  collection.NewStore(document.NewStore(cfg.CollectionsPath())),
		environments: environment.NewStore(document.NewStore(cfg.EnvironmentsPath())),
		history:      history.NewStore(cfg.HistoryPath()),
	}, nil
}

// outputFormat resolves the effective output format: the --output flag when
// given, the configured default otherwise.
func (a *app) outputFormat(cmd *cobra.Command) (output.Format, error) {
	if flag, _ := cmd.Flags().GetString("output"); flag != "" {
		return output.ParseFormat(flag)
	}
	return output.ParseFormat(a.cfg.OutputFormat)
}

// activeEnvironment returns the active environment, honoring an explicit
// --env override by name.
func (a *app) activeEnvironment(cmd *cobra.Command) (*environment.Environment, error) {
	if name, _ := cmd.Flags().GetString("env"); name != "" {
		return a.environments.ByName(name)
	}
	return a.environments.Active()
}
