// gearsync TUI - a terminal client for the GearSync service shop.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gearsync-tui/internal/api"
	"github.com/jeranaias/gearsync-tui/internal/auth"
	"github.com/jeranaias/gearsync-tui/internal/cache"
	"github.com/jeranaias/gearsync-tui/internal/cli"
	"github.com/jeranaias/gearsync-tui/internal/config"
	"github.com/jeranaias/gearsync-tui/internal/session"
	"github.com/jeranaias/gearsync-tui/internal/ui"
	"github.com/jeranaias/gearsync-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n%s", err, cli.Usage())
		os.Exit(2)
	}

	switch cmd {
	case cli.CmdVersion:
		cli.RunVersion()
		return
	case cli.CmdHelp:
		fmt.Print(cli.Usage())
		return
	}

	cfgPath := config.DefaultPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if args.Verbose {
		cfg.API.LogRequests = true
	}

	deps, err := wire(cfg, cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	switch cmd {
	case cli.CmdLogin:
		err = cli.RunLogin(ctx, deps, args)
	case cli.CmdLogout:
		err = cli.RunLogout(ctx, deps, args)
	case cli.CmdWhoami:
		err = cli.RunWhoami(ctx, deps, args)
	case cli.CmdStatus:
		err = cli.RunStatus(ctx, deps, args)
	case cli.CmdRefresh:
		err = cli.RunRefresh(ctx, deps, args)
	case cli.CmdConfig:
		err = cli.RunConfig(deps, args)
	default:
		err = runTUI(deps)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// wire builds the session store, API client, and auth provider shared by
// every command. The token source re-reads the store on every request so a
// concurrent logout takes effect immediately.
func wire(cfg config.Config, cfgPath string) (cli.Deps, error) {
	var storeOpts []session.Option
	if !cfg.Session.Seal {
		storeOpts = append(storeOpts, session.WithoutSealing())
	}
	store, err := session.NewFileStore(cfg.StateDir(), storeOpts...)
	if err != nil {
		return cli.Deps{}, fmt.Errorf("session store: %w", err)
	}

	tokens := func() string {
		s, err := store.Restore()
		if err != nil {
			return ""
		}
		return s.Token
	}

	client := api.New(cfg.API.BaseURL, tokens,
		api.WithMaxRetries(cfg.API.MaxRetries),
		api.WithRequestLogging(cfg.API.LogRequests),
	)

	provider, err := auth.NewProvider(store, client)
	if err != nil {
		return cli.Deps{}, fmt.Errorf("auth provider: %w", err)
	}

	return cli.Deps{
		Cfg:      cfg,
		CfgPath:  cfgPath,
		Client:   client,
		Provider: provider,
	}, nil
}

// runTUI validates any restored session, opens the offline cache, and hands
// control to bubbletea. A dead token is cleared here so the app starts on
// the login screen instead of failing on its first fetch.
func runTUI(deps cli.Deps) error {
	ctx, cancel := context.WithTimeout(context.Background(), deps.Cfg.API.Timeout())
	_ = deps.Provider.Bootstrap(ctx)
	cancel()

	store, err := cache.Open(deps.Cfg.StateDir())
	if err != nil {
		// The cache is an enhancement; the TUI works without it.
		fmt.Fprintf(os.Stderr, "warning: offline cache unavailable: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	app := ui.NewApp(ui.Deps{
		Cfg:      deps.Cfg,
		Client:   deps.Client,
		Provider: deps.Provider,
		Cache:    store,
		Theme:    styles.New(deps.Cfg.UI.Theme),
	})

	// Pick up config edits (base URL changes in particular) without a
	// restart. Watcher failure is not fatal.
	watcher, err := config.NewWatcher(deps.CfgPath, func(next config.Config) {
		deps.Client.SetBaseURL(next.API.BaseURL)
	})
	if err == nil {
		defer watcher.Close()
	}

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
