// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - handlers for the non-TUI subcommands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/jeranaias/gearsync-tui/internal/api"
	"github.com/jeranaias/gearsync-tui/internal/auth"
	"github.com/jeranaias/gearsync-tui/internal/config"
)

// Deps carries the wired collaborators into the command handlers.
type Deps struct {
	Cfg      config.Config
	CfgPath  string
	Client   *api.Client
	Provider *auth.Provider
}

// RunLogin prompts for credentials, signs in, and persists the session.
// The email can be passed as an argument; the password is always read with
// echo disabled.
func RunLogin(ctx context.Context, deps Deps, args Args) error {
	email := strings.TrimSpace(args.Email)
	if email == "" {
		line := liner.NewLiner()
		line.SetCtrlCAborts(true)
		v, err := line.Prompt("email: ")
		line.Close()
		if err != nil {
			return fmt.Errorf("login aborted: %w", err)
		}
		email = strings.TrimSpace(v)
	}
	if email == "" {
		return errors.New("an email is required")
	}

	fmt.Fprint(os.Stderr, "password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("could not read password: %w", err)
	}

	result, err := deps.Provider.Login(ctx, email, string(raw))
	if err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			return errors.New("invalid email or password")
		}
		return err
	}

	if !args.Quiet {
		fmt.Printf("Signed in as %s (%s).\n", email, result.Role)
		if result.IsFirstLogin {
			fmt.Println("Note: this account has a temporary password. Change it in the TUI.")
		}
	}
	return nil
}

// RunLogout signs out and clears the stored session. Already being signed
// out is not an error.
func RunLogout(ctx context.Context, deps Deps, args Args) error {
	signedIn := deps.Provider.Authenticated()
	deps.Provider.Logout(ctx)
	if args.Quiet {
		return nil
	}
	if signedIn {
		fmt.Println("Signed out.")
	} else {
		fmt.Println("Not signed in.")
	}
	return nil
}

// RunWhoami prints the signed-in account, fetched fresh from the backend.
func RunWhoami(ctx context.Context, deps Deps, args Args) error {
	if !deps.Provider.Authenticated() {
		return errors.New("not signed in (run: gearsync login)")
	}

	user, err := deps.Provider.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			return errors.New("session expired (run: gearsync login)")
		}
		return err
	}

	if args.JSON {
		return json.NewEncoder(os.Stdout).Encode(user)
	}
	fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)
	return nil
}

// RunStatus reports the configured backend and the session state. When a
// session exists its token is validated with one round trip.
func RunStatus(ctx context.Context, deps Deps, args Args) error {
	type status struct {
		BaseURL      string `json:"baseUrl"`
		SignedIn     bool   `json:"signedIn"`
		Role         string `json:"role,omitempty"`
		TokenValid   *bool  `json:"tokenValid,omitempty"`
		NetworkIssue bool   `json:"networkIssue,omitempty"`
	}

	st := status{
		BaseURL:  deps.Client.BaseURL(),
		SignedIn: deps.Provider.Authenticated(),
		Role:     string(deps.Provider.Role()),
	}

	if st.SignedIn {
		err := deps.Provider.Bootstrap(ctx)
		switch {
		case err == nil:
			valid := true
			st.TokenValid = &valid
			st.SignedIn = deps.Provider.Authenticated()
		case errors.Is(err, api.ErrNetworkFailure):
			st.NetworkIssue = true
		default:
			valid := false
			st.TokenValid = &valid
			st.SignedIn = deps.Provider.Authenticated()
		}
	}

	if args.JSON {
		return json.NewEncoder(os.Stdout).Encode(st)
	}

	fmt.Printf("Backend:  %s\n", st.BaseURL)
	if !st.SignedIn {
		fmt.Println("Session:  none")
		return nil
	}
	fmt.Printf("Session:  %s\n", st.Role)
	switch {
	case st.NetworkIssue:
		fmt.Println("Token:    unverified (backend unreachable)")
	case st.TokenValid != nil && *st.TokenValid:
		fmt.Println("Token:    valid")
	default:
		fmt.Println("Token:    expired")
	}
	return nil
}

// RunRefresh rotates the bearer token, keeping the stored role. A token the
// backend no longer accepts clears the session.
func RunRefresh(ctx context.Context, deps Deps, args Args) error {
	if !deps.Provider.Authenticated() {
		return errors.New("not signed in (run: gearsync login)")
	}
	if err := deps.Provider.RefreshToken(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			return errors.New("session expired (run: gearsync login)")
		}
		return err
	}
	if !args.Quiet {
		fmt.Println("Token refreshed.")
	}
	return nil
}

// RunConfig shows or edits the config file.
func RunConfig(deps Deps, args Args) error {
	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			return json.NewEncoder(os.Stdout).Encode(deps.Cfg)
		}
		fmt.Printf("config file:  %s\n", deps.CfgPath)
		fmt.Printf("api.base_url: %s\n", deps.Cfg.API.BaseURL)
		fmt.Printf("api.timeout:  %ds\n", deps.Cfg.API.TimeoutSecs)
		fmt.Printf("session.dir:  %s\n", deps.Cfg.Session.Dir)
		fmt.Printf("session.seal: %t\n", deps.Cfg.Session.Seal)
		fmt.Printf("ui.theme:     %s\n", deps.Cfg.UI.Theme)
		return nil

	case "set":
		cfg := deps.Cfg
		switch args.ConfigKey {
		case "api.base_url":
			cfg.API.BaseURL = args.ConfigVal
		case "api.timeout_secs":
			secs, err := strconv.Atoi(args.ConfigVal)
			if err != nil {
				return fmt.Errorf("api.timeout_secs must be a number: %q", args.ConfigVal)
			}
			cfg.API.TimeoutSecs = secs
		case "session.seal":
			seal, err := strconv.ParseBool(args.ConfigVal)
			if err != nil {
				return fmt.Errorf("session.seal must be true or false: %q", args.ConfigVal)
			}
			cfg.Session.Seal = seal
		case "ui.theme":
			cfg.UI.Theme = args.ConfigVal
		default:
			return fmt.Errorf("unknown config key: %s", args.ConfigKey)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg, deps.CfgPath); err != nil {
			return err
		}
		if !args.Quiet {
			fmt.Printf("%s = %s\n", args.ConfigKey, args.ConfigVal)
		}
		return nil

	default:
		return fmt.Errorf("unknown config subcommand: %s", args.Subcommand)
	}
}

// RunVersion prints build information.
func RunVersion() {
	fmt.Printf("gearsync %s (%s, built %s)\n", Version, GitCommit, BuildDate)
}
