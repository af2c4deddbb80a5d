// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - argument parsing for the gearsync command.
//
// Running with no command starts the TUI; subcommands cover the scriptable
// surface (login, logout, whoami, status, config).
package cli

import (
	"fmt"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdStatus
	CmdRefresh
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool

	// Command-specific
	Email      string
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `gearsync - terminal client for the GearSync service shop

Usage:
  gearsync                    Start the TUI (default)
  gearsync login [email]      Sign in and store the session
  gearsync logout             Sign out and clear the stored session
  gearsync whoami             Show the signed-in account
  gearsync status, s          Show connection and session status
  gearsync refresh            Rotate the session token
  gearsync config [show|set key value]
                              Configuration
  gearsync version            Show version
  gearsync help               Show this help

Flags:
  --json       Machine-readable output where supported
  --quiet, -q  Suppress informational output
  --verbose    Log every API request

Environment:
  GEARSYNC_API_URL       Backend base URL
  GEARSYNC_SESSION_KEY   Key for sealing the stored session
  GEARSYNC_DIR           State directory (default ~/.gearsync)
`

// Usage returns the help text.
func Usage() string { return usageText }

// Parse interprets os.Args[1:]. Unknown flags are an error; unknown commands
// fall through to help so a typo never silently starts the TUI.
func Parse(argv []string) (Command, Args, error) {
	args := Args{}

	var positional []string
	for _, a := range argv {
		switch {
		case a == "--json":
			args.JSON = true
		case a == "--quiet" || a == "-q":
			args.Quiet = true
		case a == "--verbose":
			args.Verbose = true
		case a == "--version" || a == "-v":
			return CmdVersion, args, nil
		case a == "--help" || a == "-h":
			return CmdHelp, args, nil
		case strings.HasPrefix(a, "-"):
			return CmdHelp, args, fmt.Errorf("unknown flag: %s", a)
		default:
			positional = append(positional, a)
		}
	}

	if len(positional) == 0 {
		return CmdTUI, args, nil
	}

	cmd := positional[0]
	rest := positional[1:]
	args.Raw = rest

	switch cmd {
	case "login":
		if len(rest) > 0 {
			args.Email = rest[0]
		}
		return CmdLogin, args, nil
	case "logout":
		return CmdLogout, args, nil
	case "whoami":
		return CmdWhoami, args, nil
	case "status", "s":
		return CmdStatus, args, nil
	case "refresh":
		return CmdRefresh, args, nil
	case "config":
		if len(rest) > 0 {
			args.Subcommand = rest[0]
		}
		if args.Subcommand == "set" {
			if len(rest) < 3 {
				return CmdHelp, args, fmt.Errorf("config set requires a key and a value")
			}
			args.ConfigKey, args.ConfigVal = rest[1], rest[2]
		}
		return CmdConfig, args, nil
	case "version":
		return CmdVersion, args, nil
	case "help":
		return CmdHelp, args, nil
	default:
		return CmdHelp, args, fmt.Errorf("unknown command: %s", cmd)
	}
}
