// termgpt - command line assistant backed by a local Ollama model.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/jeranaias/termgpt/internal/cli"
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
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}

	switch cmd {
	case cli.CmdPrompt:
		err = cli.HandlePrompt(args)
	case cli.CmdREPL:
		err = cli.HandleREPL(args)
	case cli.CmdRole:
		err = cli.HandleRole(args)
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdCache:
		err = cli.HandleCache(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdModels:
		err = cli.HandleModels(args)
	case cli.CmdVersion:
		fmt.Println(cli.VersionString())
	case cli.CmdHelp:
		fmt.Print(cli.Usage())
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
