// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Command rbacctl is a thin administrative CLI in front of the rbac-api
// HTTP surface, in the spirit of the control plane's occ client: every
// subcommand is a direct HTTP call, no local state beyond --server/--realm/
// --principal flags.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "rbacctl",
		Short:        "Administer and query the RBAC authorization engine",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.serverURL, "server", "http://localhost:8080", "rbac-api base URL")
	cmd.PersistentFlags().StringVar(&opts.realmID, "realm", "", "realm id for requests that need one")
	cmd.PersistentFlags().StringVar(&opts.principalID, "principal", "", "principal id sent as X-Principal")

	cmd.AddCommand(newRealmCmd(opts))
	cmd.AddCommand(newResourceCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))

	return cmd
}
