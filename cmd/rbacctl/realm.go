// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRealmCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realm",
		Short: "Manage realms",
	}
	cmd.AddCommand(newRealmCreateCmd(opts))
	cmd.AddCommand(newRealmListCmd(opts))
	return cmd
}

func newRealmCreateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create [id]",
		Short: "Create a realm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var realm map[string]any
			if err := newClient(opts).do("POST", "/api/realms", map[string]string{"id": args[0]}, &realm); err != nil {
				return err
			}
			return printJSON(realm)
		},
	}
}

func newRealmListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List realms",
		RunE: func(cmd *cobra.Command, args []string) error {
			var list struct {
				Items []map[string]any `json:"items"`
			}
			if err := newClient(opts).do("GET", "/api/realms", nil, &list); err != nil {
				return err
			}
			return printJSON(list.Items)
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
