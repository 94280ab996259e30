// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResourceCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Manage resources within the --realm flag's realm",
	}
	cmd.AddCommand(newResourceCreateCmd(opts))
	cmd.AddCommand(newResourceListCmd(opts))
	return cmd
}

func newResourceCreateCmd(opts *globalOptions) *cobra.Command {
	var allowableActions string
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a resource in the current realm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.realmID == "" {
				return fmt.Errorf("--realm is required")
			}
			body := map[string]string{"resourceName": args[0], "allowableActions": allowableActions}
			var resource map[string]any
			path := fmt.Sprintf("/api/realms/%s/resources", opts.realmID)
			if err := newClient(opts).do("POST", path, body, &resource); err != nil {
				return err
			}
			return printJSON(resource)
		},
	}
	cmd.Flags().StringVar(&allowableActions, "actions", "", "allowable actions pattern, e.g. (CREATE|DELETE)")
	return cmd
}

func newResourceListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List resources in the current realm",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.realmID == "" {
				return fmt.Errorf("--realm is required")
			}
			var list struct {
				Items []map[string]any `json:"items"`
			}
			path := fmt.Sprintf("/api/realms/%s/resources", opts.realmID)
			if err := newClient(opts).do("GET", path, nil, &list); err != nil {
				return err
			}
			return printJSON(list.Items)
		},
	}
}
