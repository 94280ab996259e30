// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	var action, resource, scope string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a permission check against the decision engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.realmID == "" || opts.principalID == "" {
				return fmt.Errorf("--realm and --principal are required")
			}
			q := url.Values{}
			q.Set("action", action)
			q.Set("resource", resource)
			q.Set("scope", scope)

			var result struct {
				Result string `json:"result"`
			}
			path := "/api/check?" + q.Encode()
			if err := newClient(opts).do("GET", path, nil, &result); err != nil {
				return err
			}
			fmt.Println(result.Result)
			return nil
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "action to check, e.g. READ")
	cmd.Flags().StringVar(&resource, "resource", "", "resource name to check")
	cmd.Flags().StringVar(&scope, "scope", "", "resource scope to check")
	_ = cmd.MarkFlagRequired("action")
	_ = cmd.MarkFlagRequired("resource")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}
