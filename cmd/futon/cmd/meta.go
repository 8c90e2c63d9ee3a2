// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func upCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Check that the server is up",
		Long:  "Ask the server's /_up endpoint whether it is ready to serve requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			up, err := r.client.Meta().IsUp(cmd.Context())
			if err != nil {
				return err
			}
			if err := r.output(cmd, map[string]bool{"up": up}); err != nil {
				return err
			}
			if !up {
				return withCode(errors.New("server is down"), ExitUnavailable)
			}
			return nil
		},
	}
}

func infoCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := r.client.Meta().ServerInfo(cmd.Context())
			if err != nil {
				return err
			}
			return r.output(cmd, info)
		},
	}
}
