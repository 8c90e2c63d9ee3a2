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
	"github.com/spf13/cobra"

	"github.com/go-kivik/futon"
)

func dbCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage databases",
	}
	cmd.AddCommand(dbCreateCmd(r))
	cmd.AddCommand(dbInfoCmd(r))
	cmd.AddCommand(dbDeleteCmd(r))
	cmd.AddCommand(dbExistsCmd(r))
	cmd.AddCommand(dbAllDocsCmd(r))
	return cmd
}

func dbCreateCmd(r *root) *cobra.Command {
	var (
		q, n        int
		partitioned bool
	)
	cmd := &cobra.Command{
		Use:   "create <db>",
		Short: "Create a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.db(args[0])
			if err != nil {
				return err
			}
			params := futon.DatabaseCreationParams{Partitioned: partitioned}
			if cmd.Flags().Changed("q") {
				params.Q = &q
			}
			if cmd.Flags().Changed("n") {
				params.N = &n
			}
			if err := db.Create(cmd.Context(), params); err != nil {
				return err
			}
			return r.output(cmd, map[string]bool{"ok": true})
		},
	}
	cmd.Flags().IntVar(&q, "q", 0, "Number of shards")
	cmd.Flags().IntVar(&n, "n", 0, "Number of replicas")
	cmd.Flags().BoolVar(&partitioned, "partitioned", false, "Create a partitioned database")
	return cmd
}

func dbInfoCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "info <db>",
		Short: "Show database metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.db(args[0])
			if err != nil {
				return err
			}
			info, err := db.Info(cmd.Context())
			if err != nil {
				return err
			}
			return r.output(cmd, info)
		},
	}
}

func dbDeleteCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <db>",
		Short: "Delete a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.db(args[0])
			if err != nil {
				return err
			}
			if err := db.Delete(cmd.Context()); err != nil {
				return err
			}
			return r.output(cmd, map[string]bool{"ok": true})
		},
	}
}

func dbExistsCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <db>",
		Short: "Check whether a database exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.db(args[0])
			if err != nil {
				return err
			}
			exists, err := db.Exists(cmd.Context())
			if err != nil {
				return err
			}
			return r.output(cmd, map[string]bool{"exists": exists})
		},
	}
}

func dbAllDocsCmd(r *root) *cobra.Command {
	var (
		partition string
		vf        viewFlags
	)
	cmd := &cobra.Command{
		Use:   "all-docs <db>",
		Short: "List the documents of a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.db(args[0])
			if err != nil {
				return err
			}
			params, err := vf.params(cmd)
			if err != nil {
				return err
			}
			var results *futon.ViewResults
			if partition != "" {
				results, err = db.AllDocsInPartition(cmd.Context(), partition, params)
			} else {
				results, err = db.AllDocs(cmd.Context(), params)
			}
			if err != nil {
				return err
			}
			return r.output(cmd, results)
		},
	}
	cmd.Flags().StringVar(&partition, "partition", "", "Only list documents in this partition")
	vf.register(cmd)
	return cmd
}
