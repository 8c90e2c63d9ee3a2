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
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-kivik/futon"
)

// viewFlags are the view query options shared by every view command.
type viewFlags struct {
	includeDocs bool
	descending  bool
	limit       int
	skip        int
	key         string
	update      string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.includeDocs, "include-docs", false, "Include the full documents")
	fs.BoolVar(&f.descending, "descending", false, "Reverse the sort order")
	fs.IntVar(&f.limit, "limit", 0, "Maximum number of rows")
	fs.IntVar(&f.skip, "skip", 0, "Number of rows to skip")
	fs.StringVar(&f.key, "key", "", "Only return rows matching this key, given as JSON")
	fs.StringVar(&f.update, "update", string(futon.UpdateTrue), "Whether to update the view first: true, false or lazy")
}

func (f *viewFlags) params(cmd *cobra.Command) (*futon.ViewQueryParameters, error) {
	params := futon.NewViewQueryParameters()
	params.IncludeDocs = f.includeDocs
	params.Descending = f.descending
	params.Skip = f.skip
	params.Update = futon.UpdateMode(f.update)
	if cmd.Flags().Changed("limit") {
		limit := f.limit
		params.Limit = &limit
	}
	if f.key != "" {
		var key interface{}
		if err := json.Unmarshal([]byte(f.key), &key); err != nil {
			return nil, withCode(errors.Wrap(err, "invalid --key"), ExitUsage)
		}
		params.Key = key
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

func ddocCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ddoc",
		Short: "Work with design documents",
	}
	cmd.AddCommand(ddocGetCmd(r))
	cmd.AddCommand(ddocViewCmd(r))
	return cmd
}

func ddocGetCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "get <db> <ddoc>",
		Short: "Fetch a design document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.db(args[0])
			if err != nil {
				return err
			}
			ddoc, err := db.DesignDocs("").Get(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			if ddoc == nil {
				return withCode(errors.Errorf("design document %q not found", args[1]), ExitNotFound)
			}
			return r.output(cmd, ddoc)
		},
	}
}

func ddocViewCmd(r *root) *cobra.Command {
	var (
		partition string
		vf        viewFlags
	)
	cmd := &cobra.Command{
		Use:   "view <db> <ddoc> <view>",
		Short: "Query a view",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.db(args[0])
			if err != nil {
				return err
			}
			params, err := vf.params(cmd)
			if err != nil {
				return err
			}
			results, err := db.DesignDocs(partition).ExecuteView(cmd.Context(), args[1], args[2], params)
			if err != nil {
				return err
			}
			return r.output(cmd, results)
		},
	}
	cmd.Flags().StringVar(&partition, "partition", "", "Query a single partition")
	vf.register(cmd)
	return cmd
}
