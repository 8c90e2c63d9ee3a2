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
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-kivik/futon"
)

func docCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Work with documents",
	}
	cmd.AddCommand(docGetCmd(r))
	cmd.AddCommand(docPutCmd(r))
	cmd.AddCommand(docDeleteCmd(r))
	cmd.AddCommand(docCopyCmd(r))
	cmd.AddCommand(docExistsCmd(r))
	return cmd
}

func docGetCmd(r *root) *cobra.Command {
	var rev string
	cmd := &cobra.Command{
		Use:   "get <db> <id>",
		Short: "Fetch a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.db(args[0])
			if err != nil {
				return err
			}
			doc := futon.RawDocument{}
			found, err := db.Documents().Find(cmd.Context(), args[1], rev, &doc)
			if err != nil {
				return err
			}
			if !found {
				return withCode(errors.Errorf("document %q not found", args[1]), ExitNotFound)
			}
			return r.output(cmd, doc)
		},
	}
	cmd.Flags().StringVar(&rev, "rev", "", "Fetch this revision")
	return cmd
}

// newDocID returns an ID for a document the user did not name.
func newDocID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func docPutCmd(r *root) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "put <db> [id]",
		Short: "Create or update a document",
		Long: `Store a JSON document, read from --data or standard input. The document is
written at the revision it carries in _rev. Without an ID, either as an
argument or in _id, a random one is assigned.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.db(args[0])
			if err != nil {
				return err
			}
			body := []byte(data)
			if data == "" || data == "-" {
				if body, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return withCode(err, ExitData)
				}
			}
			doc, err := futon.ParseRawDocument(body)
			if err != nil {
				return withCode(err, ExitData)
			}
			switch {
			case len(args) == 2:
				doc.SetID(args[1])
			case doc.ID() == "":
				doc.SetID(newDocID())
			}
			if err := db.Documents().CreateOrUpdate(cmd.Context(), doc); err != nil {
				return err
			}
			return r.output(cmd, futon.DocumentOperationResult{ID: doc.ID(), Rev: doc.Rev(), OK: true})
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "Document JSON. Use - or omit to read standard input")
	return cmd
}

func docDeleteCmd(r *root) *cobra.Command {
	var rev string
	cmd := &cobra.Command{
		Use:   "delete <db> <id>",
		Short: "Delete a document",
		Long:  "Delete a document. Without --rev, the current revision is deleted.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.db(args[0])
			if err != nil {
				return err
			}
			doc := &futon.Tombstone{DocID: args[1], DocRev: rev}
			if err := db.Documents().Delete(cmd.Context(), doc); err != nil {
				return err
			}
			return r.output(cmd, futon.DocumentOperationResult{ID: doc.ID(), Rev: doc.Rev(), OK: true})
		},
	}
	cmd.Flags().StringVar(&rev, "rev", "", "Revision to delete")
	return cmd
}

func docCopyCmd(r *root) *cobra.Command {
	var rev, destRev string
	cmd := &cobra.Command{
		Use:   "copy <db> <id> <dest-id>",
		Short: "Copy a document",
		Long:  "Copy a document. An existing destination is overwritten only when --dest-rev names its current revision.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.db(args[0])
			if err != nil {
				return err
			}
			doc := futon.RawDocument{"_id": args[1]}
			if rev != "" {
				doc.SetRev(rev)
			}
			dest := futon.CopyDestination{ID: args[2], Rev: destRev}
			if err := db.Documents().Copy(cmd.Context(), doc, dest); err != nil {
				return err
			}
			return r.output(cmd, futon.DocumentOperationResult{ID: doc.ID(), Rev: doc.Rev(), OK: true})
		},
	}
	cmd.Flags().StringVar(&rev, "rev", "", "Revision of the source to copy")
	cmd.Flags().StringVar(&destRev, "dest-rev", "", "Current revision of an existing destination")
	return cmd
}

func docExistsCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <db> <id>",
		Short: "Check whether a document exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.db(args[0])
			if err != nil {
				return err
			}
			exists, err := db.Documents().Exists(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return r.output(cmd, map[string]bool{"exists": exists})
		},
	}
}
