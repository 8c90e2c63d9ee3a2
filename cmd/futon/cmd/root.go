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

// Package cmd implements the futon command line tool.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/go-kivik/futon"
	"github.com/go-kivik/futon/chttp"
)

const defaultConfigFile = "~/.futon/config.yaml"

type root struct {
	confFile string
	conf     *config
	log      *slog.Logger
	cmd      *cobra.Command
	client   *futon.Client

	// transport replaces the HTTP transport in tests.
	transport chttp.Transport
}

// Execute runs the command line, and exits the process.
func Execute(ctx context.Context) {
	os.Exit(rootCmd().execute(ctx))
}

func (r *root) execute(ctx context.Context) int {
	err := r.cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	fmt.Fprintf(r.cmd.ErrOrStderr(), "Error: %s\n", err)
	return exitCode(err)
}

func rootCmd() *root {
	r := &root{}
	r.cmd = &cobra.Command{
		Use:               "futon",
		Short:             "futon talks to CouchDB",
		Long:              "A command line client for the CouchDB HTTP API, with revision-aware document operations.",
		PersistentPreRunE: r.init,
		SilenceErrors:     true,
	}

	pf := r.cmd.PersistentFlags()
	pf.StringVar(&r.confFile, "config", defaultConfigFile, "Path to a YAML config file")
	pf.String("url", "", "Server URL. User info in the URL is used for Basic Auth")
	pf.String("user", "", "Basic Auth username")
	pf.String("password", "", "Basic Auth password")
	pf.Bool("debug", false, "Log requests and responses to stderr")
	pf.Uint64("retries", 0, "Retry idempotent requests up to this many times on transient errors")
	pf.StringP("output", "o", "json", "Output format: json or yaml")

	r.cmd.AddCommand(upCmd(r))
	r.cmd.AddCommand(infoCmd(r))
	r.cmd.AddCommand(dbCmd(r))
	r.cmd.AddCommand(docCmd(r))
	r.cmd.AddCommand(ddocCmd(r))

	return r
}

func (r *root) init(cmd *cobra.Command, _ []string) error {
	explicit := cmd.Flags().Changed("config")
	conf, err := loadConfig(r.cmd.PersistentFlags(), r.confFile, explicit)
	if err != nil {
		return withCode(err, ExitUsage)
	}
	r.conf = conf
	cmd.SilenceUsage = true

	level := slog.LevelWarn
	if conf.Debug {
		level = slog.LevelDebug
	}
	r.log = slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
		Level:   level,
		NoColor: true,
	}))

	transport := r.transport
	if transport == nil {
		transport, err = chttp.NewHTTPTransport(
			chttp.WithUserAgent("futon-cli/"+futon.Version),
			chttp.WithRetries(conf.Retries),
		)
		if err != nil {
			return withCode(err, ExitUsage)
		}
	}
	opts := []futon.Option{
		futon.WithTransport(transport),
		futon.WithLogger(r.log),
	}
	if conf.User != "" {
		opts = append(opts, futon.WithCredentials(chttp.BasicAuth(conf.User, conf.Password)))
	}
	r.client, err = futon.New(conf.URL, opts...)
	if err != nil {
		return err
	}
	r.log.Debug("configured", "url", r.client.URL(), "retries", conf.Retries)
	return nil
}

func (r *root) output(cmd *cobra.Command, i interface{}) error {
	return output(cmd.OutOrStdout(), r.conf.Output, i)
}

func (r *root) db(name string) (*futon.Database, error) {
	return r.client.DB(name)
}
