// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the questal command line tool.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var verbs = []string{"get", "post", "put", "patch", "delete", "head"}

// options holds the flags shared by every verb command.
type options struct {
	headers    []string
	data       string
	accept     []string
	encoding   string
	respType   string
	timeout    int
	configFile string
	query      string
	schema     string
	logFile    string
	noColor    bool
	verbose    bool
}

// NewRootCmd returns the questal command with one subcommand per HTTP
// method.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:     "questal",
		Short:   "Send HTTP requests from the terminal",
		Version: version,
		Long: `questal sends one HTTP request and prints the response status and body.

Request settings come from flags and, optionally, a YAML file given with
-f. Flags override the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	f := root.PersistentFlags()
	f.StringArrayVarP(&opts.headers, "header", "H", nil, "request header as name:value (can be used multiple times)")
	f.StringVarP(&opts.data, "data", "d", "", "request parameters, as an encoded string such as a=1&b=2")
	f.StringSliceVar(&opts.accept, "accept", nil, "accepted response types, such as json or text/csv")
	f.StringVar(&opts.encoding, "encoding", "", "request encoding: form, json, multipart, plain or a media type")
	f.StringVar(&opts.respType, "type", "", "response type: text, json, document, blob or arraybuffer")
	f.IntVar(&opts.timeout, "timeout", 0, "request timeout in milliseconds (default 60000)")
	f.StringVarP(&opts.configFile, "file", "f", "", "YAML request configuration file")
	f.StringVar(&opts.query, "query", "", "print only the part of a JSON body matching this gjson path")
	f.StringVar(&opts.schema, "schema", "", "JSON Schema file the response body must match")
	f.StringVar(&opts.logFile, "log-file", "", "also write diagnostics to this file, rotating it as it grows")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "print the request line, response headers and events")

	for _, method := range verbs {
		root.AddCommand(newVerbCmd(method, opts))
	}
	return root
}

func newVerbCmd(method string, opts *options) *cobra.Command {
	upper := strings.ToUpper(method)
	return &cobra.Command{
		Use:   method + " URL",
		Short: fmt.Sprintf("Make a %s request to the specified URL", upper),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), upper, args[0], opts)
		},
	}
}

// Execute runs the root command against the process arguments and
// reports any failure on stderr. Canceling ctx aborts the request in
// flight.
func Execute(ctx context.Context) error {
	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		red := color.New(color.FgRed)
		if !useColor(os.Stderr, false) {
			red.DisableColor()
		}
		red.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
