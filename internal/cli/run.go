// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gogama/questal"
	"github.com/gogama/questal/request"
	"github.com/gogama/questal/response"
	"github.com/gogama/questal/transport"
	"github.com/tidwall/gjson"
)

var (
	errUnsuccessful = errors.New("request unsuccessful")
	errAborted      = errors.New("request aborted")
)

func run(ctx context.Context, stdout, stderr io.Writer, method, rawURL string, opts *options) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	cfg.URL = rawURL

	log, closer := newLogger(stderr, opts)
	defer func() {
		_ = closer.Close()
	}()

	cl := &questal.Client{
		Transport: func() transport.Transport {
			return transport.NewHTTP(&http.Client{})
		},
		Logger: &log,
	}
	req, err := cl.Request(method, cfg)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	var failure error
	fail := questal.HandlerFunc(func(n *questal.Notification) {
		mu.Lock()
		defer mu.Unlock()
		if failure = n.Err(); failure == nil {
			failure = errAborted
		}
	})
	if err = req.On("error timeout abort", fail); err != nil {
		return err
	}
	if opts.verbose {
		trace := questal.HandlerFunc(func(n *questal.Notification) {
			log.Debug().Str("event", n.Event.Name()).Stringer("state", n.Request.State()).Msg("event")
		})
		for _, evt := range questal.Events() {
			if evt != questal.Progress {
				_ = req.On(evt.Name(), trace)
			}
		}
	}

	p := newPrinter(stdout, opts)
	if opts.verbose {
		p.request(req.Method(), req.URL())
	}
	if err = req.Do("", nil); err != nil {
		return err
	}
	if err = req.Wait(ctx); err != nil {
		req.Abort()
		<-req.Done()
		return fmt.Errorf("request interrupted: %w", err)
	}
	mu.Lock()
	err = failure
	mu.Unlock()
	if err != nil {
		return err
	}

	resp := req.Response()
	p.status(resp.Code(), resp.Status())
	if opts.verbose {
		p.headers(resp.Headers())
	}
	body, err := selectBody(resp, opts.query)
	if err != nil {
		return err
	}
	p.body(body)
	if opts.schema != "" {
		if err = validateSchema(opts.schema, resp.Body()); err != nil {
			return err
		}
	}
	if !req.Success() {
		return fmt.Errorf("%w: %d %s", errUnsuccessful, resp.Code(), resp.Status())
	}
	return nil
}

// config merges the flags over the configuration file, if any.
func (o *options) config() (*request.Config, error) {
	var base *request.Config
	if o.configFile != "" {
		f, err := os.Open(o.configFile)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = f.Close()
		}()
		if base, err = request.LoadConfig(f); err != nil {
			return nil, fmt.Errorf("%s: %w", o.configFile, err)
		}
	}
	if o.respType != "" {
		if _, ok := transport.ParseResponseType(o.respType); !ok {
			return nil, fmt.Errorf("invalid response type %q", o.respType)
		}
	}
	headers, err := parseHeaders(o.headers)
	if err != nil {
		return nil, err
	}
	flags := &request.Config{
		Headers:      headers,
		Accept:       o.accept,
		Encoding:     o.encoding,
		Timeout:      o.timeout,
		ResponseType: o.respType,
	}
	if o.data != "" {
		flags.Data = o.data
	}
	return base.Merge(flags), nil
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		parts := strings.SplitN(h, ":", 2)
		name := strings.TrimSpace(parts[0])
		if len(parts) != 2 || name == "" {
			return nil, fmt.Errorf("invalid header %q (want name:value)", h)
		}
		headers[name] = strings.TrimSpace(parts[1])
	}
	return headers, nil
}

// selectBody renders the response body, or the part of it matched by
// a gjson path.
func selectBody(resp *response.Response, query string) (string, error) {
	if query == "" {
		return resp.Body(), nil
	}
	res := resp.Get(query)
	if !res.Exists() {
		return "", fmt.Errorf("query %q matched nothing", query)
	}
	if res.Type == gjson.String {
		return res.Str, nil
	}
	return res.Raw, nil
}
