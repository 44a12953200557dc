// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package questal

import (
	"net/http"

	"github.com/gogama/questal/request"
	"github.com/gogama/questal/transport"
	"github.com/rs/zerolog"
)

// A Client creates requests which share a transport factory, a base
// configuration, handlers and a logger. Its zero value is a valid
// configuration.
//
// The zero value client gives each request a transport.HTTP backed by
// http.DefaultClient (from net/http), no base configuration, no
// handlers, and discards diagnostics.
//
// A Client is safe for concurrent use by multiple goroutines as long as
// its fields are not modified. The requests it creates are independent
// of each other.
type Client struct {
	// Transport returns a new transport for each request.
	//
	// If Transport is nil, each request uses
	// transport.NewHTTP(http.DefaultClient).
	Transport func() transport.Transport
	// Config is merged under the configuration of every request (see
	// request.Config.Merge).
	Config *request.Config
	// Handlers are copied into every request before it is opened.
	Handlers *HandlerGroup
	// Logger receives diagnostics. If nil, diagnostics are discarded.
	Logger *zerolog.Logger
}

// Request creates a request for the given HTTP method without opening
// it. The Method is chosen with MethodFor, so "get" yields a MethodGet
// request and "options" a MethodGeneric one. An empty method keeps the
// configured one.
func (c *Client) Request(method string, cfg *request.Config) (*Request, error) {
	cfg = c.Config.Merge(cfg)
	if method != "" {
		cfg.Method = method
	}
	return NewRequest(c.transport(), cfg, WithHandlers(c.Handlers), WithLogger(c.logger()))
}

// Get creates a GET request and sends it with data folded into the
// query string. The request is returned even if sending failed,
// unless it could not be created.
func (c *Client) Get(url string, data interface{}) (*Request, error) {
	return Get(c, url, data)
}

// Post creates a POST request and sends it with data as the body.
func (c *Client) Post(url string, data interface{}) (*Request, error) {
	return Post(c, url, data)
}

// Put creates a PUT request and sends it with data as the body.
func (c *Client) Put(url string, data interface{}) (*Request, error) {
	return Put(c, url, data)
}

// Patch creates a PATCH request and sends it with data as the body.
func (c *Client) Patch(url string, data interface{}) (*Request, error) {
	return Patch(c, url, data)
}

// Delete creates a DELETE request and sends it with data folded into
// the query string.
func (c *Client) Delete(url string, data interface{}) (*Request, error) {
	return Delete(c, url, data)
}

// Head creates a HEAD request and sends it.
func (c *Client) Head(url string) (*Request, error) {
	return Head(c, url)
}

func (c *Client) transport() transport.Transport {
	if c.Transport == nil {
		return transport.NewHTTP(http.DefaultClient)
	}
	return c.Transport()
}

func (c *Client) logger() zerolog.Logger {
	if c.Logger == nil {
		return zerolog.Nop()
	}
	return *c.Logger
}
