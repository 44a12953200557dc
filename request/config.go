// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gogama/questal/transport"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout is the exchange timeout used when Config.Timeout is
// not positive.
const DefaultTimeout = 60 * time.Second

// A Config describes a request.
type Config struct {
	// Method is the HTTP method. It is case-insensitive and defaults
	// to GET. Fixed-verb requests ignore it.
	Method string `yaml:"method,omitempty"`

	// URL is the request URL. A query string in URL is split out and
	// merged into the request parameters.
	URL string `yaml:"url,omitempty"`

	// Data holds the request parameters: a mapping, or an encoded
	// string such as "a=1&b=2". See params.Data.Set for the accepted
	// types.
	Data interface{} `yaml:"data,omitempty"`

	// Params is merged into the parameters after Data.
	Params interface{} `yaml:"params,omitempty"`

	// Headers are request headers. Forbidden names are dropped.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Accept lists Accept tokens, for example "json" or "image/png".
	// If empty, the verb's default Accept list is used.
	Accept []string `yaml:"accept,omitempty"`

	// Encoding selects the request Content-Type, for example "json" or
	// "multipart".
	Encoding string `yaml:"encoding,omitempty"`

	// Timeout is the exchange timeout in milliseconds. Zero or
	// negative selects DefaultTimeout.
	Timeout int `yaml:"timeout,omitempty"`

	// ResponseType selects how the response body is decoded.
	ResponseType string `yaml:"responseType,omitempty"`

	// Credentials, if set, controls whether cookies and other
	// credentials are sent.
	Credentials *bool `yaml:"credentials,omitempty"`
}

// LoadConfig decodes a YAML Config from r. Unknown keys are an error.
func LoadConfig(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if err == io.EOF {
			return &cfg, nil
		}
		return nil, fmt.Errorf("questal/request: %w", err)
	}
	if cfg.ResponseType != "" {
		if _, ok := transport.ParseResponseType(cfg.ResponseType); !ok {
			return nil, fmt.Errorf("questal/request: invalid response type %q", cfg.ResponseType)
		}
	}
	return &cfg, nil
}

// MethodOrDefault returns the upper-cased method, or GET.
func (c *Config) MethodOrDefault() string {
	if c == nil || c.Method == "" {
		return "GET"
	}
	return strings.ToUpper(c.Method)
}

// TimeoutDuration returns the timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	if c == nil || c.Timeout <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.Timeout) * time.Millisecond
}

// Merge returns a copy of c with every non-zero field of o applied on
// top. Headers are merged key by key; Data and Params of o replace
// those of c.
func (c *Config) Merge(o *Config) *Config {
	var out Config
	if c != nil {
		out = *c
		out.Headers = copyHeaders(c.Headers)
		out.Accept = append([]string(nil), c.Accept...)
	}
	if o == nil {
		return &out
	}
	if o.Method != "" {
		out.Method = o.Method
	}
	if o.URL != "" {
		out.URL = o.URL
	}
	if o.Data != nil {
		out.Data = o.Data
	}
	if o.Params != nil {
		out.Params = o.Params
	}
	for k, v := range o.Headers {
		if out.Headers == nil {
			out.Headers = make(map[string]string, len(o.Headers))
		}
		out.Headers[k] = v
	}
	if len(o.Accept) > 0 {
		out.Accept = append([]string(nil), o.Accept...)
	}
	if o.Encoding != "" {
		out.Encoding = o.Encoding
	}
	if o.Timeout != 0 {
		out.Timeout = o.Timeout
	}
	if o.ResponseType != "" {
		out.ResponseType = o.ResponseType
	}
	if o.Credentials != nil {
		b := *o.Credentials
		out.Credentials = &b
	}
	return &out
}

func copyHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	m := make(map[string]string, len(h))
	for k, v := range h {
		m[k] = v
	}
	return m
}
