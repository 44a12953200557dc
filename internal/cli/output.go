// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/gogama/questal/response"
	"github.com/mattn/go-isatty"
)

// colorScheme defines the colors used for different elements in the
// output.
type colorScheme struct {
	Method      *color.Color
	URL         *color.Color
	StatusOK    *color.Color
	StatusWarn  *color.Color
	StatusError *color.Color
	HeaderKey   *color.Color
	HeaderValue *color.Color
}

func newColorScheme(enabled bool) *colorScheme {
	s := &colorScheme{
		Method:      color.New(color.FgBlue, color.Bold),
		URL:         color.New(color.FgCyan),
		StatusOK:    color.New(color.FgGreen, color.Bold),
		StatusWarn:  color.New(color.FgYellow, color.Bold),
		StatusError: color.New(color.FgRed, color.Bold),
		HeaderKey:   color.New(color.FgYellow),
		HeaderValue: color.New(color.FgWhite),
	}
	for _, c := range []*color.Color{s.Method, s.URL, s.StatusOK, s.StatusWarn, s.StatusError, s.HeaderKey, s.HeaderValue} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// useColor reports whether w is a terminal and colors were not turned
// off.
func useColor(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

type printer struct {
	w      io.Writer
	colors *colorScheme
}

func newPrinter(w io.Writer, opts *options) *printer {
	return &printer{w: w, colors: newColorScheme(useColor(w, opts.noColor))}
}

func (p *printer) request(method, url string) {
	p.colors.Method.Fprint(p.w, method)
	fmt.Fprint(p.w, " ")
	p.colors.URL.Fprintln(p.w, url)
}

func (p *printer) status(code int, text string) {
	c := p.colors.StatusOK
	switch {
	case code >= 400:
		c = p.colors.StatusError
	case code >= 300:
		c = p.colors.StatusWarn
	}
	c.Fprintf(p.w, "HTTP %d %s\n", code, text)
}

func (p *printer) headers(h response.Headers) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.colors.HeaderKey.Fprint(p.w, k+": ")
		p.colors.HeaderValue.Fprintln(p.w, h[k])
	}
	fmt.Fprintln(p.w)
}

func (p *printer) body(s string) {
	if s == "" {
		return
	}
	fmt.Fprintln(p.w, s)
}
