// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package header

import (
	"strings"

	"github.com/gogama/questal/transport"
	"github.com/rs/zerolog"
	"golang.org/x/net/http/httpguts"
)

// Media types produced by ExpandEncoding.
const (
	FormURLEncoded = "application/x-www-form-urlencoded"
	Multipart      = "multipart/form-data"
	TextPlain      = "text/plain"
	JSON           = "application/json"
)

// Wildcard is the Accept value that matches any media type.
const Wildcard = "*/*"

var acceptVocabulary = map[string]string{
	"json":  "application/json",
	"html":  "text/html",
	"xml":   "application/xml, application/xhtml+xml",
	"plain": "text/plain",
}

// ExpandAccept maps a short Accept token to its media types. Unknown
// tokens are returned unchanged.
func ExpandAccept(token string) string {
	if mt, ok := acceptVocabulary[token]; ok {
		return mt
	}
	return token
}

// IsWildcard reports whether token is an Accept wildcard, "*" or "*/*".
func IsWildcard(token string) bool {
	return token == "*" || token == Wildcard
}

// ExpandEncoding maps an encoding token to the request Content-Type:
// multipart, form, plain and json select the corresponding media type,
// a value containing '/' is taken as a literal media type, and
// anything else selects FormURLEncoded.
func ExpandEncoding(token string) string {
	switch token {
	case "multipart":
		return Multipart
	case "form":
		return FormURLEncoded
	case "plain":
		return TextPlain
	case "json":
		return JSON
	}
	if strings.Contains(token, "/") {
		return strings.TrimSpace(token)
	}
	return FormURLEncoded
}

// A Target is the transport a Negotiator applies its headers to.
type Target interface {
	SetRequestHeader(name, value string) error
	ReadyState() transport.ReadyState
}

// A Negotiator holds the request headers of one exchange until they
// can be applied to the target. A Negotiator is bound to one target
// and is not reused across exchanges.
//
// A Negotiator is not safe for concurrent use.
type Negotiator struct {
	target   Target
	log      zerolog.Logger
	names    []string
	values   map[string]string
	accept   []string
	wildcard bool
	encoding string
	applied  bool
}

// NewNegotiator returns a negotiator for the given target. Diagnostics
// are written to log.
func NewNegotiator(t Target, log zerolog.Logger) *Negotiator {
	if t == nil {
		panic("questal/header: nil target")
	}
	return &Negotiator{
		target: t,
		log:    log,
		values: make(map[string]string),
	}
}

// Set stores a pending request header.
//
// Accept (any case) is routed to Accept, and Content-Type, encoding
// and content are routed to Encoding. Forbidden names (see
// IsForbidden) and names or values that are not valid HTTP are dropped
// with a warning. Setting a name again replaces its value.
func (n *Negotiator) Set(name, value string) *Negotiator {
	switch {
	case strings.EqualFold(name, "Accept"):
		return n.Accept(value)
	case strings.EqualFold(name, "Content-Type"), name == "encoding", name == "content":
		return n.Encoding(value)
	}
	if !n.writable(name) {
		return n
	}
	if IsForbidden(name) {
		n.log.Warn().Str("header", name).Msg("forbidden header dropped")
		return n
	}
	if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
		n.log.Warn().Str("header", name).Msg("invalid header dropped")
		return n
	}
	if _, ok := n.values[name]; !ok {
		n.names = append(n.names, name)
	}
	n.values[name] = value
	return n
}

// Accept adds media types to the Accept header. Each token is expanded
// with ExpandAccept and added unless already present. A wildcard token
// replaces the list with */* and any later token is ignored.
func (n *Negotiator) Accept(tokens ...string) *Negotiator {
	if !n.writable("Accept") || n.wildcard {
		return n
	}
	for _, token := range tokens {
		if IsWildcard(token) {
			n.wildcard = true
			n.accept = []string{Wildcard}
			return n
		}
	}
	for _, token := range tokens {
		mt := ExpandAccept(token)
		if mt == "" || contains(n.accept, mt) {
			continue
		}
		n.accept = append(n.accept, mt)
	}
	return n
}

// Encoding sets the request Content-Type from an encoding token (see
// ExpandEncoding).
func (n *Negotiator) Encoding(token string) *Negotiator {
	if n.writable("Content-Type") {
		n.encoding = ExpandEncoding(token)
	}
	return n
}

// AcceptValue returns the negotiated Accept header value, or "" if no
// media types were added.
func (n *Negotiator) AcceptValue() string {
	if n.wildcard {
		return Wildcard
	}
	return strings.Join(n.accept, ",")
}

// HasAccept reports whether any Accept media type was added.
func (n *Negotiator) HasAccept() bool {
	return len(n.accept) > 0
}

// EncodingValue returns the negotiated Content-Type. It defaults to
// FormURLEncoded.
func (n *Negotiator) EncodingValue() string {
	if n.encoding == "" {
		return FormURLEncoded
	}
	return n.encoding
}

// Pending returns a copy of the pending headers, excluding Accept and
// Content-Type.
func (n *Negotiator) Pending() map[string]string {
	m := make(map[string]string, len(n.values))
	for k, v := range n.values {
		m[k] = v
	}
	return m
}

// Applied reports whether Init has applied the headers.
func (n *Negotiator) Applied() bool {
	return n.applied
}

// Sendable reports whether the target still accepts request headers,
// that is whether its ready state is before ResponseHeaders.
func (n *Negotiator) Sendable() bool {
	return n.target.ReadyState() < transport.ResponseHeaders
}

// Init applies the pending headers, then Accept if any media type was
// added, then Content-Type, to the target. It does nothing if the
// headers were already applied or the target no longer accepts
// headers. The return value reports whether headers were applied by
// this call.
func (n *Negotiator) Init() bool {
	if n.applied || !n.Sendable() {
		return false
	}
	n.applied = true
	for _, name := range n.names {
		if IsForbidden(name) {
			continue
		}
		n.apply(name, n.values[name])
	}
	if n.HasAccept() {
		n.apply("Accept", n.AcceptValue())
	}
	n.apply("Content-Type", n.EncodingValue())
	return true
}

func (n *Negotiator) apply(name, value string) {
	if err := n.target.SetRequestHeader(name, value); err != nil {
		n.log.Warn().Err(err).Str("header", name).Msg("header rejected by transport")
	}
}

func (n *Negotiator) writable(name string) bool {
	if n.applied || !n.Sendable() {
		n.log.Warn().Str("header", name).Msg("headers already sent, header ignored")
		return false
	}
	return true
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
