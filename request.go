// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package questal

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gogama/questal/header"
	"github.com/gogama/questal/params"
	"github.com/gogama/questal/request"
	"github.com/gogama/questal/response"
	"github.com/gogama/questal/transport"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/http/httpguts"
)

// A Request drives one exchange over one transport, from Open to a
// terminal event, and re-fires the transport's notifications as named
// events.
//
// Create a Request with NewRequest, or with a Client. Handlers may be
// added at any time, but only see events fired after they are added.
// Handlers run one at a time in the order they were added, on the
// goroutine that delivers the transport notification: the caller's
// goroutine for Init, Ready and an Abort before Send, and the
// transport's goroutine for everything after Send.
//
// Request is safe for concurrent use, but a handler must not call Wait
// on its own request.
type Request struct {
	id       string
	verb     Method
	t        transport.Transport
	log      zerolog.Logger
	resp     *response.Response
	done     chan struct{}
	doneOnce sync.Once

	mu       sync.Mutex
	method   string
	url      string
	fragment string
	data     params.Data
	headers  *header.Negotiator
	handlers HandlerGroup
	success  func(code int) bool
	failed   bool
}

// An Option configures a Request.
type Option func(*options)

type options struct {
	verb     Method
	handlers HandlerGroup
	success  func(int) bool
	log      zerolog.Logger
	omitBody bool
}

// WithMethod selects the verb behavior. Without it, NewRequest selects
// the Method matching the configured HTTP method (see MethodFor).
func WithMethod(m Method) Option {
	if m < MethodGeneric || m >= methodSentinel {
		panic("questal: invalid method")
	}
	return func(o *options) {
		o.verb = m
	}
}

// WithHandler adds h to the chain for evt.
func WithHandler(evt Event, h Handler) Option {
	if h == nil {
		panic("questal: nil handler")
	}
	return func(o *options) {
		o.handlers.PushBack(evt, h)
	}
}

// WithHandlers adds every handler in g, in order. A nil g adds nothing.
func WithHandlers(g *HandlerGroup) Option {
	return func(o *options) {
		if g == nil {
			return
		}
		for _, evt := range Events() {
			for _, h := range g.chain(evt) {
				o.handlers.PushBack(evt, h)
			}
		}
	}
}

// WithSuccess replaces the success predicate.
func WithSuccess(fn func(code int) bool) Option {
	return func(o *options) {
		o.success = fn
	}
}

// WithLogger sets the logger diagnostics are written to. The default
// discards them.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithoutBody declares that the response has no body, as for HEAD.
func WithoutBody() Option {
	return func(o *options) {
		o.omitBody = true
	}
}

// NewRequest returns a request which performs its exchange on t,
// configured by cfg. A nil cfg is an empty configuration.
//
// Configuration is applied in a fixed order: URL (whose query is merged
// into the parameters), Data, Params, timeout, credentials, response
// type, Headers (in name order), Accept and Encoding. Invalid headers
// and response types are dropped with a warning; parameters of an
// unsupported type are an error.
//
// The transport must be Unsent, and must not be used for anything
// else.
func NewRequest(t transport.Transport, cfg *request.Config, opts ...Option) (*Request, error) {
	if t == nil {
		panic("questal: nil transport")
	}
	if s := t.ReadyState(); s != transport.Unsent {
		return nil, &StateError{Op: "create", State: s}
	}
	if cfg == nil {
		cfg = &request.Config{}
	}

	o := options{
		verb: MethodFor(cfg.MethodOrDefault()),
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	log := o.log.With().Str("request_id", id).Logger()
	v := verbs[o.verb]
	r := &Request{
		id:       id,
		verb:     o.verb,
		t:        t,
		log:      log,
		resp:     response.New(t, o.omitBody || v.omitBody, log),
		done:     make(chan struct{}),
		method:   cfg.MethodOrDefault(),
		headers:  header.NewNegotiator(t, log),
		handlers: o.handlers,
		success:  o.success,
	}
	if v.name != "" {
		r.method = v.name
	}
	if r.success == nil && v.success304 {
		r.success = r.resp.Success304
	}

	r.setURL(cfg.URL)
	if err := r.setData(cfg.Data); err != nil {
		return nil, err
	}
	if err := r.setData(cfg.Params); err != nil {
		return nil, err
	}
	t.SetTimeout(cfg.TimeoutDuration())
	if cfg.Credentials != nil {
		t.SetWithCredentials(*cfg.Credentials)
	}
	if cfg.ResponseType != "" {
		r.resp.SetType(cfg.ResponseType)
	}
	names := make([]string, 0, len(cfg.Headers))
	for name := range cfg.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.headers.Set(name, cfg.Headers[name])
	}
	if len(cfg.Accept) > 0 {
		r.headers.Accept(cfg.Accept...)
	}
	if cfg.Encoding != "" {
		r.headers.Encoding(cfg.Encoding)
	}

	t.Listen(r.dispatch)
	return r, nil
}

// ID returns the unique ID attached to the request's log entries.
func (r *Request) ID() string {
	return r.id
}

// Verb returns the request's Method.
func (r *Request) Verb() Method {
	return r.verb
}

// Method returns the HTTP method.
func (r *Request) Method() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.method
}

// SetMethod sets the HTTP method, upper-cased. It does nothing if the
// request's Method is fixed.
func (r *Request) SetMethod(method string) {
	if r.verb.Fixed() {
		return
	}
	r.mu.Lock()
	r.method = strings.ToUpper(strings.TrimSpace(method))
	r.mu.Unlock()
}

// URL returns the request URL. For MethodGet and MethodDelete the
// accumulated parameters are appended as the query string.
func (r *Request) URL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolvedURL()
}

// SetURL sets the request URL. A query string in url is removed from
// it and merged into the parameters.
func (r *Request) SetURL(url string) {
	r.mu.Lock()
	r.setURL(url)
	r.mu.Unlock()
}

// Params returns the accumulated parameters as an encoded string.
func (r *Request) Params() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data.String()
}

// Data returns a copy of the accumulated parameters.
func (r *Request) Data() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data.Map()
}

// SetData merges input into the parameters (see params.Data.Set). An
// unsupported input type is a *ConfigError.
func (r *Request) SetData(input interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setData(input)
}

// Header sets a request header (see header.Negotiator.Set).
func (r *Request) Header(name, value string) {
	r.mu.Lock()
	r.headers.Set(name, value)
	r.mu.Unlock()
}

// Accept adds Accept tokens (see header.Negotiator.Accept).
func (r *Request) Accept(tokens ...string) {
	r.mu.Lock()
	r.headers.Accept(tokens...)
	r.mu.Unlock()
}

// Encoding sets the request Content-Type from an encoding token (see
// header.ExpandEncoding). The encoding also selects how Do renders the
// parameters as a body.
func (r *Request) Encoding(token string) {
	r.mu.Lock()
	r.headers.Encoding(token)
	r.mu.Unlock()
}

// SetResponseType selects how the response body is decoded, and
// reports whether the type was accepted (see response.Response.SetType).
func (r *Request) SetResponseType(name string) bool {
	return r.resp.SetType(name)
}

// SetTimeout sets the exchange timeout. It must be called before Send.
func (r *Request) SetTimeout(d time.Duration) {
	r.t.SetTimeout(d)
}

// SetCredentials controls whether credentials are sent.
func (r *Request) SetCredentials(b bool) {
	r.t.SetWithCredentials(b)
}

// SetSuccess replaces the success predicate. A nil fn restores the
// default for the request's Method.
func (r *Request) SetSuccess(fn func(code int) bool) {
	if fn == nil && verbs[r.verb].success304 {
		fn = r.resp.Success304
	}
	r.mu.Lock()
	r.success = fn
	r.mu.Unlock()
}

// On adds h to the chain of each event in the space-separated list
// names.
func (r *Request) On(names string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handlers.On(names, h)
}

// Off removes h from the chain for evt (see HandlerGroup.Remove). If
// no handler matches, a warning is logged and Off returns false.
func (r *Request) Off(evt Event, h Handler) bool {
	r.mu.Lock()
	removed := r.handlers.Remove(evt, h)
	r.mu.Unlock()
	if !removed {
		r.log.Warn().Str("event", evt.Name()).Msg("handler not found")
	}
	return removed
}

// Open merges url and data, if given, into the configuration, fires
// Init, and opens the transport. The transport fires its Ready
// notification before Open returns, so the request headers have been
// applied by then.
//
// Open returns a *ConfigError if the method or URL is empty or
// invalid, and a *StateError if the request was already opened.
func (r *Request) Open(url string, data interface{}) error {
	if err := r.override(url, data); err != nil {
		return err
	}
	return r.open()
}

// Send starts the exchange with the given body, which may be nil, a
// string, a []byte or an io.Reader (see request.BodyBytes). It returns
// a *StateError unless the request is Ready and unsent, and a
// *ConfigError if the body cannot be read. Transport failures are
// reported by the Error, Abort and Timeout events.
func (r *Request) Send(body interface{}) error {
	if s := r.t.ReadyState(); s != transport.Ready {
		return &StateError{Op: "send", State: s}
	}
	b, err := request.BodyBytes(body)
	if err != nil {
		return &ConfigError{Field: "body", Err: err}
	}
	if err = r.t.Send(b); err != nil {
		if errors.Is(err, transport.ErrInvalidState) {
			return &StateError{Op: "send", State: r.t.ReadyState()}
		}
		return err
	}
	return nil
}

// Do opens the request, like Open, and sends it with a body composed
// from the parameters.
//
// MethodGet, MethodDelete and MethodHead send no body. Every other
// Method sends the parameters encoded according to the request
// encoding: a JSON object for JSON media types, a multipart form for
// multipart/form-data (whose boundary is added to the Content-Type),
// and the encoded parameter string otherwise.
func (r *Request) Do(url string, data interface{}) error {
	if err := r.override(url, data); err != nil {
		return err
	}
	body, err := r.body()
	if err != nil {
		return err
	}
	if err = r.open(); err != nil {
		return err
	}
	return r.Send(body)
}

// Abort cancels the exchange. The Abort event fires once the transport
// has stopped.
func (r *Request) Abort() {
	r.t.Abort()
}

// State returns the transport's ready state.
func (r *Request) State() transport.ReadyState {
	return r.t.ReadyState()
}

// Response returns the view of the response.
func (r *Request) Response() *response.Response {
	return r.resp
}

// Success reports whether the exchange completed successfully. It is
// false until the request is Complete, and false after an Abort, Error
// or Timeout. Otherwise the success predicate, if set, decides from the
// status code; without one the code must be 2xx.
func (r *Request) Success() bool {
	if r.t.ReadyState() != transport.Complete {
		return false
	}
	r.mu.Lock()
	fn, failed := r.success, r.failed
	r.mu.Unlock()
	if failed {
		return false
	}
	if fn != nil {
		return fn(r.resp.Code())
	}
	return r.resp.IsSuccess()
}

// Done returns a channel that is closed after the handlers of the
// terminal event (Success or Complete, Abort, Error or Timeout) have
// run.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until Done is closed or ctx ends. It returns ctx.Err()
// in the latter case.
func (r *Request) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FireOptions carries optional Fire arguments.
type FireOptions struct {
	// Detail is used when Fire is given no detail.
	Detail interface{}
	// Raw is the transport event the fired event stands for.
	Raw *transport.Event
}

// Fire runs the handlers for evt synchronously on the calling
// goroutine. If detail is nil, opts.Detail is used, and failing that
// the transport. If the transport cannot carry details, the detail is
// replaced by the transport and a warning is logged.
func (r *Request) Fire(evt Event, detail interface{}, opts *FireOptions) {
	var raw *transport.Event
	if opts != nil {
		if detail == nil {
			detail = opts.Detail
		}
		raw = opts.Raw
	}
	r.fire(evt, detail, raw)
}

func (r *Request) fire(evt Event, detail interface{}, raw *transport.Event) {
	if detail == nil {
		detail = r.t
	} else if dc, ok := r.t.(transport.DetailCarrier); ok && !dc.CarriesDetail() {
		r.log.Warn().Str("event", evt.Name()).Msg("transport cannot carry event detail, detail dropped")
		detail = r.t
	}
	r.mu.Lock()
	chain := r.handlers.chain(evt)
	r.mu.Unlock()
	run(chain, &Notification{Event: evt, Request: r, Detail: detail, Raw: raw})
}

func (r *Request) dispatch(ev transport.Event) {
	switch ev.Kind {
	case transport.ReadyStateChange:
		r.fire(Change, nil, &ev)
		switch r.t.ReadyState() {
		case transport.Ready:
			r.ready()
			r.fire(Ready, nil, &ev)
		case transport.ResponseHeaders:
			r.fire(ResponseHeaders, r.resp.Headers(), &ev)
		case transport.LoadStart:
			r.fire(LoadStart, nil, &ev)
		}
	case transport.Load:
		r.fire(Complete, r.resp, &ev)
		if r.Success() {
			r.fire(Success, r.resp, &ev)
		}
		r.finish()
	case transport.ProgressEvent:
		r.fire(Progress, ev.Detail, &ev)
	case transport.Abort:
		r.fail()
		r.fire(Abort, ev.Detail, &ev)
		r.finish()
	case transport.Error:
		r.fail()
		r.fire(Error, ev.Detail, &ev)
		r.finish()
	case transport.Timeout:
		r.fail()
		r.fire(Timeout, ev.Detail, &ev)
		r.finish()
	}
}

func (r *Request) fail() {
	r.mu.Lock()
	r.failed = true
	r.mu.Unlock()
}

// ready applies the request headers, adding the default Accept list
// if none was configured.
func (r *Request) ready() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.headers.HasAccept() {
		if accept := verbs[r.verb].accept; len(accept) > 0 {
			r.headers.Accept(accept...)
		}
	}
	r.headers.Init()
}

func (r *Request) finish() {
	r.doneOnce.Do(func() {
		close(r.done)
	})
}

func (r *Request) override(url string, data interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if url != "" {
		r.setURL(url)
	}
	return r.setData(data)
}

func (r *Request) open() error {
	r.fire(Init, nil, nil)
	r.mu.Lock()
	method, empty, url := r.method, r.url == "", r.resolvedURL()
	r.mu.Unlock()
	if method == "" {
		return &ConfigError{Field: "method"}
	}
	if strings.IndexFunc(method, isNotToken) != -1 {
		return &ConfigError{Field: "method", Value: method}
	}
	if empty {
		return &ConfigError{Field: "url"}
	}
	if err := r.t.Open(method, url); err != nil {
		if errors.Is(err, transport.ErrInvalidState) {
			return &StateError{Op: "open", State: r.t.ReadyState()}
		}
		return &ConfigError{Field: "url", Value: url, Err: err}
	}
	return nil
}

func (r *Request) body() ([]byte, error) {
	if !verbs[r.verb].body {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data.Empty() {
		return nil, nil
	}
	enc := r.headers.EncodingValue()
	mt, _, _ := mime.ParseMediaType(enc)
	switch {
	case mt == header.JSON || strings.HasSuffix(mt, "+json"):
		s, err := r.data.JSON()
		if err != nil {
			return nil, &ConfigError{Field: "data", Err: err}
		}
		return []byte(s), nil
	case mt == header.Multipart:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		m := r.data.Map()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := w.WriteField(k, m[k]); err != nil {
				return nil, &ConfigError{Field: "data", Err: err}
			}
		}
		if err := w.Close(); err != nil {
			return nil, &ConfigError{Field: "data", Err: err}
		}
		r.headers.Encoding(w.FormDataContentType())
		return buf.Bytes(), nil
	default:
		return []byte(r.data.Query()), nil
	}
}

func (r *Request) setURL(url string) {
	url, r.fragment, _ = strings.Cut(url, "#")
	base, query, ok := strings.Cut(url, "?")
	r.url = base
	if ok && query != "" {
		_ = r.data.Set(query)
	}
}

func (r *Request) setData(input interface{}) error {
	if err := r.data.Set(input); err != nil {
		return &ConfigError{Field: "data", Err: err}
	}
	return nil
}

func (r *Request) resolvedURL() string {
	u := r.url
	if verbs[r.verb].query {
		if q := r.data.Query(); q != "" {
			u += "?" + q
		}
	}
	if r.fragment != "" {
		u += "#" + r.fragment
	}
	return u
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}
