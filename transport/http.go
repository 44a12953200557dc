// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gogama/questal/transient"
	"github.com/tidwall/gjson"
	"golang.org/x/net/http/httpguts"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	Do(r *http.Request) (*http.Response, error)
}

const chunkSize = 32 * 1024

// HTTP is a Transport that performs its exchange with an HTTPDoer.
//
// Open runs synchronously. Send starts a single goroutine that sends
// the request, reads the response and delivers the remaining
// notifications; it is the only goroutine that fires events once the
// exchange is in flight.
//
// An HTTP value must not be copied after first use, and performs at
// most one exchange.
type HTTP struct {
	// Doer sends the request. If nil, http.DefaultClient is used.
	Doer HTTPDoer
	// Base, if set, is used to resolve relative URLs passed to Open.
	Base *url.URL

	mu          sync.Mutex
	state       ReadyState
	listeners   []Listener
	method      string
	url         *url.URL
	header      http.Header
	respType    ResponseType
	timeout     time.Duration
	credentials bool
	sent        bool
	aborted     bool
	cancel      context.CancelFunc

	status     int
	statusText string
	respURL    string
	respHeader http.Header
	body       []byte
	value      interface{}
	doc        *Document
}

// NewHTTP returns a transport which sends its request with d. The
// transport sends credentials (cookies from the doer's jar) by default.
func NewHTTP(d HTTPDoer) *HTTP {
	return &HTTP{Doer: d, credentials: true}
}

// CarriesDetail always returns true.
func (h *HTTP) CarriesDetail() bool {
	return true
}

// Listen installs l. Listeners run in installation order.
func (h *HTTP) Listen(l Listener) {
	if l == nil {
		panic("questal/transport: nil listener")
	}
	h.mu.Lock()
	h.listeners = append(h.listeners, l)
	h.mu.Unlock()
}

// Open validates the method and URL and moves the transport to Ready.
func (h *HTTP) Open(method, rawURL string) error {
	if method == "" || strings.IndexFunc(method, isNotToken) != -1 {
		return fmt.Errorf("questal/transport: invalid method %q", method)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if h.Base != nil {
		u = h.Base.ResolveReference(u)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("questal/transport: URL %q is not absolute", u.String())
	}

	h.mu.Lock()
	if h.state != Unsent {
		h.mu.Unlock()
		return ErrInvalidState
	}
	h.method = method
	h.url = u
	h.header = make(http.Header)
	h.state = Ready
	h.mu.Unlock()

	h.emit(Event{Kind: ReadyStateChange})
	return nil
}

// SetRequestHeader adds a request header. It returns ErrInvalidState
// unless the transport is Ready and unsent, and an error if the name
// or value is not valid HTTP.
func (h *HTTP) SetRequestHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("questal/transport: invalid header name %q", name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("questal/transport: invalid value for header %q", name)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != Ready || h.sent {
		return ErrInvalidState
	}
	h.header.Add(name, value)
	return nil
}

// SetResponseType selects the response decoding.
func (h *HTTP) SetResponseType(t ResponseType) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state >= ResponseHeaders {
		return ErrInvalidState
	}
	h.respType = t
	return nil
}

// ResponseType returns the selected response decoding.
func (h *HTTP) ResponseType() ResponseType {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.respType
}

// SetTimeout sets the exchange timeout. It has no effect on an
// exchange already in flight.
func (h *HTTP) SetTimeout(d time.Duration) {
	h.mu.Lock()
	h.timeout = d
	h.mu.Unlock()
}

// SetWithCredentials controls whether the doer's cookie jar is used.
// Turning credentials off only has an effect if the doer is an
// *http.Client.
func (h *HTTP) SetWithCredentials(b bool) {
	h.mu.Lock()
	h.credentials = b
	h.mu.Unlock()
}

// ReadyState returns the current ready state.
func (h *HTTP) ReadyState() ReadyState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Send starts the exchange. GET and HEAD requests never carry a body.
func (h *HTTP) Send(body []byte) error {
	h.mu.Lock()
	if h.state != Ready || h.sent {
		h.mu.Unlock()
		return ErrInvalidState
	}
	ctx, cancel := context.Background(), context.CancelFunc(nil)
	if h.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	if h.method == http.MethodGet || h.method == http.MethodHead {
		body = nil
	}
	var rd io.Reader
	if len(body) > 0 {
		rd = bytes.NewReader(body)
	}
	r, err := http.NewRequestWithContext(ctx, h.method, h.url.String(), rd)
	if err != nil {
		h.mu.Unlock()
		cancel()
		return err
	}
	r.Header = h.header.Clone()
	h.sent = true
	h.cancel = cancel
	doer := h.doer()
	h.mu.Unlock()

	go h.run(doer, r, cancel)
	return nil
}

// Abort cancels the exchange. If the request was opened but never
// sent, the transport completes immediately and fires Abort from the
// calling goroutine; otherwise the exchange goroutine fires it.
func (h *HTTP) Abort() {
	h.mu.Lock()
	switch {
	case h.state == Unsent || h.state == Complete:
		h.mu.Unlock()
	case h.sent:
		h.aborted = true
		cancel := h.cancel
		h.mu.Unlock()
		cancel()
	default:
		h.aborted = true
		h.state = Complete
		h.mu.Unlock()
		h.emit(Event{Kind: ReadyStateChange})
		h.emit(Event{Kind: Abort})
	}
}

// Status returns the response status code, or 0.
func (h *HTTP) Status() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// StatusText returns the response reason phrase.
func (h *HTTP) StatusText() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.statusText
}

// ResponseURL returns the final request URL, after redirects.
func (h *HTTP) ResponseURL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.respURL
}

// AllResponseHeaders renders the response headers sorted by name.
func (h *HTTP) AllResponseHeaders() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state < ResponseHeaders || h.respHeader == nil {
		return ""
	}
	names := make([]string, 0, len(h.respHeader))
	for name := range h.respHeader {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		b.WriteString(strings.ToLower(name))
		b.WriteString(": ")
		b.WriteString(strings.Join(h.respHeader[name], ", "))
		b.WriteString("\r\n")
	}
	return b.String()
}

// ResponseText returns the body as text, or "" if the response type
// is neither TypeDefault nor TypeText.
func (h *HTTP) ResponseText() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.respType != TypeDefault && h.respType != TypeText {
		return ""
	}
	return string(h.body)
}

// Response returns the decoded body. It is nil until Complete.
func (h *HTTP) Response() interface{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

// ResponseXML returns the parsed document, or nil.
func (h *HTTP) ResponseXML() *Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.doc
}

func (h *HTTP) doer() HTTPDoer {
	d := h.Doer
	if d == nil {
		d = http.DefaultClient
	}
	if c, ok := d.(*http.Client); ok && !h.credentials && c.Jar != nil {
		c2 := *c
		c2.Jar = nil
		d = &c2
	}
	return d
}

func (h *HTTP) run(doer HTTPDoer, r *http.Request, cancel context.CancelFunc) {
	defer cancel()
	resp, err := doer.Do(r)
	if err != nil {
		h.fail(r, err)
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	h.mu.Lock()
	h.status = resp.StatusCode
	h.statusText = statusText(resp)
	h.respHeader = resp.Header
	h.respURL = r.URL.String()
	if resp.Request != nil && resp.Request.URL != nil {
		h.respURL = resp.Request.URL.String()
	}
	h.state = ResponseHeaders
	h.mu.Unlock()
	h.emit(Event{Kind: ReadyStateChange})

	h.advance(LoadStart)

	body, err := h.readBody(resp)
	if err != nil {
		h.fail(r, err)
		return
	}

	h.mu.Lock()
	h.body = body
	h.value, h.doc = decode(h.respType, resp.Header.Get("Content-Type"), body)
	h.state = Complete
	h.mu.Unlock()
	h.emit(Event{Kind: ReadyStateChange})
	h.emit(Event{Kind: Load})
}

func (h *HTTP) readBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	p := Progress{Total: resp.ContentLength, LengthComputable: resp.ContentLength >= 0}
	if !p.LengthComputable {
		p.Total = 0
	}
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			p.Loaded += int64(n)
			h.emit(Event{Kind: ProgressEvent, Detail: p})
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		} else if err != nil {
			return nil, err
		}
	}
}

// fail completes a failed exchange, discarding any response received
// so far, and fires the terminal event.
func (h *HTTP) fail(r *http.Request, err error) {
	h.mu.Lock()
	aborted := h.aborted
	h.state = Complete
	h.status, h.statusText = 0, ""
	h.respHeader = nil
	h.body, h.value, h.doc = nil, nil, nil
	h.mu.Unlock()
	h.emit(Event{Kind: ReadyStateChange})

	switch transient.Categorize(err) {
	case transient.Timeout:
		h.emit(Event{Kind: Timeout, Detail: urlErrorWrap(r, err)})
	case transient.Canceled:
		if aborted {
			h.emit(Event{Kind: Abort})
			return
		}
		fallthrough
	default:
		h.emit(Event{Kind: Error, Detail: urlErrorWrap(r, err)})
	}
}

func (h *HTTP) advance(s ReadyState) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
	h.emit(Event{Kind: ReadyStateChange})
}

func (h *HTTP) emit(ev Event) {
	h.mu.Lock()
	ls := h.listeners
	h.mu.Unlock()
	for _, l := range ls {
		l(ev)
	}
}

func decode(t ResponseType, contentType string, body []byte) (interface{}, *Document) {
	switch t {
	case TypeArrayBuffer:
		return body, nil
	case TypeBlob:
		return Blob{Type: contentType, Data: body}, nil
	case TypeJSON:
		if !gjson.ValidBytes(body) {
			return nil, nil
		}
		return gjson.ParseBytes(body).Value(), nil
	case TypeDocument:
		doc, _ := ParseDocument(contentType, body, true)
		if doc == nil {
			return nil, nil
		}
		return doc, doc
	default:
		doc, _ := ParseDocument(contentType, body, false)
		return string(body), doc
	}
}

func statusText(resp *http.Response) string {
	prefix := strconv.Itoa(resp.StatusCode) + " "
	if strings.HasPrefix(resp.Status, prefix) {
		return resp.Status[len(prefix):]
	}
	return http.StatusText(resp.StatusCode)
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}

func urlErrorWrap(r *http.Request, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(r.Method),
		URL: r.URL.String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
