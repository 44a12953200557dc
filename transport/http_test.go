// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReadyState_String(t *testing.T) {
	assert.Equal(t, "unsent", Unsent.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "responseHeaders", ResponseHeaders.String())
	assert.Equal(t, "loadStart", LoadStart.String())
	assert.Equal(t, "complete", Complete.String())
	assert.Equal(t, "ReadyState(9)", ReadyState(9).String())
}

func TestParseResponseType(t *testing.T) {
	for _, rt := range ResponseTypes() {
		parsed, ok := ParseResponseType(string(rt))
		assert.True(t, ok)
		assert.Equal(t, rt, parsed)
	}
	parsed, ok := ParseResponseType("buffer")
	assert.True(t, ok)
	assert.Equal(t, TypeArrayBuffer, parsed)
	_, ok = ParseResponseType("")
	assert.False(t, ok)
	_, ok = ParseResponseType("stream")
	assert.False(t, ok)
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "readystatechange", ReadyStateChange.String())
	assert.Equal(t, "load", Load.String())
	assert.Equal(t, "timeout", Timeout.String())
	assert.Equal(t, "EventKind(42)", EventKind(42).String())
}

func TestHTTP(t *testing.T) {
	t.Run("happy path", testHTTPHappyPath)
	t.Run("open", testHTTPOpen)
	t.Run("invalid state", testHTTPInvalidState)
	t.Run("response types", testHTTPResponseTypes)
	t.Run("timeout", testHTTPTimeout)
	t.Run("abort in flight", testHTTPAbortInFlight)
	t.Run("abort before send", testHTTPAbortBeforeSend)
	t.Run("doer error", testHTTPDoerError)
	t.Run("GET drops body", testHTTPGetDropsBody)
	t.Run("body error discards response", testHTTPBodyError)
}

func testHTTPHappyPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "bar", r.Header.Get("X-Foo"))
		b, _ := ioutil.ReadAll(r.Body)
		assert.Equal(t, "a=1", string(b))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Reply", "ok")
		w.WriteHeader(201)
		_, _ = w.Write([]byte("created"))
	}))
	defer server.Close()

	tr := NewHTTP(server.Client())
	rec := newRecorder(tr)
	require.NoError(t, tr.Open("POST", server.URL+"/things"))
	assert.Equal(t, Ready, tr.ReadyState())
	require.NoError(t, tr.SetRequestHeader("X-Foo", "bar"))
	require.NoError(t, tr.Send([]byte("a=1")))
	rec.wait(t)

	assert.Equal(t, Complete, tr.ReadyState())
	assert.Equal(t, 201, tr.Status())
	assert.Equal(t, "Created", tr.StatusText())
	assert.Equal(t, "created", tr.ResponseText())
	assert.Equal(t, "created", tr.Response())
	assert.Equal(t, server.URL+"/things", tr.ResponseURL())
	assert.Nil(t, tr.ResponseXML())
	headers := tr.AllResponseHeaders()
	assert.Contains(t, headers, "content-type: text/plain; charset=utf-8\r\n")
	assert.Contains(t, headers, "x-reply: ok\r\n")

	assert.Equal(t, []ReadyState{Ready, ResponseHeaders, LoadStart, Complete}, rec.states)
	assert.Equal(t, Load, rec.last().Kind)
	progress := rec.progress()
	require.NotEmpty(t, progress)
	p := progress[len(progress)-1]
	assert.Equal(t, int64(7), p.Loaded)
	assert.Equal(t, int64(7), p.Total)
	assert.True(t, p.LengthComputable)
}

func testHTTPOpen(t *testing.T) {
	testCases := []struct {
		name   string
		base   string
		method string
		url    string
		ok     bool
	}{
		{"absolute", "", "GET", "http://example.com/x", true},
		{"relative with base", "http://example.com/a/", "GET", "b?c=d", true},
		{"relative without base", "", "GET", "/x", false},
		{"empty method", "", "", "http://example.com", false},
		{"bad method", "", "GE T", "http://example.com", false},
		{"bad URL", "", "GET", ":::", false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			tr := NewHTTP(nil)
			if testCase.base != "" {
				base, err := url.Parse(testCase.base)
				require.NoError(t, err)
				tr.Base = base
			}
			err := tr.Open(testCase.method, testCase.url)
			if testCase.ok {
				assert.NoError(t, err)
				assert.Equal(t, Ready, tr.ReadyState())
			} else {
				assert.Error(t, err)
				assert.Equal(t, Unsent, tr.ReadyState())
			}
		})
	}
}

func testHTTPInvalidState(t *testing.T) {
	tr := NewHTTP(nil)
	assert.Equal(t, ErrInvalidState, tr.Send(nil))
	assert.Equal(t, ErrInvalidState, tr.SetRequestHeader("X-Foo", "bar"))
	assert.Equal(t, "", tr.AllResponseHeaders())
	require.NoError(t, tr.Open("GET", "http://example.com"))
	assert.Equal(t, ErrInvalidState, tr.Open("GET", "http://example.com"))
	assert.Error(t, tr.SetRequestHeader("Bad Name", "x"))
	assert.Error(t, tr.SetRequestHeader("X-Foo", "a\nb"))
}

func testHTTPResponseTypes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"a":1,"b":["x"]}`))
		case "/xml":
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<root><item id="1">one</item></root>`))
		case "/html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><p>hi</p></body></html>`))
		}
	}))
	defer server.Close()

	testCases := []struct {
		name    string
		path    string
		rt      ResponseType
		asserts func(*testing.T, *HTTP)
	}{
		{
			name: "json",
			path: "/json",
			rt:   TypeJSON,
			asserts: func(t *testing.T, tr *HTTP) {
				assert.Equal(t, map[string]interface{}{"a": float64(1), "b": []interface{}{"x"}}, tr.Response())
				assert.Equal(t, "", tr.ResponseText())
			},
		},
		{
			name: "arraybuffer",
			path: "/json",
			rt:   TypeArrayBuffer,
			asserts: func(t *testing.T, tr *HTTP) {
				assert.Equal(t, []byte(`{"a":1,"b":["x"]}`), tr.Response())
			},
		},
		{
			name: "blob",
			path: "/json",
			rt:   TypeBlob,
			asserts: func(t *testing.T, tr *HTTP) {
				assert.Equal(t, Blob{Type: "application/json", Data: []byte(`{"a":1,"b":["x"]}`)}, tr.Response())
			},
		},
		{
			name: "default xml",
			path: "/xml",
			rt:   TypeDefault,
			asserts: func(t *testing.T, tr *HTTP) {
				doc := tr.ResponseXML()
				require.NotNil(t, doc)
				assert.False(t, doc.IsHTML())
				items := doc.Root.Find("item")
				require.Len(t, items, 1)
				assert.Equal(t, "one", items[0].Text)
				assert.Equal(t, "1", items[0].Attribute("id"))
			},
		},
		{
			name: "default html is not parsed",
			path: "/html",
			rt:   TypeDefault,
			asserts: func(t *testing.T, tr *HTTP) {
				assert.Nil(t, tr.ResponseXML())
				assert.Contains(t, tr.ResponseText(), "<p>hi</p>")
			},
		},
		{
			name: "document html",
			path: "/html",
			rt:   TypeDocument,
			asserts: func(t *testing.T, tr *HTTP) {
				doc := tr.ResponseXML()
				require.NotNil(t, doc)
				assert.True(t, doc.IsHTML())
				assert.Same(t, doc, tr.Response())
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			tr := NewHTTP(server.Client())
			rec := newRecorder(tr)
			require.NoError(t, tr.Open("GET", server.URL+testCase.path))
			require.NoError(t, tr.SetResponseType(testCase.rt))
			assert.Equal(t, testCase.rt, tr.ResponseType())
			require.NoError(t, tr.Send(nil))
			rec.wait(t)
			assert.Equal(t, ErrInvalidState, tr.SetResponseType(TypeText))
			testCase.asserts(t, tr)
		})
	}
}

func testHTTPTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	tr := NewHTTP(server.Client())
	rec := newRecorder(tr)
	tr.SetTimeout(20 * time.Millisecond)
	require.NoError(t, tr.Open("GET", server.URL))
	require.NoError(t, tr.Send(nil))
	rec.wait(t)
	assert.Equal(t, Complete, tr.ReadyState())
	assert.Equal(t, Timeout, rec.last().Kind)
	var urlErr *url.Error
	assert.True(t, errors.As(rec.last().Detail.(error), &urlErr))
}

func testHTTPAbortInFlight(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	tr := NewHTTP(server.Client())
	rec := newRecorder(tr)
	require.NoError(t, tr.Open("GET", server.URL))
	require.NoError(t, tr.Send(nil))
	<-started
	tr.Abort()
	rec.wait(t)
	assert.Equal(t, Abort, rec.last().Kind)
	assert.Equal(t, Complete, tr.ReadyState())
}

func testHTTPAbortBeforeSend(t *testing.T) {
	tr := NewHTTP(nil)
	tr.Abort()
	assert.Equal(t, Unsent, tr.ReadyState())
	rec := newRecorder(tr)
	require.NoError(t, tr.Open("GET", "http://example.com"))
	tr.Abort()
	rec.wait(t)
	assert.Equal(t, []EventKind{ReadyStateChange, ReadyStateChange, Abort}, rec.kinds())
	assert.Equal(t, ErrInvalidState, tr.Send(nil))
	tr.Abort()
	assert.Len(t, rec.kinds(), 3)
}

func testHTTPDoerError(t *testing.T) {
	m := newMockHTTPDoer(t)
	m.On("Do", mock.Anything).Return(nil, errors.New("boom")).Once()
	tr := NewHTTP(m)
	rec := newRecorder(tr)
	require.NoError(t, tr.Open("PUT", "http://example.com/x"))
	require.NoError(t, tr.Send([]byte("body")))
	rec.wait(t)
	m.AssertExpectations(t)
	ev := rec.last()
	assert.Equal(t, Error, ev.Kind)
	assert.EqualError(t, ev.Detail.(error), `Put "http://example.com/x": boom`)
}

func testHTTPGetDropsBody(t *testing.T) {
	m := newMockHTTPDoer(t)
	resp := &http.Response{
		StatusCode: 204,
		Status:     "204 No Content",
		Header:     http.Header{},
		Body:       ioutil.NopCloser(strings.NewReader("")),
	}
	m.On("Do", mock.MatchedBy(func(r *http.Request) bool {
		return r.Body == nil && r.Method == "GET"
	})).Return(resp, nil).Once()
	tr := NewHTTP(m)
	rec := newRecorder(tr)
	require.NoError(t, tr.Open("GET", "http://example.com"))
	require.NoError(t, tr.Send([]byte("ignored")))
	rec.wait(t)
	m.AssertExpectations(t)
	assert.Equal(t, 204, tr.Status())
	assert.Equal(t, "No Content", tr.StatusText())
	assert.Equal(t, Load, rec.last().Kind)
}

func testHTTPBodyError(t *testing.T) {
	m := newMockHTTPDoer(t)
	resp := &http.Response{
		StatusCode:    200,
		Status:        "200 OK",
		Header:        http.Header{"Content-Type": {"text/plain"}},
		Body:          ioutil.NopCloser(iotest.ErrReader(errors.New("connection reset"))),
		ContentLength: -1,
	}
	m.On("Do", mock.Anything).Return(resp, nil).Once()
	tr := NewHTTP(m)
	rec := newRecorder(tr)
	require.NoError(t, tr.Open("GET", "http://example.com"))
	require.NoError(t, tr.Send(nil))
	rec.wait(t)
	m.AssertExpectations(t)
	assert.Equal(t, Error, rec.last().Kind)
	assert.Equal(t, []ReadyState{Ready, ResponseHeaders, LoadStart, Complete}, rec.states)
	assert.Equal(t, Complete, tr.ReadyState())
	assert.Equal(t, 0, tr.Status())
	assert.Equal(t, "", tr.StatusText())
	assert.Equal(t, "", tr.AllResponseHeaders())
	assert.Equal(t, "", tr.ResponseText())
	assert.Nil(t, tr.Response())
}

type recorder struct {
	tr     *HTTP
	mu     sync.Mutex
	events []Event
	states []ReadyState
	done   chan struct{}
}

func newRecorder(tr *HTTP) *recorder {
	rec := &recorder{tr: tr, done: make(chan struct{})}
	tr.Listen(func(ev Event) {
		rec.mu.Lock()
		rec.events = append(rec.events, ev)
		if ev.Kind == ReadyStateChange {
			rec.states = append(rec.states, tr.ReadyState())
		}
		rec.mu.Unlock()
		switch ev.Kind {
		case Load, Abort, Error, Timeout:
			close(rec.done)
		}
	})
	return rec
}

func (rec *recorder) wait(t *testing.T) {
	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "transport did not finish")
	}
}

func (rec *recorder) kinds() []EventKind {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	kinds := make([]EventKind, len(rec.events))
	for i, ev := range rec.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func (rec *recorder) progress() []Progress {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var ps []Progress
	for _, ev := range rec.events {
		if ev.Kind == ProgressEvent {
			ps = append(ps, ev.Detail.(Progress))
		}
	}
	return ps
}

func (rec *recorder) last() Event {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.events[len(rec.events)-1]
}

type mockHTTPDoer struct {
	mock.Mock
}

func newMockHTTPDoer(t *testing.T) *mockHTTPDoer {
	m := &mockHTTPDoer{}
	m.Test(t)
	return m
}

func (m *mockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	err := args.Error(1)
	if resp, ok := args.Get(0).(*http.Response); ok {
		return resp, err
	}
	return nil, err
}
