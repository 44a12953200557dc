// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package response

import (
	"bytes"
	"testing"

	"github.com/gogama/questal/transport"
	"github.com/gogama/questal/transport/transporttest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonHeaders = "Content-Type: application/json; charset=utf-8\r\n"

func newTestResponse(t *testing.T, omitBody bool) (*Response, *transporttest.Fake, *bytes.Buffer) {
	var buf bytes.Buffer
	f := transporttest.New()
	require.NoError(t, f.Open("GET", "http://example.com/items"))
	return New(f, omitBody, zerolog.New(&buf)), f, &buf
}

func TestNewNilSource(t *testing.T) {
	assert.PanicsWithValue(t, "questal/response: nil source", func() {
		New(nil, false, zerolog.Nop())
	})
}

func TestIsSuccess(t *testing.T) {
	for _, code := range []int{200, 201, 204, 299} {
		assert.True(t, IsSuccess(code), code)
	}
	for _, code := range []int{0, 100, 199, 300, 304, 404, 500} {
		assert.False(t, IsSuccess(code), code)
	}
}

func TestResponse_Headers(t *testing.T) {
	r, f, _ := newTestResponse(t, false)
	assert.Empty(t, r.Headers())
	f.Respond(200, jsonHeaders, "{}")
	assert.Equal(t, Headers{
		"contentType": "application/json",
		"encoding":    "json",
		"charset":     "utf-8",
	}, r.Headers())

	r, f, _ = newTestResponse(t, false)
	require.True(t, r.SetType("json"))
	f.Respond(200, jsonHeaders, "{}")
	assert.Equal(t, "json", r.Headers()["responseType"])
}

func TestResponse_JSON(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		expect interface{}
	}{
		{"object", `{"a":1}`, map[string]interface{}{"a": float64(1)}},
		{"array", `[1,"x"]`, []interface{}{float64(1), "x"}},
		{"double encoded", `"{\"a\":1}"`, map[string]interface{}{"a": float64(1)}},
		{"plain string", `"hello"`, `"hello"`},
		{"not json", "hello world", "hello world"},
		{"number", "42", float64(42)},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			r, f, _ := newTestResponse(t, false)
			f.Respond(200, jsonHeaders, testCase.body)
			assert.Equal(t, testCase.expect, r.JSON())
		})
	}
	t.Run("typed payload", func(t *testing.T) {
		r, f, _ := newTestResponse(t, false)
		require.True(t, r.SetType("json"))
		f.Respond(200, jsonHeaders, `{"a":[1,2]}`)
		assert.Equal(t, map[string]interface{}{"a": []interface{}{float64(1), float64(2)}}, r.JSON())
	})
	t.Run("buffer", func(t *testing.T) {
		r, f, _ := newTestResponse(t, false)
		require.True(t, r.SetType("buffer"))
		f.Respond(200, jsonHeaders, `{"a":1}`)
		assert.Equal(t, []byte(`{"a":1}`), r.Result())
		assert.Equal(t, map[string]interface{}{"a": float64(1)}, r.JSON())
	})
	t.Run("omitted body", func(t *testing.T) {
		r, f, _ := newTestResponse(t, true)
		f.Respond(200, jsonHeaders, "")
		assert.Equal(t, []interface{}{}, r.JSON())
	})
}

func TestResponse_Text(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		expect string
	}{
		{"object", `{"b":2,"a":1}`, `{"a":1,"b":2}`},
		{"double encoded", `"{\"a\":1}"`, `{"a":1}`},
		{"raw text", "plain old text", `"plain old text"`},
		{"null", "null", "null"},
		{"empty", "", `""`},
		{"markup", "<b>&</b>", `"<b>&</b>"`},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			r, f, _ := newTestResponse(t, false)
			f.Respond(200, "Content-Type: text/plain\r\n", testCase.body)
			assert.Equal(t, testCase.expect, r.Text())
		})
	}
	t.Run("omitted body", func(t *testing.T) {
		r, f, _ := newTestResponse(t, true)
		f.Respond(200, "", "ignored")
		assert.Equal(t, "", r.Text())
	})
}

func TestResponse_Body(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		r, f, _ := newTestResponse(t, false)
		f.Respond(200, "Content-Type: text/plain\r\n", "plain old text")
		assert.Equal(t, "plain old text", r.Body())
	})
	t.Run("buffer", func(t *testing.T) {
		r, f, _ := newTestResponse(t, false)
		require.True(t, r.SetType("arraybuffer"))
		f.Respond(200, jsonHeaders, `{"b":2,"a":1}`)
		assert.Equal(t, `{"b":2,"a":1}`, r.Body())
	})
	t.Run("json", func(t *testing.T) {
		r, f, _ := newTestResponse(t, false)
		require.True(t, r.SetType("json"))
		f.Respond(200, jsonHeaders, `{"b":2,"a":1}`)
		assert.Equal(t, `{"a":1,"b":2}`, r.Body())
	})
	t.Run("omitted body", func(t *testing.T) {
		r, f, _ := newTestResponse(t, true)
		f.Respond(200, "", "ignored")
		assert.Equal(t, "", r.Body())
	})
}

func TestResponse_Get(t *testing.T) {
	r, f, _ := newTestResponse(t, false)
	f.Respond(200, jsonHeaders, `{"items":[{"id":7},{"id":8}]}`)
	assert.Equal(t, int64(8), r.Get("items.1.id").Int())
	assert.Equal(t, int64(2), r.Get("items.#").Int())
	assert.False(t, r.Get("missing").Exists())

	r, f, _ = newTestResponse(t, false)
	require.True(t, r.SetType("json"))
	f.Respond(200, jsonHeaders, `{"name":"questal"}`)
	assert.Equal(t, "questal", r.Get("name").String())
}

func TestResponse_Result(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		r, f, _ := newTestResponse(t, false)
		f.Respond(200, "", "body")
		assert.Equal(t, "body", r.Result())
	})
	t.Run("blob", func(t *testing.T) {
		r, f, _ := newTestResponse(t, false)
		require.True(t, r.SetType("blob"))
		f.Respond(200, "Content-Type: image/png\r\n", "PNG")
		assert.Equal(t, transport.Blob{Type: "image/png", Data: []byte("PNG")}, r.Result())
	})
	t.Run("omitted body", func(t *testing.T) {
		r, f, _ := newTestResponse(t, true)
		f.Respond(200, "X-Count: 3\r\n", "")
		assert.False(t, r.HasBody())
		assert.Equal(t, Headers{"xCount": "3"}, r.Result())
		assert.Nil(t, r.XML())
		assert.Nil(t, r.HTML())
	})
}

func TestResponse_Documents(t *testing.T) {
	t.Run("xml", func(t *testing.T) {
		r, f, _ := newTestResponse(t, false)
		f.Respond(200, "Content-Type: application/xml\r\n", "<feed><title>Hi</title></feed>")
		doc := r.XML()
		require.NotNil(t, doc)
		assert.False(t, doc.IsHTML())
		titles := doc.Root.Find("title")
		require.Len(t, titles, 1)
		assert.Equal(t, "Hi", titles[0].Text)
		assert.Nil(t, r.HTML())
	})
	t.Run("html", func(t *testing.T) {
		r, f, _ := newTestResponse(t, false)
		require.True(t, r.SetType("document"))
		f.Respond(200, "Content-Type: text/html\r\n", "<html><body><p>Hi</p></body></html>")
		doc := r.HTML()
		require.NotNil(t, doc)
		assert.True(t, doc.IsHTML())
	})
	t.Run("html needs document type", func(t *testing.T) {
		r, f, _ := newTestResponse(t, false)
		f.Respond(200, "Content-Type: text/html\r\n", "<html></html>")
		assert.Nil(t, r.XML())
		assert.Nil(t, r.HTML())
	})
}

func TestResponse_SetType(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, name := range []string{"arraybuffer", "buffer", "blob", "document", "text", "json"} {
			r, _, buf := newTestResponse(t, false)
			assert.True(t, r.SetType(name), name)
			assert.Empty(t, buf.String())
		}
	})
	t.Run("invalid", func(t *testing.T) {
		r, f, buf := newTestResponse(t, false)
		require.True(t, r.SetType("json"))
		assert.False(t, r.SetType("yaml"))
		assert.Equal(t, transport.TypeJSON, r.Type())
		assert.Equal(t, transport.TypeJSON, f.Type)
		assert.Contains(t, buf.String(), "invalid response type")
	})
	t.Run("too late", func(t *testing.T) {
		r, f, buf := newTestResponse(t, false)
		f.Advance(transport.ResponseHeaders)
		assert.False(t, r.SetType("json"))
		assert.Equal(t, transport.TypeDefault, r.Type())
		assert.Contains(t, buf.String(), "headers already sent")
	})
}

func TestResponse_Status(t *testing.T) {
	r, f, _ := newTestResponse(t, false)
	f.Respond(404, "", "")
	assert.Equal(t, 404, r.Code())
	assert.Equal(t, "Not Found", r.Status())
	assert.False(t, r.IsSuccess())
	assert.Equal(t, "http://example.com/items", r.URL())
}

func TestResponse_Success304(t *testing.T) {
	r, _, buf := newTestResponse(t, false)
	assert.True(t, r.Success304(200))
	assert.Empty(t, buf.String())
	assert.False(t, r.Success304(404))
	assert.Empty(t, buf.String())
	assert.True(t, r.Success304(304))
	assert.Contains(t, buf.String(), "server returned cached version of data")
}
