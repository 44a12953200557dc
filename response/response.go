// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gogama/questal/transport"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// A Source is the part of a transport a Response reads from.
// Every transport.Transport is a Source.
type Source interface {
	AllResponseHeaders() string
	ReadyState() transport.ReadyState
	SetResponseType(t transport.ResponseType) error
	ResponseType() transport.ResponseType
	Status() int
	StatusText() string
	ResponseText() string
	Response() interface{}
	ResponseXML() *transport.Document
	ResponseURL() string
}

// A Response is a lazy view of the response of one exchange.
type Response struct {
	src     Source
	hasBody bool
	log     zerolog.Logger
}

// New returns a view of src. If omitBody is set, as for a HEAD
// request, the body accessors report the headers or empty values
// instead of reading the body.
func New(src Source, omitBody bool, log zerolog.Logger) *Response {
	if src == nil {
		panic("questal/response: nil source")
	}
	return &Response{src: src, hasBody: !omitBody, log: log}
}

// HasBody reports whether a response body is expected.
func (r *Response) HasBody() bool {
	return r.hasBody
}

// Headers parses the response headers. If a response type was set,
// it is included under responseType.
func (r *Response) Headers() Headers {
	h := ParseHeaders(r.src.AllResponseHeaders())
	if t := r.src.ResponseType(); t != transport.TypeDefault {
		h["responseType"] = string(t)
	}
	return h
}

// URL returns the final response URL.
func (r *Response) URL() string {
	return r.src.ResponseURL()
}

// Result returns the raw response: the body text if the response type
// is unset or text, the typed payload otherwise, and the Headers if the
// body is omitted.
func (r *Response) Result() interface{} {
	if !r.hasBody {
		return r.Headers()
	}
	switch r.src.ResponseType() {
	case transport.TypeDefault, transport.TypeText:
		return r.src.ResponseText()
	default:
		return r.src.Response()
	}
}

// JSON decodes Result as JSON. If the decoded value is itself a
// string, it is decoded again, so a JSON document sent as a JSON string
// comes back as the document. If Result is not a string or byte slice,
// or does not decode, it is returned unchanged. With the body omitted,
// JSON returns an empty slice.
func (r *Response) JSON() interface{} {
	if !r.hasBody {
		return []interface{}{}
	}
	res := r.Result()
	var s string
	switch x := res.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return res
	}
	if !gjson.Valid(s) {
		return res
	}
	v := gjson.Parse(s).Value()
	if inner, ok := v.(string); ok {
		if !gjson.Valid(inner) {
			return res
		}
		return gjson.Parse(inner).Value()
	}
	return v
}

// Text serializes JSON back to text. Every value, strings and nil
// included, is encoded as JSON; a value that cannot be encoded is
// formatted with fmt.Sprint. With the body omitted, Text returns "".
func (r *Response) Text() string {
	if !r.hasBody {
		return ""
	}
	v := r.JSON()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Body returns the response body as received: the text for the text
// response types, the bytes of a byte payload, and Text otherwise.
func (r *Response) Body() string {
	switch x := r.Result().(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return r.Text()
	}
}

// Get queries the body with a gjson path, for example "items.0.id".
func (r *Response) Get(path string) gjson.Result {
	return gjson.Get(r.Body(), path)
}

// XML returns the parsed response document, or nil.
func (r *Response) XML() *transport.Document {
	if !r.hasBody {
		return nil
	}
	return r.src.ResponseXML()
}

// HTML returns the parsed response document if the response type is
// document, and nil otherwise.
func (r *Response) HTML() *transport.Document {
	if !r.hasBody || r.src.ResponseType() != transport.TypeDocument {
		return nil
	}
	return r.src.ResponseXML()
}

// SetType selects how the transport decodes the body. The name must be
// one of arraybuffer (or its alias buffer), blob, document, text or
// json, and it must be set before the response headers arrive.
// Otherwise a warning is logged, the previous type stays in effect,
// and SetType returns false.
func (r *Response) SetType(name string) bool {
	t, ok := transport.ParseResponseType(name)
	if !ok {
		r.log.Warn().Str("type", name).Msg("invalid response type")
		return false
	}
	if r.src.ReadyState() >= transport.ResponseHeaders {
		r.log.Warn().Str("type", name).Msg("headers already sent, response type unchanged")
		return false
	}
	if err := r.src.SetResponseType(t); err != nil {
		r.log.Warn().Err(err).Str("type", name).Msg("response type rejected by transport")
		return false
	}
	return true
}

// Type returns the response type.
func (r *Response) Type() transport.ResponseType {
	return r.src.ResponseType()
}

// Status returns the response reason phrase.
func (r *Response) Status() string {
	return r.src.StatusText()
}

// Code returns the response status code.
func (r *Response) Code() int {
	return r.src.Status()
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return IsSuccess(r.Code())
}

// Success304 reports whether code is 2xx or 304. A 304 is logged as a
// cache hit.
func (r *Response) Success304(code int) bool {
	if code == 304 {
		r.log.Warn().Int("code", code).Msg("server returned cached version of data")
	}
	return IsSuccess(code) || code == 304
}

// IsSuccess reports whether code is 2xx.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
