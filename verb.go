// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package questal

import "strings"

// A Method selects the verb behavior of a Request.
//
// MethodGeneric requests take their HTTP method from configuration and
// may change it with SetMethod. Every other Method fixes the HTTP
// method and selects how parameters are sent, the default Accept list,
// and the success predicate.
type Method int

const (
	// MethodGeneric is a request with a settable HTTP method. Do
	// sends its parameters as the body.
	MethodGeneric Method = iota
	// MethodGet folds parameters into the URL query, accepts plain
	// text, XML and HTML by default, and treats 304 as success.
	MethodGet
	// MethodPost sends parameters as the body, accepts JSON by
	// default, and treats 304 as success.
	MethodPost
	// MethodPut sends parameters as the body.
	MethodPut
	// MethodPatch sends parameters as the body.
	MethodPatch
	// MethodDelete folds parameters into the URL query and accepts
	// plain text, XML and HTML by default.
	MethodDelete
	// MethodHead sends no body and expects none.
	MethodHead
	methodSentinel
)

type verb struct {
	name       string
	query      bool
	body       bool
	accept     []string
	success304 bool
	omitBody   bool
}

var (
	readAccept  = []string{"plain", "xml", "html"}
	writeAccept = []string{"application/json"}
)

var verbs = [...]verb{
	MethodGeneric: {body: true},
	MethodGet:     {name: "GET", query: true, accept: readAccept, success304: true},
	MethodPost:    {name: "POST", body: true, accept: writeAccept, success304: true},
	MethodPut:     {name: "PUT", body: true},
	MethodPatch:   {name: "PATCH", body: true},
	MethodDelete:  {name: "DELETE", query: true, accept: readAccept},
	MethodHead:    {name: "HEAD", omitBody: true},
}

// MethodFor returns the Method whose HTTP method is name, compared
// without regard to case, or MethodGeneric.
func MethodFor(name string) Method {
	for m := MethodGet; m < methodSentinel; m++ {
		if strings.EqualFold(verbs[m].name, name) {
			return m
		}
	}
	return MethodGeneric
}

// Fixed reports whether m fixes the HTTP method.
func (m Method) Fixed() bool {
	return m != MethodGeneric
}

// String returns the HTTP method fixed by m, or "generic".
func (m Method) String() string {
	if m == MethodGeneric {
		return "generic"
	}
	return verbs[m].name
}

// DefaultAccept returns the Accept tokens applied when none were
// configured.
func (m Method) DefaultAccept() []string {
	return append([]string(nil), verbs[m].accept...)
}
