// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package questal

import (
	"github.com/gogama/questal/request"
)

// Requester is the interface that wraps the basic Request method.
//
// Request creates an unopened request for an HTTP method and a
// configuration. Client implements the Requester interface, and any
// other Requester implementation must behave substantially the same as
// Client.Request.
//
// Any Requester can be converted into a Dispatcher via the Inflate
// function.
type Requester interface {
	Request(method string, cfg *request.Config) (*Request, error)
}

// Getter is the interface that wraps the basic Get method.
//
// Get creates a GET request, sends it with data folded into the query
// string, and returns the in-flight request.
type Getter interface {
	Get(url string, data interface{}) (*Request, error)
}

// Poster is the interface that wraps the basic Post method.
//
// Post creates a POST request, sends it with data as the body, and
// returns the in-flight request.
type Poster interface {
	Post(url string, data interface{}) (*Request, error)
}

// Putter is the interface that wraps the basic Put method.
type Putter interface {
	Put(url string, data interface{}) (*Request, error)
}

// Patcher is the interface that wraps the basic Patch method.
type Patcher interface {
	Patch(url string, data interface{}) (*Request, error)
}

// Deleter is the interface that wraps the basic Delete method.
type Deleter interface {
	Delete(url string, data interface{}) (*Request, error)
}

// Header is the interface that wraps the basic Head method.
//
// Head creates a HEAD request, sends it, and returns the in-flight
// request. Its response has no body; observe ResponseHeaders or
// Complete to read the headers.
type Header interface {
	Head(url string) (*Request, error)
}

// Dispatcher is the interface that groups the basic Request, Get, Post,
// Put, Patch, Delete and Head methods.
//
// Any Requester can be converted into a Dispatcher via the Inflate
// function.
type Dispatcher interface {
	Requester
	Getter
	Poster
	Putter
	Patcher
	Deleter
	Header
}

// Get uses the specified Requester to create a GET request and send it
// to url with data folded into the query string.
//
// If the request cannot be created, Get returns a nil request and the
// error. If it cannot be sent, Get returns the request and the error.
func Get(r Requester, url string, data interface{}) (*Request, error) {
	return dispatch(r, "GET", url, data)
}

// Post uses the specified Requester to create a POST request and send
// it to url with data as the body.
func Post(r Requester, url string, data interface{}) (*Request, error) {
	return dispatch(r, "POST", url, data)
}

// Put uses the specified Requester to create a PUT request and send it
// to url with data as the body.
func Put(r Requester, url string, data interface{}) (*Request, error) {
	return dispatch(r, "PUT", url, data)
}

// Patch uses the specified Requester to create a PATCH request and send
// it to url with data as the body.
func Patch(r Requester, url string, data interface{}) (*Request, error) {
	return dispatch(r, "PATCH", url, data)
}

// Delete uses the specified Requester to create a DELETE request and
// send it to url with data folded into the query string.
func Delete(r Requester, url string, data interface{}) (*Request, error) {
	return dispatch(r, "DELETE", url, data)
}

// Head uses the specified Requester to create a HEAD request and send
// it to url.
func Head(r Requester, url string) (*Request, error) {
	return dispatch(r, "HEAD", url, nil)
}

func dispatch(r Requester, method, url string, data interface{}) (*Request, error) {
	req, err := r.Request(method, nil)
	if err != nil {
		return nil, err
	}
	return req, req.Do(url, data)
}

// Inflate converts any non-nil Requester into a Dispatcher. This may be
// helpful for interop across library boundaries, i.e. if code that only
// has access to a Requester needs to call a function that requires a
// Dispatcher.
func Inflate(r Requester) Dispatcher {
	if r == nil {
		panic("questal: nil requester")
	}

	if d, ok := r.(Dispatcher); ok {
		return d
	}

	return inflated{r}
}

type inflated struct {
	requester Requester
}

func (i inflated) Request(method string, cfg *request.Config) (*Request, error) {
	return i.requester.Request(method, cfg)
}

func (i inflated) Get(url string, data interface{}) (*Request, error) {
	return Get(i.requester, url, data)
}

func (i inflated) Post(url string, data interface{}) (*Request, error) {
	return Post(i.requester, url, data)
}

func (i inflated) Put(url string, data interface{}) (*Request, error) {
	return Put(i.requester, url, data)
}

func (i inflated) Patch(url string, data interface{}) (*Request, error) {
	return Patch(i.requester, url, data)
}

func (i inflated) Delete(url string, data interface{}) (*Request, error) {
	return Delete(i.requester, url, data)
}

func (i inflated) Head(url string) (*Request, error) {
	return Head(i.requester, url)
}
