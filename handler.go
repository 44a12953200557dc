// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package questal

import (
	"fmt"
	"reflect"
	"strings"
)

// A HandlerGroup is a group of event handler chains which can be
// installed in a Request or a Client.
//
// A HandlerGroup is not safe for concurrent modification. Request
// guards its own group, so handlers may be added to a Request at any
// time.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack adds an event handler to the back of the event handler chain
// for a specific event type.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("questal: nil handler")
	}

	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}

	g.handlers[evt] = append(g.handlers[evt], h)
}

// On adds h to the back of the chain of every event named in names, a
// space-separated list such as "complete error timeout". If any name is
// unknown, On returns an error and adds nothing.
func (g *HandlerGroup) On(names string, h Handler) error {
	if h == nil {
		panic("questal: nil handler")
	}
	fields := strings.Fields(names)
	if len(fields) == 0 {
		return fmt.Errorf("questal: no event names in %q", names)
	}
	evts := make([]Event, len(fields))
	for i, name := range fields {
		evt, ok := ParseEvent(name)
		if !ok {
			return fmt.Errorf("questal: unknown event %q", name)
		}
		evts[i] = evt
	}
	for _, evt := range evts {
		g.PushBack(evt, h)
	}
	return nil
}

// Remove removes the first handler in the chain for evt which matches
// h, and reports whether one was removed.
//
// If h implements Namer, the first handler with the same name is
// removed. Function handlers such as HandlerFunc are matched by their
// code pointer, so two closures created by the same function literal
// are indistinguishable; wrap such closures with Named instead. Other
// handlers are matched by identity, which requires a comparable handler
// such as a pointer.
func (g *HandlerGroup) Remove(evt Event, h Handler) bool {
	i := int(evt)
	if h == nil || i < 0 || i >= len(g.handlers) {
		return false
	}
	chain := g.handlers[i]
	for j, x := range chain {
		if matches(x, h) {
			g.handlers[i] = append(chain[:j:j], chain[j+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of handlers in the chain for evt.
func (g *HandlerGroup) Len(evt Event) int {
	i := int(evt)
	if i < 0 || i >= len(g.handlers) {
		return 0
	}
	return len(g.handlers[i])
}

// chain returns a copy of the chain for evt, safe to run after the
// group is modified.
func (g *HandlerGroup) chain(evt Event) []Handler {
	i := int(evt)
	if i < len(g.handlers) {
		return append([]Handler(nil), g.handlers[i]...)
	}
	return nil
}

func run(chain []Handler, n *Notification) {
	for _, h := range chain {
		h.Handle(n)
	}
}

func matches(x, h Handler) bool {
	if hn, ok := h.(Namer); ok {
		xn, ok := x.(Namer)
		return ok && xn.Name() == hn.Name()
	}
	tx, th := reflect.TypeOf(x), reflect.TypeOf(h)
	if tx != th {
		return false
	}
	if th.Kind() == reflect.Func {
		return reflect.ValueOf(x).Pointer() == reflect.ValueOf(h).Pointer()
	}
	return th.Comparable() && x == h
}

// A Handler handles the occurrence of an event during a request.
type Handler interface {
	Handle(*Notification)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers. If f is a function with appropriate
// signature, then HandlerFunc(f) is a Handler that calls f.
type HandlerFunc func(*Notification)

// Handle calls f(n).
func (f HandlerFunc) Handle(n *Notification) {
	f(n)
}

// A Namer is a Handler with a name. HandlerGroup.Remove matches a
// Namer by name rather than identity.
type Namer interface {
	Handler
	Name() string
}

// Named returns a Handler that calls f and is removable by name.
func Named(name string, f func(*Notification)) Namer {
	if f == nil {
		panic("questal: nil handler")
	}
	return NamedHandler{ID: name, Func: f}
}

// A NamedHandler is a function handler identified by ID.
type NamedHandler struct {
	ID   string
	Func func(*Notification)
}

// Handle calls h.Func(n).
func (h NamedHandler) Handle(n *Notification) {
	h.Func(n)
}

// Name returns h.ID.
func (h NamedHandler) Name() string {
	return h.ID
}
