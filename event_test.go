// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package questal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvents(t *testing.T) {
	assert.Len(t, eventNames, numEvents)
	assert.Len(t, Events(), numEvents)
	for i, evt := range Events() {
		assert.Equal(t, Event(i), evt)
	}
}

func TestEvent_Name(t *testing.T) {
	assert.Equal(t, "init", Init.Name())
	assert.Equal(t, "ready", Ready.Name())
	assert.Equal(t, "responseHeaders", ResponseHeaders.Name())
	assert.Equal(t, "loadStart", LoadStart.Name())
	assert.Equal(t, "change", Change.Name())
	assert.Equal(t, "complete", Complete.Name())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "progress", Progress.String())
	assert.Equal(t, "abort", Abort.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "timeout", Timeout.String())
}

func TestParseEvent(t *testing.T) {
	for _, evt := range Events() {
		parsed, ok := ParseEvent(evt.Name())
		assert.True(t, ok)
		assert.Equal(t, evt, parsed)
	}
	evt, ok := ParseEvent("ResponseHeaders")
	assert.True(t, ok)
	assert.Equal(t, ResponseHeaders, evt)
	_, ok = ParseEvent("load")
	assert.False(t, ok)
	_, ok = ParseEvent("")
	assert.False(t, ok)
}
