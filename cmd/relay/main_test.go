package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBeforeClientWaits(t *testing.T) {
	p := newPendingRequests()
	ch := p.register("r1")

	// The agent may answer before the client blocks on the channel; the
	// buffered send must succeed with no receiver present.
	done := make(chan bool, 1)
	go func() {
		done <- p.resolve("r1", responseMsg{ReqID: "r1", Status: 200})
	}()
	select {
	case delivered := <-done:
		assert.True(t, delivered)
	case <-time.After(time.Second):
		t.Fatal("resolve blocked with no receiver")
	}

	resp := <-ch
	assert.Equal(t, 200, resp.Status)
}

func TestResolveAfterAbandonIsDropped(t *testing.T) {
	p := newPendingRequests()
	p.register("r1")
	p.abandon("r1")

	// A late response for a timed-out request must not block and must not
	// leave state behind.
	done := make(chan bool, 1)
	go func() {
		done <- p.resolve("r1", responseMsg{ReqID: "r1", Status: 200})
	}()
	select {
	case delivered := <-done:
		assert.False(t, delivered)
	case <-time.After(time.Second):
		t.Fatal("resolve blocked on an abandoned request")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Empty(t, p.m)
}

func TestResolveUnknownRequest(t *testing.T) {
	p := newPendingRequests()
	assert.False(t, p.resolve("never-registered", responseMsg{Status: 200}))
}

func TestRegistryStaysUsableAfterSlowRequest(t *testing.T) {
	p := newPendingRequests()

	// Simulate the wedge scenario: request times out, its response arrives
	// late, then a second request runs the normal path.
	p.register("slow")
	p.abandon("slow")
	require.False(t, p.resolve("slow", responseMsg{ReqID: "slow", Status: 200}))

	ch := p.register("next")
	require.True(t, p.resolve("next", responseMsg{ReqID: "next", Status: 201}))
	resp := <-ch
	assert.Equal(t, 201, resp.Status)

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Empty(t, p.m)
}
