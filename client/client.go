// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package client issues CRUD-style HTTP calls against a remote service
// collection.  A call names an action (create, read, update, delete),
// a collection, and a noun within it; the client builds the URL
// scheme://domain/collection/noun, maps the action onto an HTTP
// method, carries the payload either as a JSON body or as the JSON
// query parameter "d" for reads, attaches the current session token
// verbatim in the Authorization header, and interprets the reply
// through the envelope package's data/error/warning contract.
//
// Construct a client with the domain of the remote service:
//
//	c := client.New(client.WithDomain("api.example.com"))
//	value, err := c.Read("users", "profile", map[string]interface{}{"id": "u1"})
//
// Hooks observe the lifecycle of every call; see Register.  Calls are
// independent of each other and may run concurrently; there is no
// retry, no internal timeout, and no cancellation beyond whatever the
// injected HTTP client provides.
package client

import (
	"net/http"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// DefaultDomain is the placeholder domain a new Client starts with.
// Real use always replaces it via WithDomain or SetDomain.
const DefaultDomain = "localhost"

// Client holds the configuration for one remote service: its domain
// and scheme, the current session token, and the registered hook set.
// All of them may be replaced at any time; a dispatch snapshots the
// lot when it starts, so a mutation never affects calls already in
// flight.  Independent Clients share nothing.
type Client struct {
	mu      sync.RWMutex
	domain  string
	scheme  string
	session string
	hooks   hookSet

	httpClient *http.Client
	logger     *logrus.Logger
	clock      clock.Clock
}

// New creates a Client.  With no options it points at DefaultDomain
// over https and performs requests with http.DefaultClient.
func New(options ...Option) *Client {
	c := &Client{
		domain:     DefaultDomain,
		scheme:     "https",
		httpClient: http.DefaultClient,
		clock:      clock.New(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Domain returns the hostname used to build request URLs.
func (c *Client) Domain() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.domain
}

// SetDomain replaces the hostname used to build request URLs.  It
// affects calls dispatched after it returns.
func (c *Client) SetDomain(domain string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.domain = domain
}

// Session returns the current session token, or the empty string if
// none is held.
func (c *Client) Session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SetSession replaces the session token attached to subsequent calls.
// Passing the empty string clears it, and no Authorization header is
// sent.  Calls already in flight keep the token they started with.
// The client performs no persistence; a caller wiring cookie or store
// persistence reads the token at startup and writes it on every
// SetSession (see the sessionstore package).
func (c *Client) SetSession(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = token
}

// snapshot captures everything a single dispatch needs under one lock
// acquisition.
func (c *Client) snapshot() (domain, scheme, session string, hooks hookSet) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.domain, c.scheme, c.session, c.hooks
}
