// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package client

import (
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithDomain sets the hostname used to build request URLs.
func WithDomain(domain string) Option {
	return func(c *Client) {
		c.domain = domain
	}
}

// WithScheme sets the URL scheme, normally "https".  Tests talking to
// a local httptest server set "http".
func WithScheme(scheme string) Option {
	return func(c *Client) {
		c.scheme = scheme
	}
}

// WithHTTPClient injects the HTTP client that performs the actual
// transport exchange.  Timeouts, proxies, and cancellation all live in
// this object; the dispatcher adds nothing on top.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger that records every dispatch at debug level.
// Without it the client is silent.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock sets the time source used to measure request durations.
// Only test code should need to set this.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) {
		c.clock = clk
	}
}
