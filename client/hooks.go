// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package client

import (
	"errors"

	"github.com/diffeo/go-servicecall/envelope"
)

// Kind names a hook slot.  Exactly one callback may be active per
// kind; re-registering replaces the previous one.
type Kind string

// The hook kinds.  Each kind expects a specific callback signature;
// Register rejects anything else.
const (
	// BeforeRequest fires synchronously before the transport call,
	// with the event describing the outgoing request.
	// Signature: func(client.Event)
	BeforeRequest Kind = "beforeRequest"

	// AfterRequest fires exactly once per call, after the outcome
	// is classified, on every exit path.
	// Signature: func(client.Event)
	AfterRequest Kind = "afterRequest"

	// TransportError fires on network failures, unexpected status
	// codes, non-JSON content types, and unparseable bodies.  When
	// registered it consumes the failure and the call completes
	// with an empty outcome; when absent the dispatch returns a
	// *envelope.TransportError instead.
	// Signature: func(message string, ev client.Event)
	TransportError Kind = "transportError"

	// ErrorCode fires when a reply envelope carries an error.
	// Returning false suppresses the error and classification
	// continues as if it were absent; any other return rejects the
	// call with the error.
	// Signature: func(serr *envelope.Error, ev client.Event) bool
	ErrorCode Kind = "errorCode"

	// Warning fires when a reply envelope carries a warning.  It
	// never affects the call's outcome.
	// Signature: func(warning interface{}, ev client.Event)
	Warning Kind = "warning"

	// NoSession fires on HTTP 401, with no arguments.  When
	// registered the call completes with an empty outcome and the
	// hook is expected to clear the session; when absent the
	// dispatch returns a *envelope.TransportError.
	// Signature: func()
	NoSession Kind = "noSession"
)

// ErrInvalidCallback is returned from Register and RegisterMany when
// the supplied callback is nil or does not match the signature its
// kind expects.  Registration fails synchronously; nothing is deferred
// to call time.
var ErrInvalidCallback = errors.New("callback does not match the signature for its kind")

// ErrUnknownKind is returned from Register for a kind that names no
// hook slot.  RegisterMany skips unknown kinds instead.
var ErrUnknownKind = errors.New("unknown hook kind")

// hookSet is the fixed set of hook slots.  Copying the struct
// snapshots every registration at once.
type hookSet struct {
	beforeRequest  func(Event)
	afterRequest   func(Event)
	transportError func(string, Event)
	errorCode      func(*envelope.Error, Event) bool
	warning        func(interface{}, Event)
	noSession      func()
}

func (h *hookSet) set(kind Kind, callback interface{}) error {
	if callback == nil {
		return ErrInvalidCallback
	}
	switch kind {
	case BeforeRequest:
		fn, ok := callback.(func(Event))
		if !ok {
			return ErrInvalidCallback
		}
		h.beforeRequest = fn
	case AfterRequest:
		fn, ok := callback.(func(Event))
		if !ok {
			return ErrInvalidCallback
		}
		h.afterRequest = fn
	case TransportError:
		fn, ok := callback.(func(string, Event))
		if !ok {
			return ErrInvalidCallback
		}
		h.transportError = fn
	case ErrorCode:
		fn, ok := callback.(func(*envelope.Error, Event) bool)
		if !ok {
			return ErrInvalidCallback
		}
		h.errorCode = fn
	case Warning:
		fn, ok := callback.(func(interface{}, Event))
		if !ok {
			return ErrInvalidCallback
		}
		h.warning = fn
	case NoSession:
		fn, ok := callback.(func())
		if !ok {
			return ErrInvalidCallback
		}
		h.noSession = fn
	default:
		return ErrUnknownKind
	}
	return nil
}

// Register installs a callback in the slot named by kind, replacing
// any previous one.  The callback must match the signature documented
// on the kind or ErrInvalidCallback is returned and the slot is left
// unchanged.
func (c *Client) Register(kind Kind, callback interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hooks.set(kind, callback)
}

// RegisterMany installs a batch of callbacks.  Unknown kinds are
// skipped rather than reported; a callback of the wrong type for a
// known kind stops the batch with ErrInvalidCallback, leaving earlier
// entries applied.
func (c *Client) RegisterMany(callbacks map[Kind]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for kind, callback := range callbacks {
		err := c.hooks.set(kind, callback)
		if err == ErrUnknownKind {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
