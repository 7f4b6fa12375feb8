// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package envelope defines the wire contract spoken by the
// go-servicecall client.  Every service reply is a JSON object
// carrying at most one each of three optional fields:
//
//	{"data": ...}                          success payload, any value
//	{"error": {"code": 1001, "msg": ...}}  service-level failure
//	{"warning": ...}                       non-fatal notification
//
// A reply carrying none of the three is an empty success.  If both
// "error" and "data" are present, "error" wins; some servers are known
// to send both, and the client-side error-code hook can elect to
// continue as if the error were absent.
//
// Replies travel as application/json with a UTF-8 charset.  Bodies and
// payloads are encoded with the ugorji codec, which round-trips
// arbitrary JSON values losslessly.
package envelope

import "fmt"

// JSONMediaType is the content type sent with request bodies and
// expected on response bodies.
const JSONMediaType = "application/json; charset=utf-8"

// Envelope is the parsed form of a service reply body.
type Envelope struct {
	// Data holds the success payload.  It may be any JSON value,
	// including null; a null value is indistinguishable from an
	// absent field and both count as an empty success.
	Data interface{} `json:"data,omitempty"`

	// Error holds the service-level failure, if any.  A non-nil
	// Error takes precedence over Data.
	Error *Error `json:"error,omitempty"`

	// Warning holds a non-fatal notification.  Its presence never
	// changes the success or failure of the call.
	Warning interface{} `json:"warning,omitempty"`
}

// Error is a service-level failure reported inside an otherwise
// well-formed reply.  It is the error value returned from a dispatch
// whose envelope carried an "error" field.
type Error struct {
	// Code is the service-assigned numeric error code.
	Code int `json:"code"`

	// Msg optionally describes the failure for humans.
	Msg string `json:"msg,omitempty"`
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("service error %d", e.Code)
	}
	return fmt.Sprintf("service error %d: %s", e.Code, e.Msg)
}

// TransportError reports a failure below the envelope protocol: the
// network was unreachable, the status code was unexpected, the content
// type was not JSON, or the body did not parse.  It is returned from a
// dispatch only when no transport-error hook is registered.
type TransportError struct {
	// Message is a human-readable description naming the method,
	// URL, and whatever detail triggered the failure.
	Message string
}

func (e *TransportError) Error() string {
	return e.Message
}
