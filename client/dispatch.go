// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package client

// This file holds the single request dispatch routine everything else
// forwards to.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/jtacoma/uritemplates"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-servicecall/envelope"
)

// Action names one of the four operations a call can perform.
type Action string

// The four actions and the HTTP methods they map onto.
const (
	ActionCreate Action = "create" // POST
	ActionRead   Action = "read"   // GET
	ActionUpdate Action = "update" // PUT
	ActionDelete Action = "delete" // DELETE
)

var actionMethods = map[Action]string{
	ActionCreate: http.MethodPost,
	ActionRead:   http.MethodGet,
	ActionUpdate: http.MethodPut,
	ActionDelete: http.MethodDelete,
}

// Event describes one call to the hooks observing it.  The same event
// flows through every hook of a single dispatch; Response is nil until
// a reply body has been parsed.
type Event struct {
	// Action is the operation being performed.
	Action Action

	// URL is the full request URL.
	URL string

	// Payload is the caller-supplied payload, or nil.
	Payload interface{}

	// RequestID is a fresh V4 UUID identifying this call.  It is
	// also sent to the server as the X-Request-Id header.
	RequestID string

	// Response is the parsed reply envelope, when one is
	// available.
	Response *envelope.Envelope
}

// Create performs the create action (POST) on a noun within a
// collection.  The payload, if non-nil, is sent as the JSON request
// body.  It returns the envelope's data value, nil on an empty
// success, or an error per the envelope contract.
func (c *Client) Create(collection, noun string, payload interface{}) (interface{}, error) {
	return c.dispatch(ActionCreate, collection, noun, payload)
}

// Read performs the read action (GET).  The payload, if non-nil, is
// JSON-encoded into the single query parameter "d"; read requests
// never carry a body.
func (c *Client) Read(collection, noun string, payload interface{}) (interface{}, error) {
	return c.dispatch(ActionRead, collection, noun, payload)
}

// Update performs the update action (PUT) with the payload as the
// JSON request body.
func (c *Client) Update(collection, noun string, payload interface{}) (interface{}, error) {
	return c.dispatch(ActionUpdate, collection, noun, payload)
}

// Delete performs the delete action (DELETE) with the payload, if any,
// as the JSON request body.
func (c *Client) Delete(collection, noun string, payload interface{}) (interface{}, error) {
	return c.dispatch(ActionDelete, collection, noun, payload)
}

// ReadInto performs a read and maps the resulting data value onto out,
// which must be of pointer type.  An empty success leaves out
// untouched.
func (c *Client) ReadInto(collection, noun string, payload, out interface{}) error {
	value, err := c.Read(collection, noun, payload)
	if err != nil || value == nil {
		return err
	}
	return envelope.DecodeData(value, out)
}

// dispatch executes one remote call and classifies its outcome.  It
// returns the envelope's data value on success, (nil, nil) on an empty
// success (including a hook-consumed failure), or an error.
func (c *Client) dispatch(action Action, collection, noun string, payload interface{}) (result interface{}, err error) {
	method, known := actionMethods[action]
	if !known {
		return nil, fmt.Errorf("invalid action %q", action)
	}
	if collection == "" || noun == "" {
		return nil, errors.New("collection and noun are required")
	}

	domain, scheme, session, hooks := c.snapshot()

	u, body, err := buildURL(scheme, domain, action, collection, noun, payload)
	if err != nil {
		return nil, err
	}

	ev := Event{
		Action:    action,
		URL:       u.String(),
		Payload:   payload,
		RequestID: uuid.NewV4().String(),
	}
	outcome := outcomeOK
	started := c.clock.Now()
	defer func() {
		elapsed := c.clock.Now().Sub(started)
		requestCount.WithLabelValues(string(action), outcome).Inc()
		requestDuration.WithLabelValues(string(action)).Observe(elapsed.Seconds())
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{
				"action":     action,
				"url":        ev.URL,
				"request_id": ev.RequestID,
				"outcome":    outcome,
				"elapsed":    elapsed,
			}).Debug("service call finished")
		}
		if hooks.afterRequest != nil {
			hooks.afterRequest(ev)
		}
	}()

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, ev.URL, reqBody)
	if err != nil {
		outcome = outcomeTransportError
		return c.transportFail(hooks, ev, fmt.Sprintf("%s %s: %v", method, ev.URL, err))
	}
	if body != nil {
		req.Header.Set("Content-Type", envelope.JSONMediaType)
	}
	req.Header.Set("Accept", envelope.JSONMediaType)
	req.Header.Set("X-Request-Id", ev.RequestID)
	if session != "" {
		req.Header.Set("Authorization", session)
	}

	if hooks.beforeRequest != nil {
		hooks.beforeRequest(ev)
	}

	// The single suspension point: everything before this line is
	// synchronous with the caller.
	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = outcomeTransportError
		return c.transportFail(hooks, ev, fmt.Sprintf("%s %s: %v", method, ev.URL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if hooks.noSession != nil {
			outcome = outcomeNoSession
			hooks.noSession()
			return nil, nil
		}
		outcome = outcomeTransportError
		return nil, &envelope.TransportError{
			Message: fmt.Sprintf("%s %s returned %s and no session hook is registered",
				method, ev.URL, resp.Status),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = outcomeTransportError
		return c.transportFail(hooks, ev,
			fmt.Sprintf("%s %s returned status %s", method, ev.URL, resp.Status))
	}

	contentType := resp.Header.Get("Content-Type")
	if !envelope.IsJSONContentType(contentType) {
		// The body is deliberately left unparsed.
		outcome = outcomeTransportError
		return c.transportFail(hooks, ev,
			fmt.Sprintf("%s %s returned content type %q, want JSON",
				method, ev.URL, contentType))
	}

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		outcome = outcomeTransportError
		return c.transportFail(hooks, ev, fmt.Sprintf("%s %s: %v", method, ev.URL, err))
	}
	var env envelope.Envelope
	err = envelope.Decode(contentType, bytes.NewReader(raw), &env)
	if err != nil {
		outcome = outcomeTransportError
		return c.transportFail(hooks, ev,
			fmt.Sprintf("%s %s returned unparseable body %q", method, ev.URL, raw))
	}
	ev.Response = &env

	if env.Error != nil {
		suppressed := false
		if hooks.errorCode != nil {
			suppressed = !hooks.errorCode(env.Error, ev)
		}
		if !suppressed {
			outcome = outcomeError
			return nil, env.Error
		}
	}
	if env.Warning != nil && hooks.warning != nil {
		hooks.warning(env.Warning, ev)
	}
	return env.Data, nil
}

// transportFail handles a transport-error condition.  A registered
// transport-error hook consumes the failure and the call completes
// with an empty outcome; otherwise the failure propagates to the
// caller.
func (c *Client) transportFail(hooks hookSet, ev Event, message string) (interface{}, error) {
	if hooks.transportError != nil {
		hooks.transportError(message, ev)
		return nil, nil
	}
	return nil, &envelope.TransportError{Message: message}
}

// buildURL constructs scheme://domain/collection/noun through an RFC
// 6570 URI template, escaping the caller-supplied path segments.  For
// a read with a payload the JSON text of the payload expands through
// {?d}, arriving percent-encoded in the query parameter "d"; for any
// other action with a payload the encoded JSON is returned as the
// request body.
func buildURL(scheme, domain string, action Action, collection, noun string, payload interface{}) (*url.URL, []byte, error) {
	template := "{collection}/{noun}"
	vars := map[string]interface{}{
		"collection": envelope.MaybeEncodeName(collection),
		"noun":       envelope.MaybeEncodeName(noun),
	}

	var body []byte
	if payload != nil {
		encoded, err := envelope.EncodeJSON(payload)
		if err != nil {
			return nil, nil, err
		}
		if action == ActionRead {
			template += "{?d}"
			vars["d"] = string(encoded)
		} else {
			body = encoded
		}
	}

	tmpl, err := uritemplates.Parse(template)
	if err != nil {
		return nil, nil, err
	}
	expanded, err := tmpl.Expand(vars)
	if err != nil {
		return nil, nil, err
	}

	base, err := url.Parse(scheme + "://" + domain + "/")
	if err != nil {
		return nil, nil, err
	}
	u, err := base.Parse(expanded)
	if err != nil {
		return nil, nil, err
	}
	return u, body, nil
}
