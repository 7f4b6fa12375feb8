// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package client_test

import (
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/diffeo/go-servicecall/client"
	"github.com/diffeo/go-servicecall/envelope"
)

// fixture wires a client against an httptest server whose routes
// mimic the /collection/noun layout of a real service.
type fixture struct {
	Client *client.Client
	Server *httptest.Server

	// Fields captured from the last request seen by the server.
	Method      string
	Path        string
	RawQuery    string
	Body        string
	ContentType string
	Auth        string
	AuthSet     bool
	RequestID   string
}

// newFixture starts a server that answers every /collection/noun
// request by recording it and writing reply as a JSON body with the
// given status.
func newFixture(t *testing.T, status int, reply string) *fixture {
	f := &fixture{}
	router := mux.NewRouter()
	router.HandleFunc("/{collection}/{noun}", func(w http.ResponseWriter, r *http.Request) {
		f.Method = r.Method
		f.Path = r.URL.Path
		f.RawQuery = r.URL.RawQuery
		f.ContentType = r.Header.Get("Content-Type")
		f.Auth = r.Header.Get("Authorization")
		_, f.AuthSet = r.Header["Authorization"]
		f.RequestID = r.Header.Get("X-Request-Id")
		body, err := ioutil.ReadAll(r.Body)
		assert.NoError(t, err)
		f.Body = string(body)

		w.Header().Set("Content-Type", envelope.JSONMediaType)
		w.WriteHeader(status)
		_, err = w.Write([]byte(reply))
		assert.NoError(t, err)
	})
	f.Server = httptest.NewServer(router)

	u, err := url.Parse(f.Server.URL)
	assert.NoError(t, err)
	f.Client = client.New(
		client.WithDomain(u.Host),
		client.WithScheme("http"),
	)
	return f
}

func (f *fixture) Close() {
	f.Server.Close()
}

// errTransport fails every exchange at the network level.
type errTransport struct{}

func (errTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func newFailingClient() *client.Client {
	return client.New(
		client.WithDomain("service.example.com"),
		client.WithHTTPClient(&http.Client{Transport: errTransport{}}),
	)
}

func TestActionMethods(t *testing.T) {
	f := newFixture(t, http.StatusOK, "{}")
	defer f.Close()

	tests := []struct {
		Call   func() (interface{}, error)
		Method string
	}{
		{func() (interface{}, error) { return f.Client.Create("users", "new", nil) }, "POST"},
		{func() (interface{}, error) { return f.Client.Read("users", "profile", nil) }, "GET"},
		{func() (interface{}, error) { return f.Client.Update("users", "profile", nil) }, "PUT"},
		{func() (interface{}, error) { return f.Client.Delete("users", "profile", nil) }, "DELETE"},
	}
	for _, test := range tests {
		_, err := test.Call()
		assert.NoError(t, err)
		assert.Equal(t, test.Method, f.Method)
	}
}

func TestReadPayloadInQuery(t *testing.T) {
	f := newFixture(t, http.StatusOK, "{}")
	defer f.Close()

	_, err := f.Client.Read("users", "profile", map[string]interface{}{"id": "abc"})
	assert.NoError(t, err)
	assert.Equal(t, "d=%7B%22id%22%3A%22abc%22%7D", f.RawQuery)
	assert.Empty(t, f.Body)
}

func TestReadWithoutPayload(t *testing.T) {
	f := newFixture(t, http.StatusOK, "{}")
	defer f.Close()

	_, err := f.Client.Read("users", "profile", nil)
	assert.NoError(t, err)
	assert.Empty(t, f.RawQuery)
	assert.Empty(t, f.Body)
}

func TestCreatePayloadInBody(t *testing.T) {
	f := newFixture(t, http.StatusOK, "{}")
	defer f.Close()

	_, err := f.Client.Create("users", "new", map[string]interface{}{"name": "x"})
	assert.NoError(t, err)
	assert.Equal(t, "{\"name\":\"x\"}", f.Body)
	assert.Empty(t, f.RawQuery)
	assert.Equal(t, envelope.JSONMediaType, f.ContentType)
}

func TestSessionHeader(t *testing.T) {
	f := newFixture(t, http.StatusOK, "{}")
	defer f.Close()

	f.Client.SetSession("tok123")
	_, err := f.Client.Read("users", "profile", nil)
	assert.NoError(t, err)
	assert.Equal(t, "tok123", f.Auth)

	f.Client.SetSession("")
	_, err = f.Client.Read("users", "profile", nil)
	assert.NoError(t, err)
	assert.False(t, f.AuthSet)
}

func TestDataResolution(t *testing.T) {
	f := newFixture(t, http.StatusOK, "{\"data\": 42}")
	defer f.Close()

	value, err := f.Client.Read("counters", "total", nil)
	assert.NoError(t, err)
	assert.EqualValues(t, 42, value)
}

func TestEmptySuccess(t *testing.T) {
	f := newFixture(t, http.StatusOK, "{}")
	defer f.Close()

	value, err := f.Client.Delete("users", "u1", nil)
	assert.NoError(t, err)
	assert.Nil(t, value)
}

func TestServiceError(t *testing.T) {
	f := newFixture(t, http.StatusOK,
		"{\"error\": {\"code\": 1001, \"msg\": \"bad field\"}}")
	defer f.Close()

	value, err := f.Client.Create("users", "new", nil)
	assert.Nil(t, value)
	if assert.Error(t, err) {
		serr, isService := err.(*envelope.Error)
		if assert.True(t, isService, "expected *envelope.Error, got %T", err) {
			assert.Equal(t, 1001, serr.Code)
			assert.Equal(t, "bad field", serr.Msg)
		}
	}
}

func TestServiceErrorSuppressed(t *testing.T) {
	f := newFixture(t, http.StatusOK,
		"{\"error\": {\"code\": 1001, \"msg\": \"bad field\"}}")
	defer f.Close()

	var seen *envelope.Error
	err := f.Client.Register(client.ErrorCode,
		func(serr *envelope.Error, ev client.Event) bool {
			seen = serr
			return false
		})
	assert.NoError(t, err)

	value, err := f.Client.Create("users", "new", nil)
	assert.NoError(t, err)
	assert.Nil(t, value)
	if assert.NotNil(t, seen) {
		assert.Equal(t, 1001, seen.Code)
	}
}

func TestServiceErrorNotSuppressed(t *testing.T) {
	// A hook that does not return false leaves the rejection alone.
	f := newFixture(t, http.StatusOK,
		"{\"error\": {\"code\": 7, \"msg\": \"nope\"}, \"data\": 1}")
	defer f.Close()

	err := f.Client.Register(client.ErrorCode,
		func(serr *envelope.Error, ev client.Event) bool {
			return true
		})
	assert.NoError(t, err)

	value, err := f.Client.Read("users", "profile", nil)
	assert.Nil(t, value)
	assert.Error(t, err)
}

func TestErrorSuppressedDataStillResolves(t *testing.T) {
	f := newFixture(t, http.StatusOK,
		"{\"error\": {\"code\": 7}, \"data\": \"kept\"}")
	defer f.Close()

	err := f.Client.Register(client.ErrorCode,
		func(serr *envelope.Error, ev client.Event) bool {
			return false
		})
	assert.NoError(t, err)

	value, err := f.Client.Read("users", "profile", nil)
	assert.NoError(t, err)
	assert.Equal(t, "kept", value)
}

func TestWarningHook(t *testing.T) {
	f := newFixture(t, http.StatusOK,
		"{\"data\": 1, \"warning\": \"deprecated\"}")
	defer f.Close()

	var warning interface{}
	err := f.Client.Register(client.Warning,
		func(w interface{}, ev client.Event) {
			warning = w
		})
	assert.NoError(t, err)

	value, err := f.Client.Read("users", "profile", nil)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, value)
	assert.Equal(t, "deprecated", warning)
}

func TestNoSessionHook(t *testing.T) {
	f := newFixture(t, http.StatusUnauthorized, "{}")
	defer f.Close()

	called := false
	err := f.Client.Register(client.NoSession, func() {
		called = true
	})
	assert.NoError(t, err)

	value, err := f.Client.Read("users", "profile", nil)
	assert.NoError(t, err)
	assert.Nil(t, value)
	assert.True(t, called)
}

func TestNoSessionWithoutHook(t *testing.T) {
	f := newFixture(t, http.StatusUnauthorized, "{}")
	defer f.Close()

	_, err := f.Client.Read("users", "profile", nil)
	if assert.Error(t, err) {
		_, isTransport := err.(*envelope.TransportError)
		assert.True(t, isTransport, "expected *envelope.TransportError, got %T", err)
	}
}

func TestServerErrorWithoutHook(t *testing.T) {
	f := newFixture(t, http.StatusInternalServerError, "{}")
	defer f.Close()

	_, err := f.Client.Read("users", "profile", nil)
	if assert.Error(t, err) {
		terr, isTransport := err.(*envelope.TransportError)
		if assert.True(t, isTransport, "expected *envelope.TransportError, got %T", err) {
			assert.Contains(t, terr.Message, "500")
		}
	}
}

func TestServerErrorWithHook(t *testing.T) {
	f := newFixture(t, http.StatusInternalServerError, "{}")
	defer f.Close()

	var message string
	err := f.Client.Register(client.TransportError,
		func(msg string, ev client.Event) {
			message = msg
		})
	assert.NoError(t, err)

	value, err := f.Client.Read("users", "profile", nil)
	assert.NoError(t, err)
	assert.Nil(t, value)
	assert.Contains(t, message, "500")
}

func TestNetworkFailure(t *testing.T) {
	c := newFailingClient()

	_, err := c.Read("users", "profile", nil)
	if assert.Error(t, err) {
		_, isTransport := err.(*envelope.TransportError)
		assert.True(t, isTransport, "expected *envelope.TransportError, got %T", err)
	}

	var message string
	assert.NoError(t, c.Register(client.TransportError,
		func(msg string, ev client.Event) {
			message = msg
		}))
	value, err := c.Read("users", "profile", nil)
	assert.NoError(t, err)
	assert.Nil(t, value)
	assert.Contains(t, message, "connection refused")
}

func TestBadContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		}))
	defer server.Close()
	u, err := url.Parse(server.URL)
	assert.NoError(t, err)
	c := client.New(client.WithDomain(u.Host), client.WithScheme("http"))

	_, err = c.Read("users", "profile", nil)
	if assert.Error(t, err) {
		terr, isTransport := err.(*envelope.TransportError)
		if assert.True(t, isTransport, "expected *envelope.TransportError, got %T", err) {
			assert.Contains(t, terr.Message, "text/html")
		}
	}
}

func TestUnparseableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", envelope.JSONMediaType)
			_, _ = w.Write([]byte("not json"))
		}))
	defer server.Close()
	u, err := url.Parse(server.URL)
	assert.NoError(t, err)
	c := client.New(client.WithDomain(u.Host), client.WithScheme("http"))

	_, err = c.Read("users", "profile", nil)
	if assert.Error(t, err) {
		terr, isTransport := err.(*envelope.TransportError)
		if assert.True(t, isTransport, "expected *envelope.TransportError, got %T", err) {
			assert.Contains(t, terr.Message, "not json")
		}
	}
}

func TestBeforeRequestEvent(t *testing.T) {
	f := newFixture(t, http.StatusOK, "{\"data\": true}")
	defer f.Close()

	var ev client.Event
	assert.NoError(t, f.Client.Register(client.BeforeRequest,
		func(e client.Event) {
			ev = e
		}))

	payload := map[string]interface{}{"name": "x"}
	_, err := f.Client.Create("users", "new", payload)
	assert.NoError(t, err)
	assert.Equal(t, client.ActionCreate, ev.Action)
	assert.Contains(t, ev.URL, "/users/new")
	assert.Equal(t, payload, ev.Payload)
	assert.NotEmpty(t, ev.RequestID)
	assert.Equal(t, ev.RequestID, f.RequestID)
	// The before-request hook fires before any reply exists.
	assert.Nil(t, ev.Response)
}

func TestAfterRequestAlwaysFires(t *testing.T) {
	calls := 0
	after := func(ev client.Event) {
		calls++
	}

	// Success.
	f := newFixture(t, http.StatusOK, "{\"data\": 1}")
	assert.NoError(t, f.Client.Register(client.AfterRequest, after))
	_, err := f.Client.Read("users", "profile", nil)
	assert.NoError(t, err)
	f.Close()

	// Service-level error.
	f = newFixture(t, http.StatusOK, "{\"error\": {\"code\": 1}}")
	assert.NoError(t, f.Client.Register(client.AfterRequest, after))
	_, err = f.Client.Read("users", "profile", nil)
	assert.Error(t, err)
	f.Close()

	// Unexpected status without a transport hook.
	f = newFixture(t, http.StatusInternalServerError, "{}")
	assert.NoError(t, f.Client.Register(client.AfterRequest, after))
	_, err = f.Client.Read("users", "profile", nil)
	assert.Error(t, err)
	f.Close()

	// Network failure.
	c := newFailingClient()
	assert.NoError(t, c.Register(client.AfterRequest, after))
	_, err = c.Read("users", "profile", nil)
	assert.Error(t, err)

	// 401 with a no-session hook.
	f = newFixture(t, http.StatusUnauthorized, "{}")
	assert.NoError(t, f.Client.RegisterMany(map[client.Kind]interface{}{
		client.AfterRequest: after,
		client.NoSession:    func() {},
	}))
	_, err = f.Client.Read("users", "profile", nil)
	assert.NoError(t, err)
	f.Close()

	assert.Equal(t, 5, calls)
}

func TestAfterRequestSeesResponse(t *testing.T) {
	f := newFixture(t, http.StatusOK, "{\"data\": \"ok\"}")
	defer f.Close()

	var ev client.Event
	assert.NoError(t, f.Client.Register(client.AfterRequest,
		func(e client.Event) {
			ev = e
		}))

	_, err := f.Client.Read("users", "profile", nil)
	assert.NoError(t, err)
	if assert.NotNil(t, ev.Response) {
		assert.Equal(t, "ok", ev.Response.Data)
	}
}

func TestReregisterReplaces(t *testing.T) {
	f := newFixture(t, http.StatusOK, "{}")
	defer f.Close()

	firstCalled := false
	secondCalled := false
	assert.NoError(t, f.Client.Register(client.BeforeRequest,
		func(ev client.Event) {
			firstCalled = true
		}))
	assert.NoError(t, f.Client.Register(client.BeforeRequest,
		func(ev client.Event) {
			secondCalled = true
		}))

	_, err := f.Client.Read("users", "profile", nil)
	assert.NoError(t, err)
	assert.False(t, firstCalled)
	assert.True(t, secondCalled)
}

func TestEmptyNames(t *testing.T) {
	f := newFixture(t, http.StatusOK, "{}")
	defer f.Close()

	_, err := f.Client.Read("", "profile", nil)
	assert.Error(t, err)
	_, err = f.Client.Read("users", "", nil)
	assert.Error(t, err)
}

func TestReadInto(t *testing.T) {
	f := newFixture(t, http.StatusOK,
		"{\"data\": {\"id\": \"u1\", \"name\": \"alice\"}}")
	defer f.Close()

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	err := f.Client.ReadInto("users", "profile", nil, &out)
	assert.NoError(t, err)
	assert.Equal(t, "u1", out.ID)
	assert.Equal(t, "alice", out.Name)
}
