// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package client

// Collection binds a fixed collection name over a Client.  It exposes
// the same operation surface minus the collection argument and owns no
// state of its own: domain, session, and hooks all live on the shared
// Client, so a SetSession through one collection is visible to every
// other user of that Client.
type Collection struct {
	name   string
	client *Client
}

// Collection returns a facade bound to one collection name.
func (c *Client) Collection(name string) *Collection {
	return &Collection{name: name, client: c}
}

// Name returns the bound collection name.
func (col *Collection) Name() string {
	return col.name
}

// Create forwards to Client.Create with the bound collection.
func (col *Collection) Create(noun string, payload interface{}) (interface{}, error) {
	return col.client.Create(col.name, noun, payload)
}

// Read forwards to Client.Read with the bound collection.
func (col *Collection) Read(noun string, payload interface{}) (interface{}, error) {
	return col.client.Read(col.name, noun, payload)
}

// Update forwards to Client.Update with the bound collection.
func (col *Collection) Update(noun string, payload interface{}) (interface{}, error) {
	return col.client.Update(col.name, noun, payload)
}

// Delete forwards to Client.Delete with the bound collection.
func (col *Collection) Delete(noun string, payload interface{}) (interface{}, error) {
	return col.client.Delete(col.name, noun, payload)
}

// ReadInto forwards to Client.ReadInto with the bound collection.
func (col *Collection) ReadInto(noun string, payload, out interface{}) error {
	return col.client.ReadInto(col.name, noun, payload, out)
}

// Register forwards to Client.Register.
func (col *Collection) Register(kind Kind, callback interface{}) error {
	return col.client.Register(kind, callback)
}

// RegisterMany forwards to Client.RegisterMany.
func (col *Collection) RegisterMany(callbacks map[Kind]interface{}) error {
	return col.client.RegisterMany(callbacks)
}

// Domain forwards to Client.Domain.
func (col *Collection) Domain() string {
	return col.client.Domain()
}

// SetDomain forwards to Client.SetDomain.
func (col *Collection) SetDomain(domain string) {
	col.client.SetDomain(domain)
}

// Session forwards to Client.Session.
func (col *Collection) Session() string {
	return col.client.Session()
}

// SetSession forwards to Client.SetSession.
func (col *Collection) SetSession(token string) {
	col.client.SetSession(token)
}
