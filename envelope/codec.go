// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package envelope

import (
	"fmt"
	"io"
	"mime"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/ugorji/go/codec"
)

// jsonHandle builds the codec handle used for all JSON traffic.  The
// map type is pinned so untyped objects always decode as
// map[string]interface{}.
func jsonHandle() *codec.JsonHandle {
	json := &codec.JsonHandle{}
	json.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return json
}

// ErrUnsupportedMediaType is returned from Decode if the provided
// Content-Type is not a JSON type.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("unsupported media type %q", e.Type)
}

// IsJSONContentType reports whether a Content-Type header value names
// a JSON media type.  Parameters such as charset are ignored.
func IsJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/json", "text/json":
		return true
	}
	return false
}

// Decode reads a JSON value from a reader, such as an HTTP response
// body, into out, which must be of pointer type.  The content type
// must name a JSON media type or ErrUnsupportedMediaType is returned
// and the reader is left unconsumed.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if !IsJSONContentType(contentType) {
		return ErrUnsupportedMediaType{Type: contentType}
	}
	return codec.NewDecoder(r, jsonHandle()).Decode(out)
}

// EncodeJSON serializes a value to compact JSON text.
func EncodeJSON(in interface{}) ([]byte, error) {
	var out []byte
	err := codec.NewEncoderBytes(&out, jsonHandle()).Encode(in)
	return out, err
}

// DecodeData maps a decoded envelope Data value, typically a
// string-keyed map, onto a structure.  Field matching honors json
// struct tags so the same types can serve both the wire and the
// caller.
func DecodeData(value, out interface{}) error {
	config := mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err == nil {
		err = decoder.Decode(value)
	}
	return err
}
