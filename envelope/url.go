// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package envelope

import (
	"encoding/base64"
)

// MaybeEncodeName examines a collection or noun name, and if it cannot
// be inserted into a URL path as-is, base64 encodes it.  An encoded
// name begins with - and uses the URL-safe base64 alphabet with no
// padding.  Empty names and names that already begin with - are always
// encoded so the form stays unambiguous.
func MaybeEncodeName(name string) string {
	if urlSafeName(name) {
		return name
	}
	return "-" + base64.RawURLEncoding.EncodeToString([]byte(name))
}

// MaybeDecodeName is the dual of MaybeEncodeName.  Returns an error if
// the name begins with - but the remainder is not valid base64.
func MaybeDecodeName(name string) (string, error) {
	if len(name) == 0 || name[0] != '-' {
		return name, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(name[1:])
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// urlSafeName reports whether a name consists only of characters that
// are "unreserved" per RFC 3986 section 2.3 (plus ":"), and so can
// appear in a path segment without escaping.
func urlSafeName(name string) bool {
	if name == "" || name[0] == '-' {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-', c == '.', c == '_', c == ':':
		default:
			return false
		}
	}
	return true
}
