package apiclient

import (
	"net/http"
	"strings"
)

// csrfHeaderAliases are the header names a caller may already have set.
var csrfHeaderAliases = []string{"x-csrf-token", "x-xsrf-token"}

// isSafeMethod reports whether a method is read-only and exempt from CSRF.
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// hasCSRFHeader does a case-insensitive lookup over the header map so that
// non-canonical keys set directly on the map are found as well.
func hasCSRFHeader(h http.Header, canonical string) bool {
	for k, v := range h {
		if len(v) == 0 || v[0] == "" {
			continue
		}
		if strings.EqualFold(k, canonical) {
			return true
		}
		for _, alias := range csrfHeaderAliases {
			if strings.EqualFold(k, alias) {
				return true
			}
		}
	}
	return false
}
