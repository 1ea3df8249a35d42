package auth

import (
	"net/http"
	"strings"
)

// Policy lists the routes reachable without a bearer token.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a policy exempting registration, login, health and metrics
// in addition to the given paths and prefixes.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	defaults := []string{"/users/register", "/users/login", "/healthz", "/metrics"}
	set := make(map[string]struct{}, len(exemptPaths)+len(defaults))
	for _, path := range defaults {
		set[path] = struct{}{}
	}
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if r.Method == http.MethodOptions {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}
