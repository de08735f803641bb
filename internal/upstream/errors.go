package upstream

import (
	"fmt"
	"net/url"
	"strings"
)

// StatusError is returned when an upstream answers with an unexpected status
type StatusError struct {
	Operation  string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s failed with status %d", e.Operation, e.StatusCode)
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s failed with status %d", e.Operation, e.Path, e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func ensureTrailingSlash(u string) string {
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

// escapePath escapes each segment of a '/'-separated path
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
