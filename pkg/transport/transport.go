// Package transport decorates the console's outbound HTTP requests with
// request identifiers, structured logging and metrics observation.
package transport

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderRequestID is stamped on every outbound request so server logs can
// be correlated to console activity.
const HeaderRequestID = "X-Request-ID"

// Observer receives one callback per completed outbound request.
type Observer interface {
	ObserveRequest(method, endpoint string, status int, duration time.Duration)
}

// RoundTripper wraps a base transport with id stamping, logging and metrics.
type RoundTripper struct {
	next     http.RoundTripper
	logger   *zap.Logger
	observer Observer
}

// New builds the outbound middleware chain. A nil next falls back to
// http.DefaultTransport.
func New(next http.RoundTripper, logger *zap.Logger, observer Observer) *RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoundTripper{next: next, logger: logger, observer: observer}
}

// RoundTrip implements http.RoundTripper. The incoming request is cloned
// before mutation, as the contract requires.
func (t *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	requestID := out.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
		out.Header.Set(HeaderRequestID, requestID)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(out)
	duration := time.Since(start)

	endpoint := Endpoint(out.URL.Path)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if t.observer != nil {
		t.observer.ObserveRequest(out.Method, endpoint, status, duration)
	}

	if err != nil {
		t.logger.Warn("outbound request failed",
			zap.String("method", out.Method),
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.Duration("latency", duration),
			zap.Error(err),
		)
		return nil, err
	}

	t.logger.Debug("outbound request",
		zap.String("method", out.Method),
		zap.String("endpoint", endpoint),
		zap.Int("status", status),
		zap.String("request_id", requestID),
		zap.Duration("latency", duration),
	)
	return resp, nil
}

// Endpoint collapses identifying path segments (emails, job ids, school and
// group ids) so metrics labels stay low-cardinality.
func Endpoint(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		switch {
		case strings.Contains(seg, "@"):
			segments[i] = ":email"
		case i > 0 && segments[i-1] == "status":
			segments[i] = ":jobId"
		case i > 1 && segments[i-1] == "schools" && segments[i-2] != "accounts":
			segments[i] = ":schoolId"
		case i > 0 && segments[i-1] == "groups" && seg != "usage":
			segments[i] = ":groupId"
		}
	}
	return "/" + strings.Join(segments, "/")
}
