package tfe

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimitedTransport waits on a shared token bucket before every request it sends.
type rateLimitedTransport struct {
	limiter *rate.Limiter
	next    http.RoundTripper
}

func newRateLimitedTransport(perSecond int, next http.RoundTripper) *rateLimitedTransport {
	return &rateLimitedTransport{
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		next:    next,
	}
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return t.next.RoundTrip(req)
}
