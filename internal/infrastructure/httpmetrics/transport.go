package httpmetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/arteon/exchange/internal/observability"
)

// Transport is an http.RoundTripper that records outbound request metrics
// under a fixed target label. Wrap the http.Client handed to each external
// API client with its own target name.
type Transport struct {
	target string
	base   http.RoundTripper

	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewTransport(target string, base http.RoundTripper, tel observability.Observability) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if tel == nil {
		tel = observability.Nop()
	}
	return &Transport{
		target:       target,
		base:         base,
		reqCounter:   tel.Metrics().Counter(observability.MExternalRequests),
		durHistogram: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	labels := []observability.Label{
		observability.L("target", t.target),
		observability.L("method", req.Method),
		observability.L("status", status),
	}
	t.reqCounter.Add(1, labels...)
	t.durHistogram.Observe(time.Since(start).Seconds(), labels...)

	return resp, err
}
