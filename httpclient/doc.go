// Package httpclient is a small config-driven HTTP client used for outbound
// calls: the transcription sidecar, the labeling API and model weight
// downloads.
//
// Requests carry a JSON value, raw bytes or a MultipartBody. Non-2xx
// responses are returned as *Error classified by status, and transport
// failures as connection or timeout errors, so that callers and the retry
// policy can tell them apart.
//
//	c, _ := httpclient.New(httpclient.Config{BaseURL: "http://localhost:8387"})
//	resp, err := c.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
package httpclient
