// Package transport issues single-attempt HTTP GET requests to device
// endpoints.
//
// The client is intentionally minimal: one GET per call, a bounded
// per-call timeout, no retries, and no interpretation of the response
// body. Devices in the field speak JSON, bare numbers, or "ON"/"OFF"
// text, so the body is returned verbatim for the controller layer to
// decode. Non-2xx responses are not errors at this layer — the status
// and body still come back, with OK set to false.
package transport
