// Package controller drives a single HTTP light.
//
// Each configured device gets one Controller owning a small cached
// state: the last known on/off value and brightness. The four
// operations (read/write on, read/write brightness) compose the
// transport client, selector resolver, and value codec:
//
//	read:  GET status URL -> decode JSON (or raw text) -> selector ->
//	       codec -> cache and return
//	write: cache the requested value optimistically -> GET command URL
//
// Failure handling is the defining property of this package. A
// controller operation never returns an error: transport failures,
// non-2xx responses, unparseable bodies, and missing selector targets
// all collapse to the last cached value, logged with the device name.
// Writes are optimistic — the cache is updated before the HTTP call, and
// a failed call does not roll it back, so callers must not assume the
// device converged.
package controller
