// Package server exposes palette extraction and simulated conversions over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method-scoped patterns.
//
// # Middleware
//
//   - [RequestLogger] : one key/value log line per request
//   - [Recoverer] : panics become 500 responses
//   - [CORS] : echoes allowed origins and answers preflights
//   - [RateLimit] : a token bucket per client address via [ClientLimiter]
//
// # Endpoints
//
//	GET /health                    → {"status":"ok"}
//	GET /api/palette?url=          → palette JSON, always 200 for a present url
//	GET /api/palette/dominant?url= → legacy dominant/vibrant/dark/light shape
//	GET /api/convert?link=&count=  → Server-Sent Events
//
// # Progress Streaming
//
// /api/convert starts a progress.Simulator for the link's content type and runs the real conversion alongside it.
// Every simulator update is streamed as a "progress" event. When the conversion returns the simulator is told
// the API is done, catches up, and a final "result" event carries the conversion. A failed conversion ends the
// stream with an "error" event instead.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
