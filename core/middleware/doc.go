// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - auth: API key validation protecting the ownership endpoints.
//   - rayid: a unique Request ID (RayID) for every incoming request, injected
//     into the context and response headers so log lines can be correlated.
//
// Both are registered globally in the main application setup; the health
// probe is mounted before auth so orchestrators need no key.
package middleware
