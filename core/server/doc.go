// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structures for server settings, such as the API
// port, the API key and the metrics listener port.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by the command layer to wire the listeners.
package server
