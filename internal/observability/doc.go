// Package observability provides the console's zap logger construction and
// the structured access log for HTTP requests.
package observability
