// Package fetcher issues the JSON GET requests every build step relies on.
//
// A failed request (transport error, non-2xx status or undecodable body) is
// logged and returned as an error value; it never panics and is never retried
// unless the caller wraps the Getter with WithRetry. Callers decide whether a
// failure is fatal or simply means "no data".
package fetcher
