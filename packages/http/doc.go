// Package http provides the HTTP client used by smokespec checks.
//
// It wraps the standard library's http package with:
//   - A per-request deadline carried on the context
//   - Redirect handling
//   - JSON payload encoding for POST/PUT checks
//   - Response capture with case-insensitive header lookup
package http
