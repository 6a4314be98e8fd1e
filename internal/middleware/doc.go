// Package middleware provides HTTP middleware for media-stage.
//
// It includes:
//   - Structured request logging with log-injection sanitizing
//   - Prometheus request metrics labelled by route template
package middleware
