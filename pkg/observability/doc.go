// Package observability exposes the Prometheus metrics of the onboarding services.
package observability
