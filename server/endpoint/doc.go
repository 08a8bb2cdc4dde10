// Package endpoint provides the operational handlers: /health and /info.
package endpoint
