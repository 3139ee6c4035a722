package server

import (
	"net/http"

	connectcors "connectrpc.com/cors"
	"github.com/rs/cors"
)

// GetCorsOptions builds the CORS options from the connectrpc helpers,
// additionally allowing the Authorization and W3C trace-context headers.
func GetCorsOptions(allowedOrigins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: connectcors.AllowedMethods(),
		AllowedHeaders: append(connectcors.AllowedHeaders(), "Authorization", "Traceparent", "Tracestate"),
		ExposedHeaders: connectcors.ExposedHeaders(),
	}
}

// NewCORSHandler creates a new CORS middleware using connectrpc helpers.
func NewCORSHandler(mu http.Handler, allowedOrigins []string) http.Handler {
	return cors.New(GetCorsOptions(allowedOrigins)).Handler(mu)
}
