// Package handler provides HTTP handlers for the EcoRoute API.
package handler

import (
	"context"

	"github.com/ecoroute/ecoroute/internal/api/middleware"
)

// GetSessionID retrieves the authenticated session ID from the context.
// This is a convenience wrapper around middleware.GetSessionID.
func GetSessionID(ctx context.Context) string {
	return middleware.GetSessionID(ctx)
}
