package commands

import (
	"fmt"

	"github.com/mobile-next/gesturecli/surfaces"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

// surfaceRegistry holds every live input surface. It is set once at
// application startup via SetRegistry.
var surfaceRegistry *surfaces.Registry

// SetRegistry sets the global surface registry.
// This should be called once at application startup (main.go or server.go).
func SetRegistry(registry *surfaces.Registry) {
	surfaceRegistry = registry
}

// GetRegistry returns the current surface registry.
// Returns nil if SetRegistry has not been called yet.
func GetRegistry() *surfaces.Registry {
	return surfaceRegistry
}

// FindSurface returns the surface with the given ID, creating it on first use.
// An empty ID selects the default surface.
func FindSurface(surfaceID string) (*surfaces.Surface, error) {
	if surfaceRegistry == nil {
		return nil, fmt.Errorf("surface registry is not initialized")
	}
	return surfaceRegistry.Get(surfaceID), nil
}

// findExistingSurface is FindSurface for read-only commands that should not
// create surfaces as a side effect.
func findExistingSurface(surfaceID string) (*surfaces.Surface, error) {
	if surfaceRegistry == nil {
		return nil, fmt.Errorf("surface registry is not initialized")
	}
	s, ok := surfaceRegistry.Lookup(surfaceID)
	if !ok {
		if surfaceID == "" {
			surfaceID = surfaces.DefaultSurfaceID
		}
		return nil, fmt.Errorf("surface not found: %s", surfaceID)
	}
	return s, nil
}
