package commands

import (
	"fmt"

	"github.com/mobile-next/gesturecli/gesture"
	"github.com/mobile-next/gesturecli/types"
)

// InputRequest carries one raw host event for a surface
type InputRequest struct {
	SurfaceID string `json:"surfaceId"`
	types.RawEvent
}

// SurfaceRequest is the request for commands that only name a surface
type SurfaceRequest struct {
	SurfaceID string `json:"surfaceId"`
}

// EventsResponse lists events emitted on a surface
type EventsResponse struct {
	SurfaceID string          `json:"surfaceId"`
	Events    []gesture.Event `json:"events"`
}

// StatusResponse describes a surface's current session
type StatusResponse struct {
	SurfaceID   string          `json:"surfaceId"`
	Session     gesture.Session `json:"session"`
	Subscribers int             `json:"subscribers"`
}

// InputCommand feeds a raw event to the surface's gesture engine
func InputCommand(req InputRequest) *CommandResponse {
	surface, err := FindSurface(req.SurfaceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	result, err := surface.Input(req.RawEvent)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to handle input on surface %s: %w", surface.ID, err))
	}

	return NewSuccessResponse(result)
}

// EventsCommand returns and clears the events buffered on a surface,
// including deferred ones such as tap and long press
func EventsCommand(req SurfaceRequest) *CommandResponse {
	surface, err := FindSurface(req.SurfaceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(EventsResponse{
		SurfaceID: surface.ID,
		Events:    surface.Drain(),
	})
}

// StatusCommand returns the current session snapshot
func StatusCommand(req SurfaceRequest) *CommandResponse {
	surface, err := FindSurface(req.SurfaceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(StatusResponse{
		SurfaceID:   surface.ID,
		Session:     surface.Engine.Session(),
		Subscribers: surface.Subscribers(),
	})
}

// ResetCommand drops the surface's session and pending timers
func ResetCommand(req SurfaceRequest) *CommandResponse {
	surface, err := findExistingSurface(req.SurfaceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	surface.Engine.Reset()
	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Reset surface %s", surface.ID),
	})
}

// SurfacesListCommand lists live surfaces
func SurfacesListCommand() *CommandResponse {
	registry := GetRegistry()
	if registry == nil {
		return NewErrorResponse(fmt.Errorf("surface registry is not initialized"))
	}

	return NewSuccessResponse(map[string]interface{}{
		"surfaces": registry.IDs(),
	})
}

// SurfaceRemoveCommand closes a surface and forgets its state
func SurfaceRemoveCommand(req SurfaceRequest) *CommandResponse {
	surface, err := findExistingSurface(req.SurfaceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	GetRegistry().Remove(surface.ID)
	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Removed surface %s", surface.ID),
	})
}
