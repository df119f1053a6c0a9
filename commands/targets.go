package commands

import (
	"fmt"

	"github.com/mobile-next/gesturecli/gesture"
)

// TargetsRegisterRequest describes part of the host's element tree
type TargetsRegisterRequest struct {
	SurfaceID string               `json:"surfaceId"`
	Targets   []gesture.TargetNode `json:"targets"`
}

// ScrollRequest reports the host's global vertical scroll offset
type ScrollRequest struct {
	SurfaceID string  `json:"surfaceId"`
	ScrollY   float64 `json:"scrollY"`
}

// TargetsRegisterCommand adds or replaces target nodes on a surface
func TargetsRegisterCommand(req TargetsRegisterRequest) *CommandResponse {
	for i, node := range req.Targets {
		if node.ID == "" {
			return NewErrorResponse(fmt.Errorf("target %d: id is required", i))
		}
	}

	surface, err := FindSurface(req.SurfaceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	surface.Targets.Put(req.Targets...)
	return NewSuccessResponse(map[string]interface{}{
		"registered": len(req.Targets),
		"total":      surface.Targets.Len(),
	})
}

// ScrollCommand updates the scroll offset used by pull-to-refresh
func ScrollCommand(req ScrollRequest) *CommandResponse {
	surface, err := FindSurface(req.SurfaceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	surface.Scroll.SetScrollY(req.ScrollY)
	return NewSuccessResponse(map[string]interface{}{
		"scrollY": surface.Scroll.ScrollY(),
	})
}
