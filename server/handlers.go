package server

import (
	"encoding/json"
	"fmt"

	"github.com/mobile-next/gesturecli/commands"
)

// decodeParams unmarshals params into v. Empty params leave v untouched,
// which selects the default surface for surface-scoped methods.
func decodeParams(params json.RawMessage, v interface{}, fields string) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("invalid parameters: %v. Expected fields: %s", err, fields)
	}
	return nil
}

func commandResult(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	return response.Data, nil
}

func handleGestureInput(params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("'params' is required with fields: surfaceId, family, type")
	}

	var req commands.InputRequest
	if err := decodeParams(params, &req, "surfaceId, family, type, touches, changedTouches, pointerId, x, y, target, timestamp"); err != nil {
		return nil, err
	}

	if req.Family == "" || req.Type == "" {
		return nil, fmt.Errorf("'family' and 'type' are required")
	}

	return commandResult(commands.InputCommand(req))
}

func handleGestureEvents(params json.RawMessage) (interface{}, error) {
	var req commands.SurfaceRequest
	if err := decodeParams(params, &req, "surfaceId"); err != nil {
		return nil, err
	}
	return commandResult(commands.EventsCommand(req))
}

func handleGestureStatus(params json.RawMessage) (interface{}, error) {
	var req commands.SurfaceRequest
	if err := decodeParams(params, &req, "surfaceId"); err != nil {
		return nil, err
	}
	return commandResult(commands.StatusCommand(req))
}

func handleGestureReset(params json.RawMessage) (interface{}, error) {
	var req commands.SurfaceRequest
	if err := decodeParams(params, &req, "surfaceId"); err != nil {
		return nil, err
	}

	if _, err := commandResult(commands.ResetCommand(req)); err != nil {
		return nil, err
	}
	return okResponse, nil
}

func handleGestureConfigGet(params json.RawMessage) (interface{}, error) {
	var req commands.ConfigGetRequest
	if err := decodeParams(params, &req, "surfaceId, kind"); err != nil {
		return nil, err
	}
	return commandResult(commands.ConfigGetCommand(req))
}

func handleGestureConfigSet(params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("'params' is required with fields: surfaceId, kind, threshold, timeout, sensitivity, requiresMultiTouch, preventDefaultScroll")
	}

	var req commands.ConfigSetRequest
	if err := decodeParams(params, &req, "surfaceId, kind, threshold, timeout, sensitivity, requiresMultiTouch, preventDefaultScroll"); err != nil {
		return nil, err
	}

	if req.Kind == "" {
		return nil, fmt.Errorf("'kind' is required")
	}

	return commandResult(commands.ConfigSetCommand(req))
}

func handleTargetsRegister(params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("'params' is required with fields: surfaceId, targets")
	}

	var req commands.TargetsRegisterRequest
	if err := decodeParams(params, &req, "surfaceId, targets"); err != nil {
		return nil, err
	}

	return commandResult(commands.TargetsRegisterCommand(req))
}

func handleViewportScroll(params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("'params' is required with fields: surfaceId, scrollY")
	}

	var req commands.ScrollRequest
	if err := decodeParams(params, &req, "surfaceId, scrollY"); err != nil {
		return nil, err
	}

	return commandResult(commands.ScrollCommand(req))
}

func handleSurfacesList(params json.RawMessage) (interface{}, error) {
	return commandResult(commands.SurfacesListCommand())
}

func handleSurfaceRemove(params json.RawMessage) (interface{}, error) {
	var req commands.SurfaceRequest
	if err := decodeParams(params, &req, "surfaceId"); err != nil {
		return nil, err
	}

	if _, err := commandResult(commands.SurfaceRemoveCommand(req)); err != nil {
		return nil, err
	}
	return okResponse, nil
}
