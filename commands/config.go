package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/mobile-next/gesturecli/gesture"
	"github.com/mobile-next/gesturecli/settings"
	"github.com/mobile-next/gesturecli/utils"
)

// ConfigGetRequest asks for the tunables of one kind on a surface
type ConfigGetRequest struct {
	SurfaceID string `json:"surfaceId"`
	Kind      string `json:"kind"`
}

// ConfigSetRequest patches the tunables of one kind on a surface.
// Omitted fields keep their current value.
type ConfigSetRequest struct {
	SurfaceID            string   `json:"surfaceId"`
	Kind                 string   `json:"kind"`
	Threshold            *float64 `json:"threshold,omitempty"`
	TimeoutMs            *float64 `json:"timeout,omitempty"`
	Sensitivity          *float64 `json:"sensitivity,omitempty"`
	RequiresMultiTouch   *bool    `json:"requiresMultiTouch,omitempty"`
	PreventDefaultScroll *bool    `json:"preventDefaultScroll,omitempty"`
}

// ConfigSetResponse is the result of a set. Applied is false, and the
// config omitted, when kind names no configurable gesture.
type ConfigSetResponse struct {
	*ConfigView
	Applied bool `json:"applied"`
}

// ConfigShowRequest is the request for the effective tunables from settings files
type ConfigShowRequest struct {
	Kind     string `json:"kind"`
	Tunables string `json:"tunables"`
}

// ActionsShowRequest is the request for the effective action map
type ActionsShowRequest struct {
	Actions string `json:"actions"`
}

// ConfigView is the wire form of gesture.Config, with the timeout in milliseconds
type ConfigView struct {
	Kind                 gesture.Kind `json:"kind"`
	Threshold            float64      `json:"threshold"`
	TimeoutMs            float64      `json:"timeout"`
	Sensitivity          float64      `json:"sensitivity"`
	RequiresMultiTouch   bool         `json:"requiresMultiTouch"`
	PreventDefaultScroll bool         `json:"preventDefaultScroll"`
}

func newConfigView(kind gesture.Kind, c gesture.Config) ConfigView {
	return ConfigView{
		Kind:                 kind,
		Threshold:            c.Threshold,
		TimeoutMs:            float64(c.Timeout) / float64(time.Millisecond),
		Sensitivity:          c.Sensitivity,
		RequiresMultiTouch:   c.RequiresMultiTouch,
		PreventDefaultScroll: c.PreventDefaultScroll,
	}
}

func configViews(configs map[gesture.Kind]gesture.Config) []ConfigView {
	views := make([]ConfigView, 0, len(configs))
	for kind, c := range configs {
		views = append(views, newConfigView(kind, c))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Kind < views[j].Kind })
	return views
}

func parseKind(name string) (gesture.Kind, error) {
	kind, ok := gesture.ParseKind(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", gesture.ErrUnknownKind, name)
	}
	return kind, nil
}

// ConfigGetCommand returns one kind's tunables, or all of them when kind is empty
func ConfigGetCommand(req ConfigGetRequest) *CommandResponse {
	surface, err := FindSurface(req.SurfaceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	if req.Kind == "" {
		return NewSuccessResponse(configViews(surface.Engine.Configs().Snapshot()))
	}

	kind, err := parseKind(req.Kind)
	if err != nil {
		return NewErrorResponse(err)
	}

	c, ok := surface.Engine.GetConfig(kind)
	if !ok {
		return NewErrorResponse(fmt.Errorf("gesture %s has no tunables", kind))
	}
	return NewSuccessResponse(newConfigView(kind, c))
}

// ConfigSetCommand patches one kind's tunables and returns the result.
// Kinds without tunables are ignored, as the engine ignores them.
func ConfigSetCommand(req ConfigSetRequest) *CommandResponse {
	if req.TimeoutMs != nil && *req.TimeoutMs < 0 {
		return NewErrorResponse(fmt.Errorf("timeout must be non-negative, got %v", *req.TimeoutMs))
	}

	surface, err := FindSurface(req.SurfaceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	patch := gesture.Patch{
		Threshold:            req.Threshold,
		Sensitivity:          req.Sensitivity,
		RequiresMultiTouch:   req.RequiresMultiTouch,
		PreventDefaultScroll: req.PreventDefaultScroll,
	}
	if req.TimeoutMs != nil {
		d := time.Duration(*req.TimeoutMs * float64(time.Millisecond))
		patch.Timeout = &d
	}

	kind, ok := gesture.ParseKind(req.Kind)
	if !ok || !surface.Engine.SetConfig(kind, patch) {
		utils.Verbose("Ignoring config set for gesture %q without tunables", req.Kind)
		return NewSuccessResponse(ConfigSetResponse{Applied: false})
	}

	c, _ := surface.Engine.GetConfig(kind)
	view := newConfigView(kind, c)
	return NewSuccessResponse(ConfigSetResponse{ConfigView: &view, Applied: true})
}

// ConfigShowCommand shows the tunables that a settings file produces on top of the defaults
func ConfigShowCommand(req ConfigShowRequest) *CommandResponse {
	snap, err := settings.Load(settings.Paths{Tunables: req.Tunables})
	if err != nil {
		return NewErrorResponse(err)
	}

	store := snap.ConfigStore()
	if req.Kind == "" {
		return NewSuccessResponse(configViews(store.Snapshot()))
	}

	kind, err := parseKind(req.Kind)
	if err != nil {
		return NewErrorResponse(err)
	}
	c, ok := store.Get(kind)
	if !ok {
		return NewErrorResponse(fmt.Errorf("gesture %s has no tunables", kind))
	}
	return NewSuccessResponse(newConfigView(kind, c))
}

// ActionsShowCommand shows the effective action map
func ActionsShowCommand(req ActionsShowRequest) *CommandResponse {
	snap, err := settings.Load(settings.Paths{Actions: req.Actions})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"actions": snap.Actions.Rules(),
		"zones":   snap.Actions.Zones(),
	})
}
