package server

import (
	"encoding/json"
	"fmt"
)

// HandlerFunc is the signature for non-streaming JSON-RPC method handlers
type HandlerFunc func(params json.RawMessage) (interface{}, error)

// GetMethodRegistry returns a map of method names to handler functions
// This is used by both the HTTP server and the WebSocket endpoint
func GetMethodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"gesture_input":      handleGestureInput,
		"gesture_events":     handleGestureEvents,
		"gesture_status":     handleGestureStatus,
		"gesture_reset":      handleGestureReset,
		"gesture_config_get": handleGestureConfigGet,
		"gesture_config_set": handleGestureConfigSet,
		"targets_register":   handleTargetsRegister,
		"viewport_scroll":    handleViewportScroll,
		"surfaces_list":      handleSurfacesList,
		"surface_remove":     handleSurfaceRemove,
	}
}

// streaming methods only make sense on a connection that can receive
// notifications
var streamingMethods = map[string]bool{
	"gesture_subscribe":   true,
	"gesture_unsubscribe": true,
}

func isStreamingMethod(method string) bool {
	return streamingMethods[method]
}

// Execute dispatches a method call using the registry
// This is the main entry point for embedded clients
func Execute(method string, params json.RawMessage) (interface{}, error) {
	registry := GetMethodRegistry()

	handler, exists := registry[method]
	if !exists {
		return nil, fmt.Errorf("method not found: %s", method)
	}

	return handler(params)
}
