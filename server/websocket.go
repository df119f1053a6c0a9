package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mobile-next/gesturecli/commands"
	"github.com/mobile-next/gesturecli/gesture"
	"github.com/mobile-next/gesturecli/surfaces"
	"github.com/mobile-next/gesturecli/utils"
)

const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period, must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// notification method for pushed gesture events
	methodGestureEvent = "gesture.event"
)

// GestureEventParams is the payload of a gesture.event notification
type GestureEventParams struct {
	SurfaceID string      `json:"surfaceId"`
	Name      string      `json:"name"`
	Payload   interface{} `json:"payload"`
}

type surfaceSubscription struct {
	surface *surfaces.Surface
	sub     gesture.Subscription
}

type wsConnection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	subsMu sync.Mutex
	subs   map[string]surfaceSubscription
}

func newUpgrader(enableCORS bool) *websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if enableCORS {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	} else {
		upgrader.CheckOrigin = isSameOrigin
	}

	return &upgrader
}

// NewWebSocketHandler returns the /ws handler. Requests are JSON-RPC 2.0
// text messages; gesture events of every surface the connection uses are
// pushed as gesture.event notifications.
func NewWebSocketHandler(enableCORS bool) http.Handler {
	upgrader := newUpgrader(enableCORS)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(upgrader, w, r)
	})
}

func handleWebSocket(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Error("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	wsConn := &wsConnection{conn: conn, subs: make(map[string]surfaceSubscription)}
	defer wsConn.unsubscribeAll()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go wsConn.pingLoop(done)

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			// connection closed or error
			utils.Verbose("WebSocket connection closed: %v", err)
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if messageType != websocket.TextMessage {
			wsConn.sendError(nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgTextOnly)
			continue
		}

		handleWSMessage(wsConn, message)
	}
}

func (wsc *wsConnection) pingLoop(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			wsc.writeMu.Lock()
			err := wsc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			wsc.writeMu.Unlock()
			if err != nil {
				utils.Verbose("WebSocket ping failed: %v", err)
				return
			}
		}
	}
}

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}

func handleWSMessage(wsConn *wsConnection, message []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(message, &req); err != nil {
		wsConn.sendError(nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if verr := validateJSONRPCRequest(req); verr != nil {
		wsConn.sendError(req.ID, verr.code, verr.message, verr.data)
		return
	}

	utils.Info("WebSocket Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	handleWSMethodCall(wsConn, req)
}

func handleWSMethodCall(wsConn *wsConnection, req JSONRPCRequest) {
	switch req.Method {
	case "gesture_subscribe":
		surfaceID, err := surfaceIDOf(req.Params)
		if err != nil {
			wsConn.sendError(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
			return
		}
		if err := wsConn.subscribe(surfaceID); err != nil {
			wsConn.sendError(req.ID, ErrCodeServerError, "Server error", err.Error())
			return
		}
		wsConn.sendResponse(req.ID, okResponse)
		return
	case "gesture_unsubscribe":
		surfaceID, err := surfaceIDOf(req.Params)
		if err != nil {
			wsConn.sendError(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
			return
		}
		wsConn.unsubscribe(surfaceID)
		wsConn.sendResponse(req.ID, okResponse)
		return
	}

	registry := GetMethodRegistry()
	handler, exists := registry[req.Method]
	if !exists {
		wsConn.sendError(req.ID, ErrCodeMethodNotFound, "Method not found", req.Method+" not found")
		return
	}

	// subscribe before the call so events it emits are pushed too
	if surfaceScoped(req.Method) {
		if surfaceID, err := surfaceIDOf(req.Params); err == nil {
			if err := wsConn.subscribe(surfaceID); err != nil {
				utils.Verbose("WebSocket subscribe to %s failed: %v", surfaceID, err)
			}
		}
	}

	result, err := handler(req.Params)
	if err != nil {
		utils.Error("Error executing method %s: %v", req.Method, err)
		wsConn.sendError(req.ID, ErrCodeServerError, "Server error", err.Error())
		return
	}

	wsConn.sendResponse(req.ID, result)
}

// surfaceScoped reports whether using method should subscribe the
// connection to the method's surface.
func surfaceScoped(method string) bool {
	switch method {
	case "surfaces_list", "surface_remove":
		return false
	}
	return true
}

func surfaceIDOf(params json.RawMessage) (string, error) {
	var scope struct {
		SurfaceID string `json:"surfaceId"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &scope); err != nil {
			return "", err
		}
	}
	if scope.SurfaceID == "" {
		return surfaces.DefaultSurfaceID, nil
	}
	return scope.SurfaceID, nil
}

func (wsc *wsConnection) subscribe(surfaceID string) error {
	surface, err := commands.FindSurface(surfaceID)
	if err != nil {
		return err
	}

	wsc.subsMu.Lock()
	defer wsc.subsMu.Unlock()

	if existing, ok := wsc.subs[surfaceID]; ok {
		if existing.surface == surface {
			return nil
		}
		// the surface was evicted and recreated
		existing.surface.Unsubscribe(existing.sub)
	}

	sub := surface.Subscribe(func(ev gesture.Event) {
		err := wsc.sendJSON(JSONRPCNotification{
			JSONRPC: "2.0",
			Method:  methodGestureEvent,
			Params: GestureEventParams{
				SurfaceID: surfaceID,
				Name:      ev.Name,
				Payload:   ev.Payload,
			},
		})
		if err != nil {
			utils.Verbose("WebSocket push failed: %v", err)
		}
	})
	wsc.subs[surfaceID] = surfaceSubscription{surface: surface, sub: sub}
	return nil
}

func (wsc *wsConnection) unsubscribe(surfaceID string) {
	wsc.subsMu.Lock()
	defer wsc.subsMu.Unlock()

	if existing, ok := wsc.subs[surfaceID]; ok {
		existing.surface.Unsubscribe(existing.sub)
		delete(wsc.subs, surfaceID)
	}
}

func (wsc *wsConnection) unsubscribeAll() {
	wsc.subsMu.Lock()
	defer wsc.subsMu.Unlock()

	for id, existing := range wsc.subs {
		existing.surface.Unsubscribe(existing.sub)
		delete(wsc.subs, id)
	}
}

func (wsc *wsConnection) sendResponse(id interface{}, result interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendError(id interface{}, code int, message string, data interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendJSON(v interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()
	_ = wsc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return wsc.conn.WriteJSON(v)
}
