package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mobile-next/gesturecli/commands"
	"github.com/mobile-next/gesturecli/settings"
	"github.com/mobile-next/gesturecli/utils"
	"golang.org/x/sync/errgroup"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602

	// Internal error: Internal JSON-RPC error
	ErrCodeInternalError = -32603
)

// Server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 5 * time.Second
)

// error titles and messages shared by /rpc and /ws
const (
	errTitleParseError    = "Parse error"
	errTitleInvalidReq    = "Invalid Request"
	errTitleMethodNotSupp = "Method not supported"

	errMsgParseError       = "expecting jsonrpc payload"
	errMsgInvalidJSONRPC   = "'jsonrpc' must be '2.0'"
	errMsgIDRequired       = "'id' field is required"
	errMsgMethodRequired   = "'method' is required"
	errMsgTextOnly         = "only text messages accepted for requests"
	errMsgShutdownHTTPOnly = "server.shutdown not supported over WebSocket, use HTTP /rpc endpoint"
	errMsgSubscribeWSOnly  = "subscriptions require a WebSocket connection, use /ws endpoint"
)

const methodShutdown = "server.shutdown"

var okResponse = map[string]interface{}{"status": "ok"}

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// JSONRPCNotification is a server-initiated message without an id
type JSONRPCNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// Config holds everything StartServer needs
type Config struct {
	Addr       string
	EnableCORS bool

	// Settings, when set, is applied to every surface. With Watch the
	// files are reloaded on change.
	Settings *settings.Holder
	Watch    bool
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewHandler builds the HTTP handler serving /, /rpc and /ws. shutdown is
// called after a server.shutdown request has been answered.
func NewHandler(enableCORS bool, shutdown func()) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", sendBanner)
	mux.HandleFunc("/rpc", newJSONRPCHandler(shutdown))
	mux.Handle("/ws", NewWebSocketHandler(enableCORS))

	if enableCORS {
		return corsMiddleware(mux)
	}
	return mux
}

func StartServer(cfg Config) error {
	addr, err := utils.NormalizeListenAddr(cfg.Addr)
	if err != nil {
		return err
	}

	if err := utils.CheckListenAddr(addr); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var shutdownOnce sync.Once
	shutdownRequested := make(chan struct{})
	requestShutdown := func() {
		shutdownOnce.Do(func() { close(shutdownRequested) })
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      NewHandler(cfg.EnableCORS, requestShutdown),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	if cfg.Settings != nil {
		applySettings(cfg.Settings.Current())
		cfg.Settings.OnReload(applySettings)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		utils.Info("Starting server on http://%s...", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-shutdownRequested:
			utils.Info("Shutdown requested, stopping server")
		case <-gctx.Done():
		}

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancelShutdown()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Watch && cfg.Settings != nil {
		g.Go(func() error {
			return cfg.Settings.Watch(gctx)
		})
	}

	return g.Wait()
}

func applySettings(snap *settings.Snapshot) {
	if registry := commands.GetRegistry(); registry != nil {
		registry.ApplySettings(snap)
	}
}

// rpcError is a JSON-RPC error object before it is sent
type rpcError struct {
	code    int
	message string
	data    string
}

// validateJSONRPCRequest checks the envelope of a WebSocket request
func validateJSONRPCRequest(req JSONRPCRequest) *rpcError {
	if req.JSONRPC != "2.0" {
		return &rpcError{ErrCodeInvalidRequest, errTitleInvalidReq, errMsgInvalidJSONRPC}
	}

	if req.ID == nil {
		return &rpcError{ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired}
	}

	if req.Method == "" {
		return &rpcError{ErrCodeInvalidRequest, errTitleInvalidReq, errMsgMethodRequired}
	}

	// shutting down from a socket would drop the socket before the reply
	if req.Method == methodShutdown {
		return &rpcError{ErrCodeMethodNotFound, errTitleMethodNotSupp, errMsgShutdownHTTPOnly}
	}

	return nil
}

func newJSONRPCHandler(shutdown func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req JSONRPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendJSONRPCError(w, nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
			return
		}

		if req.JSONRPC != "2.0" {
			sendJSONRPCError(w, req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgInvalidJSONRPC)
			return
		}

		if req.ID == nil {
			sendJSONRPCError(w, nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired)
			return
		}

		utils.Info("Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

		switch req.Method {
		case "":
			sendJSONRPCError(w, req.ID, ErrCodeServerError, "Server error", errMsgMethodRequired)
			return
		case methodShutdown:
			sendJSONRPCResponse(w, req.ID, okResponse)
			if shutdown != nil {
				// let the response flush before the listener closes
				go shutdown()
			}
			return
		}

		if isStreamingMethod(req.Method) {
			sendJSONRPCError(w, req.ID, ErrCodeMethodNotFound, errTitleMethodNotSupp, errMsgSubscribeWSOnly)
			return
		}

		handler, exists := GetMethodRegistry()[req.Method]
		if !exists {
			sendJSONRPCError(w, req.ID, ErrCodeMethodNotFound, "Method not found", fmt.Sprintf("Method '%s' not found", req.Method))
			return
		}

		result, err := handler(req.Params)
		if err != nil {
			utils.Error("Error executing method %s: %v", req.Method, err)
			sendJSONRPCError(w, req.ID, ErrCodeServerError, "Server error", err.Error())
			return
		}

		sendJSONRPCResponse(w, req.ID, result)
	}
}

func sendJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(okResponse)
}
