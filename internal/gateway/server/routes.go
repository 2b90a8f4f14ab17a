package server

import (
	"net/http"

	"graphclick/internal/gateway/handler"
	"graphclick/internal/gateway/handler/ws"
	"graphclick/internal/gateway/middleware"
)

func NewMux(
	widgetHandler *ws.WidgetHandler,
	parentHandler *ws.ParentHandler,
	debugHandler *handler.DebugHandler,
) http.Handler {
	mux := http.NewServeMux()

	// Websocket Handlers
	mux.HandleFunc("/ws/widget", widgetHandler.HandleWidgetWS)
	mux.HandleFunc("/ws/parent", parentHandler.HandleParentWS)

	// Debug Handlers
	mux.HandleFunc("/debug/notifications", debugHandler.HandleNotifications)
	mux.HandleFunc("/healthz", debugHandler.HandleHealth)

	// Middleware
	return middleware.CORS(mux)
}
