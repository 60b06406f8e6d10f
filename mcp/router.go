package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// RequestHandler processes a JSON-RPC request message and returns a response.
type RequestHandler func(ctx context.Context, msg RequestMessage) ResponseMessage

// NotificationHandler processes a JSON-RPC notification.
type NotificationHandler func(ctx context.Context, msg NotificationMessage) error

// Router maps method names to handlers and applies the JSON-RPC envelope
// checks before dispatch. It is shared by the stdio and HTTP transports.
type Router struct {
	mu                   sync.RWMutex
	requestHandlers      map[string]RequestHandler
	notificationHandlers map[string]NotificationHandler
}

// NewRouter creates an empty router instance.
func NewRouter() *Router {
	return &Router{
		requestHandlers:      make(map[string]RequestHandler),
		notificationHandlers: make(map[string]NotificationHandler),
	}
}

// RegisterRequest associates a handler with a JSON-RPC method name. Existing
// registrations are replaced.
func (r *Router) RegisterRequest(method string, handler RequestHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requestHandlers[method] = handler
}

// RegisterNotification associates a notification handler with a method name.
func (r *Router) RegisterNotification(method string, handler NotificationHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notificationHandlers[method] = handler
}

// Methods lists the registered request methods, sorted.
func (r *Router) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.requestHandlers))
	for method := range r.requestHandlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}

// DispatchRequest routes a request to its handler, answering with a JSON-RPC
// error for a bad envelope or an unknown method.
func (r *Router) DispatchRequest(ctx context.Context, msg RequestMessage) ResponseMessage {
	if err := ensureVersion(msg.JSONRPC); err != nil {
		return ErrorResponse(msg.ID, InvalidRequest, err.Error())
	}
	if msg.Method == "" {
		return ErrorResponse(msg.ID, InvalidRequest, "missing method")
	}

	r.mu.RLock()
	handler, ok := r.requestHandlers[msg.Method]
	r.mu.RUnlock()
	if !ok {
		return ErrorResponse(msg.ID, MethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method))
	}

	resp := handler(ctx, msg)
	if resp.JSONRPC == "" {
		resp.JSONRPC = JSONRPCVersion
	}
	resp.ID = msg.ID
	return resp
}

// DispatchNotification routes a notification. Errors are only logged by the
// caller since notifications never get a response.
func (r *Router) DispatchNotification(ctx context.Context, msg NotificationMessage) error {
	if err := ensureVersion(msg.JSONRPC); err != nil {
		return err
	}

	r.mu.RLock()
	handler, ok := r.notificationHandlers[msg.Method]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("notification handler not registered: %s", msg.Method)
	}

	return handler(ctx, msg)
}
