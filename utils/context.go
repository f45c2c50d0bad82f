package utils

import "context"

type contextKey string

// Request-scoped values placed on the context by handlers
const (
	RequestIDKey contextKey = "request_id"
	UserAgentKey contextKey = "user_agent"
	IPAddressKey contextKey = "ip_address"
	EndpointKey  contextKey = "endpoint"
	AdminIDKey   contextKey = "admin_id"
)

// RequestIDFromContext returns the request id placed by the HTTP layer, or ""
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// AdminIDFromContext returns the authenticated admin id, if any
func AdminIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(AdminIDKey).(uint)
	return id, ok
}
