package requestctx

import "context"

type contextKey string

var (
	requestIDKey = contextKey("X-Request-Id")
	methodKey    = contextKey("X-Method")
	routeKey     = contextKey("X-Route")
	remoteIPKey  = contextKey("X-Remote-Ip")
	userIDKey    = contextKey("X-User-Id")
	userEmailKey = contextKey("X-User-Email")
	userRoleKey  = contextKey("X-User-Role")
)

// Actor identifies the authenticated user performing a request. Identity is
// established upstream (API gateway) and forwarded via headers.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

func SetMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, methodKey, method)
}

func GetMethod(ctx context.Context) string {
	return stringValue(ctx, methodKey)
}

func SetRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey, route)
}

func GetRoute(ctx context.Context) string {
	return stringValue(ctx, routeKey)
}

func SetRemoteIP(ctx context.Context, remoteIP string) context.Context {
	return context.WithValue(ctx, remoteIPKey, remoteIP)
}

func GetRemoteIP(ctx context.Context) string {
	return stringValue(ctx, remoteIPKey)
}

func SetActor(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, userIDKey, actor.ID)
	ctx = context.WithValue(ctx, userEmailKey, actor.Email)
	return context.WithValue(ctx, userRoleKey, actor.Role)
}

func GetActor(ctx context.Context) Actor {
	return Actor{
		ID:    stringValue(ctx, userIDKey),
		Email: stringValue(ctx, userEmailKey),
		Role:  stringValue(ctx, userRoleKey),
	}
}

// GetUserID returns the acting user's id, or "" for anonymous requests.
func GetUserID(ctx context.Context) string {
	return stringValue(ctx, userIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	value, ok := ctx.Value(key).(string)
	if !ok {
		return ""
	}
	return value
}
