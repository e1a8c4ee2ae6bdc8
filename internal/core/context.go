package core

import "context"

type contextKey string

const (
	ctxKeyIPAddress   contextKey = "audit_ip"
	ctxKeyUserAgent   contextKey = "audit_ua"
	ctxKeyCredentials contextKey = "portal_credentials"
)

// ForwardedCredentials are the operator's own portal credentials, passed
// through so the bulk-create endpoint authorizes the real admin.
type ForwardedCredentials struct {
	Authorization string
	Cookie        string
}

// ContextWithIPAddress adds IP address to context for audit logging.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithUserAgent adds User-Agent to context for audit logging.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// ContextWithCredentials attaches the operator's portal credentials.
func ContextWithCredentials(ctx context.Context, creds ForwardedCredentials) context.Context {
	return context.WithValue(ctx, ctxKeyCredentials, creds)
}

// GetIPAddressFromContext extracts IP address from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// GetUserAgentFromContext extracts User-Agent from context.
func GetUserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}

// GetCredentialsFromContext returns forwarded credentials, if any.
func GetCredentialsFromContext(ctx context.Context) (ForwardedCredentials, bool) {
	creds, ok := ctx.Value(ctxKeyCredentials).(ForwardedCredentials)
	return creds, ok
}
