package sessions

import "context"

type accessKey struct{}

// WithAccess records the access credential in effect for the rest of the
// request, which may be newer than the one the browser sent.
func WithAccess(ctx context.Context, access string) context.Context {
	return context.WithValue(ctx, accessKey{}, access)
}

func AccessFromContext(ctx context.Context) string {
	access, _ := ctx.Value(accessKey{}).(string)
	return access
}
