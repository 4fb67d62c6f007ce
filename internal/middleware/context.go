package middleware

import "context"

type contextKey string

const identitySinkKey contextKey = "identitySink"

func withIdentitySink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, identitySinkKey, sink)
}

func identitySinkFrom(ctx context.Context) *string {
	sink, _ := ctx.Value(identitySinkKey).(*string)
	return sink
}
