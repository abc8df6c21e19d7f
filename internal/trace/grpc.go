package trace

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// UnaryClientInterceptor sends the caller's IDs with every unary call. Calls
// made outside a span start their own trace so the sidecar can still
// correlate its logs.
func UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ids, ok := FromContext(ctx)
		if !ok {
			ids = rootIDs()
			ctx = withIDs(ctx, ids)
		}
		ctx = metadata.AppendToOutgoingContext(ctx, ids.pairs()...)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
