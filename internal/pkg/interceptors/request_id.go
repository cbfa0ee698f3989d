package interceptors

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/mealprep-builder/internal/pkg/interceptors/constants"
)

// UnaryServerInterceptor takes the request id from incoming metadata, or
// generates one, stores it on the context and logs the call outcome.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(constants.HeaderXRequestId); len(ids) > 0 {
				requestID = ids[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = context.WithValue(ctx, constants.ContextKeyRequestID, requestID)

		start := time.Now()
		resp, err := handler(ctx, req)

		slog.InfoContext(ctx, "grpc call",
			"method", info.FullMethod,
			"request_id", requestID,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

// RequestIDFromContext returns the request id set by the gRPC interceptor or
// the HTTP middleware, or "unknown".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && id != "" {
		return id
	}
	return "unknown"
}
