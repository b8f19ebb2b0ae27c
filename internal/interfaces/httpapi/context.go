package httpapi

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/playoff-pool/internal/domain/user"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

type principalKey struct{}

// withPrincipal attaches the verified caller and tags the server span with
// the pool user id.
func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("pool.user_id", p.UserID))
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}

func principalFromRequest(ctx context.Context) (user.Principal, error) {
	p, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return p, nil
}
