package infrastructure

import (
	"context"

	"github.com/google/uuid"

	"github.com/mateusmacedo/go-schedule/pkg/domain"
)

type requestIDKey struct{}

func GenerateUUID() string {
	return uuid.New().String()
}

// WithRequestID anexa o identificador da requisição ao contexto.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// CommandMetadata monta os metadados de um comando a partir do contexto,
// gerando um id de correlação quando não houver request id.
func CommandMetadata(ctx context.Context, idGenerator domain.IDGenerator[string]) domain.Metadata {
	md := domain.Metadata{}
	if reqID := RequestID(ctx); reqID != "" {
		md = md.With(domain.MetadataRequestID, reqID)
		return md.With(domain.MetadataCorrelationID, reqID)
	}
	return md.With(domain.MetadataCorrelationID, idGenerator())
}
