package domain

// Chaves de metadados propagadas junto aos comandos.
const (
	MetadataCorrelationID = "correlation_id"
	MetadataRequestID     = "request_id"
)

// Metadata carrega informações de transporte de um comando.
type Metadata map[string]string

func (m Metadata) Get(key string) string {
	if m == nil {
		return ""
	}
	return m[key]
}

// With retorna uma cópia com a chave definida.
func (m Metadata) With(key, value string) Metadata {
	out := make(Metadata, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[key] = value
	return out
}

// IDGenerator gera identificadores de correlação.
type IDGenerator[T any] func() T
