package embedding

import "context"

// Embedder turns an image reference into a raw embedding vector.
// Implementations are stateless and safe to retry; failures are
// reported through the ErrUnreachable / ErrBadResponse taxonomy.
type Embedder interface {
	Embed(ctx context.Context, imageRef string) ([]float64, error)
}
