package domain

import "context"

// BlobStore is key-addressed durable storage for conversation payloads.
// Get and Delete report a missing key as ErrNotFound; every call is
// boundable by the caller's context.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// ModelClient is the text-completion backend the assembled prompt is
// submitted to.
type ModelClient interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}
