package port

import "context"

// FileStorage abstracts the storage disk holding uploaded invoice files.
type FileStorage interface {
	Save(ctx context.Context, key string, content []byte, contentType string) error
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
