// Package storage abstracts the external blob store holding uploaded PDFs.
package storage

import "context"

// BlobStore stores binary objects and resolves them back to URLs.
// Implementations return a durable public URL from Put and a short-lived
// presigned URL from PresignGet.
type BlobStore interface {
	Put(ctx context.Context, key string, contentType string, data []byte) (url string, err error)
	PresignGet(ctx context.Context, key string) (url string, err error)
}
