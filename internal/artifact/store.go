// Package artifact stores rendered documents in a put/get byte-blob store.
// The pipeline writes each artifact once, keyed by a path derived from the
// job's correlation token, and never overwrites another job's artifact.
package artifact

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no object exists under the given key
var ErrNotFound = errors.New("artifact not found")

// PutInput describes one object write
type PutInput struct {
	Key         string
	ContentType string
	Reader      io.Reader
	Size        int64
}

// Object is a readable stored artifact
type Object struct {
	Reader      io.ReadCloser
	ContentType string
	Size        int64
}

// Store is the artifact storage contract, implemented by localfs and s3
type Store interface {
	Provider() string
	Put(ctx context.Context, in PutInput) error
	Get(ctx context.Context, key string) (*Object, error)
}
