package artifact

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS_PutGet(t *testing.T) {
	store := NewLocalFS(t.TempDir())
	ctx := context.Background()

	pdf := []byte("%PDF-1.7 content")
	err := store.Put(ctx, PutInput{
		Key:         "designs/pdf/abc-123.pdf",
		ContentType: "application/pdf",
		Reader:      bytes.NewReader(pdf),
		Size:        int64(len(pdf)),
	})
	require.NoError(t, err)

	obj, err := store.Get(ctx, "designs/pdf/abc-123.pdf")
	require.NoError(t, err)
	defer obj.Reader.Close()

	got, err := io.ReadAll(obj.Reader)
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
	assert.Equal(t, int64(len(pdf)), obj.Size)
	assert.Equal(t, "application/pdf", obj.ContentType)
}

func TestLocalFS_GetMissing(t *testing.T) {
	store := NewLocalFS(t.TempDir())

	_, err := store.Get(context.Background(), "designs/pdf/nope.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalFS_PutRequiresKey(t *testing.T) {
	store := NewLocalFS(t.TempDir())

	err := store.Put(context.Background(), PutInput{Reader: bytes.NewReader(nil)})
	require.Error(t, err)
}
