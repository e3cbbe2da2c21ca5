package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG: 1x1 transparent pixel
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestLocal_SaveImage(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)

	ref, err := store.SaveImage(context.Background(), "party_e1", "logo.PNG", pngPixel)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "/uploads/party_e1_"), ref)
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)

	written, err := os.ReadFile(filepath.Join(dir, filepath.Base(ref)))
	require.NoError(t, err)
	assert.Equal(t, pngPixel, written)

	again, err := store.SaveImage(context.Background(), "party_e1", "copy.png", pngPixel)
	require.NoError(t, err)
	assert.Equal(t, ref, again, "identical content maps to the same name")
}

func TestLocal_RejectsNonImage(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = store.SaveImage(context.Background(), "party_e1", "logo.png", []byte("#!/bin/sh\necho pwned\n"))
	assert.ErrorIs(t, err, ErrNotImage)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
