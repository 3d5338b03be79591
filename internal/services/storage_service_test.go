package services

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/rights-backend/internal/config"
)

func newLocalStorage(t *testing.T) *StorageService {
	t.Helper()
	s, err := NewStorageService(&config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: "8080"},
	})
	require.NoError(t, err)
	require.False(t, s.UsesS3())
	s.store.(*localStore).dir = t.TempDir()
	return s
}

func TestLocalUploadAndDelete(t *testing.T) {
	s := newLocalStorage(t)
	content := []byte("%PDF-1.4 fake contract body")

	result, err := s.Upload(context.Background(), bytes.NewReader(content), "Master Agreement.PDF", int64(len(content)), ContractDocumentOptions)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Key, "contracts/"))
	assert.True(t, strings.HasSuffix(result.Key, ".pdf"))
	assert.Equal(t, int64(len(content)), result.Size)
	assert.Equal(t, "application/pdf", result.MimeType)
	assert.Equal(t, "http://localhost:8080/uploads/"+result.Key, result.URL)

	path := s.store.(*localStore).path(result.Key)
	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	url, expires, err := s.DownloadURL(result.Key, result.URL, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, result.URL, url)
	assert.Nil(t, expires)

	require.NoError(t, s.DeleteFile(context.Background(), result.Key))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is not an error.
	assert.NoError(t, s.DeleteFile(context.Background(), result.Key))
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	s := newLocalStorage(t)

	_, err := s.Upload(context.Background(), strings.NewReader("#!/bin/sh"), "run.sh", 9, ContractDocumentOptions)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `".sh"`)
}

func TestUploadEnforcesMaxSize(t *testing.T) {
	s := newLocalStorage(t)
	opts := UploadOptions{MaxSize: 4}

	_, err := s.Upload(context.Background(), strings.NewReader("12345"), "a.txt", 5, opts)
	assert.Error(t, err)

	// Declared size understates the body.
	_, err = s.Upload(context.Background(), strings.NewReader("123456789"), "a.txt", 2, opts)
	assert.Error(t, err)

	_, err = s.Upload(context.Background(), strings.NewReader("1234"), "a.txt", 4, opts)
	assert.NoError(t, err)
}

func TestS3URLPrefersCloudFront(t *testing.T) {
	s := &s3Store{bucket: "docs", region: "us-east-1"}
	assert.Equal(t, "https://docs.s3.us-east-1.amazonaws.com/contracts/a.pdf", s.objectURL("contracts/a.pdf"))

	s.cdnURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/contracts/a.pdf", s.objectURL("contracts/a.pdf"))
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	key := objectKey("Amendment 2.DOCX", "contracts", now)
	assert.Regexp(t, `^contracts/20250601_[0-9a-f]{8}\.docx$`, key)
	assert.Regexp(t, `^20250601_[0-9a-f]{8}$`, objectKey("README", "", now))
}
