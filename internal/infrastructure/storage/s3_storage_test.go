package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:       "crm-exports",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Region:       "us-east-1",
		Endpoint:     "localhost:9000",
		UsePathStyle: true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name   string
		cfg    *config.StorageConfig
		errMsg string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ObjectStorage(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewS3ObjectStorage_Defaults(t *testing.T) {
	s, err := NewS3ObjectStorage(validConfig(), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, "crm-exports", s.Bucket())
	assert.Equal(t, 15*time.Minute, s.presignExpiration)

	s, err = NewS3ObjectStorage(validConfig(), WithPresignExpiration(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.presignExpiration)
}

func TestNormalizeEndpoint(t *testing.T) {
	ep, err := normalizeEndpoint("", false)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", ep)

	ep, err = normalizeEndpoint("s3.example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", ep)

	ep, err = normalizeEndpoint("http://minio:9000", true)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", ep)
}

func TestGenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(validConfig(), WithPresignExpiration(10*time.Minute))
	require.NoError(t, err)

	before := time.Now()
	raw, expiresAt, err := s.GenerateDownloadURL(context.Background(), "exports/t1/invoices.xlsx", "invoices.xlsx")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/crm-exports/exports/t1/invoices.xlsx"))
	assert.Contains(t, u.Query().Get("response-content-disposition"), "invoices.xlsx")
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.WithinDuration(t, before.Add(10*time.Minute), expiresAt, 5*time.Second)
}

func TestEmptyKeyRejected(t *testing.T) {
	s, err := NewS3ObjectStorage(validConfig())
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = s.GenerateDownloadURL(ctx, "", "x")
	assert.ErrorContains(t, err, "storage key is required")
	assert.ErrorContains(t, s.PutObject(ctx, "", "text/csv", nil), "storage key is required")
	assert.ErrorContains(t, s.DeleteObject(ctx, ""), "storage key is required")
}
