package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ceramica/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:         true,
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		Bucket:          "ceramica",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		UsePathStyle:    true,
		PresignExpiry:   10 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKeyID = "" }, "access key id is required"},
		{"missing secret", func(c *config.StorageConfig) { c.SecretAccessKey = "" }, "secret access key is required"},
		{"bad endpoint", func(c *config.StorageConfig) { c.Endpoint = "http://" }, "invalid storage endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			_, err := NewS3ObjectStorage(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		assert.Error(t, err)
	})

	t.Run("default expiry", func(t *testing.T) {
		cfg := validConfig()
		cfg.PresignExpiry = 0
		s, err := NewS3ObjectStorage(cfg, WithLogger(zap.NewNop()))
		require.NoError(t, err)
		assert.Equal(t, defaultPresignExpiry, s.expiry)
		assert.Equal(t, "ceramica", s.Bucket())
	})
}

func TestS3ObjectStorage_PresignUpload(t *testing.T) {
	s, err := NewS3ObjectStorage(validConfig())
	require.NoError(t, err)

	before := time.Now()
	raw, expires, err := s.PresignUpload(context.Background(), "contact/2026/03/abc-factura.pdf", "application/pdf")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/ceramica/contact/2026/03/abc-factura.pdf", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.WithinDuration(t, before.Add(10*time.Minute), expires, 5*time.Second)

	_, _, err = s.PresignUpload(context.Background(), "", "")
	assert.Error(t, err)
}

func TestS3ObjectStorage_PublicURL(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.StorageConfig)
		want   string
	}{
		{
			name: "path style",
			want: "http://localhost:9000/ceramica/document/2026/01/x-plano%20taller.pdf",
		},
		{
			name: "virtual host",
			mutate: func(c *config.StorageConfig) {
				c.Endpoint = "https://s3.us-east-1.amazonaws.com"
				c.UsePathStyle = false
			},
			want: "https://ceramica.s3.us-east-1.amazonaws.com/document/2026/01/x-plano%20taller.pdf",
		},
		{
			name:   "public base wins",
			mutate: func(c *config.StorageConfig) { c.PublicBaseURL = "https://cdn.ceramica.mx/files/" },
			want:   "https://cdn.ceramica.mx/files/document/2026/01/x-plano%20taller.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			s, err := NewS3ObjectStorage(cfg)
			require.NoError(t, err)
			got := s.PublicURL("document/2026/01/x-plano taller.pdf")
			assert.Equal(t, tt.want, got)
			assert.False(t, strings.Contains(got, "//document"))
		})
	}
}
