package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"blog-helper-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.MinIOConfig {
	return config.MinIOConfig{
		Endpoint:        "127.0.0.1:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		BucketName:      "blog-posts",
		Region:          "us-east-1",
	}
}

func TestPresignedURLIsSignedLocally(t *testing.T) {
	store, err := NewMinioStore(testConfig())
	require.NoError(t, err)

	raw, err := store.PresignedURL(context.Background(), "posts/1/v1-abc.md", 24*time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/blog-posts/posts/1/v1-abc.md", u.Path)
	assert.Equal(t, "86400", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestNewMinioStoreRejectsBadEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Endpoint = "http://127.0.0.1:9000"
	_, err := NewMinioStore(cfg)
	assert.Error(t, err)
}
