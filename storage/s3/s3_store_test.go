package s3

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/sketchdex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	prefix := fmt.Sprintf("test-sketchdex-%d/", time.Now().UnixNano())
	store := NewStore(s3.NewFromConfig(cfg), bucket, prefix)

	t.Run("SaveLoadList", func(t *testing.T) {
		data := []byte(`[{"class":"sourmash_signature","signatures":[]}]`)
		require.NoError(t, store.Save(ctx, "a.sig", data))

		got, err := store.Load(ctx, "a.sig")
		require.NoError(t, err)
		assert.Equal(t, data, got)

		keys, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Contains(t, keys, "a.sig")

		require.NoError(t, store.Delete(ctx, "a.sig"))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "nonexistent")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
