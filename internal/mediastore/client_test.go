package mediastore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modesta/storefront-api/internal/domain/media"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		BaseURL:   srv.URL,
		CloudName: "teststore",
		APIKey:    "key123",
		APISecret: "secret456",
		Folder:    "store",
	}, srv.Client())
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func TestUpload_Image(t *testing.T) {
	var gotPath string
	var gotSignature, gotFolder string

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotSignature = r.FormValue("signature")
		gotFolder = r.FormValue("folder")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"secure_url":    "https://media.example.com/image/upload/v1/store/abc.jpg",
			"public_id":     "store/abc",
			"resource_type": "image",
			"format":        "jpg",
		})
	})

	asset, err := client.Upload(context.Background(), strings.NewReader("fakebytes"), media.UploadOptions{
		Filename:    "photo.jpg",
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)

	assert.Equal(t, "/teststore/auto/upload", gotPath)
	assert.Equal(t, "store", gotFolder)
	assert.NotEmpty(t, gotSignature)
	assert.Equal(t, "store/abc", asset.PublicID)
	assert.Equal(t, media.ResourceImage, asset.ResourceType)
	assert.Equal(t, "https://media.example.com/image/upload/v1/store/abc.jpg", asset.URL)
}

func TestUpload_VideoTooLong(t *testing.T) {
	var destroyCalled bool

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/video/destroy") {
			destroyCalled = true
			_ = json.NewEncoder(w).Encode(map[string]any{"result": "ok"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"secure_url":    "https://media.example.com/video/upload/v1/store/clip.mp4",
			"public_id":     "store/clip",
			"resource_type": "video",
			"format":        "mp4",
			"duration":      9.2,
		})
	})

	_, err := client.Upload(context.Background(), strings.NewReader("fakebytes"), media.UploadOptions{
		Filename: "clip.mp4",
	})

	require.ErrorIs(t, err, ErrVideoTooLong)
	assert.True(t, destroyCalled, "oversized video must be destroyed on the host")
}

func TestUpload_HostError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Invalid signature"},
		})
	})

	_, err := client.Upload(context.Background(), strings.NewReader("x"), media.UploadOptions{Filename: "a.jpg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid signature")
}

func TestDelete(t *testing.T) {
	var gotPath, gotPublicID string

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotPublicID = r.FormValue("public_id")
		_ = json.NewEncoder(w).Encode(map[string]any{"result": "ok"})
	})

	err := client.Delete(context.Background(), "store/abc", media.ResourceImage)
	require.NoError(t, err)
	assert.Equal(t, "/teststore/image/destroy", gotPath)
	assert.Equal(t, "store/abc", gotPublicID)
}

func TestDelete_NotFoundIsNotAnError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"result": "not found"})
	})

	err := client.Delete(context.Background(), "store/gone", media.ResourceImage)
	require.NoError(t, err)
}

func TestSign_IsDeterministicAndSorted(t *testing.T) {
	client := NewClient(Config{APISecret: "s3cr3t"}, nil)

	a := client.sign(map[string]string{"timestamp": "123", "folder": "store"})
	b := client.sign(map[string]string{"folder": "store", "timestamp": "123"})
	assert.Equal(t, a, b)
	assert.Len(t, a, 40)
}
