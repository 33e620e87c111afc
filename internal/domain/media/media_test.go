package media

import (
	"context"
	"io"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeliveryURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		publicID string
		resource ResourceType
		ok       bool
	}{
		{
			name:     "image",
			url:      "https://media.example.com/image/upload/v12/store/abc123.jpg",
			publicID: "store/abc123",
			resource: ResourceImage,
			ok:       true,
		},
		{
			name:     "video by path segment",
			url:      "https://media.example.com/video/upload/v12/store/clip9.webm",
			publicID: "store/clip9",
			resource: ResourceVideo,
			ok:       true,
		},
		{
			name:     "video by extension",
			url:      "https://media.example.com/upload/store/clip9.MP4",
			publicID: "store/clip9",
			resource: ResourceVideo,
			ok:       true,
		},
		{
			name: "trailing slash",
			url:  "https://media.example.com/store/",
			ok:   false,
		},
		{
			name: "no path",
			url:  "abc123",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publicID, resource, ok := ParseDeliveryURL(tt.url)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.publicID, publicID)
			assert.Equal(t, tt.resource, resource)
		})
	}
}

type recordingStore struct {
	deleted []string
	failOn  map[string]error
}

func (s *recordingStore) Upload(context.Context, io.Reader, UploadOptions) (*Asset, error) {
	return nil, errors.New("not implemented")
}

func (s *recordingStore) Delete(_ context.Context, publicID string, _ ResourceType) error {
	if err, ok := s.failOn[publicID]; ok {
		return err
	}
	s.deleted = append(s.deleted, publicID)
	return nil
}

func TestCleanup_BestEffort(t *testing.T) {
	store := &recordingStore{
		failOn: map[string]error{
			"store/broken": errors.New("host unavailable"),
		},
	}

	failed := Cleanup(context.Background(), store, []string{
		"https://media.example.com/image/upload/v1/store/first.jpg",
		"https://media.example.com/image/upload/v1/store/broken.jpg",
		"https://media.example.com/image/upload/v1/store/last.png",
	})

	// One failure is reported but the remaining assets are still deleted.
	assert.Len(t, failed, 1)
	assert.Equal(t, []string{"store/first", "store/last"}, store.deleted)
}

func TestCleanup_SkipsUnrecognisedURLs(t *testing.T) {
	store := &recordingStore{}

	failed := Cleanup(context.Background(), store, []string{
		"garbage",
		"https://media.example.com/image/upload/v1/store/ok.jpg",
	})

	assert.Empty(t, failed)
	assert.Equal(t, []string{"store/ok"}, store.deleted)
}
