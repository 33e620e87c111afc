// Package media defines the boundary to the external media host that stores
// product images and videos. The host is an opaque collaborator: it stores a
// file and returns a delivery URL, and deletes assets by public identifier.
package media

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// ResourceType distinguishes image and video assets on the media host.
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
)

// Asset describes a stored media file.
type Asset struct {
	URL          string
	PublicID     string
	ResourceType ResourceType
	Format       string
	// Duration is the length in seconds for video assets, zero for images.
	Duration float64
}

// UploadOptions controls how an uploaded file is stored.
type UploadOptions struct {
	// Folder groups assets on the media host. Empty uses the host default.
	Folder string
	// Filename is the original client filename, used for format detection.
	Filename string
	// ContentType is the declared MIME type of the file.
	ContentType string
}

// Store is the media host contract consumed by the catalog.
type Store interface {
	Upload(ctx context.Context, file io.Reader, opts UploadOptions) (*Asset, error)
	Delete(ctx context.Context, publicID string, resourceType ResourceType) error
}

var videoExtPattern = regexp.MustCompile(`(?i)\.(mp4|webm|mov)$`)

// ParseDeliveryURL derives the public identifier and resource type from a
// delivery URL. The public ID is the last folder segment plus the filename
// without its extension; videos are recognised by a /video/ path segment or
// a video file extension. Returns ok=false for URLs the host did not issue.
func ParseDeliveryURL(url string) (publicID string, resourceType ResourceType, ok bool) {
	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		return "", "", false
	}

	fileWithExt := parts[len(parts)-1]
	if fileWithExt == "" {
		return "", "", false
	}
	folder := parts[len(parts)-2]

	file := fileWithExt
	if i := strings.IndexByte(fileWithExt, '.'); i >= 0 {
		file = fileWithExt[:i]
	}
	if file == "" {
		return "", "", false
	}

	resourceType = ResourceImage
	if strings.Contains(url, "/video/") || videoExtPattern.MatchString(url) {
		resourceType = ResourceVideo
	}

	return folder + "/" + file, resourceType, true
}

// Cleanup deletes the assets behind the given delivery URLs, best effort:
// every asset is attempted, individual failures are logged and collected,
// and no failure stops the loop. Callers must not treat a non-empty result
// as fatal for the operation that triggered the cleanup.
func Cleanup(ctx context.Context, store Store, urls []string) []error {
	lg := zctx.From(ctx)

	var failed []error
	for _, url := range urls {
		publicID, resourceType, ok := ParseDeliveryURL(url)
		if !ok {
			lg.Warn("Skipping unrecognised media URL", zap.String("url", url))
			continue
		}

		if err := store.Delete(ctx, publicID, resourceType); err != nil {
			lg.Error("Media asset deletion failed",
				zap.String("public_id", publicID),
				zap.String("resource_type", string(resourceType)),
				zap.Error(err),
			)
			failed = append(failed, err)
		}
	}
	return failed
}
