// Package mediastore implements the media.Store boundary against the media
// host's REST API: signed multipart uploads and destroy-by-public-ID.
package mediastore

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/modesta/storefront-api/internal/domain/media"
)

// maxVideoDuration is the longest clip the storefront accepts. Longer
// uploads are destroyed on the host immediately after upload reports their
// duration.
const maxVideoDuration = 5 * time.Second

// ErrVideoTooLong is returned when an uploaded video exceeds the duration
// limit. The oversized asset is removed from the host before returning.
var ErrVideoTooLong = errors.New("video exceeds 5 seconds limit")

// Config holds the credentials and defaults for the media host account.
type Config struct {
	// BaseURL is the API root, e.g. https://api.cloudinary.com/v1_1.
	BaseURL string
	// CloudName identifies the account on the host.
	CloudName string
	APIKey    string
	APISecret string
	// Folder is the default upload folder when the caller supplies none.
	Folder string
}

// Client talks to the media host. It implements media.Store.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

var _ media.Store = (*Client)(nil)

// NewClient creates a media host client. A nil httpClient falls back to a
// client with a 30s timeout, long enough for video uploads.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient, now: time.Now}
}

// uploadResponse mirrors the host's upload and destroy response body.
type uploadResponse struct {
	SecureURL    string  `json:"secure_url"`
	PublicID     string  `json:"public_id"`
	ResourceType string  `json:"resource_type"`
	Format       string  `json:"format"`
	Duration     float64 `json:"duration"`
	Result       string  `json:"result"`
	Error        struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload stores the file on the media host and returns the resulting asset.
// The host auto-detects image vs video. Videos longer than the duration
// limit are destroyed again and reported as ErrVideoTooLong.
func (c *Client) Upload(ctx context.Context, file io.Reader, opts media.UploadOptions) (*media.Asset, error) {
	folder := opts.Folder
	if folder == "" {
		folder = c.cfg.Folder
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	params := map[string]string{
		"folder":    folder,
		"timestamp": timestamp,
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range params {
		if err := mw.WriteField(k, v); err != nil {
			return nil, errors.Wrap(err, "write form field")
		}
	}
	if err := mw.WriteField("api_key", c.cfg.APIKey); err != nil {
		return nil, errors.Wrap(err, "write form field")
	}
	if err := mw.WriteField("signature", c.sign(params)); err != nil {
		return nil, errors.Wrap(err, "write form field")
	}

	part, err := mw.CreateFormFile("file", opts.Filename)
	if err != nil {
		return nil, errors.Wrap(err, "create file part")
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, errors.Wrap(err, "copy file")
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "finalize form")
	}

	endpoint := fmt.Sprintf("%s/%s/auto/upload", c.cfg.BaseURL, c.cfg.CloudName)
	resp, err := c.post(ctx, endpoint, mw.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}

	asset := &media.Asset{
		URL:          resp.SecureURL,
		PublicID:     resp.PublicID,
		ResourceType: media.ResourceType(resp.ResourceType),
		Format:       resp.Format,
		Duration:     resp.Duration,
	}

	if asset.ResourceType == media.ResourceVideo && asset.Duration > maxVideoDuration.Seconds() {
		// Best effort: the limit violation is the caller's error either way.
		_ = c.Delete(ctx, asset.PublicID, media.ResourceVideo)
		return nil, ErrVideoTooLong
	}

	return asset, nil
}

// Delete removes an asset from the media host by public identifier.
func (c *Client) Delete(ctx context.Context, publicID string, resourceType media.ResourceType) error {
	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("api_key", c.cfg.APIKey)
	form.Set("signature", c.sign(params))

	endpoint := fmt.Sprintf("%s/%s/%s/destroy", c.cfg.BaseURL, c.cfg.CloudName, resourceType)
	resp, err := c.post(ctx, endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}

	// The host reports "not found" as a successful destroy with a result
	// marker; only explicit failures are errors.
	if resp.Result != "" && resp.Result != "ok" && resp.Result != "not found" {
		return errors.Errorf("destroy %s: %s", publicID, resp.Result)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, body io.Reader) (*uploadResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", contentType)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "media host request")
	}
	defer func() { _ = res.Body.Close() }()

	var parsed uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrapf(err, "decode media host response (status %d)", res.StatusCode)
	}

	if res.StatusCode >= 400 {
		msg := parsed.Error.Message
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return nil, errors.Errorf("media host: %s (status %d)", msg, res.StatusCode)
	}

	return &parsed, nil
}

// sign computes the request signature: the SHA-1 of the sorted,
// ampersand-joined parameters with the API secret appended.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.cfg.APISecret))
	return hex.EncodeToString(sum[:])
}
