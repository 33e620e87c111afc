package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func (e *testEnv) doUpload(t *testing.T, filename, contentType string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	body, formType := multipartUpload(t, filename, contentType, []byte("fake bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", formType)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func TestUploadMedia(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.doUpload(t, "abaya.jpg", "image/jpeg", cookie)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Status)
	assert.Equal(t, "https://media.example.com/store/abaya.jpg", resp.URL)
	assert.Equal(t, []string{"abaya.jpg"}, env.mediaFS.uploaded)
}

func TestUploadMedia_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doUpload(t, "abaya.jpg", "image/jpeg")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadMedia_RejectsUnsupportedType(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.doUpload(t, "malware.exe", "application/octet-stream", cookie)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unsupported file type", decodeStatus(t, rec).Message)
	assert.Empty(t, env.mediaFS.uploaded)
}
