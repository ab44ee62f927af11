package server

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pulse/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func (e *testEnv) upload(file []byte, kind, token string) *http.Response {
	e.t.Helper()
	body := bytes.NewBuffer(nil)
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "upload.bin")
	require.NoError(e.t, err)
	_, err = part.Write(file)
	require.NoError(e.t, err)
	if kind != "" {
		require.NoError(e.t, w.WriteField("kind", kind))
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/media", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

type uploadBody struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
	MIME string `json:"mime"`
}

func TestUploadMedia_PostAttachment(t *testing.T) {
	env := newTestEnv(t)
	ada := testutil.CreateUser(t, env.db, "ada")
	token := env.token(ada.ID)

	resp := env.upload(pngBytes(t, 16, 16), "", token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	up := decodeJSON[uploadBody](t, resp)
	assert.Equal(t, "post", up.Kind)
	assert.Equal(t, "image/png", up.MIME)
	require.True(t, strings.HasPrefix(up.URL, env.cfg.StoragePublicURL+"/posts/"+ada.ID+"/"), up.URL)

	key := strings.TrimPrefix(up.URL, env.cfg.StoragePublicURL+"/")
	_, err := os.Stat(filepath.Join(env.store.Dir(), filepath.FromSlash(key)))
	require.NoError(t, err)

	resp = env.do(http.MethodPost, "/api/posts", map[string]interface{}{"mediaUrls": []string{up.URL}}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeJSON[struct {
		Post struct {
			MediaURLs []string `json:"media_url"`
		} `json:"post"`
	}](t, resp)
	assert.Equal(t, []string{up.URL}, created.Post.MediaURLs)

	other := testutil.CreateUser(t, env.db, "other")
	resp = env.do(http.MethodPost, "/api/posts", map[string]interface{}{"mediaUrls": []string{up.URL}}, env.token(other.ID))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadMedia_Avatar(t *testing.T) {
	env := newTestEnv(t)
	ada := testutil.CreateUser(t, env.db, "ada")
	token := env.token(ada.ID)

	resp := env.upload(pngBytes(t, 1024, 1024), "avatar", token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	up := decodeJSON[uploadBody](t, resp)
	assert.Equal(t, "avatar", up.Kind)
	assert.Equal(t, "image/webp", up.MIME)

	me := decodeJSON[map[string]map[string]interface{}](t, env.do(http.MethodGet, "/api/users/me", nil, token))
	assert.Equal(t, up.URL, me["user"]["image"])
}

func TestUploadMedia_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ada := testutil.CreateUser(t, env.db, "ada")
	token := env.token(ada.ID)

	resp := env.upload(pngBytes(t, 4, 4), "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.upload([]byte("just some text"), "", token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.upload(pngBytes(t, 4, 4), "wallpaper", token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(http.MethodPost, "/api/media", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
