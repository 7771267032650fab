package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, filename, contentType, kindField string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	if kindField != "" {
		require.NoError(t, w.WriteField("type", kindField))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUpload_StoresFileAndItem(t *testing.T) {
	e := newTestEnv(t)

	body, contentType := multipartUpload(t, "cat.png", "image/png", "", []byte("png-bytes"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	item := resp["item"].(map[string]interface{})
	assert.Equal(t, "image", item["type"])
	assert.Equal(t, "cat.png", item["original"])
	filename := item["filename"].(string)
	require.True(t, len(filename) > len("/uploads/"))

	// the blob really exists under the generated name
	rc, err := e.disk.Open(t.Context(), path.Base(filename))
	require.NoError(t, err)
	rc.Close()
}

func TestUpload_KindFromMimeAndHint(t *testing.T) {
	e := newTestEnv(t)

	// video MIME without a hint
	body, contentType := multipartUpload(t, "clip.mp4", "video/mp4", "", []byte("mp4"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "video", resp["item"].(map[string]interface{})["type"])

	// explicit hint wins over MIME
	body, contentType = multipartUpload(t, "odd.bin", "application/octet-stream", "video", []byte("x"))
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "video", resp["item"].(map[string]interface{})["type"])
}

func TestServeMedia_StreamsUploadedBlob(t *testing.T) {
	e := newTestEnv(t)

	body, contentType := multipartUpload(t, "pic.png", "image/png", "", []byte("png-bytes"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	filename := resp["item"].(map[string]interface{})["filename"].(string)

	// the path recorded on the item must be fetchable as-is
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, filename, nil)
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "image/png")

	// unknown names answer 404, not an empty file
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/uploads/nope.png", nil)
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpload_NoFile(t *testing.T) {
	e := newTestEnv(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=none")
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMedia_RemovesBackingFile(t *testing.T) {
	e := newTestEnv(t)

	body, contentType := multipartUpload(t, "gone.png", "image/png", "", []byte("bytes"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	item := resp["item"].(map[string]interface{})
	id := item["id"].(string)
	name := path.Base(item["filename"].(string))

	code, delResp := e.do(t, http.MethodDelete, "/media/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, delResp["success"])

	// item gone from the document
	_, data := e.do(t, http.MethodGet, "/data", "")
	assert.Empty(t, data["media"])

	// backing file gone from disk
	_, err := e.disk.Open(t.Context(), name)
	require.Error(t, err)
}
