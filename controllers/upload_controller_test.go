package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakeImageStore struct {
	path        string
	contentType string
	size        int
	err         error
}

func (f *fakeImageStore) Upload(objectPath string, data io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(data)
	f.path, f.contentType, f.size = objectPath, contentType, len(b)
	return "https://cdn.example.com/" + objectPath, nil
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func uploadRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "logo.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serveUpload(store ImageStore, req *http.Request) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/upload-image", NewUploadController(store).UploadImage)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadImage(t *testing.T) {
	store := &fakeImageStore{}
	w := serveUpload(store, uploadRequest(t, "file", pngHeader))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(store.path, "survey-images/") || !strings.HasSuffix(store.path, ".png") {
		t.Fatalf("unexpected object path %q", store.path)
	}
	if store.contentType != "image/png" || store.size != len(pngHeader) {
		t.Fatalf("unexpected upload %+v", store)
	}
	if body["filename"] != store.path || body["url"] != "https://cdn.example.com/"+store.path {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestUploadImageRejects(t *testing.T) {
	cases := []struct {
		name  string
		req   *http.Request
		store *fakeImageStore
		want  int
	}{
		{"missing file", uploadRequest(t, "other", pngHeader), &fakeImageStore{}, http.StatusBadRequest},
		{"not an image", uploadRequest(t, "file", []byte("plain text, not a picture")), &fakeImageStore{}, http.StatusBadRequest},
		{"too large", uploadRequest(t, "file", append(append([]byte{}, pngHeader...), make([]byte, maxImageSize)...)), &fakeImageStore{}, http.StatusBadRequest},
		{"storage down", uploadRequest(t, "file", pngHeader), &fakeImageStore{err: errors.New("bucket missing")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := serveUpload(tc.store, tc.req); w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
			if tc.want != http.StatusInternalServerError && tc.store.path != "" {
				t.Fatalf("rejected file reached storage")
			}
		})
	}
}
