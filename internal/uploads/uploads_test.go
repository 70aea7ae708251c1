package uploads

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lendshare/internal/model"
)

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	pattern := regexp.MustCompile(`^1700000000123_[a-zA-Z0-9._-]+_[0-9a-f]{8}\.jpg$`)

	tests := []struct {
		filename string
		stem     string
	}{
		{"drill.png", "drill"},
		{"my photo (1).jpeg", "my_photo__1"},
		{"../../etc/passwd", "passwd"},
		{"", "image"},
		{"čšž.gif", "image"},
	}
	for _, tt := range tests {
		name := ObjectName(tt.filename, ".jpg", now)
		assert.Regexp(t, pattern, name, tt.filename)
		assert.True(t, strings.HasPrefix(name, "1700000000123_"+tt.stem+"_"), "%q -> %q", tt.filename, name)
	}

	assert.NotEqual(t, ObjectName("a.png", ".jpg", now), ObjectName("a.png", ".jpg", now))
}

func TestBucketFor(t *testing.T) {
	assert.Equal(t, BucketCategories, BucketFor("category"))
	assert.Equal(t, BucketProducts, BucketFor("product"))
	assert.Equal(t, BucketProducts, BucketFor(""))
}

func TestPutAndServe(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "https://lend.example/")
	require.NoError(t, err)

	obj, err := s.Put(BucketProducts, "drill.png", ".jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, BucketProducts, obj.Bucket)
	assert.Equal(t, "https://lend.example/uploads/products/"+obj.Name, obj.URL)

	stored, err := os.ReadFile(filepath.Join(dir, "products", obj.Name))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), stored)

	mux := http.NewServeMux()
	mux.Handle("GET /uploads/{bucket}/{name}", s)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/uploads/products/"+obj.Name, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())

	for _, path := range []string{
		"/uploads/products/missing.jpg",
		"/uploads/secrets/" + obj.Name,
		"/uploads/products/.hidden",
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestPutRejectsOversizeAndUnknownBucket(t *testing.T) {
	s, err := NewStore(t.TempDir(), "")
	require.NoError(t, err)

	_, err = s.Put(BucketProducts, "big.png", ".jpg", bytes.Repeat([]byte{1}, MaxSize+1))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = s.Put(Bucket("avatars"), "a.png", ".jpg", []byte("x"))
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestURLWithoutPublicBase(t *testing.T) {
	s := &Store{Dir: "x"}
	assert.Equal(t, "/uploads/categories/a.jpg", s.URL(BucketCategories, "a.jpg"))
}
