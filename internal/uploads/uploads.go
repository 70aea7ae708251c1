// Package uploads stores processed images in local buckets and serves them.
package uploads

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/lendshare/internal/model"
)

// MaxSize is the largest accepted upload, before processing.
const MaxSize = 5 << 20

// Bucket groups stored images by what they illustrate.
type Bucket string

// Buckets.
const (
	BucketProducts   Bucket = "products"
	BucketCategories Bucket = "categories"
)

// BucketFor maps an upload kind to its bucket. Anything other than
// "category" goes to products.
func BucketFor(kind string) Bucket {
	if kind == "category" || kind == "categories" {
		return BucketCategories
	}
	return BucketProducts
}

func (b Bucket) valid() bool {
	return b == BucketProducts || b == BucketCategories
}

// Object is a stored file.
type Object struct {
	Bucket Bucket `json:"bucket"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

// Store writes objects under Dir/<bucket>/ and builds their public URLs
// from PublicURL (empty means host-relative URLs).
type Store struct {
	Dir       string
	PublicURL string
}

// NewStore creates the bucket directories under dir.
func NewStore(dir, publicURL string) (*Store, error) {
	for _, b := range []Bucket{BucketProducts, BucketCategories} {
		if err := os.MkdirAll(filepath.Join(dir, string(b)), 0o755); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", b, err)
		}
	}
	return &Store{Dir: dir, PublicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ObjectName builds a unique file name from the client's filename:
// <unix millis>_<sanitized stem>_<random>.<ext>.
func ObjectName(filename, ext string, now time.Time) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	stem = unsafeChars.ReplaceAllString(stem, "_")
	stem = strings.Trim(stem, "._")
	if stem == "" {
		stem = "image"
	}
	if len(stem) > 64 {
		stem = stem[:64]
	}
	return fmt.Sprintf("%d_%s_%s%s", now.UnixMilli(), stem, uuid.NewString()[:8], ext)
}

// Put stores data under a fresh name derived from filename. Existing
// objects are never overwritten.
func (s *Store) Put(bucket Bucket, filename, ext string, data []byte) (*Object, error) {
	if !bucket.valid() {
		return nil, fmt.Errorf("%w: unknown bucket %q", model.ErrInvalidInput, bucket)
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("%w: file larger than %d bytes", model.ErrInvalidInput, MaxSize)
	}

	name := ObjectName(filename, ext, time.Now())
	path := filepath.Join(s.Dir, string(bucket), name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("object %s/%s: %w", bucket, name, model.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating object: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("writing object: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("closing object: %w", err)
	}

	return &Object{Bucket: bucket, Name: name, URL: s.URL(bucket, name)}, nil
}

// URL returns the public URL of an object.
func (s *Store) URL(bucket Bucket, name string) string {
	return fmt.Sprintf("%s/uploads/%s/%s", s.PublicURL, bucket, name)
}

// ServeHTTP serves GET /uploads/{bucket}/{name}.
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket := Bucket(r.PathValue("bucket"))
	name := r.PathValue("name")

	if !bucket.valid() || name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.Dir, string(bucket), name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}
