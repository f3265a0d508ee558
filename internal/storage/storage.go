// Package storage keeps uploaded image files behind a small interface with
// local-disk, S3 and in-memory backends.
package storage

import (
	"context"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ImageDir is the key prefix of every product image.
const ImageDir = "product_images"

const maxBaseLen = 50

// Storage stores binary files under slash-separated keys.
type Storage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns the public address of key.
	URL(key string) string
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// NewImageKey returns a fresh key under ImageDir for an uploaded file, e.g.
// "product_images/red_tote_6f1c...e2.jpg". The uuid suffix keeps keys unique
// across products even when clients upload identical file names.
func NewImageKey(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	name := unsafeChars.ReplaceAllString(strings.TrimSuffix(base, filepath.Ext(base)), "_")
	name = strings.Trim(name, "_")
	if len(name) > maxBaseLen {
		name = name[:maxBaseLen]
	}
	if name == "" {
		name = "image"
	}
	if ext == "." || unsafeChars.MatchString(ext[min(1, len(ext)):]) {
		ext = ""
	}
	return path.Join(ImageDir, name+"_"+strings.ReplaceAll(uuid.NewString(), "-", "")+ext)
}

// DeleteOutcome is the result of one best-effort file deletion.
type DeleteOutcome struct {
	Key string
	Err error
}

// Failed reports whether the deletion did not succeed.
func (o DeleteOutcome) Failed() bool { return o.Err != nil }

// DeleteAll attempts to delete every key. A failure never stops the
// remaining attempts; callers decide what to do with the failed outcomes.
func DeleteAll(ctx context.Context, s Storage, keys []string) []DeleteOutcome {
	out := make([]DeleteOutcome, 0, len(keys))
	for _, k := range keys {
		out = append(out, DeleteOutcome{Key: k, Err: s.Delete(ctx, k)})
	}
	return out
}
