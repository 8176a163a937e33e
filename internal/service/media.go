package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/safar/safar-go/internal/crypto"
	"github.com/safar/safar-go/internal/storage"
)

const nameSuffixLength = 8

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// MediaService stores and removes uploaded story images. Each user's files
// live under their own key prefix.
type MediaService struct {
	blobs storage.BlobStore
	now   func() time.Time
}

// NewMediaService creates a new MediaService.
func NewMediaService(blobs storage.BlobStore) *MediaService {
	return &MediaService{
		blobs: blobs,
		now:   time.Now,
	}
}

// Upload stores an image for ownerID and returns its public URL. Both the mime
// type and the file extension must identify an allowed image.
func (s *MediaService) Upload(ctx context.Context, ownerID string, file io.Reader, size int64, originalName, mimeType string) (string, error) {
	if file == nil {
		return "", ErrNoImage
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !strings.HasPrefix(strings.ToLower(mimeType), "image/") || !allowedImageExts[ext] {
		return "", ErrImageType
	}

	suffix, err := crypto.RandomSuffix(nameSuffixLength)
	if err != nil {
		return "", storageError(err)
	}

	key := ownerID + "/" + fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), suffix, ext)
	if err := s.blobs.Put(ctx, key, file, size, mimeType); err != nil {
		return "", storageError(err)
	}

	return s.blobs.URL(key), nil
}

// Delete removes the image at imageURL from ownerID's files. Only the last
// path element of the URL is used. A missing file is reported as found=false.
func (s *MediaService) Delete(ctx context.Context, ownerID, imageURL string) (bool, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return false, ErrImageURLRequired
	}

	p := imageURL
	if u, err := url.Parse(imageURL); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == ".." || name == "/" {
		return false, nil
	}

	err := s.blobs.Delete(ctx, ownerID+"/"+name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidKey):
		return false, nil
	default:
		return false, storageError(err)
	}
}
