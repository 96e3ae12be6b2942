// Package storage keeps uploaded garment images on a filesystem.
//
// Images live under one directory per owner: <image_dir>/<user_id>/<key>,
// where key is a random uuid plus the extension of the sniffed type.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/deppfellow/vistual/internal/config"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	ErrTooLarge        = errors.New("image too large")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrInvalidKey      = errors.New("invalid image key")
	ErrNotFound        = errors.New("image not found")
	ErrEmpty           = errors.New("empty image")
)

// AllowedTypes are the accepted upload formats.
var AllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
	"image/heic",
}

const tempPrefix = ".upload-"

// Image is a stored image.
type Image struct {
	Key         string
	ContentType string
	Size        int64
	Data        []byte
}

// Object is one entry seen by Walk.
type Object struct {
	UserID  uuid.UUID
	Key     string
	ModTime time.Time
}

type ImageStore struct {
	fs      afero.Fs
	maxSize int64
}

// NewImageStore roots a store at cfg.ImageDir, creating it when missing.
func NewImageStore(cfg *config.StorageConfig) (*ImageStore, error) {
	return newImageStoreOn(afero.NewOsFs(), cfg)
}

func newImageStoreOn(base afero.Fs, cfg *config.StorageConfig) (*ImageStore, error) {
	if err := base.MkdirAll(cfg.ImageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", cfg.ImageDir, err)
	}
	return NewImageStoreWithFs(afero.NewBasePathFs(base, cfg.ImageDir), cfg.MaxUploadSize), nil
}

// NewImageStoreWithFs is used by tests with afero.NewMemMapFs.
func NewImageStoreWithFs(fs afero.Fs, maxSize int64) *ImageStore {
	return &ImageStore{fs: fs, maxSize: maxSize}
}

func (s *ImageStore) MaxSize() int64 {
	return s.maxSize
}

// ValidateKey rejects anything that could escape the owner's directory.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, ".") ||
		strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

func objectPath(userID uuid.UUID, key string) string {
	return path.Join("/", userID.String(), key)
}

// Save sniffs r, rejects unknown types and oversize payloads and writes
// the image atomically.
func (s *ImageStore) Save(userID uuid.UUID, r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	contentType, ok := allowedType(mtype)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	key := uuid.NewString() + mtype.Extension()
	dir := path.Join("/", userID.String())
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create owner directory: %w", err)
	}

	tmp := path.Join(dir, tempPrefix+key)
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := s.fs.Rename(tmp, objectPath(userID, key)); err != nil {
		_ = s.fs.Remove(tmp)
		return nil, fmt.Errorf("failed to move image into place: %w", err)
	}

	return &Image{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func allowedType(mtype *mimetype.MIME) (string, bool) {
	for _, t := range AllowedTypes {
		if mtype.Is(t) {
			return t, true
		}
	}
	return "", false
}

// Read loads an image owned by userID.
func (s *ImageStore) Read(userID uuid.UUID, key string) (*Image, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, objectPath(userID, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read image %s: %w", key, err)
	}

	return &Image{
		Key:         key,
		ContentType: mimetype.Detect(data).String(),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

func (s *ImageStore) Exists(userID uuid.UUID, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	return afero.Exists(s.fs, objectPath(userID, key))
}

// Remove deletes an image; a missing image is not an error.
func (s *ImageStore) Remove(userID uuid.UUID, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.fs.Remove(objectPath(userID, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image %s: %w", key, err)
	}
	return nil
}

// Walk calls fn for every stored image. Temp files and stray entries
// outside an owner directory are skipped.
func (s *ImageStore) Walk(fn func(Object) error) error {
	return afero.Walk(s.fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		owner, key := path.Split(strings.TrimPrefix(path.Clean("/"+p), "/"))
		userID, perr := uuid.Parse(strings.TrimSuffix(owner, "/"))
		if perr != nil || ValidateKey(key) != nil {
			return nil
		}

		return fn(Object{UserID: userID, Key: key, ModTime: info.ModTime()})
	})
}

// Ping checks the store is writable.
func (s *ImageStore) Ping() error {
	marker := "/" + tempPrefix + "ping-" + uuid.NewString()
	if err := afero.WriteFile(s.fs, marker, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("image store not writable: %w", err)
	}
	return s.fs.Remove(marker)
}
