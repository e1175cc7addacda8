package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/createbucketoptions"
	"github.com/adampresley/adamgokit/s3/getoptions"
	"github.com/adampresley/adamgokit/s3/listoptions"
	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/mediaentity/pkg/image"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png"}

/*
ImageStorage reads and writes image files. Paths are relative to the storage
root (for S3, the bucket).
*/
type ImageStorage interface {
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Put(ctx context.Context, path string, contents io.Reader) (image.Storage, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

type S3ImageStorageConfig struct {
	Bucket   string
	S3Client s3.S3Client
}

type S3ImageStorage struct {
	bucket   string
	s3Client s3.S3Client
}

func NewS3ImageStorage(config S3ImageStorageConfig) S3ImageStorage {
	return S3ImageStorage{
		bucket:   config.Bucket,
		s3Client: config.S3Client,
	}
}

// EnsureBucket creates the storage bucket if it does not exist yet.
func (s S3ImageStorage) EnsureBucket(region string) error {
	var (
		err    error
		exists bool
	)

	if exists, err = s.s3Client.BucketExists(s.bucket); err != nil {
		return fmt.Errorf("error ensuring bucket '%s' exists: %w", s.bucket, err)
	}

	if exists {
		return nil
	}

	if err = s.s3Client.CreateBucket(s.bucket, createbucketoptions.WithRegion(region)); err != nil {
		return fmt.Errorf("error creating bucket '%s': %w", s.bucket, err)
	}

	return nil
}

func (s S3ImageStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	var (
		err    error
		object s3.GetObjectResponse
	)

	if object, err = s.s3Client.Get(s.bucket, path, getoptions.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("error retrieving image %s: %w", path, err)
	}

	return object.Body, nil
}

func (s S3ImageStorage) Put(ctx context.Context, path string, contents io.Reader) (image.Storage, error) {
	if err := ctx.Err(); err != nil {
		return image.Storage{}, err
	}

	if _, err := s.s3Client.Put(s.bucket, path, contents); err != nil {
		return image.Storage{}, fmt.Errorf("error uploading image %s to S3: %w", path, err)
	}

	return image.Storage{
		Provider: "s3",
		Path:     path,
	}, nil
}

// List returns the keys of all images stored under prefix.
func (s S3ImageStorage) List(ctx context.Context, prefix string) ([]string, error) {
	var (
		err      error
		response s3.ListResponse
	)

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	response, err = s.s3Client.List(
		s.bucket,
		prefix,
		listoptions.WithGetAll(),
		listoptions.WithFilter(func(obj types.Object) bool {
			return isImageKey(aws.ToString(obj.Key))
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("error listing images under %s: %w", prefix, err)
	}

	result := make([]string, 0, len(response.Objects))
	for _, obj := range response.Objects {
		result = append(result, obj.Key)
	}

	return result, nil
}

/*
MemoryImageStorage keeps images in memory. It is safe for concurrent use.
*/
type MemoryImageStorage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryImageStorage() *MemoryImageStorage {
	return &MemoryImageStorage{
		files: make(map[string][]byte),
	}
}

func (s *MemoryImageStorage) Get(_ context.Context, path string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contents, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("image %q not found in memory storage", path)
	}

	return io.NopCloser(bytes.NewReader(contents)), nil
}

func (s *MemoryImageStorage) Put(_ context.Context, path string, contents io.Reader) (image.Storage, error) {
	b, err := io.ReadAll(contents)
	if err != nil {
		return image.Storage{}, fmt.Errorf("error reading image %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[path] = b

	return image.Storage{
		Provider: "memory",
		Path:     path,
	}, nil
}

func (s *MemoryImageStorage) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []string{}
	for path := range s.files {
		if strings.HasPrefix(path, prefix) && isImageKey(path) {
			result = append(result, path)
		}
	}

	sort.Strings(result)
	return result, nil
}

func isImageKey(key string) bool {
	ext := strings.ToLower(filepath.Ext(key))
	return slices.IsInSlice(ext, imageExtensions)
}
