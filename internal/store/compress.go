package store

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/distlabel/coretree/pkg/compression"
)

// compressingStorage wraps a Storage, gzip-compressing payloads on the way
// up and decompressing them on the way down. graph-dis.bin and the
// label-*.bin artifacts are dense binary arrays, which gzip shrinks
// considerably; the wrapper is transparent so callers key artifacts by the
// same name whether or not compression is enabled.
type compressingStorage struct {
	inner Storage
	comp  compression.Compressor
}

func newCompressingStorage(inner Storage) Storage {
	return &compressingStorage{inner: inner, comp: compression.NewGzipCompressor(compression.LevelDefault)}
}

func (s *compressingStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	raw, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	packed, err := s.comp.Compress(raw)
	if err != nil {
		return err
	}
	return s.inner.Upload(ctx, key, bytes.NewReader(packed))
}

func (s *compressingStorage) UploadFile(ctx context.Context, key string, localPath string) error {
	raw, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	packed, err := s.comp.Compress(raw)
	if err != nil {
		return err
	}
	return s.inner.Upload(ctx, key, bytes.NewReader(packed))
}

func (s *compressingStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.inner.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	packed, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	raw, err := s.comp.Decompress(packed)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *compressingStorage) DownloadFile(ctx context.Context, key string, localPath string) error {
	rc, err := s.Download(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, rc)
	return err
}

func (s *compressingStorage) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *compressingStorage) Exists(ctx context.Context, key string) (bool, error) {
	return s.inner.Exists(ctx, key)
}

func (s *compressingStorage) GetURL(key string) string {
	return s.inner.GetURL(key)
}
