package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/config"
)

const MaxImageSize = 5 << 20

// Storage keeps uploaded files and returns an opaque reference that the
// static file server (or the bucket) resolves back to bytes.
type Storage interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.UploadDir, cfg.URLPrefix)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

// SaveImage checks that the upload is an image within MaxImageSize and
// stores it under a fresh uuid name that keeps the original extension.
func SaveImage(ctx context.Context, st Storage, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxImageSize {
		return "", apperr.Validation("image must be at most %d MB", MaxImageSize>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return "", apperr.Validation("cannot read image")
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(512)
	ctype := http.DetectContentType(head)
	if !strings.HasPrefix(ctype, "image/") {
		return "", apperr.Validation("file must be an image")
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	ref, err := st.Put(ctx, name, ctype, io.LimitReader(br, MaxImageSize))
	if err != nil {
		return "", apperr.Store("save image", err)
	}
	return ref, nil
}
