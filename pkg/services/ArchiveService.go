package services

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/adampresley/mediaentity/pkg/gallery"
)

type ArchiveServicer interface {
	WriteStackArchive(ctx context.Context, w io.Writer, stack gallery.Stack) error
}

type ArchiveServiceConfig struct {
	Storage ImageStorage
}

/*
ArchiveService writes the variants of a stack into a ZIP archive. Each variant
is stored as <variant id>/<filename>.
*/
type ArchiveService struct {
	storage ImageStorage
}

func NewArchiveService(config ArchiveServiceConfig) ArchiveService {
	return ArchiveService{
		storage: config.Storage,
	}
}

func (s ArchiveService) WriteStackArchive(ctx context.Context, w io.Writer, stack gallery.Stack) error {
	var (
		err error
	)

	l := slog.With("stackID", stack.ID)
	zipWriter := zip.NewWriter(w)

	for _, variant := range stack.Variants {
		if err = ctx.Err(); err != nil {
			return err
		}

		if err = s.addVariant(ctx, zipWriter, variant); err != nil {
			l.Error("failed to add variant to archive", "error", err, "variantID", variant.ID)
			return err
		}
	}

	if err = zipWriter.Close(); err != nil {
		return fmt.Errorf("failed to close zip writer: %w", err)
	}

	l.Info("stack archive written", "numVariants", len(stack.Variants))
	return nil
}

func (s ArchiveService) addVariant(ctx context.Context, zipWriter *zip.Writer, variant gallery.Variant) error {
	name := path.Join(variant.ID, variant.Filename)

	src, err := s.storage.Get(ctx, variant.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to get file '%s' from storage: %w", variant.Storage.Path, err)
	}

	defer src.Close()

	dest, err := zipWriter.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create file '%s' in zip: %w", name, err)
	}

	if _, err = io.Copy(dest, src); err != nil {
		return fmt.Errorf("failed to copy file '%s' to zip: %w", name, err)
	}

	return nil
}
