package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdimage "image"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/adampresley/mediaentity/pkg/gallery"
	"github.com/adampresley/mediaentity/pkg/image"
	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

var (
	ErrNoOriginalVariant = errors.New("stack has no original variant")
	ErrStackChanged      = errors.New("stack changed while it was processed")
)

type ProcessorServicer interface {
	Process(ctx context.Context, galleryID string, stack gallery.Stack) (gallery.Stack, error)
}

type ProcessorServiceConfig struct {
	MaxWorkers     int
	NewVariantID   func() string
	Storage        ImageStorage
	VariantsFolder string
	VariantWidths  []uint
}

/*
ProcessorService generates sized variants from the original variant of a
stack. Variants are encoded as JPEG and written to the image storage.
*/
type ProcessorService struct {
	maxWorkers     int
	newVariantID   func() string
	storage        ImageStorage
	variantsFolder string
	variantWidths  []uint
}

func NewProcessorService(config ProcessorServiceConfig) ProcessorService {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 4
	}

	if config.NewVariantID == nil {
		config.NewVariantID = uuid.NewString
	}

	return ProcessorService{
		maxWorkers:     config.MaxWorkers,
		newVariantID:   config.NewVariantID,
		storage:        config.Storage,
		variantsFolder: config.VariantsFolder,
		variantWidths:  config.VariantWidths,
	}
}

/*
Process resizes the original variant of the stack to every configured width
that is smaller than the original. The returned stack holds the original plus
the new variants, replacing variants from earlier runs, and is tagged with
gallery.ProcessedTag. The given stack is not modified. Variant files are stored
under the VariantsKeyPrefix of the gallery and stack.
*/
func (s ProcessorService) Process(ctx context.Context, galleryID string, stack gallery.Stack) (gallery.Stack, error) {
	var (
		err     error
		decoded stdimage.Image
	)

	l := slog.With("galleryID", galleryID, "stackID", stack.ID)

	original, ok := gallery.OriginalVariant(stack)
	if !ok {
		return stack, fmt.Errorf("stack %s: %w", stack.ID, ErrNoOriginalVariant)
	}

	if decoded, err = s.decode(ctx, original.Storage.Path); err != nil {
		return stack, err
	}

	if err = ctx.Err(); err != nil {
		return stack, fmt.Errorf("processing of stack %s interrupted: %w", stack.ID, err)
	}

	widths := make([]uint, 0, len(s.variantWidths))
	for _, width := range s.variantWidths {
		if int(width) < decoded.Bounds().Dx() {
			widths = append(widths, width)
		}
	}

	l.Info("processing stack...", "original", original.Storage.Path, "numVariants", len(widths))

	variants := make([]gallery.Variant, len(widths))
	errs := make([]error, len(widths))

	pool := pond.NewPool(s.maxWorkers, pond.WithContext(ctx))

	for index, width := range widths {
		pool.Submit(func() {
			variants[index], errs[index] = s.createVariant(ctx, galleryID, stack.ID, original, decoded, width)
		})
	}

	_ = pool.Stop().Wait()

	if err = ctx.Err(); err != nil {
		return stack, fmt.Errorf("processing of stack %s interrupted: %w", stack.ID, err)
	}

	if err = errors.Join(errs...); err != nil {
		return stack, fmt.Errorf("error processing stack %s: %w", stack.ID, err)
	}

	result := stack.Clear()
	result.Variants = append(result.Variants, variants...)
	result = result.Tag(gallery.ProcessedTag)

	l.Info("stack processed", "numVariants", len(result.Variants))
	return result, nil
}

/*
ApplyProcessedStack returns a gallery update that stores the variants generated
by Process onto the stack as it is currently stored. The stored original and
tags are kept, earlier generated variants are replaced, and the stack is tagged
with gallery.ProcessedTag. ErrStackChanged is returned when the stored stack no
longer has the original the result was generated from.
*/
func ApplyProcessedStack(result gallery.Stack) GalleryUpdateFunc {
	return func(current gallery.Gallery) (gallery.Gallery, error) {
		stack, ok := current.Stack(result.ID)
		if !ok {
			return current, fmt.Errorf("stack %s: %w", result.ID, gallery.ErrStackNotFound)
		}

		source, _ := gallery.OriginalVariant(result)
		original, ok := gallery.OriginalVariant(stack)

		if !ok || original.ID != source.ID || original.Storage != source.Storage {
			return current, fmt.Errorf("stack %s: %w", result.ID, ErrStackChanged)
		}

		updated := stack.Clear()
		for _, variant := range result.Variants {
			if !variant.Original {
				updated.Variants = append(updated.Variants, variant.Clone())
			}
		}

		return current.ReplaceStack(updated.Tag(gallery.ProcessedTag))
	}
}

/*
VariantsKeyPrefix returns the storage key prefix, ending in a slash, under
which the generated variants of a stack are stored.
*/
func VariantsKeyPrefix(variantsFolder, galleryID, stackID string) string {
	return path.Join(variantsFolder, galleryID, stackID) + "/"
}

func (s ProcessorService) decode(ctx context.Context, originalPath string) (stdimage.Image, error) {
	reader, err := s.storage.Get(ctx, originalPath)
	if err != nil {
		return nil, fmt.Errorf("error retrieving original image %s: %w", originalPath, err)
	}

	defer reader.Close()

	img, _, err := stdimage.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("error decoding original image %s: %w", originalPath, err)
	}

	return img, nil
}

func (s ProcessorService) createVariant(ctx context.Context, galleryID, stackID string, original gallery.Variant, img stdimage.Image, width uint) (gallery.Variant, error) {
	var (
		err     error
		buf     bytes.Buffer
		storage image.Storage
	)

	resized := resize.Resize(width, 0, img, resize.Lanczos3)

	if err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return gallery.Variant{}, fmt.Errorf("error encoding %dpx variant: %w", width, err)
	}

	id := s.newVariantID()
	base := strings.TrimSuffix(original.Filename, filepath.Ext(original.Filename))
	filename := fmt.Sprintf("%s_%d.jpg", base, width)
	size := int64(buf.Len())

	key := path.Join(VariantsKeyPrefix(s.variantsFolder, galleryID, stackID), id, filename)

	if storage, err = s.storage.Put(ctx, key, &buf); err != nil {
		return gallery.Variant{}, fmt.Errorf("error uploading %dpx variant: %w", width, err)
	}

	bounds := resized.Bounds()

	variant := gallery.Variant{
		ID:       id,
		Original: false,
		Image: image.Image{
			Storage:  storage,
			Filename: filename,
			Filesize: size,
			Dimensions: image.Dimensions{
				Width:  bounds.Dx(),
				Height: bounds.Dy(),
			},
			Names:        original.Names,
			Descriptions: original.Descriptions,
		}.Clone().Normalize(),
	}

	return variant, nil
}
