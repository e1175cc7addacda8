package processing

import (
	"context"
	"log/slog"

	"github.com/adampresley/mediaentity/pkg/gallery"
	"github.com/adampresley/mediaentity/pkg/services"
)

type PendingStackProcessor interface {
	ProcessPending() int
}

type PendingStackProcessorConfig struct {
	GalleryService   services.GalleryServicer
	ProcessorService services.ProcessorServicer
	ShutdownCtx      context.Context
}

type PendingStackProcessorService struct {
	galleryService   services.GalleryServicer
	processorService services.ProcessorServicer
	shutdownCtx      context.Context
}

func NewPendingStackProcessorService(config PendingStackProcessorConfig) PendingStackProcessorService {
	return PendingStackProcessorService{
		galleryService:   config.GalleryService,
		processorService: config.ProcessorService,
		shutdownCtx:      config.ShutdownCtx,
	}
}

/*
ProcessPending processes every stack of every stored gallery that was not
processed yet and has an original variant. Each result is applied to the
gallery as stored at that moment, so changes saved while a stack is processed
are kept. It returns the number of stacks that were processed.
*/
func (p PendingStackProcessorService) ProcessPending() int {
	var (
		err        error
		galleryIDs []string
		processed  int
	)

	slog.Info("starting pending stack processing...")

	if galleryIDs, err = p.galleryService.GetGalleryIDs(); err != nil {
		slog.Error("error retrieving galleries from database", "error", err)
		return 0
	}

	for _, galleryID := range galleryIDs {
		if p.shutdownCtx.Err() != nil {
			slog.Info("shutdown requested. stopping pending stack processing")
			break
		}

		processed += p.processGallery(galleryID)
	}

	slog.Info("pending stack processing finished", "numGalleries", len(galleryIDs), "numProcessed", processed)
	return processed
}

func (p PendingStackProcessorService) processGallery(galleryID string) int {
	var (
		err       error
		g         gallery.Gallery
		processed int
	)

	l := slog.With("galleryID", galleryID)

	if g, err = p.galleryService.GetGallery(galleryID); err != nil {
		l.Error("error retrieving gallery", "error", err)
		return 0
	}

	for _, stack := range g.Stacks {
		if p.shutdownCtx.Err() != nil {
			break
		}

		if gallery.WasProcessed(stack) {
			continue
		}

		if !stack.ContainsOriginal() {
			l.Warn("stack has no original variant. skipping", "stackID", stack.ID)
			continue
		}

		result, err := p.processorService.Process(p.shutdownCtx, galleryID, stack)
		if err != nil {
			l.Error("error processing stack", "stackID", stack.ID, "error", err)
			continue
		}

		if _, err = p.galleryService.UpdateGallery(galleryID, services.ApplyProcessedStack(result)); err != nil {
			l.Error("error saving processed stack", "stackID", stack.ID, "error", err)
			continue
		}

		processed++
	}

	return processed
}
