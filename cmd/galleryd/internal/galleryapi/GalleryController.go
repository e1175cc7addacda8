package galleryapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/mediaentity/pkg/gallery"
	"github.com/adampresley/mediaentity/pkg/image/hydrateoptions"
	"github.com/adampresley/mediaentity/pkg/models"
	"github.com/adampresley/mediaentity/pkg/services"
)

type GalleryHandlers interface {
	DeleteStack(w http.ResponseWriter, r *http.Request)
	DownloadStack(w http.ResponseWriter, r *http.Request)
	GetGallery(w http.ResponseWriter, r *http.Request)
	GetOriginalVariant(w http.ResponseWriter, r *http.Request)
	ListGalleries(w http.ResponseWriter, r *http.Request)
	ListStackObjects(w http.ResponseWriter, r *http.Request)
	ProcessStack(w http.ResponseWriter, r *http.Request)
	PutGallery(w http.ResponseWriter, r *http.Request)
	SortGallery(w http.ResponseWriter, r *http.Request)
}

type GalleryControllerConfig struct {
	ArchiveService   services.ArchiveServicer
	GalleryService   services.GalleryServicer
	ProcessorService services.ProcessorServicer
	Storage          services.ImageStorage
	VariantsFolder   string
}

type GalleryController struct {
	archiveService   services.ArchiveServicer
	galleryService   services.GalleryServicer
	processorService services.ProcessorServicer
	storage          services.ImageStorage
	variantsFolder   string
}

func NewGalleryController(config GalleryControllerConfig) GalleryController {
	return GalleryController{
		archiveService:   config.ArchiveService,
		galleryService:   config.GalleryService,
		processorService: config.ProcessorService,
		storage:          config.Storage,
		variantsFolder:   config.VariantsFolder,
	}
}

/*
GET /galleries
*/
func (c GalleryController) ListGalleries(w http.ResponseWriter, r *http.Request) {
	ids, err := c.galleryService.GetGalleryIDs()
	if err != nil {
		slog.Error("error listing galleries", "error", err)
		httphelpers.TextInternalServerError(w, "Error listing galleries")
		return
	}

	httphelpers.JsonOK(w, ids)
}

/*
GET /galleries/{id}?lang=en,de
*/
func (c GalleryController) GetGallery(w http.ResponseWriter, r *http.Request) {
	var (
		err       error
		g         gallery.Gallery
		languages []string
		options   []hydrateoptions.HydrateOption
	)

	id := httphelpers.GetFromRequest[string](r, "id")

	for _, lang := range httphelpers.GetStringListFromRequest(r, "lang", ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			languages = append(languages, lang)
		}
	}

	if len(languages) > 0 {
		options = append(options, hydrateoptions.WithLanguages(languages...))
	}

	if g, err = c.galleryService.GetGallery(id, options...); err != nil {
		c.writeGalleryError(w, id, err)
		return
	}

	httphelpers.JsonOK(w, g)
}

/*
PUT /galleries/{id}
*/
func (c GalleryController) PutGallery(w http.ResponseWriter, r *http.Request) {
	var (
		err   error
		raw   gallery.Response
		saved gallery.Gallery
	)

	id := httphelpers.GetFromRequest[string](r, "id")

	if err = httphelpers.ReadJSONBody(r, &raw); err != nil {
		slog.Warn("invalid gallery payload", "error", err, "galleryID", id)
		httphelpers.TextBadRequest(w, "Invalid gallery payload")
		return
	}

	if saved, err = c.galleryService.SaveGallery(id, raw); err != nil {
		slog.Error("error saving gallery", "error", err, "galleryID", id)
		httphelpers.TextInternalServerError(w, "Error saving gallery")
		return
	}

	slog.Info("gallery saved", "galleryID", id, "numStacks", len(saved.Stacks))
	httphelpers.JsonOK(w, saved)
}

/*
PUT /galleries/{id}/order
*/
func (c GalleryController) SortGallery(w http.ResponseWriter, r *http.Request) {
	var (
		err      error
		stackIDs []string
		sorted   gallery.Gallery
	)

	id := httphelpers.GetFromRequest[string](r, "id")

	if err = httphelpers.ReadJSONBody(r, &stackIDs); err != nil {
		slog.Warn("invalid stack order", "error", err, "galleryID", id)
		httphelpers.TextBadRequest(w, "Invalid stack order")
		return
	}

	sorted, err = c.galleryService.UpdateGallery(id, func(current gallery.Gallery) (gallery.Gallery, error) {
		return current.Sort(stackIDs), nil
	})

	if err != nil {
		c.writeGalleryError(w, id, err)
		return
	}

	httphelpers.JsonOK(w, sorted)
}

/*
DELETE /galleries/{id}/stacks/{stackid}
*/
func (c GalleryController) DeleteStack(w http.ResponseWriter, r *http.Request) {
	var (
		err     error
		removed gallery.Stack
	)

	id := httphelpers.GetFromRequest[string](r, "id")
	stackID := httphelpers.GetFromRequest[string](r, "stackid")

	_, err = c.galleryService.UpdateGallery(id, func(current gallery.Gallery) (gallery.Gallery, error) {
		updated, stack, err := current.RemoveStack(stackID)
		removed = stack
		return updated, err
	})

	if err != nil {
		c.writeGalleryError(w, id, err)
		return
	}

	slog.Info("stack removed", "galleryID", id, "stackID", stackID)
	httphelpers.JsonOK(w, removed)
}

/*
GET /galleries/{id}/stacks/{stackid}/original
*/
func (c GalleryController) GetOriginalVariant(w http.ResponseWriter, r *http.Request) {
	_, stack, ok := c.findStack(w, r)
	if !ok {
		return
	}

	original, ok := gallery.OriginalVariant(stack)
	if !ok {
		httphelpers.WriteText(w, http.StatusNotFound, "Stack has no original variant")
		return
	}

	httphelpers.JsonOK(w, original)
}

/*
POST /galleries/{id}/stacks/{stackid}/process
*/
func (c GalleryController) ProcessStack(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		result gallery.Stack
		g      gallery.Gallery
	)

	id, stack, ok := c.findStack(w, r)
	if !ok {
		return
	}

	if result, err = c.processorService.Process(r.Context(), id, stack); err != nil {
		slog.Error("error processing stack", "error", err, "galleryID", id, "stackID", stack.ID)

		if errors.Is(err, services.ErrNoOriginalVariant) {
			httphelpers.WriteText(w, http.StatusUnprocessableEntity, "Stack has no original variant")
			return
		}

		httphelpers.TextInternalServerError(w, "Error processing stack")
		return
	}

	if g, err = c.galleryService.UpdateGallery(id, services.ApplyProcessedStack(result)); err != nil {
		c.writeGalleryError(w, id, err)
		return
	}

	stored, _ := g.Stack(stack.ID)
	httphelpers.JsonOK(w, stored)
}

/*
GET /galleries/{id}/stacks/{stackid}/download
*/
func (c GalleryController) DownloadStack(w http.ResponseWriter, r *http.Request) {
	_, stack, ok := c.findStack(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.zip", stack.ID))

	if err := c.archiveService.WriteStackArchive(r.Context(), w, stack); err != nil {
		slog.Error("error writing stack archive", "error", err, "stackID", stack.ID)
	}
}

/*
GET /galleries/{id}/stacks/{stackid}/objects
*/
func (c GalleryController) ListStackObjects(w http.ResponseWriter, r *http.Request) {
	id, stack, ok := c.findStack(w, r)
	if !ok {
		return
	}

	keys, err := c.storage.List(r.Context(), services.VariantsKeyPrefix(c.variantsFolder, id, stack.ID))
	if err != nil {
		slog.Error("error listing stack objects", "error", err, "galleryID", id, "stackID", stack.ID)
		httphelpers.TextInternalServerError(w, "Error listing stack objects")
		return
	}

	httphelpers.JsonOK(w, keys)
}

func (c GalleryController) findStack(w http.ResponseWriter, r *http.Request) (string, gallery.Stack, bool) {
	id := httphelpers.GetFromRequest[string](r, "id")
	stackID := httphelpers.GetFromRequest[string](r, "stackid")

	g, err := c.galleryService.GetGallery(id)
	if err != nil {
		c.writeGalleryError(w, id, err)
		return id, gallery.Stack{}, false
	}

	stack, ok := g.Stack(stackID)
	if !ok {
		httphelpers.WriteText(w, http.StatusNotFound, "Stack not found")
		return id, gallery.Stack{}, false
	}

	return id, stack, true
}

func (c GalleryController) writeGalleryError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, models.ErrGalleryNotFound):
		httphelpers.WriteText(w, http.StatusNotFound, "Gallery not found")

	case errors.Is(err, gallery.ErrStackNotFound):
		httphelpers.WriteText(w, http.StatusNotFound, "Stack not found")

	case errors.Is(err, services.ErrStackChanged):
		httphelpers.WriteText(w, http.StatusConflict, "Stack changed while it was processed")

	default:
		slog.Error("error with gallery", "error", err, "galleryID", id)
		httphelpers.TextInternalServerError(w, "Error with gallery")
	}
}
