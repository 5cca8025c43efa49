package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/AlibekovAA/album-catalog/internal/album/domain"
	"github.com/AlibekovAA/album-catalog/internal/album/service"
	commonerrors "github.com/AlibekovAA/album-catalog/internal/common/errors"
	"github.com/AlibekovAA/album-catalog/internal/common/form"
	commonhttp "github.com/AlibekovAA/album-catalog/internal/common/http"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
	"github.com/AlibekovAA/album-catalog/internal/common/view"
)

type formPage struct {
	Heading string
	Action  string
	Form    form.Album
	Errors  form.Errors
}

type Handler struct {
	albums  *service.AlbumService
	forms   *form.Decoder
	view    *view.Renderer
	errors  *commonhttp.ErrorHandler
	timeout time.Duration
	log     *logger.Logger
}

func NewHandler(
	albums *service.AlbumService,
	forms *form.Decoder,
	renderer *view.Renderer,
	errs *commonhttp.ErrorHandler,
	timeout time.Duration,
	log *logger.Logger,
) *Handler {
	return &Handler{
		albums:  albums,
		forms:   forms,
		view:    renderer,
		errors:  errs,
		timeout: timeout,
		log:     log,
	}
}

// Register mounts the public pages and the album routes; requireAuth
// guards every mutation.
func (h *Handler) Register(r *mux.Router, requireAuth mux.MiddlewareFunc) {
	r.HandleFunc("/", h.index).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/about", h.static("about", "About")).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/history", h.static("history", "History")).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/albums", h.list).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/album/latest", h.latest).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/album/{id:[0-9]+}", h.show).Methods(http.MethodGet, http.MethodHead)

	protected := r.NewRoute().Subrouter()
	protected.Use(requireAuth)
	protected.HandleFunc("/album/add", h.addForm).Methods(http.MethodGet)
	protected.HandleFunc("/album/add", h.add).Methods(http.MethodPost)
	protected.HandleFunc("/album/{id:[0-9]+}/edit", h.editForm).Methods(http.MethodGet)
	protected.HandleFunc("/album/{id:[0-9]+}/edit", h.edit).Methods(http.MethodPost)
	protected.HandleFunc("/album/{id:[0-9]+}/delete", h.delete).Methods(http.MethodPost)
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	albums, err := h.albums.Latest(ctx, 0)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	h.view.Render(w, r, http.StatusOK, "index", "", struct{ Albums []domain.Album }{albums})
}

func (h *Handler) static(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.view.Render(w, r, http.StatusOK, name, title, nil)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	albums, err := h.albums.List(ctx)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	h.view.Render(w, r, http.StatusOK, "albums", "Albums", struct{ Albums []domain.Album }{albums})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.albumID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	album, err := h.albums.Get(ctx, id)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	h.renderAlbum(w, r, album)
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	album, err := h.albums.LatestAdded(ctx)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	h.renderAlbum(w, r, album)
}

func (h *Handler) renderAlbum(w http.ResponseWriter, r *http.Request, album domain.Album) {
	h.view.Render(w, r, http.StatusOK, "album", album.Title, struct{ Album domain.Album }{album})
}

func (h *Handler) addForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "Add album", "/album/add", form.Album{}, nil)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var f form.Album
	errs, err := h.forms.Bind(r, &f)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if errs.Any() {
		h.renderForm(w, r, "Add album", "/album/add", f, errs)
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	album, err := h.albums.Create(ctx, toInput(f))
	if err != nil {
		if h.formError(w, r, "Add album", "/album/add", f, err) {
			return
		}
		h.errors.HandleError(w, r, err)
		return
	}

	h.view.Flash(w, r, "success", fmt.Sprintf("Album %q added.", album.Title))
	commonhttp.Redirect(w, r, albumPath(album.ID))
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.albumID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	album, err := h.albums.Get(ctx, id)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.renderForm(w, r, "Edit album", editPath(id), form.Album{
		Title:       album.Title,
		Description: album.Description,
		ReleaseDate: album.ReleaseDate,
		CoverImage:  album.CoverImage,
	}, nil)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.albumID(w, r)
	if !ok {
		return
	}

	var f form.Album
	errs, err := h.forms.Bind(r, &f)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if errs.Any() {
		h.renderForm(w, r, "Edit album", editPath(id), f, errs)
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	album, err := h.albums.Update(ctx, id, toInput(f))
	if err != nil {
		if h.formError(w, r, "Edit album", editPath(id), f, err) {
			return
		}
		h.errors.HandleError(w, r, err)
		return
	}

	h.view.Flash(w, r, "success", fmt.Sprintf("Album %q updated.", album.Title))
	commonhttp.Redirect(w, r, albumPath(album.ID))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.albumID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	title, err := h.albums.Delete(ctx, id)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.view.Flash(w, r, "success", fmt.Sprintf("Album %q deleted.", title))
	commonhttp.Redirect(w, r, "/albums")
}

// formError re-renders the form for validation failures the service
// catches after the form rules passed.
func (h *Handler) formError(w http.ResponseWriter, r *http.Request, heading, action string, f form.Album, err error) bool {
	errs := form.Errors{}
	switch {
	case errors.Is(err, commonerrors.ErrInvalidReleaseDate):
		errs.Add("release_date", "Not a valid date value.")
	case errors.Is(err, commonerrors.ErrValidation):
		errs.Add("title", "Field must be between 1 and 200 characters long.")
	default:
		return false
	}
	h.renderForm(w, r, heading, action, f, errs)
	return true
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, heading, action string, f form.Album, errs form.Errors) {
	h.view.Render(w, r, http.StatusOK, "album_form", heading, formPage{
		Heading: heading,
		Action:  action,
		Form:    f,
		Errors:  errs,
	})
}

func (h *Handler) albumID(w http.ResponseWriter, r *http.Request) (domain.ID, bool) {
	id, err := commonhttp.PathID(r, "id")
	if err != nil {
		h.errors.NotFound(w, r)
		return 0, false
	}
	return domain.ID(id), true
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WithFields(r.Context(), logger.Fields{
		"path":   r.URL.Path,
		"action": "album_form_unreadable",
	}).Warnf("album form rejected: %v", err)
	h.errors.HandleError(w, r, commonerrors.ErrValidation.WithCause(err))
}

func toInput(f form.Album) service.AlbumInput {
	input := service.AlbumInput{
		Title:       f.Title,
		Description: f.Description,
		CoverImage:  f.CoverImage,
	}
	if f.ReleaseDate != "" {
		input.ReleaseDate = domain.DateString(f.ReleaseDate)
	}
	return input
}

func albumPath(id domain.ID) string {
	return fmt.Sprintf("/album/%d", id)
}

func editPath(id domain.ID) string {
	return fmt.Sprintf("/album/%d/edit", id)
}
