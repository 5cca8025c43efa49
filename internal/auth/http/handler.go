package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/AlibekovAA/album-catalog/internal/auth/service"
	"github.com/AlibekovAA/album-catalog/internal/auth/session"
	commonerrors "github.com/AlibekovAA/album-catalog/internal/common/errors"
	"github.com/AlibekovAA/album-catalog/internal/common/form"
	commonhttp "github.com/AlibekovAA/album-catalog/internal/common/http"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
	"github.com/AlibekovAA/album-catalog/internal/common/view"
	userdomain "github.com/AlibekovAA/album-catalog/internal/user/domain"
)

const (
	msgInvalidLogin  = "Invalid username or password."
	msgUsernameTaken = "That username is already taken. Please choose another."
)

type loginPage struct {
	Form   form.Login
	Errors form.Errors
	Next   string
}

type registerPage struct {
	Form   form.Register
	Errors form.Errors
}

type userFormPage struct {
	UserID userdomain.ID
	Form   form.UserEdit
	Errors form.Errors
}

type Handler struct {
	users    *service.CredentialService
	sessions *session.Manager
	forms    *form.Decoder
	view     *view.Renderer
	errors   *commonhttp.ErrorHandler
	timeout  time.Duration
	log      *logger.Logger
}

func NewHandler(
	users *service.CredentialService,
	sessions *session.Manager,
	forms *form.Decoder,
	renderer *view.Renderer,
	errs *commonhttp.ErrorHandler,
	timeout time.Duration,
	log *logger.Logger,
) *Handler {
	return &Handler{
		users:    users,
		sessions: sessions,
		forms:    forms,
		view:     renderer,
		errors:   errs,
		timeout:  timeout,
		log:      log,
	}
}

func (h *Handler) Register(r *mux.Router) {
	guest := r.NewRoute().Subrouter()
	guest.Use(h.sessions.RedirectIfAuthenticated)
	guest.HandleFunc("/register", h.registerForm).Methods(http.MethodGet)
	guest.HandleFunc("/register", h.register).Methods(http.MethodPost)
	guest.HandleFunc("/login", h.loginForm).Methods(http.MethodGet)
	guest.HandleFunc("/login", h.login).Methods(http.MethodPost)

	r.HandleFunc("/logout", h.logout).Methods(http.MethodGet, http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(h.sessions.RequireAuth)
	protected.HandleFunc("/users", h.list).Methods(http.MethodGet)
	protected.HandleFunc("/user/{id:[0-9]+}/edit", h.editForm).Methods(http.MethodGet)
	protected.HandleFunc("/user/{id:[0-9]+}/edit", h.edit).Methods(http.MethodPost)
	protected.HandleFunc("/user/{id:[0-9]+}/delete", h.delete).Methods(http.MethodPost)
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *Handler) registerForm(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, "register", "Register", registerPage{})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var f form.Register
	errs, err := h.forms.Bind(r, &f)
	if err != nil {
		h.errors.HandleError(w, r, commonerrors.ErrValidation.WithCause(err))
		return
	}
	if errs.Any() {
		h.view.Render(w, r, http.StatusOK, "register", "Register", registerPage{Form: clearPasswords(f), Errors: errs})
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	user, err := h.users.Register(ctx, service.RegisterInput{
		Username: f.Username,
		Password: f.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, commonerrors.ErrUsernameTaken):
			h.view.Flash(w, r, "danger", msgUsernameTaken)
			commonhttp.Redirect(w, r, "/register")
		case errors.Is(err, commonerrors.ErrValidation):
			h.view.Render(w, r, http.StatusOK, "register", "Register", registerPage{Form: clearPasswords(f), Errors: fieldErrors(err)})
		default:
			h.errors.HandleError(w, r, err)
		}
		return
	}

	if err := h.sessions.Issue(w, r, user); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.view.Flash(w, r, "success", fmt.Sprintf("Welcome, %s! Your account has been created.", user.Username))
	commonhttp.Redirect(w, r, "/")
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, "login", "Log in", loginPage{Next: nextParam(r)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var f form.Login
	errs, err := h.forms.Bind(r, &f)
	if err != nil {
		h.errors.HandleError(w, r, commonerrors.ErrValidation.WithCause(err))
		return
	}

	page := loginPage{Form: form.Login{Username: f.Username}, Errors: errs, Next: nextParam(r)}
	if errs.Any() {
		h.view.Render(w, r, http.StatusOK, "login", "Log in", page)
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	user, ok, err := h.users.Authenticate(ctx, f.Username, f.Password)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	if !ok {
		h.errors.Observe(r, commonerrors.ErrInvalidCredentials)
		h.view.RenderFlash(w, r, http.StatusOK, "login", "Log in", page, "danger", msgInvalidLogin)
		return
	}

	if err := h.sessions.Issue(w, r, user); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.view.Flash(w, r, "success", "You are now logged in.")
	commonhttp.Redirect(w, r, session.SafeNext(page.Next))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if p, ok := session.FromContext(r.Context()).User(); ok {
		h.log.WithFields(r.Context(), logger.Fields{
			"user_id": int64(p.ID),
			"action":  "logout",
		}).Info("user logged out")
	}
	h.sessions.Clear(w, r)
	h.view.Flash(w, r, "info", "You have been logged out.")
	commonhttp.Redirect(w, r, "/")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	users, err := h.users.List(ctx)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	h.view.Render(w, r, http.StatusOK, "users", "Users", struct{ Users []userdomain.Summary }{users})
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	user, err := h.users.Get(ctx, id)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	h.view.Render(w, r, http.StatusOK, "user_form", "Edit user", userFormPage{
		UserID: id,
		Form:   form.UserEdit{Username: user.Username},
	})
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var f form.UserEdit
	errs, err := h.forms.Bind(r, &f)
	if err != nil {
		h.errors.HandleError(w, r, commonerrors.ErrValidation.WithCause(err))
		return
	}
	if errs.Any() {
		h.view.Render(w, r, http.StatusOK, "user_form", "Edit user", userFormPage{
			UserID: id,
			Form:   form.UserEdit{Username: f.Username},
			Errors: errs,
		})
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	user, err := h.users.Update(ctx, id, service.UpdateInput{
		Username: f.Username,
		Password: f.Password,
	})
	if err != nil {
		if errors.Is(err, commonerrors.ErrUsernameTaken) {
			h.view.Flash(w, r, "danger", msgUsernameTaken)
			commonhttp.Redirect(w, r, fmt.Sprintf("/user/%d/edit", id))
			return
		}
		if errors.Is(err, commonerrors.ErrValidation) {
			h.view.Render(w, r, http.StatusOK, "user_form", "Edit user", userFormPage{
				UserID: id,
				Form:   form.UserEdit{Username: f.Username},
				Errors: fieldErrors(err),
			})
			return
		}
		h.errors.HandleError(w, r, err)
		return
	}

	h.view.Flash(w, r, "success", fmt.Sprintf("User %s updated.", user.Username))
	commonhttp.Redirect(w, r, "/users")
}

// delete removes the account; removing your own account also ends the
// session.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	username, err := h.users.Delete(ctx, id)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.view.Flash(w, r, "success", fmt.Sprintf("User %s deleted.", username))

	if p, ok := session.FromContext(r.Context()).User(); ok && p.ID == id {
		h.sessions.Clear(w, r)
		commonhttp.Redirect(w, r, "/")
		return
	}
	commonhttp.Redirect(w, r, "/users")
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (userdomain.ID, bool) {
	id, err := commonhttp.PathID(r, "id")
	if err != nil {
		h.errors.NotFound(w, r)
		return 0, false
	}
	return userdomain.ID(id), true
}

func nextParam(r *http.Request) string {
	next := r.URL.Query().Get("next")
	if session.SafeNext(next) != next {
		return ""
	}
	return next
}

// fieldErrors places a service-side validation failure next to the field
// that caused it.
func fieldErrors(err error) form.Errors {
	errs := form.Errors{}
	if fe, ok := service.AsFieldError(err); ok {
		errs.Add(fe.Field, "Field "+fe.Reason+".")
		return errs
	}
	errs.Add("username", "Invalid value.")
	return errs
}

func clearPasswords(f form.Register) form.Register {
	return form.Register{Username: f.Username}
}
