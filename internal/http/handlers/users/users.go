// Package users реализует страницы управления пользователями панели:
// список с действиями (создание, изменение, удаление, массовое удаление),
// карточку пользователя, её редактирование и черновик копии.
//
// Все методы имеют сигнатуру authgate.AuthenticatedHandlerFunc и монтируются
// только через Gate.Protect.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/admin-panel/internal/http/form"
	"github.com/magabrotheeeer/admin-panel/internal/http/response"
	"github.com/magabrotheeeer/admin-panel/internal/lib/sl"
	"github.com/magabrotheeeer/admin-panel/internal/models"
	userservice "github.com/magabrotheeeer/admin-panel/internal/services/users"
)

// Сообщения страниц пользователей.
const (
	MsgEmailExists      = "Email already exists"
	MsgNotFound         = "User Not Found"
	MsgCreated          = "User created successfully"
	MsgUpdated          = "User updated successfully"
	MsgDeleted          = "User deleted successfully"
	MsgBulkInvalid      = "Invalid bulk delete request"
	MsgNoItems          = "No items selected"
	MsgEditFailed       = "Email already in use or update failed"
	MsgInvalidForm      = "Invalid form submission"
	bulkDeletedTemplate = "%d users deleted successfully"
)

// Намерения формы списка.
const (
	IntentCreate     = "create"
	IntentUpdate     = "update"
	IntentDelete     = "delete"
	IntentBulkDelete = "bulk-delete"
)

// ListPath страница списка, куда ведёт редактирование.
const ListPath = "/users"

// Service описывает операции над пользователями.
type Service interface {
	List(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, email, password string) (*models.User, error)
	Update(ctx context.Context, id, email, password string) error
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int, error)
	Duplicate(ctx context.Context, id string) (*models.User, error)
}

type createRequest struct {
	Email    string `validate:"required"`
	Password string `validate:"required,min=6"`
}

type updateRequest struct {
	UserID   string
	Email    string `validate:"required"`
	Password string `validate:"omitempty,min=6"`
}

type editRequest struct {
	Email    string `validate:"required"`
	Password string `validate:"omitempty,min=6"`
}

// Handler обрабатывает страницы пользователей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) logger(r *http.Request, op, userID string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("session_user", userID),
	)
}

// List отдаёт пользователей (id, email, createdAt), новые первыми.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "handlers.users.List"
	log := h.logger(r, op, userID)

	users, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		internalError(w, r)
		return
	}
	render.JSON(w, r, response.OKWithData(users))
}

// Action выполняет действие формы списка по полю intent.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "handlers.users.Action"
	log := h.logger(r, op, userID)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		render.JSON(w, r, response.Error(MsgInvalidForm))
		return
	}

	switch intent := r.PostForm.Get("intent"); intent {
	case IntentBulkDelete:
		h.bulkDelete(w, r, log)
	case IntentCreate:
		h.create(w, r, log)
	case IntentUpdate:
		h.update(w, r, log)
	case IntentDelete:
		h.delete(w, r, log)
	default:
		log.Debug("unknown intent", slog.String("intent", intent))
		render.JSON(w, r, response.OK())
	}
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	ids, err := form.ParseIDs(r.PostForm.Get("ids"))
	if err != nil {
		log.Info("invalid bulk delete payload", sl.Err(err))
		render.JSON(w, r, response.Error(MsgBulkInvalid))
		return
	}
	if len(ids) == 0 {
		render.JSON(w, r, response.Error(MsgNoItems))
		return
	}

	if _, err := h.service.BulkDelete(r.Context(), ids); err != nil {
		log.Error("bulk delete failed", sl.Err(err))
		internalError(w, r)
		return
	}
	render.JSON(w, r, response.OKWithMessage(fmt.Sprintf(bulkDeletedTemplate, len(ids))))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	req := createRequest{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}
	if err := h.validate.Struct(req); err != nil {
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if _, err := h.service.Create(r.Context(), req.Email, req.Password); err != nil {
		h.fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithMessage(MsgCreated))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	req := updateRequest{
		UserID:   r.PostForm.Get("userId"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}
	if err := h.validate.Struct(req); err != nil {
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.Update(r.Context(), req.UserID, req.Email, req.Password); err != nil {
		h.fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithMessage(MsgUpdated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	if err := h.service.Delete(r.Context(), r.PostForm.Get("userId")); err != nil {
		h.fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithMessage(MsgDeleted))
}

// Get отдаёт карточку пользователя для редактирования.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "handlers.users.Get"
	log := h.logger(r, op, userID)

	user, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(user))
}

// Edit сохраняет карточку пользователя и возвращает к списку.
// Пустой пароль оставляет прежний.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "handlers.users.Edit"
	log := h.logger(r, op, userID)
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		render.JSON(w, r, response.Error(MsgInvalidForm))
		return
	}
	req := editRequest{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}
	if err := h.validate.Struct(req); err != nil {
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.Update(r.Context(), id, req.Email, req.Password)
	switch {
	case err == nil:
		http.Redirect(w, r, ListPath, http.StatusFound)
	case errors.Is(err, userservice.ErrNotFound):
		notFound(w, r)
	case errors.Is(err, userservice.ErrEmailTaken):
		render.JSON(w, r, response.Error(MsgEditFailed))
	default:
		log.Error("failed to update user", sl.Err(err))
		internalError(w, r)
	}
}

// Duplicate отдаёт несохранённый черновик копии пользователя.
func (h *Handler) Duplicate(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "handlers.users.Duplicate"
	log := h.logger(r, op, userID)

	draft, err := h.service.Duplicate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(draft))
}

// fail переводит ошибку сервиса в ответ.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, userservice.ErrEmailTaken):
		render.JSON(w, r, response.Error(MsgEmailExists))
	case errors.Is(err, userservice.ErrNotFound):
		notFound(w, r)
	default:
		log.Error("user operation failed", sl.Err(err))
		internalError(w, r)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, response.Error(MsgNotFound))
}

func internalError(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.Error("internal error"))
}
