// Package customers реализует страницы управления клиентами. Поведение
// совпадает со страницами пользователей, но у клиента нет пароля, а поля
// name и email обязательны вместе.
package customers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/admin-panel/internal/http/form"
	"github.com/magabrotheeeer/admin-panel/internal/http/response"
	"github.com/magabrotheeeer/admin-panel/internal/lib/sl"
	"github.com/magabrotheeeer/admin-panel/internal/models"
	customerservice "github.com/magabrotheeeer/admin-panel/internal/services/customers"
)

// Сообщения страниц клиентов.
const (
	MsgRequired         = "Name and Email are required"
	MsgEmailExists      = "Email already exists"
	MsgNotFound         = "Not Found"
	MsgCreated          = "Customer created successfully"
	MsgUpdated          = "Customer updated successfully"
	MsgDeleted          = "Customer deleted successfully"
	MsgBulkInvalid      = "Invalid bulk delete request"
	MsgNoItems          = "No items selected"
	MsgInvalidForm      = "Invalid form submission"
	bulkDeletedTemplate = "%d customers deleted successfully"
)

// Намерения формы списка.
const (
	IntentCreate     = "create"
	IntentUpdate     = "update"
	IntentDelete     = "delete"
	IntentBulkDelete = "bulk-delete"
)

// ListPath страница списка клиентов.
const ListPath = "/customers"

// Service описывает операции над клиентами.
type Service interface {
	List(ctx context.Context) ([]*models.Customer, error)
	Get(ctx context.Context, id string) (*models.Customer, error)
	Create(ctx context.Context, c models.Customer) (*models.Customer, error)
	Update(ctx context.Context, c models.Customer) error
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int, error)
	Duplicate(ctx context.Context, id string) (*models.Customer, error)
}

// Handler обрабатывает страницы клиентов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) logger(r *http.Request, op, userID string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("session_user", userID),
	)
}

// customerFromForm читает поля карточки и сообщает, заполнены ли name и email.
func customerFromForm(r *http.Request, id string) (models.Customer, bool) {
	c := models.Customer{
		ID:      id,
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Address: r.PostForm.Get("address"),
	}
	return c, c.Name != "" && c.Email != ""
}

// List отдаёт клиентов, новые первыми.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "handlers.customers.List"
	log := h.logger(r, op, userID)

	customers, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list customers", sl.Err(err))
		internalError(w, r)
		return
	}
	log.Debug("customers listed", slog.Int("count", len(customers)))
	render.JSON(w, r, response.OKWithData(customers))
}

// Action выполняет действие формы списка по полю intent.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "handlers.customers.Action"
	log := h.logger(r, op, userID)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		render.JSON(w, r, response.Error(MsgInvalidForm))
		return
	}

	switch intent := r.PostForm.Get("intent"); intent {
	case IntentBulkDelete:
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

	case IntentCreate, IntentUpdate:
		id := ""
		if intent == IntentUpdate {
			id = r.PostForm.Get("customerId")
		}
		c, ok := customerFromForm(r, id)
		if !ok {
			render.JSON(w, r, response.Error(MsgRequired))
			return
		}

		var err error
		msg := MsgCreated
		if intent == IntentUpdate {
			err = h.service.Update(r.Context(), c)
			msg = MsgUpdated
		} else {
			_, err = h.service.Create(r.Context(), c)
		}
		if err != nil {
			h.fail(w, r, log, err)
			return
		}
		render.JSON(w, r, response.OKWithMessage(msg))

	case IntentDelete:
		if err := h.service.Delete(r.Context(), r.PostForm.Get("customerId")); err != nil {
			h.fail(w, r, log, err)
			return
		}
		render.JSON(w, r, response.OKWithMessage(MsgDeleted))

	default:
		log.Debug("unknown intent", slog.String("intent", intent))
		render.JSON(w, r, response.OK())
	}
}

// Get отдаёт карточку клиента.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "handlers.customers.Get"
	log := h.logger(r, op, userID)

	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(c))
}

// Edit сохраняет карточку клиента и возвращает к списку.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "handlers.customers.Edit"
	log := h.logger(r, op, userID)

	if err := r.ParseForm(); err != nil {
		render.JSON(w, r, response.Error(MsgInvalidForm))
		return
	}
	c, ok := customerFromForm(r, chi.URLParam(r, "id"))
	if !ok {
		render.JSON(w, r, response.Error(MsgRequired))
		return
	}

	if err := h.service.Update(r.Context(), c); err != nil {
		h.fail(w, r, log, err)
		return
	}
	http.Redirect(w, r, ListPath, http.StatusFound)
}

// Duplicate отдаёт черновик копии клиента с префиксом CLONE во всех полях.
func (h *Handler) Duplicate(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "handlers.customers.Duplicate"
	log := h.logger(r, op, userID)

	draft, err := h.service.Duplicate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(draft))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, customerservice.ErrEmailTaken):
		render.JSON(w, r, response.Error(MsgEmailExists))
	case errors.Is(err, customerservice.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(MsgNotFound))
	default:
		log.Error("customer operation failed", sl.Err(err))
		internalError(w, r)
	}
}

func internalError(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.Error("internal error"))
}
