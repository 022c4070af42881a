package orgchart

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/salesdesk/internal"
	"github.com/frahmantamala/salesdesk/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListUsers(ctx context.Context) ([]User, error)
	Tree(ctx context.Context) ([]Node, error)
	AuditLogs(ctx context.Context, limit int) ([]AuditEntry, error)
	QuickAdd(ctx context.Context, role Role) (Result, error)
	Save(ctx context.Context, u User) (Result, error)
	Delete(ctx context.Context, id string) (Result, error)
	Move(ctx context.Context, userID string, newParentID *string) (Result, error)
	Drop(ctx context.Context, transfer map[string]string, targetID *string) (Result, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UsersResponse{Users: users})
}

func (h *Handler) GetTree(w http.ResponseWriter, r *http.Request) {
	roots, err := h.Service.Tree(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, TreeResponse{Roots: roots})
}

func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := DefaultAuditLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 || l > MaxAuditLimit {
			h.WriteError(w, internal.NewValidationFieldError("limit", "limit must be between 1 and 500", internal.ErrCodeValidationFailed))
			return
		}
		limit = l
	}

	logs, err := h.Service.AuditLogs(r.Context(), limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AuditLogsResponse{AuditLogs: logs, Limit: limit})
}

func (h *Handler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	var dto QuickAddDTO
	if appErr := h.DecodeJSON(r, &dto, false); appErr != nil {
		h.WriteError(w, appErr)
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.WriteError(w, appErr)
		return
	}

	res, err := h.Service.QuickAdd(r.Context(), Role(dto.Role))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, QuickAddResponse{
		MutationResponse: toMutationResponse(res),
		OpenEditor:       res.OpenEditor,
	})
}

// SaveUser handles the edit-form submit for both existing and new ids.
func (h *Handler) SaveUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dto SaveUserDTO
	if appErr := h.DecodeJSON(r, &dto, false); appErr != nil {
		h.WriteError(w, appErr)
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.WriteError(w, appErr)
		return
	}

	res, err := h.Service.Save(r.Context(), dto.ToUser(id))
	if err != nil {
		h.Logger.Error("SaveUser: service error", "error", err, "user_id", id, "actor", internal.UserIDFromContext(r.Context()))
		h.HandleServiceError(w, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	h.WriteJSON(w, status, toMutationResponse(res))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toMutationResponse(res))
}

func (h *Handler) MoveUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dto MoveDTO
	if appErr := h.DecodeJSON(r, &dto, true); appErr != nil {
		h.WriteError(w, appErr)
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.WriteError(w, appErr)
		return
	}

	res, err := h.Service.Move(r.Context(), id, dto.ParentID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toMutationResponse(res))
}

func (h *Handler) Drop(w http.ResponseWriter, r *http.Request) {
	var dto DropDTO
	if appErr := h.DecodeJSON(r, &dto, false); appErr != nil {
		h.WriteError(w, appErr)
		return
	}

	res, err := h.Service.Drop(r.Context(), dto.DataTransfer, dto.TargetID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toMutationResponse(res))
}
