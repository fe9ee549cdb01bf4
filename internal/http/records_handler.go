package httpapi

import (
	"errors"
	"net/http"

	"flowcrm-data/internal/filter"
	"flowcrm-data/internal/models"
	"flowcrm-data/internal/service"

	"go.uber.org/zap"
)

// RecordsHandler serves scoped list queries over CRM records.
type RecordsHandler struct {
	lists  *service.ListService
	logger *zap.Logger
}

func NewRecordsHandler(lists *service.ListService, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{lists: lists, logger: logger}
}

// List handles POST /data/api/v1/records/list.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	var req models.ListRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.EntityType == "" {
		writeJSON(w, http.StatusBadRequest, Fail("entity_type is required"))
		return
	}

	user := userFromRequest(r)
	if user.UserID == "" || user.TenantID == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing identity headers"))
		return
	}

	resp, err := h.lists.List(r.Context(), req, user)
	if err != nil {
		if errors.Is(err, filter.ErrFilterNotFound) {
			writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
			return
		}
		h.logger.Error("list query failed",
			zap.String("entity_type", req.EntityType),
			zap.String("tenant_id", user.TenantID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}
