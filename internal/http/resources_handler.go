package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"flowcrm-data/internal/repository"
	"flowcrm-data/internal/service"

	"go.uber.org/zap"
)

// ResourcesHandler exposes on-demand health checks and the admin view over
// monitored integration resources.
type ResourcesHandler struct {
	resources repository.ResourcesRepo
	manager   *service.HealthCheckManager
	logger    *zap.Logger
}

func NewResourcesHandler(resources repository.ResourcesRepo, manager *service.HealthCheckManager, logger *zap.Logger) *ResourcesHandler {
	return &ResourcesHandler{resources: resources, manager: manager, logger: logger}
}

// HealthCheck handles POST /data/api/v1/resources/{id}/health-check. The
// check result is persisted before it is returned, so a page refresh shows
// the same status the caller just saw.
func (h *ResourcesHandler) HealthCheck(w http.ResponseWriter, r *http.Request, resourceID string) {
	if resourceID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("resource id is required"))
		return
	}

	user := userFromRequest(r)
	if user.UserID == "" || user.TenantID == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing identity headers"))
		return
	}

	res, err := h.resources.GetByID(r.Context(), resourceID)
	if err != nil {
		if errors.Is(err, repository.ErrResourceNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("resource not found"))
			return
		}
		h.logger.Error("resource lookup failed", zap.String("resource_id", resourceID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return
	}

	// resources belong to one tenant; cross-tenant checks are forbidden
	if res.TenantID != user.TenantID {
		writeJSON(w, http.StatusForbidden, Fail("resource belongs to another tenant"))
		return
	}

	result, err := h.manager.Check(r.Context(), res)
	if err != nil {
		h.logger.Error("health check failed", zap.String("resource_id", resourceID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("health check failed"))
		return
	}

	if err := h.resources.UpdateStatus(r.Context(), resourceID, result.Status, result.CheckedAt); err != nil {
		h.logger.Error("failed to persist health check result",
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to persist result"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(result))
}

type resourceView struct {
	ResourceID       string `json:"resource_id"`
	ResourceName     string `json:"resource_name"`
	Endpoint         string `json:"endpoint,omitempty"`
	IsActive         bool   `json:"is_active"`
	LastCheckedAt    string `json:"last_checked_at,omitempty"`
	LastHealthStatus string `json:"last_health_status"`
}

type resourceListView struct {
	Items []resourceView `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// List handles GET /admin/api/v1/resources with page/size query params.
func (h *ResourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	if user.TenantID == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing identity headers"))
		return
	}

	page := parseInt(r.URL.Query().Get("page"), 1)
	size := parseInt(r.URL.Query().Get("size"), 20)

	items, total, err := h.resources.List(r.Context(), user.TenantID, page, size)
	if err != nil {
		h.logger.Error("resource list failed", zap.String("tenant_id", user.TenantID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return
	}

	views := make([]resourceView, 0, len(items))
	for _, res := range items {
		v := resourceView{
			ResourceID:       res.ResourceID,
			ResourceName:     res.ResourceName,
			IsActive:         res.IsActive,
			LastHealthStatus: string(res.LastHealthCheckStatus),
		}
		if res.Endpoint.Valid {
			v.Endpoint = res.Endpoint.String
		}
		if res.LastHealthCheckAt.Valid {
			v.LastCheckedAt = res.LastHealthCheckAt.Time.UTC().Format(time.RFC3339)
		}
		views = append(views, v)
	}

	writeJSON(w, http.StatusOK, Ok(resourceListView{Items: views, Total: total, Page: page, Size: size}))
}

// Export handles GET /admin/api/v1/resources/export and streams an xlsx
// snapshot of every resource in the tenant.
func (h *ResourcesHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	if user.TenantID == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing identity headers"))
		return
	}

	const exportPageSize = 10000
	items, _, err := h.resources.List(r.Context(), user.TenantID, 1, exportPageSize)
	if err != nil {
		h.logger.Error("resource export query failed", zap.String("tenant_id", user.TenantID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return
	}

	data, err := GenerateResourcesExport(items)
	if err != nil {
		h.logger.Error("resource export generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate export"))
		return
	}

	filename := fmt.Sprintf("resources_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}
