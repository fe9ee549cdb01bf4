package service

import (
	"context"
	"fmt"

	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/filter"
	"flowcrm-data/internal/models"
	"flowcrm-data/internal/repository"

	"go.uber.org/zap"
)

// ListService turns a list request into one authorized query and executes
// it. All scoping lives in the filter pipeline; this service only
// orchestrates build + execute + paginate.
type ListService struct {
	pipeline *filter.Pipeline
	records  repository.RecordsRepo
	logger   *zap.Logger
}

func NewListService(pipeline *filter.Pipeline, records repository.RecordsRepo, logger *zap.Logger) *ListService {
	return &ListService{pipeline: pipeline, records: records, logger: logger}
}

func (s *ListService) List(ctx context.Context, req models.ListRequest, user domain.UserContext) (*models.ListResponse, error) {
	b, err := filter.NewBuilderFor(req.EntityType)
	if err != nil {
		return nil, err
	}

	if err := s.pipeline.ApplyAll(ctx, req.EntityType, req.PrimaryFilter, req.BoolFilters, user, b); err != nil {
		return nil, err
	}

	q, err := b.Build()
	if err != nil {
		// builder misuse is a filter-registration bug, not a client problem
		return nil, fmt.Errorf("failed to build %s query: %w", req.EntityType, err)
	}

	page, size := req.Page, req.Size
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	items, total, err := s.records.ExecuteList(ctx, req.EntityType, q, page, size)
	if err != nil {
		return nil, err
	}

	return &models.ListResponse{
		Items: items,
		Pagination: models.Pagination{
			Page:  page,
			Size:  size,
			Count: total,
		},
	}, nil
}
