package query

import (
	"context"
	"fmt"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
)

// StatsDTO summarizes the database.
type StatsDTO struct {
	Students int      `json:"students"`
	Records  int      `json:"records"`
	Location string   `json:"location"`
	Tables   []string `json:"tables"`
}

// GetStatsHandler counts students and records and lists the schema objects.
type GetStatsHandler struct {
	store attendance.Store
}

// NewGetStatsHandler creates a new GetStatsHandler.
func NewGetStatsHandler(store attendance.Store) *GetStatsHandler {
	return &GetStatsHandler{store: store}
}

// Handle returns the counts and where the data lives.
func (h *GetStatsHandler) Handle(ctx context.Context) (*StatsDTO, error) {
	stats := &StatsDTO{Location: h.store.Location()}
	err := h.store.ReadOnly(ctx, func(uow attendance.UnitOfWork) error {
		var err error
		if stats.Students, err = uow.Students().Count(ctx); err != nil {
			return err
		}
		stats.Records, err = uow.Records().Count(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get_stats: %w", err)
	}

	if stats.Tables, err = h.store.Tables(ctx); err != nil {
		return nil, fmt.Errorf("get_stats: %w", err)
	}
	return stats, nil
}
