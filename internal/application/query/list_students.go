// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/student"
	"github.com/classroll/attendance-tracker/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER QUERIES
// Read the roster, optionally through a read-through cache.
// ══════════════════════════════════════════════════════════════════════════════

// StudentDTO is a roster row.
type StudentDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toStudentDTOs(students []*student.Student) []StudentDTO {
	out := make([]StudentDTO, 0, len(students))
	for _, s := range students {
		out = append(out, StudentDTO{ID: s.ID, Name: s.Name})
	}
	return out
}

// RosterHandlerConfig contains configuration for roster queries.
type RosterHandlerConfig struct {
	// CacheTTL is how long cached roster entries live.
	CacheTTL time.Duration
}

// DefaultRosterHandlerConfig returns default configuration.
func DefaultRosterHandlerConfig() RosterHandlerConfig {
	return RosterHandlerConfig{CacheTTL: 5 * time.Minute}
}

// ListStudentsQuery has no parameters; it lists the whole roster.
type ListStudentsQuery struct{}

// ListStudentsResult contains the roster ordered by name.
type ListStudentsResult struct {
	Students []StudentDTO `json:"students"`
	Total    int          `json:"total"`
	Cached   bool         `json:"-"`
}

// ListStudentsHandler handles ListStudentsQuery.
type ListStudentsHandler struct {
	store  attendance.Store
	cache  student.Cache
	config RosterHandlerConfig
	log    *logger.Logger
}

// NewListStudentsHandler creates a new ListStudentsHandler. cache may be nil.
func NewListStudentsHandler(
	store attendance.Store,
	cache student.Cache,
	config RosterHandlerConfig,
	log *logger.Logger,
) *ListStudentsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ListStudentsHandler{
		store:  store,
		cache:  cache,
		config: config,
		log:    log.With(logger.Component("query"), logger.Operation("list_students")),
	}
}

// Handle returns every student ordered by name; an empty roster is an empty slice.
func (h *ListStudentsHandler) Handle(ctx context.Context, _ ListStudentsQuery) (*ListStudentsResult, error) {
	if h.cache != nil {
		cached, err := h.cache.GetList(ctx)
		if err != nil {
			h.log.Warn("roster cache read failed", logger.Err(err))
		} else if cached != nil {
			dtos := toStudentDTOs(cached)
			return &ListStudentsResult{Students: dtos, Total: len(dtos), Cached: true}, nil
		}
	}

	var students []*student.Student
	err := h.store.ReadOnly(ctx, func(uow attendance.UnitOfWork) error {
		var err error
		students, err = uow.Students().List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list_students: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.SetList(ctx, students, h.config.CacheTTL); err != nil {
			h.log.Warn("roster cache write failed", logger.Err(err))
		}
	}

	dtos := toStudentDTOs(students)
	return &ListStudentsResult{Students: dtos, Total: len(dtos)}, nil
}
