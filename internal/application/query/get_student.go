package query

import (
	"context"
	"fmt"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/student"
	"github.com/classroll/attendance-tracker/pkg/logger"
)

// GetStudentQuery looks a student up by id.
type GetStudentQuery struct {
	StudentID int64
}

// GetStudentHandler handles GetStudentQuery.
type GetStudentHandler struct {
	store  attendance.Store
	cache  student.Cache
	config RosterHandlerConfig
	log    *logger.Logger
}

// NewGetStudentHandler creates a new GetStudentHandler. cache may be nil.
func NewGetStudentHandler(
	store attendance.Store,
	cache student.Cache,
	config RosterHandlerConfig,
	log *logger.Logger,
) *GetStudentHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GetStudentHandler{
		store:  store,
		cache:  cache,
		config: config,
		log:    log.With(logger.Component("query"), logger.Operation("get_student")),
	}
}

// Handle returns the student or a StudentNotFound error.
func (h *GetStudentHandler) Handle(ctx context.Context, q GetStudentQuery) (*StudentDTO, error) {
	if h.cache != nil {
		s, err := h.cache.Get(ctx, q.StudentID)
		if err != nil {
			h.log.Warn("student cache read failed", logger.StudentID(q.StudentID), logger.Err(err))
		} else if s != nil {
			return &StudentDTO{ID: s.ID, Name: s.Name}, nil
		}
	}

	var s *student.Student
	err := h.store.ReadOnly(ctx, func(uow attendance.UnitOfWork) error {
		var err error
		s, err = uow.Students().GetByID(ctx, q.StudentID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get_student: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, s, h.config.CacheTTL); err != nil {
			h.log.Warn("student cache write failed", logger.StudentID(s.ID), logger.Err(err))
		}
	}
	return &StudentDTO{ID: s.ID, Name: s.Name}, nil
}
