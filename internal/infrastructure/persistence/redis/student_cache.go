package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/classroll/attendance-tracker/internal/domain/student"
)

// Key layout under the cache prefix.
const (
	PrefixStudent = "student:"
	keyRoster     = PrefixStudent + "all"
)

// StudentKey returns the key of a single student.
func StudentKey(id int64) string {
	return PrefixStudent + strconv.FormatInt(id, 10)
}

// StudentCache implements student.Cache on top of Cache.
type StudentCache struct {
	cache *Cache
}

// NewStudentCache creates a new StudentCache.
func NewStudentCache(cache *Cache) *StudentCache {
	return &StudentCache{cache: cache}
}

// Get returns the cached student, or nil on a miss.
func (s *StudentCache) Get(ctx context.Context, id int64) (*student.Student, error) {
	var st student.Student
	if err := s.cache.Get(ctx, StudentKey(id), &st); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// Set caches a student.
func (s *StudentCache) Set(ctx context.Context, st *student.Student, ttl time.Duration) error {
	if st == nil {
		return nil
	}
	return s.cache.Set(ctx, StudentKey(st.ID), st, ttl)
}

// GetList returns the cached roster, or nil on a miss. A cached empty
// roster is returned as an empty, non-nil slice.
func (s *StudentCache) GetList(ctx context.Context) ([]*student.Student, error) {
	var list []*student.Student
	if err := s.cache.Get(ctx, keyRoster, &list); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	if list == nil {
		list = []*student.Student{}
	}
	return list, nil
}

// SetList caches the whole roster and each student in it.
func (s *StudentCache) SetList(ctx context.Context, students []*student.Student, ttl time.Duration) error {
	if students == nil {
		students = []*student.Student{}
	}
	entries := make([]Entry, 0, len(students)+1)
	entries = append(entries, Entry{Key: keyRoster, Value: students})
	for _, st := range students {
		entries = append(entries, Entry{Key: StudentKey(st.ID), Value: st})
	}
	return s.cache.SetMany(ctx, ttl, entries...)
}

// InvalidateAll clears every cached student and the roster list.
func (s *StudentCache) InvalidateAll(ctx context.Context) error {
	return s.cache.DeleteByPattern(ctx, PrefixStudent+"*")
}
