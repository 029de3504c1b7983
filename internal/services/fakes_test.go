package services

import (
	"context"
	"fmt"
	"io/fs"
	"sync"

	"level-thumbnails/internal/models"
	"level-thumbnails/internal/repositories"
	"level-thumbnails/pkg/apperrors"
)

type fakeFiles struct {
	mu        sync.Mutex
	files     map[string][]byte
	writeErr  error
	renameErr error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{files: map[string][]byte{}}
}

func (f *fakeFiles) Write(path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.files[path] = data
	return nil
}

func (f *fakeFiles) Read(path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, &apperrors.StorageError{Op: "read " + path, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (f *fakeFiles) Rename(oldPath, newPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renameErr != nil {
		return f.renameErr
	}
	data, ok := f.files[oldPath]
	if !ok {
		return &apperrors.StorageError{Op: "rename " + oldPath, Err: fs.ErrNotExist}
	}
	delete(f.files, oldPath)
	f.files[newPath] = data
	return nil
}

func (f *fakeFiles) Delete(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
	return nil
}

func (f *fakeFiles) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok
}

func (f *fakeFiles) Canonical(levelID int64) string {
	return fmt.Sprintf("thumbnails/%d.png", levelID)
}

func (f *fakeFiles) Pending(userID, levelID int64) string {
	return fmt.Sprintf("uploads/%d_%d.png", userID, levelID)
}

type fakeStore struct {
	mu        sync.Mutex
	subs      []models.Submission
	nextID    int64
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (s *fakeStore) Create(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	sub.ID = s.nextID
	s.nextID++
	s.subs = append(s.subs, *sub)
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.subs {
		if s.subs[i].ID == id {
			sub := s.subs[i]
			return &sub, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *fakeStore) matches(sub *models.Submission, q repositories.PendingQuery) bool {
	if sub.Status != models.StatusPending {
		return false
	}
	if q.LevelID != nil && sub.LevelID != *q.LevelID {
		return false
	}
	if q.UserID != nil && sub.UserID != *q.UserID {
		return false
	}
	if q.Username != "" && sub.Username != q.Username {
		return false
	}
	return true
}

func (s *fakeStore) ListPending(_ context.Context, q repositories.PendingQuery) ([]models.Submission, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Submission
	for i := range s.subs {
		if s.matches(&s.subs[i], q) {
			matched = append(matched, s.subs[i])
		}
	}

	total := int64(len(matched))
	offset := (q.Page - 1) * q.PerPage
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + q.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *fakeStore) ListAllPending(_ context.Context, q repositories.PendingQuery) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Submission
	for i := range s.subs {
		if s.matches(&s.subs[i], q) {
			matched = append(matched, s.subs[i])
		}
	}
	return matched, nil
}

// Resolve mirrors the production semantics: the status flip is conditional
// on the row still being pending, and a failing fileOp rolls it back.
func (s *fakeStore) Resolve(_ context.Context, id int64, decidedBy int64, reason *string, accept bool, fileOp func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.subs {
		if s.subs[i].ID != id {
			continue
		}
		if s.subs[i].Status != models.StatusPending {
			return apperrors.ErrAlreadyResolved
		}
		if err := fileOp(); err != nil {
			return err
		}
		if accept {
			s.subs[i].Status = models.StatusAccepted
		} else {
			s.subs[i].Status = models.StatusRejected
		}
		s.subs[i].DecidedBy = &decidedBy
		s.subs[i].Reason = reason
		return nil
	}
	return apperrors.ErrAlreadyResolved
}

type fakePurger struct {
	mu     sync.Mutex
	levels []int64
}

func (p *fakePurger) PurgeLevel(levelID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.levels = append(p.levels, levelID)
}

func (p *fakePurger) purged() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.levels...)
}

// fakeCodec passes any non-empty payload through unchanged.
type fakeCodec struct{}

func (fakeCodec) ValidateAndEncode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", apperrors.ErrInvalidImage)
	}
	return data, nil
}
