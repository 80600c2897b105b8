package service

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
	"github.com/usira-okay/release-kit/internal/apperrors"
	"github.com/usira-okay/release-kit/internal/domain"
	"github.com/usira-okay/release-kit/internal/repository"
)

type WorkItemRepositoryMock struct {
	mock.Mock
}

var _ repository.WorkItemRepository = (*WorkItemRepositoryMock)(nil)

func (m *WorkItemRepositoryMock) GetWorkItem(ctx context.Context, id int) (*domain.PlanningItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.PlanningItem), args.Error(1)
}

type BranchRepositoryMock struct {
	mock.Mock
}

var _ repository.BranchRepository = (*BranchRepositoryMock)(nil)

func (m *BranchRepositoryMock) ListBranches(ctx context.Context, projectPath string, prefix string) ([]string, error) {
	args := m.Called(ctx, projectPath, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

type HandoffRepositoryMock struct {
	mock.Mock
}

var _ repository.HandoffRepository = (*HandoffRepositoryMock)(nil)

// Get returns the error configured for key, or round-trips the configured
// value through JSON into dst the way the real store does.
func (m *HandoffRepositoryMock) Get(ctx context.Context, key string, dst any) error {
	args := m.Called(ctx, key, dst)
	if err := args.Error(1); err != nil {
		return err
	}

	data, err := json.Marshal(args.Get(0))
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dst)
}

func (m *HandoffRepositoryMock) Put(ctx context.Context, key string, value any) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// memoryStore is a working in-memory handoff store for pipeline tests.
type memoryStore struct {
	values map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string, dst any) error {
	data, ok := s.values[key]
	if !ok {
		return apperrors.ErrNotFound
	}

	return json.Unmarshal(data, dst)
}

func (s *memoryStore) Put(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.values[key] = data

	return nil
}
