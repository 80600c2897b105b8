package http

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/usira-okay/release-kit/internal/domain"
	"github.com/usira-okay/release-kit/internal/service"
)

type PipelineServiceMock struct {
	mock.Mock
}

var _ service.PipelineService = (*PipelineServiceMock)(nil)

func (m *PipelineServiceMock) Run(ctx context.Context) (*domain.ConsolidatedResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ConsolidatedResult), args.Error(1)
}

func (m *PipelineServiceMock) Resolve(ctx context.Context) ([]domain.WorkItemOutput, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.WorkItemOutput), args.Error(1)
}

func (m *PipelineServiceMock) Consolidate(ctx context.Context) (*domain.ConsolidatedResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ConsolidatedResult), args.Error(1)
}

func (m *PipelineServiceMock) Report(ctx context.Context) (*domain.ConsolidatedResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ConsolidatedResult), args.Error(1)
}

func (m *PipelineServiceMock) DiffTarget(ctx context.Context, projectPath, source, target string) string {
	args := m.Called(ctx, projectPath, source, target)
	return args.String(0)
}
