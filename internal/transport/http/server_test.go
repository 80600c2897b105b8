package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/usira-okay/release-kit/internal/apperrors"
	"github.com/usira-okay/release-kit/internal/domain"
)

func newTestServer(pipeline *PipelineServiceMock) http.Handler {
	return NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), pipeline).Routes()
}

func sampleResult() *domain.ConsolidatedResult {
	return &domain.ConsolidatedResult{
		Projects: []domain.ProjectGroup{{
			ProjectName: "app",
			Entries: []domain.ConsolidatedEntry{{
				PrTitle:         "Add refund",
				WorkItemID:      5001,
				TeamDisplayName: "Payments",
				Authors:         []string{"Alice"},
				PullRequestURLs: []string{"https://git/1"},
				OriginalData: domain.OriginalData{
					WorkItem:     domain.WorkItemOutput{WorkItemID: 5001, IsSuccess: true, ResolutionStatus: domain.ResolutionAlreadyTopLevel},
					PullRequests: []domain.Change{},
				},
			}},
		}},
	}
}

func TestServer_PipelineEndpoints(t *testing.T) {
	missing := &apperrors.MissingInputError{Sources: []string{"Bitbucket:FetchResult", "GitLab:FetchResult"}}

	testCases := []struct {
		name               string
		method             string
		path               string
		setupMocks         func(*PipelineServiceMock)
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name:   "Run success",
			method: http.MethodPost,
			path:   "/pipeline/run",
			setupMocks: func(m *PipelineServiceMock) {
				m.On("Run", mock.Anything).Return(sampleResult(), nil).Once()
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:   "Run missing input",
			method: http.MethodPost,
			path:   "/pipeline/run",
			setupMocks: func(m *PipelineServiceMock) {
				m.On("Run", mock.Anything).Return(nil, fmt.Errorf("internal.service.pipeline.Run: %w", missing)).Once()
			},
			expectedStatusCode: http.StatusUnprocessableEntity,
			expectedBody:       `{"error":{"code":"MISSING_INPUT","message":"missing pipeline input: no data from Bitbucket:FetchResult, GitLab:FetchResult"}}`,
		},
		{
			name:   "Resolve success",
			method: http.MethodPost,
			path:   "/pipeline/resolve",
			setupMocks: func(m *PipelineServiceMock) {
				m.On("Resolve", mock.Anything).Return([]domain.WorkItemOutput{
					{WorkItemID: 7, IsSuccess: false, ErrorMessage: "gone", ResolutionStatus: domain.ResolutionOriginalFetchFailed},
				}, nil).Once()
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `{"workItems":[{"workItemId":7,"isSuccess":false,"errorMessage":"gone","resolutionStatus":"OriginalFetchFailed"}]}`,
		},
		{
			name:   "Consolidate internal error",
			method: http.MethodPost,
			path:   "/pipeline/consolidate",
			setupMocks: func(m *PipelineServiceMock) {
				m.On("Consolidate", mock.Anything).Return(nil, errors.New("connection refused")).Once()
			},
			expectedStatusCode: http.StatusInternalServerError,
			expectedBody:       `{"error":"internal server error"}`,
		},
		{
			name:   "Report not found",
			method: http.MethodGet,
			path:   "/report",
			setupMocks: func(m *PipelineServiceMock) {
				m.On("Report", mock.Anything).Return(nil, fmt.Errorf("load: %w", apperrors.ErrNotFound)).Once()
			},
			expectedStatusCode: http.StatusNotFound,
			expectedBody:       `{"error":{"code":"NOT_FOUND","message":"resource not found"}}`,
		},
		{
			name:   "Report success",
			method: http.MethodGet,
			path:   "/report",
			setupMocks: func(m *PipelineServiceMock) {
				m.On("Report", mock.Anything).Return(sampleResult(), nil).Once()
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "Wrong method",
			method:             http.MethodGet,
			path:               "/pipeline/run",
			setupMocks:         func(m *PipelineServiceMock) {},
			expectedStatusCode: http.StatusMethodNotAllowed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pipelineMock := new(PipelineServiceMock)
			tc.setupMocks(pipelineMock)

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()

			newTestServer(pipelineMock).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}

			pipelineMock.AssertExpectations(t)
		})
	}
}

func TestServer_ReportBody(t *testing.T) {
	pipelineMock := new(PipelineServiceMock)
	pipelineMock.On("Report", mock.Anything).Return(sampleResult(), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	rr := httptest.NewRecorder()

	newTestServer(pipelineMock).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"projects":{"app":[`)
	assert.Contains(t, rr.Body.String(), `"prTitle":"Add refund"`)
	assert.Contains(t, rr.Body.String(), `"pullRequestUrls":["https://git/1"]`)
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
}

func TestServer_PostBranchesDiffTarget(t *testing.T) {
	testCases := []struct {
		name               string
		requestBody        string
		setupMocks         func(*PipelineServiceMock)
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name:        "Stale release source",
			requestBody: `{"projectPath":"group/app","sourceBranch":"release/20241201","targetBranch":"main"}`,
			setupMocks: func(m *PipelineServiceMock) {
				m.On("DiffTarget", mock.Anything, "group/app", "release/20241201", "main").Return("release/20241215").Once()
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `{"projectPath":"group/app","sourceBranch":"release/20241201","targetBranch":"release/20241215","adjusted":true}`,
		},
		{
			name:        "Target kept",
			requestBody: `{"projectPath":"group/app","sourceBranch":"develop","targetBranch":"main"}`,
			setupMocks: func(m *PipelineServiceMock) {
				m.On("DiffTarget", mock.Anything, "group/app", "develop", "main").Return("main").Once()
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `{"projectPath":"group/app","sourceBranch":"develop","targetBranch":"main","adjusted":false}`,
		},
		{
			name:               "Invalid JSON body",
			requestBody:        `{invalid json}`,
			setupMocks:         func(m *PipelineServiceMock) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedBody:       `{"error":{"code":"INVALID_REQUEST","message":"invalid request body"}}`,
		},
		{
			name:               "Missing project",
			requestBody:        `{"sourceBranch":"develop","targetBranch":"main"}`,
			setupMocks:         func(m *PipelineServiceMock) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedBody:       `{"error":"validation failed: field 'ProjectPath' failed on the 'required' tag"}`,
		},
		{
			name:               "Malformed branch",
			requestBody:        `{"projectPath":"group/app","sourceBranch":"release/../main","targetBranch":"main"}`,
			setupMocks:         func(m *PipelineServiceMock) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedBody:       `{"error":"validation failed: field 'SourceBranch' is not a valid branch name"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pipelineMock := new(PipelineServiceMock)
			tc.setupMocks(pipelineMock)

			req := httptest.NewRequest(http.MethodPost, "/branches/diff-target", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")

			rr := httptest.NewRecorder()

			newTestServer(pipelineMock).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			pipelineMock.AssertExpectations(t)
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	pipelineMock := new(PipelineServiceMock)
	handler := newTestServer(pipelineMock)

	pipelineMock.On("Report", mock.Anything).Return(sampleResult(), nil).Once()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/report", nil))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `release_kit_http_requests_total{method="GET",path="/report",status="200"}`)
}
