package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var releaseBranches = []string{
	"release/20250315",
	"release/20250101",
	"release/20241215",
	"release/20241201",
	"release/20240601",
}

func TestParseReleaseBranch(t *testing.T) {
	rb, ok := ParseReleaseBranch("release/20250315")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), rb.Date)

	_, ok = ParseReleaseBranch("Release/20250315")
	assert.True(t, ok)

	for _, name := range []string{
		"release/2025010",
		"releases/20250101",
		"release/20250101-fix",
		"release/202501011",
		"release/20251301",
		"hotfix/20250101",
		"",
	} {
		_, ok := ParseReleaseBranch(name)
		assert.False(t, ok, name)
	}
}

func TestSortReleaseBranchesDescending(t *testing.T) {
	input := []string{
		"release/20241201",
		"main",
		"release/20250315",
		"release/20250101-fix",
		"release/20240601",
		"develop",
	}

	assert.Equal(t,
		[]string{"release/20250315", "release/20241201", "release/20240601"},
		SortReleaseBranchesDescending(input),
	)
	assert.Empty(t, SortReleaseBranchesDescending([]string{"main", "develop"}))
}

func TestIsLatestReleaseBranch(t *testing.T) {
	assert.True(t, IsLatestReleaseBranch("release/20250315", releaseBranches))
	assert.False(t, IsLatestReleaseBranch("release/20250101", releaseBranches))
	assert.False(t, IsLatestReleaseBranch("main", []string{"main"}))
	assert.False(t, IsLatestReleaseBranch("release/20250315", nil))
}

func TestFindNextNewerReleaseBranch(t *testing.T) {
	testCases := []struct {
		name          string
		branch        string
		expectedNext  string
		expectedFound bool
	}{
		{name: "Nearest newer, not the latest", branch: "release/20241201", expectedNext: "release/20241215", expectedFound: true},
		{name: "Oldest", branch: "release/20240601", expectedNext: "release/20241201", expectedFound: true},
		{name: "Already newest", branch: "release/20250315"},
		{name: "Not a release branch", branch: "develop"},
		{name: "Not present", branch: "release/20241210"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next, found := FindNextNewerReleaseBranch(tc.branch, releaseBranches)

			assert.Equal(t, tc.expectedFound, found)
			assert.Equal(t, tc.expectedNext, next)
		})
	}
}

func TestDiffTargetResolver_ResolveDiffTarget(t *testing.T) {
	ctx := context.Background()
	project := "group/project-a"

	testCases := []struct {
		name           string
		source         string
		target         string
		setupMocks     func(repo *BranchRepositoryMock)
		expectedTarget string
	}{
		{
			name:   "Stale source moves target to next release",
			source: "release/20241201",
			target: "main",
			setupMocks: func(repo *BranchRepositoryMock) {
				repo.On("ListBranches", mock.Anything, project, "release/").Return(releaseBranches, nil).Once()
			},
			expectedTarget: "release/20241215",
		},
		{
			name:   "Latest source keeps target",
			source: "release/20250315",
			target: "main",
			setupMocks: func(repo *BranchRepositoryMock) {
				repo.On("ListBranches", mock.Anything, project, "release/").Return(releaseBranches, nil).Once()
			},
			expectedTarget: "main",
		},
		{
			name:           "Non release source is not looked up",
			source:         "develop",
			target:         "main",
			setupMocks:     func(repo *BranchRepositoryMock) {},
			expectedTarget: "main",
		},
		{
			name:   "Listing failure fails open",
			source: "release/20241201",
			target: "main",
			setupMocks: func(repo *BranchRepositoryMock) {
				repo.On("ListBranches", mock.Anything, project, "release/").Return(nil, errors.New("timeout")).Once()
			},
			expectedTarget: "main",
		},
		{
			name:   "Source missing from listing keeps target",
			source: "release/20241210",
			target: "main",
			setupMocks: func(repo *BranchRepositoryMock) {
				repo.On("ListBranches", mock.Anything, project, "release/").Return(releaseBranches, nil).Once()
			},
			expectedTarget: "main",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(BranchRepositoryMock)
			tc.setupMocks(repo)

			resolver := NewDiffTargetResolver(repo, discardLogger())

			assert.Equal(t, tc.expectedTarget, resolver.ResolveDiffTarget(ctx, project, tc.source, tc.target))

			repo.AssertExpectations(t)
		})
	}
}
