package service

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/usira-okay/release-kit/internal/repository"
	"github.com/usira-okay/release-kit/pkg/logger/sl"
)

const releaseBranchPrefix = "release/"

var releaseBranchPattern = regexp.MustCompile(`(?i)^release/(\d{8})$`)

type ReleaseBranch struct {
	Name string
	Date time.Time
}

// ParseReleaseBranch recognizes "release/yyyyMMdd". The digits must form a
// real calendar date.
func ParseReleaseBranch(name string) (ReleaseBranch, bool) {
	m := releaseBranchPattern.FindStringSubmatch(name)
	if m == nil {
		return ReleaseBranch{}, false
	}

	date, err := time.Parse("20060102", m[1])
	if err != nil {
		return ReleaseBranch{}, false
	}

	return ReleaseBranch{Name: name, Date: date}, true
}

func parseReleaseBranches(branches []string) []ReleaseBranch {
	parsed := make([]ReleaseBranch, 0, len(branches))
	for _, b := range branches {
		if rb, ok := ParseReleaseBranch(b); ok {
			parsed = append(parsed, rb)
		}
	}

	return parsed
}

// SortReleaseBranchesDescending drops everything that is not a release
// branch and orders the rest newest first. Equal dates fall back to name
// order so the result is deterministic.
func SortReleaseBranchesDescending(branches []string) []string {
	parsed := parseReleaseBranches(branches)

	sort.SliceStable(parsed, func(i, j int) bool {
		if !parsed[i].Date.Equal(parsed[j].Date) {
			return parsed[i].Date.After(parsed[j].Date)
		}

		return parsed[i].Name < parsed[j].Name
	})

	names := make([]string, len(parsed))
	for i, rb := range parsed {
		names[i] = rb.Name
	}

	return names
}

func IsLatestReleaseBranch(branch string, allBranches []string) bool {
	if _, ok := ParseReleaseBranch(branch); !ok {
		return false
	}

	sorted := SortReleaseBranchesDescending(allBranches)

	return len(sorted) > 0 && strings.EqualFold(sorted[0], branch)
}

// FindNextNewerReleaseBranch returns the release branch with the smallest
// date strictly after branch's date. branch itself must be among
// allBranches.
func FindNextNewerReleaseBranch(branch string, allBranches []string) (string, bool) {
	target, ok := ParseReleaseBranch(branch)
	if !ok {
		return "", false
	}

	parsed := parseReleaseBranches(allBranches)

	var present bool
	for _, rb := range parsed {
		if strings.EqualFold(rb.Name, branch) {
			present = true
			break
		}
	}

	if !present {
		return "", false
	}

	var (
		next  ReleaseBranch
		found bool
	)

	for _, rb := range parsed {
		if !rb.Date.After(target.Date) {
			continue
		}

		if !found || rb.Date.Before(next.Date) || (rb.Date.Equal(next.Date) && rb.Name < next.Name) {
			next = rb
			found = true
		}
	}

	return next.Name, found
}

// DiffTargetResolver corrects the target of a branch diff when the
// configured source is an outdated release branch.
type DiffTargetResolver struct {
	branches repository.BranchRepository
	log      *slog.Logger
}

func NewDiffTargetResolver(branches repository.BranchRepository, log *slog.Logger) *DiffTargetResolver {
	return &DiffTargetResolver{
		branches: branches,
		log:      log,
	}
}

// ResolveDiffTarget returns the branch to diff source against. When source
// is a release branch but not the latest one, the next newer release branch
// replaces target. Any failure to list branches keeps target unchanged.
func (r *DiffTargetResolver) ResolveDiffTarget(ctx context.Context, projectPath, source, target string) string {
	const op = "internal.service.release_branch.ResolveDiffTarget"
	log := r.log.With(
		slog.String("op", op),
		slog.String("project_path", projectPath),
		slog.String("source", source),
		slog.String("target", target),
	)

	if _, ok := ParseReleaseBranch(source); !ok {
		return target
	}

	all, err := r.branches.ListBranches(ctx, projectPath, releaseBranchPrefix)
	if err != nil {
		log.Warn("failed to list release branches, keeping configured target", sl.Err(err))
		return target
	}

	if IsLatestReleaseBranch(source, all) {
		return target
	}

	next, ok := FindNextNewerReleaseBranch(source, all)
	if !ok {
		log.Debug("no newer release branch found")
		return target
	}

	log.Info("diff target replaced by next release branch", slog.String("next", next))

	return next
}
