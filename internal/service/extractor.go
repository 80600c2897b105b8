package service

import (
	"regexp"
	"strconv"

	"github.com/usira-okay/release-kit/internal/domain"
)

var workItemIDPattern = regexp.MustCompile(`(?i)VSTS(\d+)`)

// ExtractWorkItemID returns the id of the first "VSTS<digits>" reference in
// text. Ids that are zero or do not fit an int are ignored.
func ExtractWorkItemID(text string) (int, bool) {
	for _, m := range workItemIDPattern.FindAllStringSubmatch(text, -1) {
		if id, ok := parseWorkItemID(m[1]); ok {
			return id, true
		}
	}

	return 0, false
}

// ExtractAllWorkItemIDs returns every valid reference in text, in order of
// appearance and with repeats kept.
func ExtractAllWorkItemIDs(text string) []int {
	matches := workItemIDPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		if id, ok := parseWorkItemID(m[1]); ok {
			ids = append(ids, id)
		}
	}

	return ids
}

// ExtractFromChange looks at the source branch first and falls back to the
// title.
func ExtractFromChange(c domain.Change) (int, bool) {
	if id, ok := ExtractWorkItemID(c.SourceBranch); ok {
		return id, true
	}

	return ExtractWorkItemID(c.Title)
}

func changeWorkItemIDs(c domain.Change) []int {
	if ids := ExtractAllWorkItemIDs(c.SourceBranch); len(ids) > 0 {
		return ids
	}

	return ExtractAllWorkItemIDs(c.Title)
}

func parseWorkItemID(digits string) (int, bool) {
	id, err := strconv.Atoi(digits)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
