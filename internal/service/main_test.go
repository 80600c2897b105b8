package service

import (
	"io"
	"log/slog"
	"strconv"

	"github.com/usira-okay/release-kit/internal/config"
	"github.com/usira-okay/release-kit/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func resolverConfig() config.Resolver {
	return config.Resolver{
		TopLevelTypes: []string{"User Story", "Feature", "Epic"},
		MaxDepth:      10,
		Concurrency:   4,
	}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func item(id int, itemType, team string, parent *int) *domain.PlanningItem {
	return &domain.PlanningItem{
		ID:        id,
		Title:     itemType + " title",
		Type:      itemType,
		State:     "Active",
		URL:       "https://dev.azure.com/org/_workitems/edit/" + strconv.Itoa(id),
		TeamPath:  team,
		ParentID:  parent,
		IsSuccess: true,
	}
}
