package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "release_kit_pipeline_runs_total",
			Help: "Pipeline stage executions by outcome",
		},
		[]string{"stage", "status"},
	)

	resolutionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "release_kit_resolution_outcomes_total",
			Help: "Work item resolutions by classified outcome",
		},
		[]string{"status"},
	)

	reportEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "release_kit_report_entries",
			Help: "Entries in the last consolidated report",
		},
	)
)
