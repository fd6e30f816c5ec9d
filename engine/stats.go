package engine

import "time"

// Stats are the engine's process-wide counters, reset only when a new
// Engine is constructed.
type Stats struct {
	AnalysisCount       int64         `json:"analysisCount"`
	TotalAnalysisTime   time.Duration `json:"totalAnalysisTime"`
	ViolationsFound     int64         `json:"violationsFound"`
	ElementsProcessed   int64         `json:"elementsProcessed"`
	AverageAnalysisTime time.Duration `json:"averageAnalysisTime"`
	CacheSize           int           `json:"cacheSize"`
	IsRunning           bool          `json:"isRunning"`
}
