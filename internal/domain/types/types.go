// Package types contains the report row types and the response envelope
// returned by the aggregation engine.
package types

// Response is the envelope every report returns.
type Response[T any] struct {
	Stats           []T   `json:"stats"`
	ExecutionTimeMs int64 `json:"executionTimeMs"`
	Count           int   `json:"count"`
}

// NewResponse wraps rows, normalising nil to an empty slice so the JSON
// form is always an array.
func NewResponse[T any](rows []T, tookMs int64) Response[T] {
	if rows == nil {
		rows = []T{}
	}
	return Response[T]{Stats: rows, ExecutionTimeMs: tookMs, Count: len(rows)}
}

// SurfaceWinRate is a row of the per-player win percentage by surface report.
type SurfaceWinRate struct {
	PlayerID      string  `json:"playerId"`
	Name          string  `json:"name"`
	Country       string  `json:"country"`
	Surface       string  `json:"surface"`
	TotalMatches  int     `json:"totalMatches"`
	Wins          int     `json:"wins"`
	WinPercentage float64 `json:"winPercentage"`
}

// DurationBucket counts matches whose duration falls in [Lower, Upper).
// Upper is zero for the open-ended last bucket.
type DurationBucket struct {
	Lower int `json:"lower"`
	Upper int `json:"upper,omitempty"`
	Count int `json:"count"`
}

// SurfaceDuration is a row of the match duration by surface report.
type SurfaceDuration struct {
	Surface         string           `json:"surface"`
	AverageDuration int              `json:"averageDuration"`
	MinDuration     int              `json:"minDuration"`
	MaxDuration     int              `json:"maxDuration"`
	TotalMatches    int              `json:"totalMatches"`
	DurationBuckets []DurationBucket `json:"durationBuckets"`
}

// PlayerPerformance is a row of the per-player performance report.
type PlayerPerformance struct {
	PlayerID                string  `json:"playerId"`
	Name                    string  `json:"name"`
	Country                 string  `json:"country"`
	Rank                    int     `json:"rank"`
	TotalMatches            int     `json:"totalMatches"`
	Wins                    int     `json:"wins"`
	WinPercentage           float64 `json:"winPercentage"`
	TotalAces               int     `json:"totalAces"`
	TotalDoubleFaults       int     `json:"totalDoubleFaults"`
	AcesPerMatch            float64 `json:"acesPerMatch"`
	DoubleFaultsPerMatch    float64 `json:"doubleFaultsPerMatch"`
	AvgFirstServePercentage float64 `json:"avgFirstServePercentage"`
	AvgBreakPointsConverted float64 `json:"avgBreakPointsConverted"`
}

// TournamentSummary is a row of the tournament statistics report.
// PlayerCount is the roster size, not the number of distinct participants.
type TournamentSummary struct {
	TournamentID string `json:"tournamentId"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	Category     string `json:"category"`
	Surface      string `json:"surface"`
	PlayerCount  int    `json:"playerCount"`
	MatchCount   int    `json:"matchCount"`
}

// YearSurfaceCount is a row of the matches by year and surface report.
type YearSurfaceCount struct {
	Year            int    `json:"year"`
	Surface         string `json:"surface"`
	MatchCount      int    `json:"matchCount"`
	AverageDuration int    `json:"averageDuration"`
}
