package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/okian/courtstats/internal/domain/types"
)

// Output formats for report results.
const (
	formatTable = "table"
	formatJSON  = "json"
)

func render(w io.Writer, format string, result any) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	header, rows, took, err := tabulate(result)
	if err != nil {
		return err
	}
	return writeTable(w, header, rows, fmt.Sprintf("%d rows in %d ms", len(rows), took))
}

// tabulate flattens a report response into table cells.
func tabulate(result any) (header []string, rows [][]string, tookMs int64, err error) {
	switch r := result.(type) {
	case types.Response[types.SurfaceWinRate]:
		header = []string{"PLAYER", "NAME", "COUNTRY", "SURFACE", "MATCHES", "WINS", "WIN%"}
		for _, s := range r.Stats {
			rows = append(rows, []string{
				s.PlayerID, s.Name, s.Country, s.Surface,
				strconv.Itoa(s.TotalMatches), strconv.Itoa(s.Wins), f1(s.WinPercentage),
			})
		}
		return header, rows, r.ExecutionTimeMs, nil

	case types.Response[types.SurfaceDuration]:
		header = []string{"SURFACE", "MATCHES", "AVG", "MIN", "MAX", "BUCKETS"}
		for _, s := range r.Stats {
			rows = append(rows, []string{
				s.Surface, strconv.Itoa(s.TotalMatches), strconv.Itoa(s.AverageDuration),
				strconv.Itoa(s.MinDuration), strconv.Itoa(s.MaxDuration), buckets(s.DurationBuckets),
			})
		}
		return header, rows, r.ExecutionTimeMs, nil

	case types.Response[types.PlayerPerformance]:
		header = []string{"PLAYER", "NAME", "RANK", "MATCHES", "WINS", "WIN%", "ACES", "DF", "ACES/M", "DF/M", "1ST%", "BP CONV"}
		for _, s := range r.Stats {
			rows = append(rows, []string{
				s.PlayerID, s.Name, strconv.Itoa(s.Rank), strconv.Itoa(s.TotalMatches), strconv.Itoa(s.Wins),
				f1(s.WinPercentage), strconv.Itoa(s.TotalAces), strconv.Itoa(s.TotalDoubleFaults),
				f1(s.AcesPerMatch), f1(s.DoubleFaultsPerMatch), f1(s.AvgFirstServePercentage), f1(s.AvgBreakPointsConverted),
			})
		}
		return header, rows, r.ExecutionTimeMs, nil

	case types.Response[types.TournamentSummary]:
		header = []string{"TOURNAMENT", "NAME", "LOCATION", "CATEGORY", "SURFACE", "PLAYERS", "MATCHES"}
		for _, s := range r.Stats {
			rows = append(rows, []string{
				s.TournamentID, s.Name, s.Location, s.Category, s.Surface,
				strconv.Itoa(s.PlayerCount), strconv.Itoa(s.MatchCount),
			})
		}
		return header, rows, r.ExecutionTimeMs, nil

	case types.Response[types.YearSurfaceCount]:
		header = []string{"YEAR", "SURFACE", "MATCHES", "AVG DURATION"}
		for _, s := range r.Stats {
			rows = append(rows, []string{
				strconv.Itoa(s.Year), s.Surface, strconv.Itoa(s.MatchCount), strconv.Itoa(s.AverageDuration),
			})
		}
		return header, rows, r.ExecutionTimeMs, nil

	default:
		return nil, nil, 0, fmt.Errorf("cannot render %T as a table", result)
	}
}

func writeTable(w io.Writer, header []string, rows [][]string, footer string) error {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	table.Header(cells(header)...)
	for _, row := range rows {
		if err := table.Append(cells(row)...); err != nil {
			return fmt.Errorf("render row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	if footer != "" {
		fmt.Fprintf(w, "(%s)\n", footer)
	}
	return nil
}

func cells(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func buckets(bs []types.DurationBucket) string {
	var out string
	for i, b := range bs {
		if i > 0 {
			out += " "
		}
		if b.Upper == 0 {
			out += fmt.Sprintf("%d+:%d", b.Lower, b.Count)
			continue
		}
		out += fmt.Sprintf("%d-%d:%d", b.Lower, b.Upper, b.Count)
	}
	return out
}

func f1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
