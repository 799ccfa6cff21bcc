package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"netpulse-lab/internal/domain/models"
	"netpulse-lab/pkg/logger"
)

// Writer writes the four export tables as CSV files for the dashboard
// import step. Boolean flags are rendered as 1/0 because that is what the
// BI tooling expects for measure columns.
type Writer struct {
	dir    string
	logger *logger.Logger
}

// NewWriter creates a Writer targeting the given directory.
func NewWriter(dir string, log *logger.Logger) *Writer {
	return &Writer{
		dir:    dir,
		logger: log.WithComponent("csv-export"),
	}
}

// WriteBundle writes all four tables and returns the file paths.
func (w *Writer) WriteBundle(b *models.ExportBundle) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export dir: %w", err)
	}

	paths := make([]string, 0, 4)
	for _, t := range []struct {
		name  string
		write func(*csv.Writer) error
	}{
		{models.TableNetworkEvents, func(cw *csv.Writer) error { return writeEvents(cw, b.NetworkEvents) }},
		{models.TableOperatorMetrics, func(cw *csv.Writer) error { return writeOperators(cw, b.OperatorMetrics) }},
		{models.TableRegionalSummary, func(cw *csv.Writer) error { return writeRegions(cw, b.RegionalSummary) }},
		{models.TableTowerPerformance, func(cw *csv.Writer) error { return writeTowers(cw, b.TowerPerformance) }},
	} {
		path := filepath.Join(w.dir, t.name+".csv")
		if err := w.writeFile(path, t.write); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	w.logger.Info().
		Str("dir", w.dir).
		Str("run_id", b.RunID.String()).
		Int("tables", len(paths)).
		Msg("wrote dashboard export files")

	return paths, nil
}

func (w *Writer) writeFile(path string, write func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := write(cw); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

func writeEvents(cw *csv.Writer, events []models.EventExport) error {
	header := []string{
		"timestamp", "tower_id", "region", "operator_id", "issue_type",
		"has_issue", "is_critical", "response_time_min", "resolution_time_min",
		"network_uptime_pct", "data_throughput_mbps", "performance_score",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range events {
		record := []string{
			e.Timestamp.Format(time.RFC3339),
			e.TowerID,
			e.Region,
			e.OperatorID,
			string(e.IssueType),
			flag(e.HasIssue),
			flag(e.IsCritical),
			num(e.ResponseTimeMin),
			num(e.ResolutionTimeMin),
			num(e.NetworkUptimePct),
			num(e.DataThroughputMbps),
			num(e.PerformanceScore),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeOperators(cw *csv.Writer, operators []models.OperatorMetrics) error {
	header := []string{
		"operator_id", "total_issues", "total_events",
		"avg_response_time", "avg_resolution_time", "efficiency_score",
		"total_complaints", "performance_score",
		"detection_rate", "performance_improvement_pct",
		"efficiency_rank", "performance_rank",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, m := range operators {
		record := []string{
			m.OperatorID,
			strconv.Itoa(m.TotalIssues),
			strconv.Itoa(m.TotalEvents),
			num(m.AvgResponseTime),
			num(m.AvgResolutionTime),
			num(m.EfficiencyScore),
			strconv.Itoa(m.TotalComplaints),
			num(m.PerformanceScore),
			num(m.DetectionRate),
			num(m.PerformanceImprovementPct),
			strconv.Itoa(m.EfficiencyRank),
			strconv.Itoa(m.PerformanceRank),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeRegions(cw *csv.Writer, regions []models.RegionalSummary) error {
	header := []string{
		"region", "total_issues", "total_events",
		"avg_uptime", "avg_performance", "total_complaints",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range regions {
		record := []string{
			s.Region,
			strconv.Itoa(s.TotalIssues),
			strconv.Itoa(s.TotalEvents),
			num(s.AvgUptime),
			num(s.AvgPerformance),
			strconv.Itoa(s.TotalComplaints),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeTowers(cw *csv.Writer, towers []models.TowerMetrics) error {
	header := []string{"tower_id", "total_issues", "avg_uptime", "performance_score"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, t := range towers {
		record := []string{
			t.TowerID,
			strconv.Itoa(t.TotalIssues),
			num(t.AvgUptime),
			num(t.PerformanceScore),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
