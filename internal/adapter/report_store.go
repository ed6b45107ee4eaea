package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	m "gooze.dev/pkg/evomut/internal/model"
)

const (
	reportPrefix = "report-"
	reportSuffix = ".json"
)

// ErrNoReports is returned by LoadLatest when the report directory holds no
// reports.
var ErrNoReports = errors.New("no reports found")

// ReportStore persists run reports.
type ReportStore interface {
	// SaveReport writes report into dir and returns the created file path.
	SaveReport(dir m.Path, report m.Report) (m.Path, error)
	// LoadReport reads a single report file.
	LoadReport(path m.Path) (m.Report, error)
	// LoadLatest returns the most recent report stored in dir.
	LoadLatest(dir m.Path) (m.Report, m.Path, error)
}

// JSONReportStore stores reports as indented JSON files named
// report-<unix seconds>.json.
type JSONReportStore struct{}

// NewJSONReportStore returns a JSONReportStore.
func NewJSONReportStore() *JSONReportStore {
	return &JSONReportStore{}
}

// SaveReport implements ReportStore.
func (s *JSONReportStore) SaveReport(dir m.Path, report m.Report) (m.Path, error) {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	name := fmt.Sprintf("%s%d%s", reportPrefix, report.FinishedAt.Unix(), reportSuffix)
	path := filepath.Join(string(dir), name)

	for i := 1; fileExists(path); i++ {
		path = filepath.Join(string(dir), fmt.Sprintf("%s%d-%d%s", reportPrefix, report.FinishedAt.Unix(), i, reportSuffix))
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return m.Path(path), nil
}

// LoadReport implements ReportStore.
func (s *JSONReportStore) LoadReport(path m.Path) (m.Report, error) {
	// #nosec G304 - report path comes from the local report directory
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.Report{}, fmt.Errorf("read report: %w", err)
	}

	var report m.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return m.Report{}, fmt.Errorf("decode report %s: %w", path, err)
	}

	return report, nil
}

// LoadLatest implements ReportStore.
func (s *JSONReportStore) LoadLatest(dir m.Path) (m.Report, m.Path, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m.Report{}, "", ErrNoReports
		}

		return m.Report{}, "", fmt.Errorf("read report directory: %w", err)
	}

	var (
		latest     string
		latestInfo os.FileInfo
	)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, reportPrefix) || !strings.HasSuffix(name, reportSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if latestInfo == nil || info.ModTime().After(latestInfo.ModTime()) ||
			(info.ModTime().Equal(latestInfo.ModTime()) && name > latest) {
			latest, latestInfo = name, info
		}
	}

	if latest == "" {
		return m.Report{}, "", ErrNoReports
	}

	path := m.Path(filepath.Join(string(dir), latest))

	report, err := s.LoadReport(path)
	if err != nil {
		return m.Report{}, "", err
	}

	return report, path, nil
}

// ListReports returns the report files in dir sorted by name.
func (s *JSONReportStore) ListReports(dir m.Path) ([]m.Path, error) {
	matches, err := filepath.Glob(filepath.Join(string(dir), reportPrefix+"*"+reportSuffix))
	if err != nil {
		return nil, err
	}

	slices.Sort(matches)

	paths := make([]m.Path, 0, len(matches))
	for _, match := range matches {
		paths = append(paths, m.Path(match))
	}

	return paths, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
