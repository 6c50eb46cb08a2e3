package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// HistoryFileName is the run history file kept inside the repository's git directory
const HistoryFileName = "batch-push-history.yml"

// BatchRecord is the outcome of one batch within a run
type BatchRecord struct {
	Index  int    `yaml:"index"`
	Files  int    `yaml:"files"`
	Bytes  int64  `yaml:"bytes"`
	Status string `yaml:"status"`
	Step   string `yaml:"step,omitempty"`
	Error  string `yaml:"error,omitempty"`
}

// RunRecord is a snapshot of a single batch push run
type RunRecord struct {
	ID        string        `yaml:"id"`
	Timestamp string        `yaml:"timestamp"`
	Branch    string        `yaml:"branch"`
	Remote    string        `yaml:"remote"`
	CapBytes  int64         `yaml:"cap_bytes"`
	Batches   []BatchRecord `yaml:"batches"`
	Skipped   []string      `yaml:"skipped,omitempty"`
}

// RunHistory stores the history of runs, oldest first
type RunHistory struct {
	Runs []RunRecord `yaml:"runs"`
}

// NewRunRecord creates a record with a fresh ID and the current time
func NewRunRecord(cfg *Configuration) RunRecord {
	return RunRecord{
		ID:        uuid.New().String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Branch:    cfg.Branch,
		Remote:    cfg.Remote,
		CapBytes:  cfg.CapBytes,
	}
}

// GetHistoryFilePath returns the path of the history file for the given git directory
func GetHistoryFilePath(gitDir string) string {
	return filepath.Join(gitDir, HistoryFileName)
}

// LoadHistory loads the run history from file. A missing file yields an empty history.
func LoadHistory(historyPath string) (*RunHistory, error) {
	data, err := os.ReadFile(historyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &RunHistory{Runs: []RunRecord{}}, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var history RunHistory
	if err := yaml.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	if history.Runs == nil {
		history.Runs = []RunRecord{}
	}

	return &history, nil
}

// SaveHistory writes the run history to file
func SaveHistory(historyPath string, history *RunHistory) error {
	data, err := yaml.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal history to YAML: %w", err)
	}

	if err := os.WriteFile(historyPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	return nil
}

// AppendRun adds a run to the history file
func AppendRun(historyPath string, run RunRecord) error {
	history, err := LoadHistory(historyPath)
	if err != nil {
		return err
	}

	history.Runs = append(history.Runs, run)
	return SaveHistory(historyPath, history)
}
