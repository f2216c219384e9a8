// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// RunFile is the on-disk record of one discovery run: the planned queries
// and the merge statistics. It lets the researcher audit what a run did
// without re-running the crawler.
type RunFile struct {
	Topic   string     `yaml:"topic"`
	Queries []string   `yaml:"queries"`
	Summary RunSummary `yaml:"summary"`
}

// RunSummary stores merge statistics and a timestamp.
type RunSummary struct {
	UniquePapers      int       `yaml:"unique_papers"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	QueryErrors       []string  `yaml:"query_errors,omitempty"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteRunFile saves the run record to path.
func WriteRunFile(path, topic string, queries []string, out AggregateOutput) error {
	rf := RunFile{
		Topic:   topic,
		Queries: queries,
		Summary: RunSummary{
			UniquePapers:      len(out.Papers),
			DuplicatesRemoved: out.DupsRemoved,
			QueryErrors:       out.QueryErrors,
			Timestamp:         time.Now(),
		},
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved run record.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}
