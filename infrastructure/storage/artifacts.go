package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"excel_automation/domain/entities"
	"excel_automation/domain/interfaces"
)

const resultsFile = "results.json"

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

type artifactStore struct {
	dir string
}

// NewArtifactStore - creates the run directory root/runID
func NewArtifactStore(root, runID string) (interfaces.ArtifactStore, error) {
	dir := filepath.Join(root, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory: %w", err)
	}
	return &artifactStore{dir: dir}, nil
}

// Dir - returns the run directory
func (s *artifactStore) Dir() string {
	return s.dir
}

// ScreenshotPath - returns the screenshot path for a scenario page
func (s *artifactStore) ScreenshotPath(scenario string, index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-page-%d.png", slug(scenario), index))
}

// KeepVideo - moves a recorded video into the run directory
func (s *artifactStore) KeepVideo(src string) (string, error) {
	dst := filepath.Join(s.dir, filepath.Base(src))
	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}
	// Rename fails across filesystems, e.g. from a tmpfs temp dir.
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("failed to keep video: %w", err)
	}
	_ = os.Remove(src)
	return dst, nil
}

// SaveResults - writes the run summary as JSON
func (s *artifactStore) SaveResults(run entities.RunSummary) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, resultsFile), data, 0644)
}

// LoadResults - loads the run summary, empty when none was saved yet
func (s *artifactStore) LoadResults() (entities.RunSummary, error) {
	var run entities.RunSummary
	data, err := os.ReadFile(filepath.Join(s.dir, resultsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return run, nil
		}
		return run, err
	}
	if err := json.Unmarshal(data, &run); err != nil {
		return run, fmt.Errorf("failed to parse %s: %w", resultsFile, err)
	}
	return run, nil
}

func slug(name string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "scenario"
	}
	return s
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
