// Package storage keeps diet plans as JSON files for the CLI.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"ai-diet-planner/internal/dietplan"
)

// ErrNotFound is returned by Load when no plan file has the given name.
var ErrNotFound = errors.New("plan file not found")

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// PlanFile is the on-disk form of a stored plan.
type PlanFile struct {
	Name    string           `json:"name"`
	RawText string           `json:"raw_text"`
	Profile dietplan.Profile `json:"profile"`
	SavedAt time.Time        `json:"saved_at"`
}

// PlanStore provides a file-based storage for raw diet plans.
type PlanStore struct {
	basePath string
}

// NewPlanStore creates a new PlanStore and ensures the base directory exists.
func NewPlanStore(basePath string) (*PlanStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &PlanStore{basePath: basePath}, nil
}

func (s *PlanStore) path(name string) (string, error) {
	if !validName.MatchString(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid plan name %q", name)
	}
	return filepath.Join(s.basePath, name+".json"), nil
}

// Save stores a plan under name, replacing any previous file with that name.
func (s *PlanStore) Save(name, raw string, profile dietplan.Profile) error {
	filePath, err := s.path(name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(PlanFile{
		Name:    name,
		RawText: raw,
		Profile: profile,
		SavedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	// Replace atomically via rename.
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		return fmt.Errorf("failed to replace plan file: %w", err)
	}
	return nil
}

// Load retrieves the plan stored under name.
func (s *PlanStore) Load(name string) (*PlanFile, error) {
	filePath, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var plan PlanFile
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &plan, nil
}

// Exists checks if a plan file with the given name exists.
func (s *PlanStore) Exists(name string) bool {
	filePath, err := s.path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(filePath)
	return err == nil
}

// List returns the names of all stored plans in lexical order.
func (s *PlanStore) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list plan files: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the plan stored under name. Removing a missing plan is not an error.
func (s *PlanStore) Remove(name string) error {
	filePath, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove plan file %s: %w", filePath, err)
	}
	return nil
}
