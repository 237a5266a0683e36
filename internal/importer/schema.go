// Package importer reads bulk task files so a backlog of standalone tasks can
// be loaded in one step.
package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImportSchema is the top-level JSON structure for a task import.
type ImportSchema struct {
	Defaults *DefaultsImport `json:"defaults,omitempty"`
	Tasks    []TaskImport    `json:"tasks"`
}

// DefaultsImport holds values that cascade to every task lacking its own.
type DefaultsImport struct {
	AssignedTo string `json:"assigned_to,omitempty"`
}

// TaskImport defines one task in the import file. CompletedAt lets history be
// imported so on-time scoring covers work done before the import.
type TaskImport struct {
	Ref         string  `json:"ref,omitempty"`
	Title       string  `json:"title"`
	AssignedTo  string  `json:"assigned_to,omitempty"`
	DueDate     string  `json:"due_date"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

// assignee falls back to the file-wide default when the task names nobody.
func (ti TaskImport) assignee(def string) string {
	if ti.AssignedTo != "" {
		return ti.AssignedTo
	}
	return def
}

// LoadImportSchema reads and parses a task import JSON file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
