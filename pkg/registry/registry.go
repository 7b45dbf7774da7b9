// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry as indented JSON, creating the directory when
// needed.
func (r *ActivityRegistry) Save(path string) error {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Find returns the activity bound to taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Add appends a new activity. IDs and task types must stay unique.
func (r *ActivityRegistry) Add(a Activity) error {
	for _, existing := range r.Activities {
		if existing.ID == a.ID {
			return fmt.Errorf("activity with ID %s already exists", a.ID)
		}
		if existing.TaskType == a.TaskType {
			return fmt.Errorf("task type %s already registered by %s", a.TaskType, existing.ID)
		}
	}
	r.Activities = append(r.Activities, a)
	return nil
}

// Validate checks required fields, uniqueness, statuses and that every input
// schema compiles. All problems are reported together.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return errors.New("registry contains no activities")
	}

	var errs []error
	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, a := range r.Activities {
		switch {
		case a.ID == "":
			errs = append(errs, errors.New("activity missing required field: ID"))
			continue
		case ids[a.ID]:
			errs = append(errs, fmt.Errorf("duplicate activity ID: %s", a.ID))
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			errs = append(errs, fmt.Errorf("activity %s missing required field: DisplayName", a.ID))
		}
		if a.Category == "" {
			errs = append(errs, fmt.Errorf("activity %s missing required field: Category", a.ID))
		}
		if a.TaskType == "" {
			errs = append(errs, fmt.Errorf("activity %s missing required field: TaskType", a.ID))
		} else if taskTypes[a.TaskType] {
			errs = append(errs, fmt.Errorf("duplicate task type: %s", a.TaskType))
		}
		taskTypes[a.TaskType] = true

		if a.ImplementationStatus != "" && !validStatuses[a.ImplementationStatus] {
			errs = append(errs, fmt.Errorf("activity %s has unknown status %q", a.ID, a.ImplementationStatus))
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				errs = append(errs, fmt.Errorf("activity %s timeout: %w", a.ID, err))
			}
		}
		if len(a.InputSchema) > 0 {
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema)); err != nil {
				errs = append(errs, fmt.Errorf("activity %s input schema: %w", a.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ValidateInput checks job variables against the activity input schema and
// returns one message per violation. An activity without a schema accepts
// anything.
func (a *Activity) ValidateInput(variables []byte) ([]string, error) {
	if len(a.InputSchema) == 0 {
		return nil, nil
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema))
	if err != nil {
		return nil, fmt.Errorf("compile input schema for %s: %w", a.ID, err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(variables))
	if err != nil {
		return nil, err
	}
	var violations []string
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return violations, nil
}
