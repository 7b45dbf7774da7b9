// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"

	"scholarship-workers/pkg/registry"
)

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "check":
		err = runCheck(os.Args[2:])
	default:
		help()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func pathFlag(fs *flag.FlagSet) *string {
	return fs.String("path", "configs/activity-registry.json", "Path to registry file")
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	path := pathFlag(fs)
	id := fs.String("id", "", "Activity ID (e.g., import-scholarships)")
	displayName := fs.String("displayName", "", "Display Name (e.g., Import Scholarships)")
	description := fs.String("description", "", "Description")
	category := fs.String("category", "", "Category (e.g., catalog)")
	taskType := fs.String("taskType", "", "Zeebe task type, defaults to the ID")
	version := fs.String("version", "1.0.0", "Version")
	status := fs.String("status", registry.StatusPlanned, "Implementation Status (planned, in-progress, completed, verified)")
	timeout := fs.String("timeout", "30s", "Job timeout")
	fs.Parse(args)

	if *id == "" || *displayName == "" || *category == "" {
		fs.Usage()
		return fmt.Errorf("id, displayName and category are required for add")
	}
	if *taskType == "" {
		*taskType = *id
	}

	reg, err := registry.LoadRegistry(*path)
	if os.IsNotExist(err) {
		reg, err = &registry.ActivityRegistry{Version: "1.0.0"}, nil
	}
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	err = reg.Add(registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		InputSchema:          map[string]interface{}{},
		OutputSchema:         map[string]interface{}{},
		ErrorCodes:           []string{},
		Timeout:              *timeout,
		Workflows:            []string{},
		Tags:                 []string{},
	})
	if err != nil {
		return err
	}
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Added activity: %s\n", *id)
	return nil
}

func runUpdate(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	path := pathFlag(fs)
	id := fs.String("id", "", "Activity ID to update")
	field := fs.String("field", "", "Field to update (status, version, etc.)")
	value := fs.String("value", "", "New value for the field")
	fs.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		fs.Usage()
		return fmt.Errorf("id, field and value are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var target *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *id {
			target = &reg.Activities[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("activity with ID %s not found", *id)
	}

	switch *field {
	case "status":
		target.ImplementationStatus = *value
	case "version":
		target.Version = *value
	case "displayName":
		target.DisplayName = *value
	case "description":
		target.Description = *value
	case "category":
		target.Category = *value
	case "taskType":
		target.TaskType = *value
	case "timeout":
		target.Timeout = *value
	case "retries":
		retries, err := strconv.Atoi(*value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		target.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", *field)
	}

	if err := reg.Validate(); err != nil {
		return fmt.Errorf("update would leave the registry invalid: %w", err)
	}
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	path := pathFlag(fs)
	fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed:\n%w", err)
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	path := pathFlag(fs)
	fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	activities := append([]registry.Activity(nil), reg.Activities...)
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Category != activities[j].Category {
			return activities[i].Category < activities[j].Category
		}
		return activities[i].TaskType < activities[j].TaskType
	})
	for _, a := range activities {
		fmt.Printf("%-14s %-32s %-12s %s\n", a.Category, a.TaskType, a.ImplementationStatus, a.Timeout)
	}
	return nil
}

// runCheck validates a variables document against an activity input schema.
func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	path := pathFlag(fs)
	taskType := fs.String("taskType", "", "Task type whose input schema to use")
	file := fs.String("file", "", "JSON file with job variables")
	fs.Parse(args)

	if *taskType == "" || *file == "" {
		fs.Usage()
		return fmt.Errorf("taskType and file are required for check")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	activity, ok := reg.Find(*taskType)
	if !ok {
		return fmt.Errorf("task type %s is not registered", *taskType)
	}
	vars, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	violations, err := activity.ValidateInput(vars)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		for _, v := range violations {
			fmt.Println(" -", v)
		}
		return fmt.Errorf("%d schema violation(s) for %s", len(violations), *taskType)
	}
	fmt.Printf("Variables match the %s input schema.\n", *taskType)
	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file
  list     List registered task types
  check    Validate job variables against an activity input schema
  help     Show this help message

Examples:
  registry-updater add -id import-scholarships -displayName "Import Scholarships" -category catalog
  registry-updater update -id import-scholarships -field status -value completed
  registry-updater validate -path configs/activity-registry.json
  registry-updater check -taskType score-scholarship-matches -file vars.json

Use 'registry-updater <command> -h' for more information about a command.`)
}
