// cmd/tools/worker-generator/main.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"scholarship-workers/pkg/registry"
)

const modulePath = "scholarship-workers"

// WorkerData holds data for templates
type WorkerData struct {
	Module       string
	Name         string
	PackageName  string
	TaskType     string
	Description  string
	Category     string
	Timeout      string
	ErrorCodes   []string
	InputFields  []Field
	OutputFields []Field
}

// Field is one struct field derived from a JSON schema property.
type Field struct {
	Name     string
	GoType   string
	JSONName string
	Required bool
}

func goType(details map[string]interface{}, required bool) string {
	var kinds []string
	switch t := details["type"].(type) {
	case string:
		kinds = []string{t}
	case []interface{}:
		for _, k := range t {
			if s, ok := k.(string); ok {
				kinds = append(kinds, s)
			}
		}
	}

	nullable := false
	base := ""
	for _, k := range kinds {
		if k == "null" {
			nullable = true
			continue
		}
		if base == "" {
			base = k
		}
	}

	var out string
	switch base {
	case "string":
		out = "string"
	case "integer":
		out = "int"
	case "number":
		out = "float64"
	case "boolean":
		out = "bool"
	case "object":
		return "json.RawMessage"
	case "array":
		item := "json.RawMessage"
		if items, ok := details["items"].(map[string]interface{}); ok {
			if it := goType(items, true); it != "json.RawMessage" {
				item = it
			}
		}
		return "[]" + item
	default:
		return "json.RawMessage"
	}
	if nullable || !required {
		return "*" + out
	}
	return out
}

func fieldName(prop string) string {
	if prop == "" {
		return prop
	}
	name := strings.ToUpper(prop[:1]) + prop[1:]
	for _, initialism := range []string{"Id", "Url", "Sms", "Api"} {
		if strings.HasSuffix(name, initialism) {
			name = strings.TrimSuffix(name, initialism) + strings.ToUpper(initialism)
		}
		name = strings.ReplaceAll(name, initialism+"s", strings.ToUpper(initialism)+"s")
	}
	return name
}

// schemaFields extracts sorted struct fields from a JSON schema object.
func schemaFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	required := map[string]bool{}
	if req, ok := schema["required"].([]interface{}); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	fields := make([]Field, 0, len(props))
	for prop, raw := range props {
		details, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		fields = append(fields, Field{
			Name:     fieldName(prop),
			GoType:   goType(details, required[prop]),
			JSONName: prop,
			Required: required[prop],
		})
	}
	sort.Slice(fields, func(i, j int) bool {
		if fields[i].Required != fields[j].Required {
			return fields[i].Required
		}
		return fields[i].JSONName < fields[j].JSONName
	})
	return fields
}

func usesRawJSON(fields ...[]Field) bool {
	for _, fs := range fields {
		for _, f := range fs {
			if strings.Contains(f.GoType, "json.RawMessage") {
				return true
			}
		}
	}
	return false
}

const configTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{ .Timeout }},
	}
}
`

const modelsTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/models.go
package {{ .PackageName }}
{{ if usesRawJSON .InputFields .OutputFields }}
import "encoding/json"
{{ end }}
type Input struct {
{{- range .InputFields }}
	{{ .Name }} {{ .GoType }} ` + "`json:\"{{ .JSONName }}{{ if not .Required }},omitempty{{ end }}\"`" + `
{{- end }}
}

type Output struct {
{{- range .OutputFields }}
	{{ .Name }} {{ .GoType }} ` + "`json:\"{{ .JSONName }}{{ if not .Required }},omitempty{{ end }}\"`" + `
{{- end }}
}
`

const handlerTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "{{ .Module }}/internal/common/errors"
	"{{ .Module }}/internal/common/logger"
	"{{ .Module }}/internal/common/metrics"
)

const (
	TaskType = "{{ .TaskType }}"
)

type Handler struct {
	config *Config
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Output{}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	bpmnErr := h.errors.HandleJobError(context.Background(), client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"{{ .Module }}/internal/common/logger"
)

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewZapAdapter(zaptest.NewLogger(t)))

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.NotNil(t, out)
}
`

// generate renders the worker scaffold for a into outputDir and returns the
// files written.
func generate(a *registry.Activity, outputDir string) ([]string, error) {
	data := WorkerData{
		Module:       modulePath,
		Name:         a.DisplayName,
		PackageName:  strings.ReplaceAll(a.TaskType, "-", ""),
		TaskType:     a.TaskType,
		Description:  a.Description,
		Category:     a.Category,
		Timeout:      durationLiteral(a.Timeout),
		ErrorCodes:   a.ErrorCodes,
		InputFields:  schemaFields(a.InputSchema),
		OutputFields: schemaFields(a.OutputSchema),
	}

	workerDir := filepath.Join(outputDir, a.Category, a.TaskType)
	if err := os.MkdirAll(workerDir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	funcs := template.FuncMap{"usesRawJSON": usesRawJSON}
	files := []struct {
		name string
		tmpl string
	}{
		{"config.go", configTemplate},
		{"models.go", modelsTemplate},
		{"handler.go", handlerTemplate},
		{"handler_test.go", testTemplate},
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(workerDir, f.name)
		if _, err := os.Stat(path); err == nil {
			return written, fmt.Errorf("%s already exists", path)
		}

		tmpl, err := template.New(f.name).Funcs(funcs).Parse(f.tmpl)
		if err != nil {
			return written, fmt.Errorf("parse template %s: %w", f.name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return written, fmt.Errorf("execute template %s: %w", f.name, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return written, fmt.Errorf("format %s: %w", f.name, err)
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// durationLiteral turns a registry timeout such as "2m" or "15s" into a Go
// duration expression.
func durationLiteral(timeout string) string {
	switch {
	case timeout == "":
		return "30 * time.Second"
	case strings.HasSuffix(timeout, "ms"):
		return strings.TrimSuffix(timeout, "ms") + " * time.Millisecond"
	case strings.HasSuffix(timeout, "s"):
		return strings.TrimSuffix(timeout, "s") + " * time.Second"
	case strings.HasSuffix(timeout, "m"):
		return strings.TrimSuffix(timeout, "m") + " * time.Minute"
	default:
		return "30 * time.Second"
	}
}

func main() {
	taskType := flag.String("activity", "", "Task type from the registry (e.g., import-scholarships)")
	outputDir := flag.String("output", "./internal/workers/", "Output directory for the generated worker")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	flag.Parse()

	if *taskType == "" {
		fmt.Println("Usage: worker-generator --activity <task-type> [--output <dir>] [--registry <path>]")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}
	activity, ok := reg.Find(*taskType)
	if !ok {
		fmt.Printf("Activity '%s' not found in registry %s\n", *taskType, *registryPath)
		os.Exit(1)
	}

	files, err := generate(activity, *outputDir)
	for _, f := range files {
		fmt.Printf("Generated %s\n", f)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement execute in handler.go\n")
	fmt.Printf("  2. Add a factory in cmd/worker-manager/main.go\n")
	fmt.Printf("  3. Add the worker to configs/config.yaml\n")
}
