package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activity(id string) Activity {
	return Activity{
		ID:                   id,
		DisplayName:          "Activity " + id,
		Category:             "matching",
		TaskType:             id,
		ImplementationStatus: StatusCompleted,
		Timeout:              "30s",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"studentId"},
			"properties": map[string]interface{}{
				"studentId": map[string]interface{}{"type": "string", "minLength": 1},
			},
		},
	}
}

func TestRegistry_SaveLoadFind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity-registry.json")
	reg := &ActivityRegistry{Version: "1.0.0"}
	require.NoError(t, reg.Add(activity("score-scholarship-matches")))
	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.LastUpdated)

	a, ok := loaded.Find("score-scholarship-matches")
	require.True(t, ok)
	assert.Equal(t, "Activity score-scholarship-matches", a.DisplayName)

	_, ok = loaded.Find("send-fax")
	assert.False(t, ok)
}

func TestRegistry_AddRejectsDuplicates(t *testing.T) {
	reg := &ActivityRegistry{}
	require.NoError(t, reg.Add(activity("a")))
	assert.Error(t, reg.Add(activity("a")))

	other := activity("b")
	other.TaskType = "a"
	assert.ErrorContains(t, reg.Add(other), "task type a already registered")
}

func TestRegistry_Validate(t *testing.T) {
	assert.ErrorContains(t, (&ActivityRegistry{}).Validate(), "no activities")

	good := &ActivityRegistry{Activities: []Activity{activity("a"), activity("b")}}
	assert.NoError(t, good.Validate())

	bad := activity("c")
	bad.DisplayName = ""
	bad.ImplementationStatus = "shipped"
	bad.Timeout = "soon"
	bad.InputSchema = map[string]interface{}{"type": 12}
	dup := activity("a")

	err := (&ActivityRegistry{Activities: []Activity{activity("a"), bad, dup}}).Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "missing required field: DisplayName")
	assert.Contains(t, msg, `unknown status "shipped"`)
	assert.Contains(t, msg, "activity c timeout")
	assert.Contains(t, msg, "activity c input schema")
	assert.Contains(t, msg, "duplicate activity ID: a")
}

func TestActivity_ValidateInput(t *testing.T) {
	a := activity("score-scholarship-matches")

	violations, err := a.ValidateInput([]byte(`{"studentId":"stu-1"}`))
	require.NoError(t, err)
	assert.Empty(t, violations)

	violations, err = a.ValidateInput([]byte(`{"studentId":""}`))
	require.NoError(t, err)
	assert.Len(t, violations, 1)

	open := Activity{ID: "x"}
	violations, err = open.ValidateInput([]byte(`{}`))
	require.NoError(t, err)
	assert.Nil(t, violations)
}

func TestLoadRegistry_ShippedFile(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	for _, taskType := range []string{
		"calculate-profile-strength",
		"score-scholarship-matches",
		"estimate-success-probability",
		"detect-duplicate-scholarships",
		"import-scholarships",
		"notify-priority-matches",
	} {
		_, ok := reg.Find(taskType)
		assert.True(t, ok, taskType)
	}
}
