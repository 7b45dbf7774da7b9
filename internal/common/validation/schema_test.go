package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScholarshipSchema(t *testing.T) {
	v, err := NewScholarshipValidator("")
	require.NoError(t, err)

	tests := []struct {
		name      string
		doc       string
		wantValid bool
		wantField string
	}{
		{
			name:      "minimal record",
			doc:       `{"name": "Dell Scholars", "provider": "Dell Foundation"}`,
			wantValid: true,
		},
		{
			name: "full record",
			doc: `{"name": "Dell Scholars", "provider": "Dell Foundation", "awardAmount": 20000,
				"deadline": "2026-12-01T00:00:00Z", "competitionLevel": "high",
				"eligibility": {"academic": {"minGpa": 2.4}, "financial": {"pellRequired": true, "needLevel": "HIGH"}}}`,
			wantValid: true,
		},
		{
			name:      "missing provider",
			doc:       `{"name": "Dell Scholars"}`,
			wantField: "(root)",
		},
		{
			name:      "blank name",
			doc:       `{"name": "   ", "provider": "Dell"}`,
			wantField: "name",
		},
		{
			name:      "negative award",
			doc:       `{"name": "A", "provider": "B", "awardAmount": -5}`,
			wantField: "awardAmount",
		},
		{
			name:      "unknown competition level",
			doc:       `{"name": "A", "provider": "B", "competitionLevel": "extreme"}`,
			wantField: "competitionLevel",
		},
		{
			name:      "sat out of range",
			doc:       `{"name": "A", "provider": "B", "eligibility": {"academic": {"minSat": 1700}}}`,
			wantField: "eligibility.academic.minSat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.ValidateBytes([]byte(tt.doc))
			assert.Equal(t, tt.wantValid, res.Valid, res.GetErrorMessages())
			if tt.wantField != "" {
				assert.True(t, res.HasErrors(tt.wantField), res.GetErrorMessages())
			}
		})
	}
}

func TestValidateBytes_MalformedJSON(t *testing.T) {
	v, err := NewScholarshipValidator("")
	require.NoError(t, err)

	res := v.ValidateBytes([]byte(`{"name":`))
	assert.False(t, res.Valid)
	assert.Equal(t, "INVALID_JSON", res.Errors[0].Code)
}

func TestNewScholarshipValidator_MissingFile(t *testing.T) {
	_, err := NewScholarshipValidator("/nonexistent/schema.json")
	assert.Error(t, err)
}

func TestValidateContacts(t *testing.T) {
	assert.True(t, ValidateEmail("student@example.edu"))
	assert.False(t, ValidateEmail("student@"))
	assert.True(t, ValidatePhone("+14155550123"))
	assert.False(t, ValidatePhone("415-555-0123"))
}
