// internal/workers/profile/calculate-profile-strength/models.go
package calculateprofilestrength

import (
	"scholarship-workers/internal/engine/completeness"
	"scholarship-workers/internal/engine/strength"
	"scholarship-workers/internal/models"
)

// Input carries either the saved profile itself or the id to load it by.
type Input struct {
	StudentID string          `json:"studentId"`
	Profile   *models.Profile `json:"profile,omitempty"`
}

type Output struct {
	StudentID            string                      `json:"studentId"`
	CompletionPercentage int                         `json:"completionPercentage"`
	MissingRequired      []string                    `json:"missingRequired"`
	MissingRecommended   []completeness.MissingField `json:"missingRecommended"`
	StrengthBreakdown    strength.Breakdown          `json:"strengthBreakdown"`
	Recommendations      []strength.Recommendation   `json:"recommendations"`
	ScoresSaved          bool                        `json:"scoresSaved"`
}
