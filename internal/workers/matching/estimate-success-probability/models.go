// internal/workers/matching/estimate-success-probability/models.go
package estimatesuccessprobability

type Input struct {
	EssayQuality     *float64 `json:"essayQuality"`
	ProfileStrength  *float64 `json:"profileStrength,omitempty"`
	MatchScore       *float64 `json:"matchScore,omitempty"`
	CompetitionLevel *string  `json:"competitionLevel,omitempty"`
}

type Output struct {
	Probability           float64 `json:"probability"`
	CompetitionLevel      string  `json:"competitionLevel"`
	CompetitionMultiplier float64 `json:"competitionMultiplier"`
	UsingDefaultProfile   bool    `json:"usingDefaultProfile"`
	UsingDefaultMatch     bool    `json:"usingDefaultMatch"`
}
