package models

import "time"

// ProgramRule describes how points are awarded under a loyalty program.
type ProgramRule struct {
	ID             string     `json:"id"`
	ProgramID      string     `json:"program_id"`
	ProgramName    string     `json:"program_name"`
	RuleName       string     `json:"rule_name"`
	ConditionType  string     `json:"condition_type"`
	ConditionValue string     `json:"condition_value"`
	Multiplier     float64    `json:"multiplier"`
	PointsAwarded  int        `json:"points_awarded"`
	EffectiveFrom  time.Time  `json:"effective_from"`
	EffectiveTo    *time.Time `json:"effective_to,omitempty"`
}
