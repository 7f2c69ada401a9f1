package models

// FeatureFlag is a runtime flag and its value. Flags still on their default
// have no reason or updatedAt.
type FeatureFlag struct {
	Key         string      `json:"key"`
	Value       interface{} `json:"value"`
	Description string      `json:"description,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	UpdatedAt   *Timestamp  `json:"updatedAt,omitempty"`
}

// FeatureFlagList is the list of all flags.
type FeatureFlagList struct {
	Items []FeatureFlag `json:"items"`
}

// FeatureFlagUpdate is a single flag change.
type FeatureFlagUpdate struct {
	Key   string      `json:"key" validate:"required,max=100"`
	Value interface{} `json:"value"`
}

// FeatureFlagUpdateRequest is the body of PUT /v1/admin/feature-flags.
type FeatureFlagUpdateRequest struct {
	Updates []FeatureFlagUpdate `json:"updates" validate:"required,min=1,dive"`
	Reason  string              `json:"reason" validate:"required,max=500"`
}
