package dto

// Suggestion is a server-proposed change to one strategy parameter.
// Read-only on this side; SettingName is unique within a list.
type Suggestion struct {
	SettingName    string  `json:"setting_name"`
	CurrentValue   float64 `json:"current_value"`
	SuggestedValue float64 `json:"suggested_value"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason"`
	ImpactEstimate *string `json:"impact_estimate"`
}

type SuggestionAction string

const (
	SuggestionAccepted  SuggestionAction = "accepted"
	SuggestionDismissed SuggestionAction = "dismissed"
)
