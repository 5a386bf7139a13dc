package dto

// SettingsPatch carries only the keys being changed; upstream applies
// partial-field update semantics.
type SettingsPatch map[string]float64

type ThemePreference struct {
	Mode string `json:"mode" validate:"required,oneof=light dark"`
}

// Requests bound from the dashboard's own HTTP API.

type ToggleRequest struct {
	SettingName string `json:"setting_name" validate:"required"`
}

type DismissRequest struct {
	SettingName string `json:"setting_name" validate:"required"`
}

type TrialRequest struct {
	Days     int    `json:"days,omitempty"`
	Strategy string `json:"strategy,omitempty"`
}
