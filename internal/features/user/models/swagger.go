package models

// ProfileResponse wraps a profile for the API.
type ProfileResponse struct {
	Success bool     `json:"success" example:"true"`
	Profile *Profile `json:"profile"`
}
