package models

// Professional is static directory data, never persisted.
type Professional struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Rate           string `json:"rate"`
	Availability   string `json:"availability"`
}
