package models

import "time"

// POI is a point of interest owned by exactly one user. CreatedBy is assigned
// server-side from the authenticated caller and never changes afterwards.
type POI struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	CreatedBy         int       `json:"created_by"`
	CreatedByUsername string    `json:"created_by_username"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
