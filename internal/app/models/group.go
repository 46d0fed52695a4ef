package models

import "github.com/google/uuid"

// Group defines a cohort of students led by one catechist
type Group struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CatechistID *uuid.UUID `json:"catechistId,omitempty"`

	// Relation, populated by listings
	Catechist *UserSummary `json:"catechist,omitempty"`
}

// GroupSummary is the slice of a group joined into student listings.
type GroupSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
