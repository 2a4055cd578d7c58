package domain

import "time"

// CategoryRecord is a category as the backend reports it.
type CategoryRecord struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CategoryDraft is the payload for creating a category.
type CategoryDraft struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      *bool  `json:"active,omitempty"`
}

// CategoryPatch is a partial update; nil fields are omitted.
type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// Empty reports whether the patch carries no changes.
func (p CategoryPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Active == nil
}
