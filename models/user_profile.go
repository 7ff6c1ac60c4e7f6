package models

import "strings"

// UserProfile is the read-only view of a user supplied by the profile store.
type UserProfile struct {
	ID             string `json:"id" validate:"required"`
	Name           string `json:"name,omitempty"`
	Photo          string `json:"photo,omitempty"`          // S3 key or absolute URL
	University     string `json:"university,omitempty"`     // academic attributes
	Major          string `json:"major,omitempty"`
	GraduationYear int    `json:"graduationYear,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Gender         string `json:"gender,omitempty"`
}

// Eligible reports whether the profile may appear in a swipe feed.
func (p UserProfile) Eligible() bool {
	return strings.TrimSpace(p.Name) != ""
}

// DisplayName falls back to AnonymousSenderName for unnamed profiles.
func (p UserProfile) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return AnonymousSenderName
}

// ProfileSummary is the slice of a profile shown next to a thread.
type ProfileSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

// Summary returns the thread-list view of p.
func (p UserProfile) Summary() ProfileSummary {
	return ProfileSummary{ID: p.ID, Name: p.DisplayName(), Photo: p.Photo}
}
