package domain

import "time"

type ID int64

// Album fields that are optional in storage use the empty string for NULL.
type Album struct {
	ID          ID
	Title       string
	Description string
	ReleaseDate string
	CoverImage  string
	CreatedAt   time.Time
}

func (a Album) HasReleaseDate() bool {
	return a.ReleaseDate != ""
}
