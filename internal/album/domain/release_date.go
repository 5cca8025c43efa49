package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only format release dates are stored in.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("unrecognized date")

var acceptedLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ReleaseDate is what callers hand the album service: either a structured
// date or a string that still has to be parsed. Normalize returns the stored
// YYYY-MM-DD form, or "" for no date.
type ReleaseDate interface {
	Normalize() (string, error)
}

type Date time.Time

func (d Date) Normalize() (string, error) {
	t := time.Time(d)
	if t.IsZero() {
		return "", nil
	}
	return t.Format(DateLayout), nil
}

type DateString string

func (s DateString) Normalize() (string, error) {
	value := strings.TrimSpace(string(s))
	if value == "" {
		return "", nil
	}

	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DateLayout), nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// NormalizeReleaseDate treats a nil date as "no date".
func NormalizeReleaseDate(d ReleaseDate) (string, error) {
	if d == nil {
		return "", nil
	}
	return d.Normalize()
}
