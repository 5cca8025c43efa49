package httpmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                "/",
		"/":               "/",
		"/albums":         "/albums",
		"/album/42":       "/album/{id}",
		"/album/42/edit":  "/album/{id}/edit",
		"/user/7/delete":  "/user/{id}/delete",
		"/album/latest":   "/album/latest",
		"/album/4a2/edit": "/album/4a2/edit",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePath(in), in)
	}
}
