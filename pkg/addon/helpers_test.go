package addon

import (
	"time"

	"github.com/aggrecore/core/pkg/stremio"
)

func nowForTests() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func resourcePathWithExtra() stremio.ResourcePath {
	return stremio.ResourcePath{
		Resource: "catalog",
		Type:     "movie",
		ID:       "top",
		Extra: []stremio.ExtraValue{
			{Name: "genre", Value: "Action"},
			{Name: "skip", Value: "20"},
		},
	}
}
