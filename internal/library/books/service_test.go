package books

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResizeAvailable(t *testing.T) {
	tests := []struct {
		name         string
		oldStock     int
		oldAvailable int
		newStock     int
		want         int
	}{
		{"grow keeps borrowed count", 5, 3, 8, 6},
		{"shrink keeps borrowed count", 5, 3, 4, 2},
		{"unchanged", 5, 3, 5, 3},
		{"shrink below borrowed clamps to zero", 5, 2, 3, 0},
		{"shrink to exactly borrowed", 5, 2, 4, 1},
		{"all borrowed then grow", 3, 0, 5, 2},
		{"stock down to zero", 5, 5, 0, 0},
		{"empty to stocked", 0, 0, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResizeAvailable(tt.oldStock, tt.oldAvailable, tt.newStock))
		})
	}
}
