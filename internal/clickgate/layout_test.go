package clickgate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"graphclick/internal/clickgate"
)

func TestLayoutNodeAt(t *testing.T) {
	var l clickgate.Layout
	l.Set([]clickgate.NodeBox{
		{ID: "under", X: 50, Y: 50, Width: 40, Height: 40},
		{ID: "over", X: 60, Y: 60, Width: 20, Height: 20},
		{ID: "", X: 0, Y: 0, Width: 1000, Height: 1000},
	})
	assert.Equal(t, 2, l.Len())

	tests := []struct {
		name   string
		at     clickgate.Point
		want   string
		wantOK bool
	}{
		{name: "topmost wins", at: clickgate.Point{X: 62, Y: 58}, want: "over", wantOK: true},
		{name: "lower node", at: clickgate.Point{X: 35, Y: 35}, want: "under", wantOK: true},
		{name: "edge inclusive", at: clickgate.Point{X: 70, Y: 70}, want: "over", wantOK: true},
		{name: "miss", at: clickgate.Point{X: 200, Y: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := l.NodeAt(tt.at)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayoutEmpty(t *testing.T) {
	var l clickgate.Layout
	_, ok := l.NodeAt(clickgate.Point{})
	assert.False(t, ok)
}
