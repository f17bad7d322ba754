package style

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestContentHeight(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{80, 24, 20},
		{10, 5, 1},
		{10, 4, 1},
		{10, 0, 1},
		{80, 50, 46},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewLayout(tt.w, tt.h).ContentHeight(), "%dx%d", tt.w, tt.h)
	}
}

func TestBarWidth(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{10, 5},   // narrower than the fixed part
		{60, 10},  // 60-26-24
		{80, 20},  // clamped
		{200, 20}, // clamped
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewLayout(tt.width, 24).BarWidth(), "width %d", tt.width)
	}
}

func TestPathWidth(t *testing.T) {
	for _, w := range []int{10, 30, 80, 200} {
		assert.GreaterOrEqual(t, NewLayout(w, 24).PathWidth(), 8, "width %d", w)
	}

	// On a wide terminal the row fills the content width exactly.
	l := NewLayout(120, 24)
	assert.Equal(t, l.ContentWidth(), l.PathWidth()+l.BarWidth()+l.rowOverhead())
}

func TestFullWidth(t *testing.T) {
	assert.Equal(t, "hi   ", FullWidth("hi", 5))
	assert.Equal(t, "hello", FullWidth("hello", 5))
	assert.Equal(t, "toolong", FullWidth("toolong", 3))
}

func TestBar(t *testing.T) {
	theme := DefaultTheme()
	assert.Empty(t, theme.Bar(0, 0.5))
	for _, ratio := range []float64{0, 0.001, 0.5, 1, 3} {
		bar := theme.Bar(10, ratio)
		assert.Equal(t, 10, lipgloss.Width(bar), "ratio %v", ratio)
	}
	assert.NotContains(t, theme.Bar(10, 0), "━")
	assert.Contains(t, theme.Bar(10, 0.001), "━")
	assert.NotContains(t, theme.Bar(4, 1), "─")
	assert.Equal(t, 4, strings.Count(theme.Bar(4, 1), "━"))
}

func TestGradientColor(t *testing.T) {
	theme := DefaultTheme()
	assert.Equal(t, theme.GradientStart, theme.GradientColor(-1))
	assert.Equal(t, theme.GradientEnd, theme.GradientColor(2))
	mid := theme.GradientColor(0.5)
	assert.NotEqual(t, theme.GradientStart, mid)
	assert.NotEqual(t, theme.GradientEnd, mid)
}
