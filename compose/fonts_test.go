package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseFontName(t *testing.T) {
	cases := []struct {
		family         FontFamily
		bold, italic   bool
		want           string
	}{
		{Helvetica, false, false, "Helvetica"},
		{Helvetica, true, false, "Helvetica-Bold"},
		{Helvetica, false, true, "Helvetica-Oblique"},
		{Helvetica, true, true, "Helvetica-BoldOblique"},
		{Times, false, false, "Times-Roman"},
		{Times, true, true, "Times-BoldItalic"},
		{Courier, true, false, "Courier-Bold"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, BaseFontName(c.family, c.bold, c.italic))
	}
}

func TestCharWidthCourierIsMonospace(t *testing.T) {
	w1 := CharWidth(Courier, false, false, 'i', 12)
	w2 := CharWidth(Courier, false, false, 'm', 12)
	assert.Equal(t, w1, w2)
	assert.InDelta(t, 600.0/1000*12, w1, 0.0001)
}

func TestCharWidthScalesWithSize(t *testing.T) {
	w10 := CharWidth(Helvetica, false, false, 'A', 10)
	w20 := CharWidth(Helvetica, false, false, 'A', 20)
	assert.InDelta(t, w10*2, w20, 0.0001)
}

func TestStringWidthSumsCharWidths(t *testing.T) {
	total := StringWidth(Helvetica, false, false, "AB", 10)
	a := CharWidth(Helvetica, false, false, 'A', 10)
	b := CharWidth(Helvetica, false, false, 'B', 10)
	assert.InDelta(t, a+b, total, 0.0001)
}

func TestCharWidthOutOfRangeFallsBack(t *testing.T) {
	w := CharWidth(Helvetica, true, true, 0, 12)
	assert.Greater(t, w, 0.0)
}
