package qpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermphase/internal/sim"
)

func TestFormatKeyWidth(t *testing.T) {
	tests := []struct {
		key, width int
		want       string
	}{
		{5, 4, "0101"},
		{0, 4, "0000"},
		{15, 4, "1111"},
		{0, 1, "0"},
		{1, 1, "1"},
		{4, 3, "100"},
	}
	for _, tt := range tests {
		got := FormatKey(tt.key, tt.width)
		assert.Equal(t, tt.want, got)
		assert.Len(t, got, tt.width)
	}
}

func TestDecode(t *testing.T) {
	h, err := Decode(sim.Counts{0: 3, 5: 10, 15: 1}, 4)
	require.NoError(t, err)
	assert.Equal(t, Histogram{"0000": 3, "0101": 10, "1111": 1}, h)
	assert.Equal(t, 14, h.Total())

	_, err = Decode(sim.Counts{16: 1}, 4)
	assert.ErrorIs(t, err, ErrDecode)
	_, err = Decode(sim.Counts{-1: 1}, 4)
	assert.ErrorIs(t, err, ErrDecode)
	_, err = Decode(sim.Counts{0: 1}, 0)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestBinaryFraction(t *testing.T) {
	tests := []struct {
		bits string
		want float64
	}{
		{"100", 0.5},
		{"001", 0.125},
		{"0101", 0.3125},
		{"111", 0.875},
		{"0", 0},
		{"", 0},
	}
	for _, tt := range tests {
		got, err := BinaryFraction(tt.bits)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.bits)
	}

	_, err := BinaryFraction("10a")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestNearest(t *testing.T) {
	assert.Equal(t, "0101", Nearest(0.3, 4))
	assert.Equal(t, "100", Nearest(0.5, 3))
	assert.Equal(t, "000", Nearest(0.99, 3))
	assert.Equal(t, "111", Nearest(-0.1, 3))
}

func TestSortedAndMode(t *testing.T) {
	h := Histogram{"01": 5, "10": 20, "00": 5, "11": 1}
	bins := h.Sorted()
	require.Len(t, bins, 4)
	assert.Equal(t, "10", bins[0].Outcome)
	assert.Equal(t, "00", bins[1].Outcome)
	assert.Equal(t, "01", bins[2].Outcome)
	assert.Equal(t, "11", bins[3].Outcome)
	assert.Equal(t, 0.25, bins[2].Phase)

	mode, ok := h.Mode()
	require.True(t, ok)
	assert.Equal(t, 20, mode.Count)

	_, ok = Histogram{}.Mode()
	assert.False(t, ok)
}

func TestEstimate(t *testing.T) {
	est, ok := Histogram{"100": 1000}.Estimate()
	require.True(t, ok)
	assert.Equal(t, "100", est.Mode)
	assert.Equal(t, 0.5, est.Phase)
	assert.Equal(t, 1.0, est.ModeFrequency)
	assert.InDelta(t, 0.5, est.Mean, 1e-12)
	assert.InDelta(t, 0, est.StdDev, 1e-12)

	est, ok = Histogram{"01": 3, "11": 1}.Estimate()
	require.True(t, ok)
	assert.Equal(t, 0.75, est.ModeFrequency)
	assert.InDelta(t, 0.375, est.Mean, 1e-12)
	assert.Greater(t, est.StdDev, 0.0)

	est, ok = Histogram{"1": 1}.Estimate()
	require.True(t, ok)
	assert.Equal(t, 0.5, est.Mean)

	_, ok = Histogram{}.Estimate()
	assert.False(t, ok)
}
