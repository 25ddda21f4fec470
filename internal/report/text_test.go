package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ais-route/internal/ais"
)

func TestWriteLongest(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteLongest(&b, ais.VesselTotal{VesselID: "219000001", TotalDistanceKm: 12.89417}))

	lines := strings.Split(b.String(), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "", lines[0])
	assert.Equal(t, strings.Repeat("#", 50), lines[2])
	assert.Equal(t, "# Vessel MMSI: 219000001, Total Distance: 12.894 km", lines[3])
	assert.Equal(t, strings.Repeat("#", 50), lines[4])
}

func TestWriteRanking(t *testing.T) {
	ranking := []ais.VesselTotal{
		{VesselID: "111", TotalDistanceKm: 12.9},
		{VesselID: "222", TotalDistanceKm: 1},
		{VesselID: "333"},
	}

	var b strings.Builder
	require.NoError(t, WriteRanking(&b, ranking, 2))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "RANK"))
	assert.Equal(t, []string{"1", "111", "12.900"}, strings.Fields(lines[1]))

	b.Reset()
	require.NoError(t, WriteRanking(&b, ranking, 0))
	assert.Len(t, strings.Split(strings.TrimSpace(b.String()), "\n"), 4)
}
