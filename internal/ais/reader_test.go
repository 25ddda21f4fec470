package ais

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Timestamp,Type of mobile,MMSI,Latitude,Longitude,Navigational status
04/05/2024 00:00:01,Class A,219000001,54.000000,12.000000,Under way
04/05/2024 00:10:01,Class A,219000001,54.100000,12.100000,Under way
04/05/2024 00:00:05,Class B,,55.1,11.2,Unknown
not a date,Class A,219000002,55.1,11.2,
04/05/2024 00:00:07,Class A,219000003,abc,11.2,
04/05/2024 00:00:09,Class A,219000004
`

func TestNewReaderMissingColumn(t *testing.T) {
	_, err := NewReader(strings.NewReader("Timestamp,MMSI,Latitude\n"), ReaderOptions{})
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "longitude")
}

func TestNewReaderEmptyInput(t *testing.T) {
	_, err := NewReader(strings.NewReader(""), ReaderOptions{})
	require.Error(t, err)
}

func TestReadAllCastsFields(t *testing.T) {
	r, err := NewReader(strings.NewReader(sample), ReaderOptions{})
	require.NoError(t, err)

	recs, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 6)

	first := recs[0]
	assert.Equal(t, 2, first.Line)
	assert.True(t, first.MMSI.Valid)
	assert.Equal(t, "219000001", first.MMSI.String)
	assert.InDelta(t, 54.0, first.Latitude.Float64, 1e-9)
	assert.InDelta(t, 12.0, first.Longitude.Float64, 1e-9)
	require.True(t, first.Timestamp.Valid)
	assert.Equal(t, time.Date(2024, time.May, 4, 0, 0, 1, 0, time.UTC), first.Timestamp.Time)

	assert.False(t, recs[2].MMSI.Valid, "empty MMSI is null")
	assert.False(t, recs[3].Timestamp.Valid, "unparseable timestamp is null")
	assert.False(t, recs[4].Latitude.Valid, "unparseable latitude is null")
	assert.True(t, recs[4].Longitude.Valid)

	short := recs[5]
	assert.True(t, short.MMSI.Valid)
	assert.False(t, short.Latitude.Valid)
	assert.False(t, short.Longitude.Valid)
}

func TestReaderOptions(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	in := "timestamp;mmsi;latitude;longitude\n2024-05-04T10:00:00;1;1,5;2\n"
	r, err := NewReader(strings.NewReader(in), ReaderOptions{
		Delimiter:       ';',
		TimestampLayout: "2006-01-02T15:04:05",
		Location:        loc,
	})
	require.NoError(t, err)

	recs, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, time.Date(2024, time.May, 4, 8, 0, 0, 0, time.UTC).Unix(), recs[0].Timestamp.Time.Unix())
	assert.False(t, recs[0].Latitude.Valid, "decimal comma is not a float")
}

func TestStreamClosesChannel(t *testing.T) {
	r, err := NewReader(strings.NewReader(sample), ReaderOptions{})
	require.NoError(t, err)

	out := make(chan RawRecord, 2)
	errc := make(chan error, 1)
	go func() { errc <- r.Stream(context.Background(), out) }()

	n := 0
	for range out {
		n++
	}
	require.NoError(t, <-errc)
	assert.Equal(t, 6, n)
}

func TestStreamCancelled(t *testing.T) {
	r, err := NewReader(strings.NewReader(sample), ReaderOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := make(chan RawRecord)
	err = r.Stream(ctx, out)
	require.ErrorIs(t, err, context.Canceled)

	_, open := <-out
	assert.False(t, open)
}
