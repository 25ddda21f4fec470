package ais

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultTimestampLayout is dd/MM/yyyy HH:mm:ss, the format of the Danish AIS exports.
const DefaultTimestampLayout = "02/01/2006 15:04:05"

var ErrMissingColumn = errors.New("missing required column")

// Required header names, compared after normalizeHeader.
const (
	colTimestamp = "timestamp"
	colMMSI      = "mmsi"
	colLatitude  = "latitude"
	colLongitude = "longitude"
)

type ReaderOptions struct {
	Delimiter       rune
	TimestampLayout string
	Location        *time.Location
}

// Reader casts rows of a delimited AIS export into RawRecords. Columns other
// than Timestamp, MMSI, Latitude and Longitude are ignored.
type Reader struct {
	csv    *csv.Reader
	layout string
	loc    *time.Location

	idxTimestamp int
	idxMMSI      int
	idxLat       int
	idxLon       int
}

// NewReader consumes the header row immediately so a malformed file fails
// before any record is produced.
func NewReader(r io.Reader, opts ReaderOptions) (*Reader, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	layout := opts.TimestampLayout
	if layout == "" {
		layout = DefaultTimestampLayout
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	rd := &Reader{csv: cr, layout: layout, loc: loc}
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{colTimestamp, &rd.idxTimestamp},
		{colMMSI, &rd.idxMMSI},
		{colLatitude, &rd.idxLat},
		{colLongitude, &rd.idxLon},
	} {
		i, ok := idx[c.name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c.name)
		}
		*c.dst = i
	}
	return rd, nil
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (RawRecord, error) {
	fields, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return RawRecord{}, io.EOF
		}
		return RawRecord{}, fmt.Errorf("read record: %w", err)
	}
	line, _ := r.csv.FieldPos(0)
	return RawRecord{
		Line:      line,
		MMSI:      castString(field(fields, r.idxMMSI)),
		Latitude:  castFloat(field(fields, r.idxLat)),
		Longitude: castFloat(field(fields, r.idxLon)),
		Timestamp: castTime(field(fields, r.idxTimestamp), r.layout, r.loc),
	}, nil
}

// Stream sends every record on out and closes it when the input is
// exhausted, an error occurs or ctx is cancelled.
func (r *Reader) Stream(ctx context.Context, out chan<- RawRecord) error {
	defer close(out)
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- rec:
		}
	}
}

// ReadAll drains the reader into memory.
func (r *Reader) ReadAll() ([]RawRecord, error) {
	var recs []RawRecord
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(h)
	h = strings.TrimLeft(h, "#")
	return strings.ToLower(strings.TrimSpace(h))
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return strings.TrimSpace(fields[i])
	}
	return ""
}

func castString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func castFloat(s string) sql.NullFloat64 {
	if s == "" {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func castTime(s, layout string, loc *time.Location) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	t, err := time.ParseInLocation(layout, s, loc)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
