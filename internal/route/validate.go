package route

import (
	"math"
	"strings"

	"ais-route/internal/ais"
)

// Validate admits a record only when every required field is present and the
// coordinates are on the globe. AIS uses 91/181 for "not available", which
// the range check rejects as well.
func Validate(rec ais.RawRecord) (ais.PositionReport, bool) {
	if !rec.MMSI.Valid || !rec.Latitude.Valid || !rec.Longitude.Valid || !rec.Timestamp.Valid {
		return ais.PositionReport{}, false
	}
	id := strings.TrimSpace(rec.MMSI.String)
	if id == "" {
		return ais.PositionReport{}, false
	}
	lat, lon := rec.Latitude.Float64, rec.Longitude.Float64
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ais.PositionReport{}, false
	}
	return ais.PositionReport{
		VesselID:  id,
		Latitude:  lat,
		Longitude: lon,
		Timestamp: rec.Timestamp.Time,
	}, true
}
