package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultLimit = 100

// VesselHandler serves the totals of one snapshot.
type VesselHandler struct {
	snap *Snapshot
}

func NewVesselHandler(snap *Snapshot) *VesselHandler {
	return &VesselHandler{snap: snap}
}

// GetStats handles GET /api/v1/stats
func (h *VesselHandler) GetStats(c *gin.Context) {
	h.ok(c, gin.H{
		"maxSpeedKmh":   h.snap.Options.MaxSpeedKmh,
		"earthRadiusKm": h.snap.Options.EarthRadiusKm,
		"stats":         h.snap.Stats,
	})
}

// GetVessels handles GET /api/v1/vessels?limit=n&offset=m
func (h *VesselHandler) GetVessels(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		h.fail(c, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		h.fail(c, http.StatusBadRequest, "Invalid offset")
		return
	}

	ranking := h.snap.Ranking
	total := len(ranking)
	start := min(offset, total)
	end := start + min(limit, total-start)

	h.ok(c, gin.H{
		"data":   ranking[start:end],
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetLongest handles GET /api/v1/vessels/longest
func (h *VesselHandler) GetLongest(c *gin.Context) {
	if len(h.snap.Ranking) == 0 {
		h.fail(c, http.StatusNotFound, "No vessels observed")
		return
	}
	h.ok(c, h.snap.Ranking[0])
}

// GetVessel handles GET /api/v1/vessels/:mmsi
func (h *VesselHandler) GetVessel(c *gin.Context) {
	vt, rank, ok := h.snap.Vessel(c.Param("mmsi"))
	if !ok {
		h.fail(c, http.StatusNotFound, "Vessel not found")
		return
	}
	h.ok(c, gin.H{
		"mmsi":            vt.VesselID,
		"totalDistanceKm": vt.TotalDistanceKm,
		"rank":            rank,
	})
}
