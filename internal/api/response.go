package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope wraps every /api/v1 payload together with the run it was
// computed from, so clients can tell results of different input files apart.
type Envelope struct {
	Code    int     `json:"code"`
	Message string  `json:"message"`
	Run     RunInfo `json:"run"`
	Data    any     `json:"data,omitempty"`
}

type RunInfo struct {
	Source     string    `json:"source"`
	FinishedAt time.Time `json:"finishedAt"`
}

func (s *Snapshot) runInfo() RunInfo {
	return RunInfo{Source: s.Source, FinishedAt: s.FinishedAt}
}

func (h *VesselHandler) ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Code: 0, Message: "success", Run: h.snap.runInfo(), Data: data})
}

func (h *VesselHandler) fail(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Code: status, Message: message, Run: h.snap.runInfo()})
}
