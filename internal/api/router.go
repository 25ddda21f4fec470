package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupRouter exposes a snapshot read-only.
func SetupRouter(snap *Snapshot) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "AIS route API is running",
		})
	})

	h := NewVesselHandler(snap)
	api := r.Group("/api/v1")
	{
		api.GET("/stats", h.GetStats)

		vessels := api.Group("/vessels")
		{
			vessels.GET("", h.GetVessels)
			vessels.GET("/longest", h.GetLongest)
			vessels.GET("/:mmsi", h.GetVessel)
		}
	}

	return r
}

// requestLogger logs one line per request. Vessel lookups carry the MMSI so
// a client asking for an unknown vessel shows up in the log.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		line := "api method=%s path=%s status=%d latency=%v ip=%s"
		args := []any{c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), time.Since(start), c.ClientIP()}
		if mmsi := c.Param("mmsi"); mmsi != "" {
			line += " mmsi=%s"
			args = append(args, mmsi)
		}
		if len(c.Errors) > 0 {
			line += " errors=%q"
			args = append(args, c.Errors.String())
		}
		log.Printf(line, args...)
	}
}
