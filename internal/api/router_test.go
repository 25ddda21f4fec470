package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ais-route/internal/route"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Run     RunInfo         `json:"run"`
	Data    json.RawMessage `json:"data"`
}

func testRouter(totals map[string]float64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	res := &route.Result{Totals: totals, Stats: route.Stats{RecordsRead: 7, Vessels: len(totals)}}
	snap := NewSnapshot("aisdk.csv", time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC), route.DefaultOptions(), res)
	return SetupRouter(snap)
}

func get(t *testing.T, r http.Handler, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestHealth(t *testing.T) {
	r := testRouter(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestVesselEndpoints(t *testing.T) {
	r := testRouter(map[string]float64{"555": 50, "444": 50, "333": 0, "111": 12.9})

	w, env := get(t, r, "/api/v1/vessels/longest")
	require.Equal(t, http.StatusOK, w.Code)
	var longest map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &longest))
	assert.Equal(t, "444", longest["mmsi"])
	assert.Equal(t, 50.0, longest["totalDistanceKm"])

	w, env = get(t, r, "/api/v1/vessels?limit=2&offset=1")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []struct {
			MMSI string `json:"mmsi"`
		} `json:"data"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "555", page.Data[0].MMSI)
	assert.Equal(t, "111", page.Data[1].MMSI)

	w, env = get(t, r, "/api/v1/vessels?offset=10")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Empty(t, page.Data)

	w, env = get(t, r, "/api/v1/vessels?limit=9223372036854775807&offset=1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Data, 3)
	assert.Equal(t, "555", page.Data[0].MMSI)

	w, _ = get(t, r, "/api/v1/vessels?limit=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = get(t, r, "/api/v1/vessels/333")
	require.Equal(t, http.StatusOK, w.Code)
	var one map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &one))
	assert.Equal(t, 4.0, one["rank"])
	assert.Equal(t, 0.0, one["totalDistanceKm"])

	w, env = get(t, r, "/api/v1/vessels/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 404, env.Code)

	w, env = get(t, r, "/api/v1/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 100.0, stats["maxSpeedKmh"])
	assert.Equal(t, "aisdk.csv", env.Run.Source)
}

func TestLongestEmpty(t *testing.T) {
	r := testRouter(map[string]float64{})
	w, env := get(t, r, "/api/v1/vessels/longest")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No vessels observed", env.Message)
}

func TestErrorsCarryRun(t *testing.T) {
	r := testRouter(map[string]float64{"111": 1})

	w, env := get(t, r, "/api/v1/vessels?offset=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusBadRequest, env.Code)
	assert.Equal(t, "Invalid offset", env.Message)
	assert.Equal(t, "aisdk.csv", env.Run.Source)
	assert.Equal(t, time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC), env.Run.FinishedAt)
	assert.Empty(t, env.Data)

	w, env = get(t, r, "/api/v1/vessels/111")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, "success", env.Message)
	assert.Equal(t, "aisdk.csv", env.Run.Source)
}
