package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"congestion-pulse/internal/db"
	"congestion-pulse/internal/models"
	"congestion-pulse/internal/predictions"
	"congestion-pulse/internal/refresh"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestServer wires a full server against a database in a temp dir and a
// prediction upstream served by handler.
func newTestServer(t *testing.T, upstream http.HandlerFunc) (*Server, *db.Database) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	log := zap.NewNop()
	client := predictions.NewClient(srv.URL, 2*time.Second, log)
	builder := NewBuilder(client, database, nil, log)
	coordinator := refresh.New(20*time.Millisecond, builder.Build, log)
	t.Cleanup(coordinator.Stop)

	return NewServer(database, builder, coordinator, log), database
}

func failingUpstream(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "boom", http.StatusInternalServerError)
}

func TestRidershipPredictionsFallsBackOn500(t *testing.T) {
	server, _ := newTestServer(t, failingUpstream)

	req := httptest.NewRequest("GET", "/api/ridership-predictions?time=08:00&day=monday", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "fallback must never surface an error")
	assert.Equal(t, "fallback", rec.Header().Get("X-Data-Source"))

	var out []struct {
		Station       string  `json:"station"`
		Latitude      float64 `json:"latitude"`
		Longitude     float64 `json:"longitude"`
		RidershipPred float64 `json:"ridership_pred"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out, 14)
	for _, p := range out {
		assert.NotEmpty(t, p.Station)
		assert.GreaterOrEqual(t, p.RidershipPred, 0.0)
	}
}

func TestRidershipPredictionsJoinsCatalogCoordinates(t *testing.T) {
	upstream := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"station": "Wall St", "latitude": 1.0, "longitude": 1.0, "ridership_pred": 300}]`))
	}
	server, database := newTestServer(t, upstream)

	// Catalog coordinates win over what the wire carried.
	_, err := database.UpsertStationBatch([]models.Station{
		{Name: "Wall St", Latitude: 40.7074, Longitude: -74.0113},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/ridership-predictions?time=12:00", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live", rec.Header().Get("X-Data-Source"))

	var out []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, 40.7074, out[0].Latitude)
	assert.Equal(t, -74.0113, out[0].Longitude)
}

func TestMapConfigDatasetInvariants(t *testing.T) {
	server, _ := newTestServer(t, failingUpstream)

	req := httptest.NewRequest("GET", "/api/map-config?time=17:30&day=friday&perspective=true", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Map    models.MapConfig `json:"map"`
			Source string           `json:"source"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Data.Map.Datasets, 2, "ridership plus volumes")
	for _, ds := range resp.Data.Map.Datasets {
		for i, row := range ds.Rows {
			assert.Len(t, row, len(ds.Fields), "dataset %s row %d", ds.Label, i)
		}
	}
	require.Len(t, resp.Data.Map.Config.VisState.Layers, 2)
	for _, l := range resp.Data.Map.Config.VisState.Layers {
		assert.Equal(t, "column", l.Type, "perspective mode extrudes")
		assert.Equal(t, "metric", l.ElevationField)
	}
	assert.Equal(t, "fallback", resp.Data.Source)
}

func TestEntryVolumesEndpoint(t *testing.T) {
	server, _ := newTestServer(t, failingUpstream)

	req := httptest.NewRequest("GET", "/api/entry-volumes?time=08:00&day=weekday&classes=1,4", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    []models.VolumeRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	// 7 entry points x 2 selected classes
	assert.Len(t, resp.Data, 14)
	for _, row := range resp.Data {
		assert.True(t, row.IsPeak)
		assert.Greater(t, row.TollFee, 0.0)
	}
}

func TestVehicleClassesEndpoint(t *testing.T) {
	server, _ := newTestServer(t, failingUpstream)

	req := httptest.NewRequest("GET", "/api/vehicle-classes", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.VehicleClass `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 7)
}

func TestViewLifecycle(t *testing.T) {
	server, _ := newTestServer(t, failingUpstream)

	// Before any parameter change there is nothing published.
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/view", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body, _ := json.Marshal(refresh.Params{Hour: 8, Minute: 30, Day: "monday", ClassIDs: []int{1}})
	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest("POST", "/api/view", bytes.NewReader(body)))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// Wait out the debounce plus the rebuild.
	time.Sleep(300 * time.Millisecond)

	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/view", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data refresh.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "monday", resp.Data.Params.Day)
	assert.Equal(t, "fallback", resp.Data.Source)
	assert.NotZero(t, resp.Data.Generation)
}

func TestViewRejectsBadParams(t *testing.T) {
	server, _ := newTestServer(t, failingUpstream)

	body := []byte(`{"hour": 99, "minute": 0}`)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest("POST", "/api/view", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsCountsSnapshots(t *testing.T) {
	server, _ := newTestServer(t, failingUpstream)

	// Each ridership request archives one snapshot.
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/ridership-predictions?time=08:00", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 3, resp.Data["snapshots"])
	assert.EqualValues(t, 3, resp.Data["fallback_snapshots"])
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t, failingUpstream)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSHeadersOnAPINamespace(t *testing.T) {
	server, _ := newTestServer(t, failingUpstream)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/vehicle-classes", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
