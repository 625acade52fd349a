package station

import (
	"strings"
	"testing"

	"congestion-pulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseStopsCSV(t *testing.T) {
	input := `Stop Name,GTFS Latitude,GTFS Longitude,Line
Times Square-42 St,40.7559,-73.9870,N
Grand Central-42 St,40.7527,-73.9772,4
`
	stations, err := Parse(strings.NewReader(input), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, stations, 2)

	assert.Equal(t, "Times Square-42 St", stations[0].Name)
	assert.Equal(t, 40.7559, stations[0].Latitude)
	assert.Equal(t, -73.9870, stations[0].Longitude)
}

func TestParseColumnOrderIndependent(t *testing.T) {
	input := `GTFS Longitude,Line,Stop Name,GTFS Latitude
-74.0113,2,Wall St,40.7074
`
	stations, err := Parse(strings.NewReader(input), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "Wall St", stations[0].Name)
	assert.Equal(t, 40.7074, stations[0].Latitude)
}

func TestParseDeduplicatesRepeatedStops(t *testing.T) {
	// Exports repeat a stop once per serving route.
	input := `Stop Name,GTFS Latitude,GTFS Longitude
Union Square,40.7356,-73.9910
Union Square,40.7356,-73.9910
Union Square,40.7356,-73.9910
`
	stations, err := Parse(strings.NewReader(input), zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, stations, 1)
}

func TestParseSkipsBadRows(t *testing.T) {
	input := `Stop Name,GTFS Latitude,GTFS Longitude
Good Stop,40.75,-73.98
,40.75,-73.98
Bad Lat,not-a-number,-73.98
Out Of Range,95.0,-73.98
Another Good Stop,40.71,-74.00
`
	stations, err := Parse(strings.NewReader(input), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, "Good Stop", stations[0].Name)
	assert.Equal(t, "Another Good Stop", stations[1].Name)
}

func TestParseMissingColumnFails(t *testing.T) {
	input := `Stop Name,Latitude,Longitude
Times Square,40.75,-73.98
`
	_, err := Parse(strings.NewReader(input), zap.NewNop())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		wantErrs int
	}{
		{"Times Square", 40.75, -73.98, 0},
		{"", 40.75, -73.98, 1},
		{"Bad", 91, -73.98, 1},
		{"Worse", -91, 181, 2},
	}

	for _, tt := range tests {
		s := models.Station{Name: tt.name, Latitude: tt.lat, Longitude: tt.lon}
		if got := len(Validate(&s)); got != tt.wantErrs {
			t.Errorf("Validate(%q, %v, %v) returned %d errors, want %d",
				tt.name, tt.lat, tt.lon, got, tt.wantErrs)
		}
	}
}
