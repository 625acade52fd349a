package synth

import (
	"congestion-pulse/internal/demand"
	"congestion-pulse/internal/models"
)

// fallbackStation pairs a station with its average-day base ridership. The
// base numbers already average weekday and weekend service, so only the hourly
// factor is applied here; the day-category modifier is deliberately not.
type fallbackStation struct {
	name     string
	lat, lon float64
	base     float64
}

var fallbackStations = []fallbackStation{
	{"Times Square-42 St", 40.7559, -73.9870, 780},
	{"Grand Central-42 St", 40.7527, -73.9772, 740},
	{"Union Square", 40.7356, -73.9910, 560},
	{"34 St-Penn Station", 40.7506, -73.9936, 690},
	{"59 St-Columbus Circle", 40.7682, -73.9819, 430},
	{"Brooklyn Bridge-City Hall", 40.7132, -74.0021, 320},
	{"Wall St", 40.7074, -74.0113, 350},
	{"Canal St", 40.7193, -74.0000, 380},
	{"14 St", 40.7368, -73.9971, 410},
	{"96 St", 40.7906, -73.9722, 360},
	{"125 St", 40.8075, -73.9454, 390},
	{"72 St", 40.7769, -73.9820, 340},
	{"West 4 St", 40.7322, -74.0008, 330},
	{"Fulton St", 40.7092, -74.0076, 450},
}

// StationFallback synthesizes ridership for the fixed station list when the
// live prediction endpoint is unavailable. Deterministic for a given time:
// no jitter, so repeated fallbacks render identically.
func StationFallback(hour, minute int) []models.GeoRecord {
	factor := demand.HourlyFactor(hour, minute)
	records := make([]models.GeoRecord, 0, len(fallbackStations))
	for _, s := range fallbackStations {
		records = append(records, models.NewGeoRecord(s.name, s.lat, s.lon, s.base*factor))
	}
	return records
}
