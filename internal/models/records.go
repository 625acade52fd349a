package models

import "time"

// GeoRecord is one observation placed on the map: a named point with a metric.
type GeoRecord struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Metric    float64 `json:"metric"`
}

// NewGeoRecord clamps negative metrics to zero. Negative ridership or volume is
// meaningless but must not break rendering downstream.
func NewGeoRecord(name string, lat, lon, metric float64) GeoRecord {
	if metric < 0 {
		metric = 0
	}
	return GeoRecord{Name: name, Latitude: lat, Longitude: lon, Metric: metric}
}

// DataCategory selects the color palette and field naming for a layer.
type DataCategory string

const (
	CategoryRidership DataCategory = "ridership"
	CategoryVolume    DataCategory = "volume"
)

// VolumeRow is a synthetic traffic-volume observation for one
// (entry point, vehicle class) pair.
type VolumeRow struct {
	EntryPoint string  `json:"entry_point"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
	Volume     float64 `json:"volume"`
	IsPeak     bool    `json:"is_peak"`
	TollFee    float64 `json:"toll_fee"`
}

// GeoRecord converts the row to the generic shape the layer builder consumes.
func (v VolumeRow) GeoRecord() GeoRecord {
	return NewGeoRecord(v.EntryPoint, v.Latitude, v.Longitude, v.Volume)
}

// Station is a subway station from the catalog.
type Station struct {
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Snapshot records one executed refresh for the stats surface.
type Snapshot struct {
	ID            int64     `json:"id"`
	RequestedTime string    `json:"requested_time"`
	RequestedDay  string    `json:"requested_day"`
	Source        string    `json:"source"`
	RecordCount   int       `json:"record_count"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SnapshotQuery filters the snapshot archive.
type SnapshotQuery struct {
	Source string
	Since  time.Time
	Limit  int
}
