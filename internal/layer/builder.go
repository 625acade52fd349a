// Package layer shapes geo records into the dataset/descriptor pairs the
// external map renderer consumes. The transform is purely structural; the
// renderer itself is an external collaborator.
package layer

import (
	"fmt"
	"time"

	"congestion-pulse/internal/models"

	"github.com/google/uuid"
)

// Palettes per data category, darkest to brightest.
var (
	ridershipRange = []string{"#00939C", "#5DBABF", "#BAE1E2", "#F8C0AA", "#DD7755", "#C22E00"}
	volumeRange    = []string{"#2C51BE", "#4E6DD2", "#7A8EE0", "#B6A0D8", "#E08268", "#F5442D"}
)

// Manhattan viewport defaults for the congestion relief zone.
const (
	centerLat   = 40.7440
	centerLon   = -73.9840
	defaultZoom = 11.6
)

// Build shapes records into a dataset plus its visual descriptor. Ids are
// regenerated on every call: the renderer diffs datasets by id, and a reused
// id would make it mutate the previous dataset in place instead of replacing
// it. Perspective mode switches flat points to extruded columns driven by an
// elevation field.
func Build(records []models.GeoRecord, category models.DataCategory, perspective bool) (models.LayerDataset, models.LayerDescriptor) {
	datasetID := freshID(string(category))

	dataset := models.LayerDataset{
		ID:    datasetID,
		Label: datasetLabel(category),
		Fields: []models.Field{
			{Name: "name", Type: "string"},
			{Name: "latitude", Type: "real"},
			{Name: "longitude", Type: "real"},
			{Name: "metric", Type: "real"},
		},
		Rows: make([][]interface{}, 0, len(records)),
	}
	for _, r := range records {
		dataset.Rows = append(dataset.Rows, []interface{}{r.Name, r.Latitude, r.Longitude, r.Metric})
	}

	descriptor := models.LayerDescriptor{
		ID:         freshID(string(category) + "-layer"),
		Type:       "point",
		DataID:     datasetID,
		Label:      datasetLabel(category),
		ColorField: "metric",
		ColorScale: "quantile",
		ColorRange: palette(category),
	}
	if perspective {
		descriptor.Type = "column"
		descriptor.ElevationField = "metric"
		descriptor.ElevationScale = 5
	}

	return dataset, descriptor
}

// BuildConfig assembles the full renderer envelope from one or more built
// pairs. The filter list is always present and always empty.
func BuildConfig(pairs []BuiltLayer, perspective bool) models.MapConfig {
	var cfg models.MapConfig
	cfg.Datasets = make([]models.LayerDataset, 0, len(pairs))
	cfg.Config.VisState.Layers = make([]models.LayerDescriptor, 0, len(pairs))
	cfg.Config.VisState.Filters = []interface{}{}
	for _, p := range pairs {
		cfg.Datasets = append(cfg.Datasets, p.Dataset)
		cfg.Config.VisState.Layers = append(cfg.Config.VisState.Layers, p.Descriptor)
	}
	cfg.Config.MapState = models.MapState{
		Latitude:  centerLat,
		Longitude: centerLon,
		Zoom:      defaultZoom,
	}
	if perspective {
		cfg.Config.MapState.Pitch = 50
		cfg.Config.MapState.Bearing = 24
	}
	cfg.Config.MapStyle.Style = "dark"
	return cfg
}

// BuiltLayer bundles the two halves of one rendered layer.
type BuiltLayer struct {
	Dataset    models.LayerDataset
	Descriptor models.LayerDescriptor
}

func freshID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

func datasetLabel(category models.DataCategory) string {
	switch category {
	case models.CategoryRidership:
		return "Subway Ridership"
	case models.CategoryVolume:
		return "Entry Point Volume"
	default:
		return string(category)
	}
}

func palette(category models.DataCategory) []string {
	if category == models.CategoryVolume {
		return volumeRange
	}
	return ridershipRange
}
