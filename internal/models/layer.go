package models

// Field describes one column of a LayerDataset.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"` // string, integer, real, boolean
}

// LayerDataset is the tabular half of the map renderer contract. The ID must be
// regenerated on every build so the renderer's differ treats the payload as new
// data instead of mutating in place.
type LayerDataset struct {
	ID     string          `json:"id"`
	Label  string          `json:"label"`
	Fields []Field         `json:"fields"`
	Rows   [][]interface{} `json:"rows"`
}

// LayerDescriptor is the visual half: how the dataset is drawn.
type LayerDescriptor struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"` // point or column
	DataID         string   `json:"data_id"`
	Label          string   `json:"label"`
	ColorField     string   `json:"color_field"`
	ColorScale     string   `json:"color_scale"` // quantile
	ColorRange     []string `json:"color_range"`
	ElevationField string   `json:"elevation_field,omitempty"`
	ElevationScale float64  `json:"elevation_scale,omitempty"`
}

// MapState positions the viewport. Pitch is nonzero only in perspective mode.
type MapState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
	Bearing   float64 `json:"bearing"`
}

// VisState carries the layer list and (always empty) filter list.
type VisState struct {
	Layers  []LayerDescriptor `json:"layers"`
	Filters []interface{}     `json:"filters"`
}

// MapConfig is the full envelope consumed by the external renderer.
type MapConfig struct {
	Datasets []LayerDataset `json:"datasets"`
	Config   struct {
		VisState VisState `json:"visState"`
		MapState MapState `json:"mapState"`
		MapStyle struct {
			Style string `json:"styleType"`
		} `json:"mapStyle"`
	} `json:"config"`
}
