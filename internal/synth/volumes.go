// Package synth generates the synthetic observations the dashboard renders
// when no live feed covers a data path. Entry-point volumes are always
// synthetic (no live congestion feed exists); station ridership is synthesized
// only when the prediction endpoint fails.
package synth

import (
	"math"
	"math/rand"

	"congestion-pulse/internal/demand"
	"congestion-pulse/internal/models"

	"go.uber.org/zap"
)

// Rand is the randomness source for volume jitter. *math/rand.Rand satisfies
// it; tests substitute a fixed-seed generator to pin exact values.
type Rand interface {
	Float64() float64
}

// DefaultRand draws from the process-wide source, which is safe for
// concurrent use.
var DefaultRand Rand = globalRand{}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// EntryPoint is a fixed charging-zone choke point.
type EntryPoint struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// EntryPoints lists the seven CRZ detection regions.
var EntryPoints = []EntryPoint{
	{"Brooklyn", 40.7061, -73.9969},
	{"East 60th Street", 40.7616, -73.9644},
	{"FDR Drive", 40.7626, -73.9582},
	{"New Jersey", 40.7608, -74.0075},
	{"Queens", 40.7440, -73.9675},
	{"West 60th Street", 40.7700, -73.9850},
	{"West Side Highway", 40.7711, -73.9897},
}

const baselineVolume = 1000

// VolumeParams selects the slice of synthetic traffic to generate.
type VolumeParams struct {
	Hour     int
	Minute   int
	Day      string
	ClassIDs []int
}

// Volumes produces one row per (entry point, selected class). Unknown class
// ids are logged and skipped; the subway pseudo-class is never emitted.
//
//	base   = round(1000 * dayFactor * hourFactor * jitter)    jitter in [0.8,1.2]
//	volume = round(base * classMultiplier * variation)        variation in [0.7,1.3]
func Volumes(p VolumeParams, rng Rand, log *zap.Logger) []models.VolumeRow {
	hourFactor := demand.HourlyFactor(p.Hour, p.Minute)
	dayFactor := demand.DayFactor(p.Day)
	peak := demand.IsPeak(p.Hour)

	var rows []models.VolumeRow
	for _, ep := range EntryPoints {
		jitter := 0.8 + rng.Float64()*0.4
		base := math.Round(baselineVolume * dayFactor * hourFactor * jitter)

		for _, id := range p.ClassIDs {
			class, ok := demand.ClassByID(id)
			if !ok {
				log.Warn("unknown vehicle class id in volume request", zap.Int("class_id", id))
				continue
			}
			if class.ID == demand.SubwayClassID {
				continue
			}

			variation := 0.7 + rng.Float64()*0.6
			volume := math.Round(base * class.Multiplier * variation)
			if volume < 0 {
				volume = 0
			}

			rows = append(rows, models.VolumeRow{
				EntryPoint: ep.Name,
				Latitude:   ep.Latitude,
				Longitude:  ep.Longitude,
				ClassID:    class.ID,
				ClassName:  class.Name,
				Volume:     volume,
				IsPeak:     peak,
				TollFee:    demand.TollFee(class.ID, peak),
			})
		}
	}
	return rows
}
