package api

import (
	"context"

	"congestion-pulse/internal/db"
	"congestion-pulse/internal/layer"
	"congestion-pulse/internal/models"
	"congestion-pulse/internal/predictions"
	"congestion-pulse/internal/refresh"
	"congestion-pulse/internal/synth"

	"go.uber.org/zap"
)

// Builder composes the two data paths into renderer envelopes: live-or-
// fallback station ridership and synthetic entry-point volumes. It is the
// coordinator's build function and also backs the synchronous map-config
// endpoint.
type Builder struct {
	predictions *predictions.Client
	db          *db.Database
	rng         synth.Rand
	log         *zap.Logger
}

// NewBuilder wires the builder. rng may be nil, which selects the shared
// process-wide source.
func NewBuilder(client *predictions.Client, database *db.Database, rng synth.Rand, log *zap.Logger) *Builder {
	if rng == nil {
		rng = synth.DefaultRand
	}
	return &Builder{predictions: client, db: database, rng: rng, log: log}
}

// Build produces the full map view for one parameter set. It never fails;
// ridership degrades to the station fallback inside the predictions client.
func (b *Builder) Build(ctx context.Context, p refresh.Params) refresh.Result {
	snap := b.ridership(ctx, p.Hour, p.Minute, p.Day)

	volumes := synth.Volumes(synth.VolumeParams{
		Hour:     p.Hour,
		Minute:   p.Minute,
		Day:      p.Day,
		ClassIDs: p.ClassIDs,
	}, b.rng, b.log)

	volumeRecords := make([]models.GeoRecord, 0, len(volumes))
	for _, v := range volumes {
		volumeRecords = append(volumeRecords, v.GeoRecord())
	}

	rDataset, rLayer := layer.Build(snap.Records, models.CategoryRidership, p.Perspective)
	vDataset, vLayer := layer.Build(volumeRecords, models.CategoryVolume, p.Perspective)

	cfg := layer.BuildConfig([]layer.BuiltLayer{
		{Dataset: rDataset, Descriptor: rLayer},
		{Dataset: vDataset, Descriptor: vLayer},
	}, p.Perspective)

	return refresh.Result{
		Config: cfg,
		Source: string(snap.Source),
		Reason: snap.Reason,
	}
}

// ridership fetches predictions, joins catalog coordinates, and archives the
// refresh. Catalog coordinates win over wire coordinates when the station is
// known; unknown stations keep what the wire carried.
func (b *Builder) ridership(ctx context.Context, hour, minute int, day string) *predictions.Snapshot {
	snap := b.predictions.Fetch(ctx, hour, minute, day)

	if snap.Source == predictions.SourceLive && b.db != nil {
		for i, r := range snap.Records {
			if s, err := b.db.GetStation(r.Name); err == nil {
				snap.Records[i].Latitude = s.Latitude
				snap.Records[i].Longitude = s.Longitude
			}
		}
	}

	if b.db != nil {
		archived := &models.Snapshot{
			RequestedTime: snap.RequestedTime,
			RequestedDay:  snap.RequestedDay,
			Source:        string(snap.Source),
			RecordCount:   len(snap.Records),
			Reason:        snap.Reason,
		}
		if err := b.db.RecordSnapshot(archived); err != nil {
			b.log.Warn("failed to archive snapshot", zap.Error(err))
		}
	}

	return snap
}
