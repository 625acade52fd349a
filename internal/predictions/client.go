// Package predictions fetches live ridership predictions and substitutes
// synthetic station data when the live endpoint cannot serve. No failure on
// this path is fatal: the dashboard always renders something.
package predictions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"congestion-pulse/internal/models"
	"congestion-pulse/internal/synth"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Source tags where a snapshot's records came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Snapshot is the outcome of one prediction refresh. Reason is set only for
// fallbacks and feeds the dismissible banner in the UI.
type Snapshot struct {
	Records       []models.GeoRecord `json:"records"`
	Source        Source             `json:"source"`
	Reason        string             `json:"reason,omitempty"`
	RequestedTime string             `json:"requested_time"`
	RequestedDay  string             `json:"requested_day"`
	FetchedAt     time.Time          `json:"fetched_at"`
}

// wireRecord matches the prediction endpoint's JSON. encoding/json matches
// keys case-insensitively, which absorbs the endpoint's latitude/Latitude and
// longitude/Longitude casing drift into one canonical shape.
type wireRecord struct {
	Station       string  `json:"station"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	RidershipPred float64 `json:"ridership_pred"`
}

// Client fetches ridership predictions over HTTP.
type Client struct {
	http *resty.Client
	log  *zap.Logger
}

// NewClient builds a client against baseURL with a bounded per-request
// timeout. A single retry covers transient connection resets; anything
// slower than that is the fallback's job.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, log: log}
}

// Fetch returns a snapshot for the requested time and day. It never returns
// an error: network failure, a non-2xx status, a malformed body, and an empty
// result all degrade to the synthetic station fallback.
func (c *Client) Fetch(ctx context.Context, hour, minute int, day string) *Snapshot {
	timeParam := fmt.Sprintf("%02d:%02d", hour, minute)

	snap := &Snapshot{
		RequestedTime: timeParam,
		RequestedDay:  day,
		FetchedAt:     time.Now(),
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("time", timeParam).
		SetQueryParam("day", day).
		Get("/api/ridership-predictions")

	if err != nil {
		return c.fallback(snap, hour, minute, fmt.Sprintf("request failed: %v", err))
	}
	if !resp.IsSuccess() {
		return c.fallback(snap, hour, minute, fmt.Sprintf("endpoint returned %d", resp.StatusCode()))
	}

	var wire []wireRecord
	if err := json.Unmarshal(resp.Body(), &wire); err != nil {
		return c.fallback(snap, hour, minute, fmt.Sprintf("malformed response: %v", err))
	}
	if len(wire) == 0 {
		return c.fallback(snap, hour, minute, "empty prediction set")
	}

	snap.Source = SourceLive
	snap.Records = make([]models.GeoRecord, 0, len(wire))
	for _, w := range wire {
		snap.Records = append(snap.Records, models.NewGeoRecord(w.Station, w.Latitude, w.Longitude, w.RidershipPred))
	}

	c.log.Debug("live predictions fetched",
		zap.String("time", timeParam),
		zap.String("day", day),
		zap.Int("records", len(snap.Records)),
	)
	return snap
}

func (c *Client) fallback(snap *Snapshot, hour, minute int, reason string) *Snapshot {
	c.log.Warn("falling back to synthetic ridership",
		zap.String("time", snap.RequestedTime),
		zap.String("day", snap.RequestedDay),
		zap.String("reason", reason),
	)
	snap.Source = SourceFallback
	snap.Reason = reason
	snap.Records = synth.StationFallback(hour, minute)
	return snap
}
