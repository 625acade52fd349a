// Package refresh coalesces rapid view-parameter changes into single rebuilds
// and guarantees that a slow, superseded rebuild can never overwrite a newer
// one: every executed rebuild carries a generation, and only results newer
// than the last published generation are kept.
package refresh

import (
	"context"
	"sync"
	"time"

	"congestion-pulse/internal/models"

	"go.uber.org/zap"
)

// Params is one complete set of view parameters.
type Params struct {
	Hour        int    `json:"hour"`
	Minute      int    `json:"minute"`
	Day         string `json:"day"`
	ClassIDs    []int  `json:"class_ids"`
	Perspective bool   `json:"perspective"`
}

// Result is what a build produces: the renderer envelope plus provenance for
// the informational banner.
type Result struct {
	Config models.MapConfig
	Source string
	Reason string
}

// BuildFunc rebuilds the view for a parameter set. It must not fail; data
// failures degrade to synthetic content further down the stack.
type BuildFunc func(ctx context.Context, p Params) Result

// View is the published state of the dashboard.
type View struct {
	Params     Params           `json:"params"`
	Config     models.MapConfig `json:"config"`
	Source     string           `json:"source"`
	Reason     string           `json:"reason,omitempty"`
	Generation uint64           `json:"generation"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Coordinator owns the debounce timer, the generation counter, and the
// latest published view. All state is behind one mutex; builds run outside it.
type Coordinator struct {
	mu        sync.Mutex
	build     BuildFunc
	interval  time.Duration
	log       *zap.Logger
	timer     *time.Timer
	pending   Params
	gen       uint64
	published uint64
	view      *View
}

// New creates a coordinator. interval is how long after the last parameter
// change a rebuild fires.
func New(interval time.Duration, build BuildFunc, log *zap.Logger) *Coordinator {
	return &Coordinator{build: build, interval: interval, log: log}
}

// Request records new parameters and (re)starts the debounce timer. Rapid
// successive calls collapse into one rebuild with the last parameters seen.
func (c *Coordinator) Request(p Params) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = p
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.interval, c.fire)
}

// fire runs on the timer goroutine: take a generation, then build off-lock.
func (c *Coordinator) fire() {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	p := c.pending
	c.mu.Unlock()

	c.run(context.Background(), gen, p)
}

// RefreshNow bypasses the debounce, building synchronously. The returned view
// is the published one, which may be newer than this build if another rebuild
// overtook it.
func (c *Coordinator) RefreshNow(ctx context.Context, p Params) View {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.pending = p
	c.mu.Unlock()

	c.run(ctx, gen, p)

	v, _ := c.Latest()
	return v
}

func (c *Coordinator) run(ctx context.Context, gen uint64, p Params) {
	res := c.build(ctx, p)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.published {
		// A newer rebuild already landed; this result is stale.
		c.log.Debug("discarding stale rebuild",
			zap.Uint64("generation", gen),
			zap.Uint64("published", c.published),
		)
		return
	}
	c.published = gen
	c.view = &View{
		Params:     p,
		Config:     res.Config,
		Source:     res.Source,
		Reason:     res.Reason,
		Generation: gen,
		UpdatedAt:  time.Now(),
	}
}

// Latest returns the published view; ok is false before the first rebuild.
func (c *Coordinator) Latest() (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view == nil {
		return View{}, false
	}
	return *c.view, true
}

// Stop cancels any pending debounce timer. In-flight builds finish but their
// results still obey the generation rule.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
