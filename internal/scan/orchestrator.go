package scan

import (
	"context"
	"errors"
	"image"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cardmat/cardscan/internal/frame"
	"github.com/cardmat/cardscan/internal/ocr"
	"github.com/cardmat/cardscan/internal/rectify"
	"github.com/cardmat/cardscan/internal/stabilize"
)

// Phase is the orchestrator's coarse position in the scan cycle, exposed
// for logging and status reporting.
type Phase int

const (
	// PhaseIdle means no card is currently detected.
	PhaseIdle Phase = iota
	// PhaseScanning means detections are accumulating toward stability.
	PhaseScanning
	// PhaseDispatched means recognition is running for a stable card.
	PhaseDispatched
	// PhaseCoolingDown means a scan completed recently and new frames
	// are ignored until the cool-down deadline passes.
	PhaseCoolingDown
)

func (p Phase) String() string {
	switch p {
	case PhaseScanning:
		return "scanning"
	case PhaseDispatched:
		return "dispatched"
	case PhaseCoolingDown:
		return "cooling-down"
	default:
		return "idle"
	}
}

// regionResult is one recognized band reported back from the dispatch
// goroutine.
type regionResult struct {
	seq    uint64
	region string
	rec    ocr.Recognition
	err    error
}

// Orchestrator owns the scan cycle state machine. All fields are guarded by
// single-goroutine ownership: Tick, Run, Rescan and the accessors must be
// called from the same goroutine. Recognition runs concurrently but only
// communicates through the results channel.
type Orchestrator struct {
	cfg        Config
	localizer  Localizer
	recognizer ocr.Recognizer
	log        *logrus.Entry

	stab   *stabilize.Stabilizer
	record *Record
	phase  Phase

	// seq increments per tick; dispatchSeq remembers which tick's
	// dispatch is allowed to merge results. Results from any other seq
	// are stale and dropped.
	seq         uint64
	dispatchSeq uint64

	inFlight      bool
	pending       int
	cooldownUntil time.Time
	lastDispatch  time.Time

	results chan regionResult

	// now is swapped in tests for deterministic timing.
	now func() time.Time
}

// New builds an orchestrator. A nil logger gets a default logrus logger.
func New(cfg Config, loc Localizer, rec ocr.Recognizer, logger *logrus.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, errors.New("scan: localizer is required")
	}
	if rec == nil {
		return nil, errors.New("scan: recognizer is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	record := NewRecord()
	return &Orchestrator{
		cfg:        cfg,
		localizer:  loc,
		recognizer: rec,
		log:        logger.WithField("session", record.SessionID.String()),
		stab:       stabilize.New(cfg.StabilityThreshold),
		record:     record,
		results:    make(chan regionResult, 2*len(cfg.Bands)+8),
		now:        time.Now,
	}, nil
}

// Phase returns the current scan phase.
func (o *Orchestrator) Phase() Phase { return o.phase }

// Record returns a snapshot of the accumulated fields.
func (o *Orchestrator) Record() Record { return o.record.Snapshot() }

// InFlight reports whether a recognition dispatch is still running.
func (o *Orchestrator) InFlight() bool { return o.inFlight }

// Rescan clears the accumulated record and all cycle state so the same
// physical card can be scanned again immediately. Results from a dispatch
// still in flight become stale and are dropped on arrival.
func (o *Orchestrator) Rescan() {
	o.record.Clear()
	o.log = o.log.Logger.WithField("session", o.record.SessionID.String())
	o.stab.Reset()
	o.cooldownUntil = time.Time{}
	o.lastDispatch = time.Time{}
	o.dispatchSeq = 0
	o.phase = PhaseIdle
	o.log.Info("rescan requested, record cleared")
}

// Tick advances the scan cycle by one frame. A nil frame means the source
// had nothing ready; the tick still drains recognition results but does not
// feed the stabilizer, so a stalled camera neither builds nor breaks a
// stability streak.
func (o *Orchestrator) Tick(ctx context.Context, img image.Image) {
	o.seq++
	o.drainResults()

	if now := o.now(); now.Before(o.cooldownUntil) {
		o.phase = PhaseCoolingDown
		return
	}
	if o.inFlight {
		o.phase = PhaseDispatched
	} else if o.phase == PhaseCoolingDown || o.phase == PhaseDispatched {
		o.phase = PhaseIdle
	}
	if img == nil {
		o.log.Debug("frame not ready, skipping tick")
		return
	}
	if b := img.Bounds(); b.Dx() < 2 || b.Dy() < 2 {
		o.log.WithField("bounds", b.String()).Warn("frame too small, skipping tick")
		return
	}

	res, err := o.localizer.Localize(img)
	if err != nil {
		o.log.WithError(err).Warn("localization failed")
	}
	status := o.stab.Observe(res)

	o.log.WithFields(logrus.Fields{
		"state":       status.State.String(),
		"consecutive": status.Consecutive,
		"method":      res.Method.String(),
		"confidence":  res.Confidence,
	}).Debug("frame observed")

	switch status.State {
	case stabilize.NoDetection:
		if !o.inFlight {
			o.phase = PhaseIdle
		}
		return
	case stabilize.Stabilizing:
		if !o.inFlight {
			o.phase = PhaseScanning
		}
		return
	}

	// Stable. Dispatch at most one recognition at a time, spaced by the
	// configured minimum gap.
	if o.inFlight {
		return
	}
	if !o.lastDispatch.IsZero() && o.now().Sub(o.lastDispatch) < o.cfg.MinDispatchGap {
		o.phase = PhaseScanning
		return
	}

	card, err := rectify.Rectify(img, *status.Quad, o.cfg.CanonicalWidth, o.cfg.CanonicalHeight)
	if err != nil {
		o.log.WithError(err).Warn("rectification failed")
		return
	}
	regions, err := rectify.ExtractBands(card, o.cfg.Bands)
	if err != nil {
		o.log.WithError(err).Error("band extraction failed")
		return
	}

	o.inFlight = true
	o.dispatchSeq = o.seq
	o.pending = len(regions)
	now := o.now()
	o.lastDispatch = now
	o.cooldownUntil = now.Add(o.cfg.CoolDown)
	o.phase = PhaseDispatched
	o.log.WithFields(logrus.Fields{
		"regions":    len(regions),
		"method":     res.Method.String(),
		"confidence": res.Confidence,
	}).Info("card stable, dispatching recognition")

	go o.recognize(ctx, o.seq, regions)
}

// Run drives Tick from a frame source on the configured interval until the
// source is exhausted or the context is canceled. On exhaustion it waits
// for any in-flight recognition before returning.
func (o *Orchestrator) Run(ctx context.Context, src frame.Source) error {
	ticker := time.NewTicker(o.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			img, err := src.Next()
			if errors.Is(err, io.EOF) {
				return o.waitForPending(ctx)
			}
			if err != nil {
				o.log.WithError(err).Warn("frame acquisition failed")
				continue
			}
			o.Tick(ctx, img)
		}
	}
}

// recognize runs the recognizer over each region in order and reports the
// outcomes. It runs off the orchestrator goroutine; the results channel is
// sized so sends never block as long as each dispatch's results fit the
// buffer, which they do because only one dispatch is in flight.
func (o *Orchestrator) recognize(ctx context.Context, seq uint64, regions []rectify.Region) {
	for _, region := range regions {
		rec, err := o.recognizer.Recognize(ctx, region.Image)
		o.results <- regionResult{seq: seq, region: region.Name, rec: rec, err: err}
	}
}

// drainResults consumes every queued recognition outcome without blocking.
func (o *Orchestrator) drainResults() {
	for {
		select {
		case r := <-o.results:
			o.handleResult(r)
		default:
			return
		}
	}
}

// waitForPending blocks until the in-flight dispatch has fully reported.
func (o *Orchestrator) waitForPending(ctx context.Context) error {
	for o.inFlight {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-o.results:
			o.handleResult(r)
		}
	}
	return nil
}

func (o *Orchestrator) handleResult(r regionResult) {
	o.pending--
	if o.pending <= 0 {
		o.inFlight = false
	}
	if r.seq != o.dispatchSeq {
		o.log.WithField("region", r.region).Debug("dropping stale recognition result")
		return
	}
	if r.err != nil {
		o.log.WithError(r.err).WithField("region", r.region).Warn("recognition failed")
		return
	}
	if o.record.Merge(r.region, r.rec, o.now()) {
		o.log.WithFields(logrus.Fields{
			"region":     r.region,
			"text":       r.rec.Text,
			"confidence": r.rec.Confidence,
		}).Info("field recognized")
	}
}
