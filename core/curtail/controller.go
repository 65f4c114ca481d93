package curtail

import (
	"context"
	"errors"
	"time"

	"github.com/voltbus/curtaild/core/logger"
	"github.com/voltbus/curtaild/core/metrics"
	"github.com/voltbus/curtaild/core/model"
)

// ErrNoData signals that the hub returned an empty result list for a session.
// The affected session is skipped for the current cycle.
var ErrNoData = errors.New("no data for session")

// SessionProvider supplies chargers and per-connector session telemetry.
type SessionProvider interface {
	Chargers(ctx context.Context) ([]model.Charger, error)
	LatestMeterValue(ctx context.Context, chargerID string, connectorID int) (model.MeterValue, error)
	LatestTransaction(ctx context.Context, chargerID string, connectorID int) (model.Transaction, error)
}

// CommandSender pushes charge profiles to the charger hub.
type CommandSender interface {
	SetChargeProfile(ctx context.Context, chargerID string, profile model.ChargeProfile) error
}

// ProfilePublisher announces dispatched profiles to interested parties, e.g.
// an MQTT topic. Publishing is best-effort and never affects dispatching.
type ProfilePublisher interface {
	PublishProfile(chargerID string, profile model.ChargeProfile) error
}

// Controller runs the curtailment control loop: it watches the nightly
// window, recalculates the required charge rate per active session, clamps
// it, and dispatches it through the hub.
type Controller struct {
	cfg      Config
	provider SessionProvider
	sender   CommandSender
	history  *History
	log      logger.Logger
	sink     metrics.Sink
	pub      ProfilePublisher

	window     Window
	lastRecalc time.Time

	now func() time.Time
}

// NewController creates a Controller. The config must already be validated.
func NewController(cfg Config, provider SessionProvider, sender CommandSender, log logger.Logger) *Controller {
	cfg.SetDefaults()
	return &Controller{
		cfg:      cfg,
		provider: provider,
		sender:   sender,
		history:  NewHistory(),
		log:      log,
		sink:     metrics.NopSink{},
		now:      time.Now,
	}
}

// SetSink configures the metrics sink receiving profile and cycle events.
func (c *Controller) SetSink(sink metrics.Sink) {
	if sink != nil {
		c.sink = sink
	}
}

// SetPublisher configures an optional profile announcement publisher.
func (c *Controller) SetPublisher(pub ProfilePublisher) { c.pub = pub }

// SetNowFunc overrides the clock. Used by tests.
func (c *Controller) SetNowFunc(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// History exposes the per-connector profile history store.
func (c *Controller) History() *History { return c.history }

// Window returns the currently tracked curtailment window.
func (c *Controller) Window() Window { return c.window }

// ensureWindow builds the initial window on first use so that tests and the
// one-shot cycle command can override the clock before anything is computed.
func (c *Controller) ensureWindow(now time.Time) {
	if c.window.Stop.IsZero() {
		c.window = NewWindow(now, c.cfg.StartHour, c.cfg.StopHour)
		c.lastRecalc = now
	}
}

// Run executes the control loop until the context is cancelled. One tick is
// processed immediately, then every PollInterval.
func (c *Controller) Run(ctx context.Context) error {
	start := c.now()
	c.ensureWindow(start)
	c.log.Infof("curtailment loop started: window %s -> %s, poll %s, recalc %s",
		c.window.Start.Format(time.RFC3339), c.window.Stop.Format(time.RFC3339),
		c.cfg.PollInterval, c.cfg.RecalcInterval)

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()
	for {
		c.Tick(ctx)
		select {
		case <-ctx.Done():
			c.log.Infof("curtailment loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick performs one poll: it rolls the window forward when it has gone stale
// and recalculates charge profiles when the recalculation conditions hold.
func (c *Controller) Tick(ctx context.Context) {
	now := c.now()
	c.ensureWindow(now)
	if c.window.Stale(now) {
		c.window = NewWindow(now, c.cfg.StartHour, c.cfg.StopHour)
		c.log.Infof("curtailment window rolled forward: %s -> %s",
			c.window.Start.Format(time.RFC3339), c.window.Stop.Format(time.RFC3339))
	}
	if now.Sub(c.lastRecalc) < c.cfg.RecalcInterval || !c.window.Open(now) {
		c.log.Infof("conditions not met to recalculate charge profiles, rechecking at %s",
			now.Add(c.cfg.PollInterval).Format(time.RFC3339))
		return
	}
	c.Recalculate(ctx)
	c.lastRecalc = c.now()
}

// Recalculate runs one full recalculation cycle over every charger at the
// configured location. Unreachable chargers or sessions are logged and
// skipped so one failure never halts curtailment for the rest of the fleet.
func (c *Controller) Recalculate(ctx context.Context) {
	began := c.now()
	c.ensureWindow(began)
	chargers, err := c.provider.Chargers(ctx)
	if err != nil {
		c.log.Errorf("list chargers: %v", err)
		return
	}

	var sited, dispatched, skipped int
	for _, ch := range chargers {
		if !ch.AtLocation(c.cfg.LocationID) {
			continue
		}
		sited++
		for conn := 1; conn <= c.cfg.ConnectorCount; conn++ {
			if ctx.Err() != nil {
				return
			}
			if c.processSession(ctx, ch.ID, conn) {
				dispatched++
			} else {
				skipped++
			}
		}
	}

	if err := c.sink.RecordCycle(metrics.CycleEvent{
		Chargers:   sited,
		Dispatched: dispatched,
		Skipped:    skipped,
		Duration:   c.now().Sub(began),
		Time:       began,
	}); err != nil {
		c.log.Warnf("record cycle: %v", err)
	}
	c.log.Infof("recalculation done: %d chargers, %d profiles dispatched, %d sessions skipped",
		sited, dispatched, skipped)
}

// processSession handles a single (charger, connector) session and reports
// whether a profile was dispatched for it.
func (c *Controller) processSession(ctx context.Context, chargerID string, connectorID int) bool {
	key := HistoryKey(chargerID, connectorID)

	mv, err := c.provider.LatestMeterValue(ctx, chargerID, connectorID)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			c.log.Debugf("%s: no meter values, skipping", key)
		} else {
			c.log.Warnf("%s: meter values: %v", key, err)
		}
		return false
	}

	tx, err := c.provider.LatestTransaction(ctx, chargerID, connectorID)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			c.log.Debugf("%s: no transactions, skipping", key)
		} else {
			c.log.Warnf("%s: transactions: %v", key, err)
		}
		return false
	}
	if !tx.Active() {
		c.log.Debugf("%s: transaction no longer active", key)
		return false
	}

	now := c.now()
	var rateKW float64
	source := metrics.SourceComputed
	if soc, ok := mv.SoC(); ok {
		needed := c.cfg.DesiredSoC - soc
		if needed < 0 {
			needed = 0
		}
		remaining := c.window.Remaining(now)
		rateKW = RequiredRate(remaining, needed, c.cfg.BatteryCapacityKWh)
		c.log.Debugw("charge rate computed", map[string]any{
			"session":       key,
			"soc":           soc,
			"soc_needed":    needed,
			"remaining_min": remaining.Minutes(),
			"rate_kw":       rateKW,
		})
	} else if prev, ok := c.history.Latest(key); ok {
		// Sensor read failed: hold the last known-good rate instead of
		// oscillating the connector to a fresh guess.
		rateKW = prev.Rate()
		source = metrics.SourceHistory
		c.log.Warnf("%s: SoC unreadable, re-issuing last rate %.2f kW", key, rateKW)
	} else {
		rateKW = c.cfg.DefaultRateKW
		source = metrics.SourceDefault
		c.log.Warnf("%s: SoC unreadable and no history, issuing default rate %.2f kW", key, rateKW)
	}

	profile := model.NewChargeProfile(connectorID, c.cfg.Bounds.Clamp(rateKW), now)
	if err := c.sender.SetChargeProfile(ctx, chargerID, profile); err != nil {
		c.log.Errorf("%s: set charge profile: %v", key, err)
		return false
	}
	c.history.Record(key, profile)

	if err := c.sink.RecordProfile(metrics.ProfileEvent{
		ChargerID:   chargerID,
		ConnectorID: connectorID,
		RateKW:      profile.Rate(),
		Source:      source,
		Time:        now,
	}); err != nil {
		c.log.Warnf("%s: record profile: %v", key, err)
	}
	if c.pub != nil {
		if err := c.pub.PublishProfile(chargerID, profile); err != nil {
			c.log.Warnf("%s: publish profile: %v", key, err)
		}
	}
	c.log.Debugw("charge profile dispatched", map[string]any{
		"session": key,
		"rate_kw": profile.Rate(),
		"source":  string(source),
	})
	return true
}
