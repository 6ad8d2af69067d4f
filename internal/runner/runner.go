package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/markussiebert/dnscope/internal/family"
	"github.com/markussiebert/dnscope/internal/logger"
	"github.com/markussiebert/dnscope/internal/provider"
)

// Prober reports the caller's current public address.
type Prober interface {
	Probe(ctx context.Context, f family.Family) (netip.Addr, error)
}

// Resolver reports the address a domain currently resolves to.
type Resolver interface {
	Resolve(ctx context.Context, domain string, f family.Family) (netip.Addr, error)
}

// Updater publishes an address at the dynamic DNS provider.
type Updater interface {
	Name() string
	Update(ctx context.Context, f family.Family, domain string, addr netip.Addr) error
}

// Config controls which families are handled and when an update is sent.
type Config struct {
	Domain      string
	IPv4        bool
	IPv6        bool
	OnlyChanges bool
}

// Families returns the enabled families in processing order.
func (c Config) Families() []family.Family {
	enabled := map[family.Family]bool{family.V4: c.IPv4, family.V6: c.IPv6}
	var out []family.Family
	for _, f := range family.All {
		if enabled[f] {
			out = append(out, f)
		}
	}
	return out
}

// Action is the outcome of one family within a run.
type Action string

const (
	ActionSkipped   Action = "skipped"
	ActionUnchanged Action = "unchanged"
	ActionUpdated   Action = "updated"
	ActionFailed    Action = "failed"
	// ActionPending is reported by Check when Run would send an update.
	ActionPending Action = "pending"
)

// Outcome describes what happened to one family.
type Outcome struct {
	Family    family.Family
	Current   netip.Addr
	Published netip.Addr
	Action    Action
	Err       error
}

// MarshalJSON renders addresses as text and omits the ones that are unavailable.
func (o Outcome) MarshalJSON() ([]byte, error) {
	v := struct {
		Family    string `json:"family"`
		Current   string `json:"current,omitempty"`
		Published string `json:"published,omitempty"`
		Action    Action `json:"action"`
		Error     string `json:"error,omitempty"`
	}{
		Family: o.Family.String(),
		Action: o.Action,
	}
	if o.Current.IsValid() {
		v.Current = o.Current.String()
	}
	if o.Published.IsValid() {
		v.Published = o.Published.String()
	}
	if o.Err != nil {
		v.Error = o.Err.Error()
	}
	return json.Marshal(v)
}

// Report collects the outcomes of a run in processing order.
type Report struct {
	Domain   string    `json:"domain"`
	Provider string    `json:"provider"`
	Outcomes []Outcome `json:"outcomes"`
}

// Failed reports whether any family failed to update.
func (r Report) Failed() bool {
	for _, o := range r.Outcomes {
		if o.Action == ActionFailed {
			return true
		}
	}
	return false
}

// String renders one line per family, e.g. "IPv4: updated 203.0.113.7".
func (r Report) String() string {
	var b strings.Builder
	for _, o := range r.Outcomes {
		fmt.Fprintf(&b, "%s: %s", o.Family, o.Action)
		if o.Current.IsValid() {
			fmt.Fprintf(&b, " %s", o.Current)
		}
		if o.Err != nil {
			fmt.Fprintf(&b, " (%v)", o.Err)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Runner sequences probe, resolve, decide and update for each enabled family.
type Runner struct {
	cfg      Config
	prober   Prober
	resolver Resolver
	updater  Updater
}

// New creates a Runner. updater may be nil when only Check is used.
func New(cfg Config, prober Prober, resolver Resolver, updater Updater) *Runner {
	return &Runner{
		cfg:      cfg,
		prober:   prober,
		resolver: resolver,
		updater:  updater,
	}
}

// Run processes IPv4 then IPv6. It never returns early: every enabled family
// ends up in the report, failures included.
func (r *Runner) Run(ctx context.Context) Report {
	return r.run(ctx, false)
}

// Check performs the same lookups as Run but never calls the provider.
func (r *Runner) Check(ctx context.Context) Report {
	return r.run(ctx, true)
}

func (r *Runner) run(ctx context.Context, dryRun bool) Report {
	report := Report{Domain: r.cfg.Domain}
	if r.updater != nil {
		report.Provider = r.updater.Name()
	}

	for _, f := range r.cfg.Families() {
		report.Outcomes = append(report.Outcomes, r.process(ctx, f, dryRun))
	}
	return report
}

func (r *Runner) process(ctx context.Context, f family.Family, dryRun bool) Outcome {
	out := Outcome{Family: f}

	current, err := r.prober.Probe(ctx, f)
	if err != nil {
		logger.Warn("Could not determine public %s, skipping: %v", f, err)
		out.Action = ActionSkipped
		out.Err = err
		return out
	}
	out.Current = current

	published, err := r.resolver.Resolve(ctx, r.cfg.Domain, f)
	if err != nil {
		// An unresolvable record counts as different from the current address.
		logger.Warn("Could not resolve %s record of %s: %v", f.RecordType(), r.cfg.Domain, err)
	} else {
		out.Published = published
	}

	if r.cfg.OnlyChanges && out.Published == current {
		logger.Info("%s of %s is up to date: %s", f, r.cfg.Domain, current)
		out.Action = ActionUnchanged
		return out
	}

	if dryRun || r.updater == nil {
		logger.Info("%s of %s would be updated to %s (published: %s)", f, r.cfg.Domain, current, describe(out.Published))
		out.Action = ActionPending
		return out
	}

	logger.Info("Updating %s of %s via %s to %s (published: %s)", f, r.cfg.Domain, r.updater.Name(), current, describe(out.Published))
	err = r.updater.Update(ctx, f, r.cfg.Domain, current)
	if errors.Is(err, provider.ErrNoChange) {
		logger.Info("%s already holds %s for %s, nothing sent", r.updater.Name(), current, r.cfg.Domain)
		out.Action = ActionUnchanged
		return out
	}
	if err != nil {
		logError(f, r.updater.Name(), err)
		out.Action = ActionFailed
		out.Err = err
		return out
	}

	logger.Info("%s of %s updated to %s", f, r.cfg.Domain, current)
	out.Action = ActionUpdated
	return out
}

func logError(f family.Family, name string, err error) {
	var rejected *provider.RejectedError
	switch {
	case errors.As(err, &rejected):
		logger.Error("%s rejected the %s update (status %d): %s", name, f, rejected.StatusCode, strings.TrimSpace(rejected.Body))
	case errors.Is(err, provider.ErrUnreachable):
		logger.Error("%s update via %s failed, provider unreachable: %v", f, name, err)
	default:
		logger.Error("%s update via %s failed: %v", f, name, err)
	}
}

func describe(addr netip.Addr) string {
	if !addr.IsValid() {
		return "none"
	}
	return addr.String()
}
