// Package license decides whether license-gated features are available and
// drives the host's feature-blocked notification.
package license

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

// PlanState is the lifecycle state of a service plan.
type PlanState string

const (
	StateActive    PlanState = "Active"
	StateWarning   PlanState = "Warning"
	StateSuspended PlanState = "Suspended"
	StateInactive  PlanState = "Inactive"
	StateUnknown   PlanState = "Unknown"
)

// Plan is one service plan the user holds.
type Plan struct {
	Identifier string    `json:"spIdentifier"`
	State      PlanState `json:"state"`
}

// LookupResult is what a plan provider reports.
type LookupResult struct {
	Plans          []Plan `json:"plans"`
	UnsupportedEnv bool   `json:"isLicenseUnsupportedEnv"`
}

// PlanProvider performs the one-shot plan lookup.
type PlanProvider interface {
	AvailablePlans(ctx context.Context) (LookupResult, error)
}

// Notifier is the host's notification surface.
type Notifier interface {
	NotifyFeatureBlocked(message string) error
	ClearNotification() error
}

// NotificationType selects how the host presents license notifications.
type NotificationType string

const (
	NotificationGeneral        NotificationType = "General"
	NotificationUnsupportedEnv NotificationType = "UnsupportedEnv"
)

// Blocked-feature messages.
const (
	MeasuresBlockedMessage = "Using measures is only available in the licensed version"
	ExportBlockedMessage   = "Exporting documents is only available in the licensed version"
)

// Evaluate reports whether any plan's identifier contains keyword while the
// plan is Active or Warning.
func Evaluate(keyword string, plans []Plan) bool {
	for _, p := range plans {
		if !strings.Contains(p.Identifier, keyword) {
			continue
		}
		if p.State == StateActive || p.State == StateWarning {
			return true
		}
	}
	return false
}

// RequiresLicense reports whether a data shape needs a license. Fields
// driven by computed or aggregated values do.
func RequiresLicense(hasDynamicFields bool) bool {
	return hasDynamicFields
}

// -----------------------------------------------------------------------------
// Gate
// -----------------------------------------------------------------------------

// State is a snapshot of the license state.
type State struct {
	IsLicensed bool `json:"isLicensed"`

	// HasServicePlans is nil until the lookup resolves, and again when it failed.
	HasServicePlans  *bool            `json:"hasServicePlans"`
	NotificationType NotificationType `json:"notificationType"`
	Resolved         bool             `json:"resolved"`
}

// Gate owns the license state. It reads as unlicensed until Resolve
// completes successfully.
type Gate struct {
	keyword string

	mu    sync.RWMutex
	state State

	// afterFunc schedules the delayed clear; replaced in tests.
	afterFunc func(time.Duration, func())
}

// NewGate creates a gate matching plans by keyword.
func NewGate(keyword string) *Gate {
	return &Gate{
		keyword: keyword,
		state:   State{NotificationType: NotificationGeneral},
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Resolve runs the plan lookup in the background. The returned channel is
// closed once the state has been updated.
func (g *Gate) Resolve(ctx context.Context, provider PlanProvider) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		result, err := provider.AvailablePlans(ctx)
		if err != nil {
			log.Printf("[license] plan lookup failed: %v", err)
			g.mu.Lock()
			g.state.IsLicensed = false
			g.state.HasServicePlans = nil
			g.state.Resolved = true
			g.mu.Unlock()
			return
		}

		licensed := Evaluate(g.keyword, result.Plans)
		nt := NotificationGeneral
		if result.UnsupportedEnv {
			nt = NotificationUnsupportedEnv
		}

		g.mu.Lock()
		g.state = State{
			IsLicensed:       licensed,
			HasServicePlans:  &licensed,
			NotificationType: nt,
			Resolved:         true,
		}
		g.mu.Unlock()
		log.Printf("[license] resolved: licensed=%v plans=%d", licensed, len(result.Plans))
	}()
	return done
}

// IsLicensed reports the current decision.
func (g *Gate) IsLicensed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state.IsLicensed
}

// State returns a snapshot.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s := g.state
	if s.HasServicePlans != nil {
		v := *s.HasServicePlans
		s.HasServicePlans = &v
	}
	return s
}

// NotifyBlocked shows message on n and schedules exactly one clear after
// delay. It never waits for the clear.
func (g *Gate) NotifyBlocked(n Notifier, message string, delay time.Duration) {
	if n == nil {
		return
	}
	if err := n.NotifyFeatureBlocked(message); err != nil {
		log.Printf("[license] notify failed: %v", err)
	}
	g.afterFunc(delay, func() {
		if err := n.ClearNotification(); err != nil {
			log.Printf("[license] clear notification failed: %v", err)
		}
	})
}
