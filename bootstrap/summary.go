package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kbukum/lazykit/component"
	"github.com/kbukum/lazykit/di"
	"github.com/kbukum/lazykit/singleton"
)

// Summary renders the startup summary: providers with their strategy and
// state, and live component health.
type Summary struct {
	serviceName     string
	version         string
	runID           string
	startupDuration time.Duration
}

// NewSummary creates a new bootstrap summary.
func NewSummary(serviceName, version, runID string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		runID:       runID,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// StartupDuration returns the recorded startup time.
func (s *Summary) StartupDuration() time.Duration {
	return s.startupDuration
}

// Render writes the summary to w. registry and container may be nil.
func (s *Summary) Render(ctx context.Context, w io.Writer, registry *component.Registry, container *di.Container) {
	fmt.Fprintf(w, "\n%s %s started in %.2fs (run %s)\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds(), s.runID)

	var regs []di.RegistrationInfo
	if container != nil {
		regs = container.Registrations()
	}
	if len(regs) == 0 {
		fmt.Fprintf(w, "   └── No providers registered\n")
	} else {
		fmt.Fprintf(w, "Providers (%d)\n", len(regs))
		for i, r := range regs {
			fmt.Fprintf(w, "   %s %s %s [%s] %s: %s, constructions=%d failures=%d\n",
				treePrefix(i, len(regs)), stateIcon(r.State), r.Key, r.Type,
				r.Strategy, r.State, r.Stats.Constructions, r.Stats.Failures)
		}
	}

	if registry != nil {
		health := registry.HealthAll(ctx)
		if len(health) > 0 {
			fmt.Fprintf(w, "\nHealth\n")
			for i, h := range health {
				msg := ""
				if h.Message != "" {
					msg = " (" + h.Message + ")"
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n",
					treePrefix(i, len(health)), healthStatusIcon(h.Status), h.Name, h.Status, msg)
			}
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func stateIcon(state singleton.State) string {
	switch state {
	case singleton.StateReady:
		return "✅"
	case singleton.StateUninitialized:
		return "⚡"
	case singleton.StateConstructing:
		return "⏳"
	case singleton.StateClosed:
		return "⏸️"
	default:
		return "❓"
	}
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
