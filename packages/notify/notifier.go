// Package notify sends run summaries of hitassert checks to chat services.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitassert/packages/core/runner"
	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	// NotifyAlways sends notifications for every run
	NotifyAlways NotifyOn = "always"
	// NotifyFailure sends notifications only when checks fail
	NotifyFailure NotifyOn = "failure"
	// NotifySuccess sends notifications only when every check passes
	NotifySuccess NotifyOn = "success"
	// NotifyRecovery sends notifications on failure and on the first
	// passing run after one
	NotifyRecovery NotifyOn = "recovery"
)

// ParseNotifyOn validates a policy name.
func ParseNotifyOn(s string) (NotifyOn, error) {
	switch n := NotifyOn(strings.ToLower(s)); n {
	case NotifyAlways, NotifyFailure, NotifySuccess, NotifyRecovery:
		return n, nil
	}
	return "", fmt.Errorf("unknown notify policy %q (want always, failure, success or recovery)", s)
}

// maxFailuresPerCheck bounds the failure lines sent for one check.
const maxFailuresPerCheck = 3

// RunSummary represents the summary of a check run for notifications
type RunSummary struct {
	TotalFiles    int           `json:"total_files"`
	TotalChecks   int           `json:"total_checks"`
	PassedChecks  int           `json:"passed_checks"`
	FailedChecks  int           `json:"failed_checks"`
	SkippedChecks int           `json:"skipped_checks"`
	Duration      time.Duration `json:"duration"`
	FailedResults []FailedCheck `json:"failed_results,omitempty"`
	IsRecovery    bool          `json:"is_recovery,omitempty"`
}

type FailedCheck struct {
	Name     string   `json:"name"`
	File     string   `json:"file"`
	Failures []string `json:"failures,omitempty"`
}

// Summarize builds a RunSummary from file results.
func Summarize(results []*runner.RunResult, d time.Duration) *RunSummary {
	s := &RunSummary{TotalFiles: len(results), Duration: d}
	for _, result := range results {
		s.PassedChecks += result.Passed
		s.FailedChecks += result.Failed
		s.SkippedChecks += result.Skipped

		for _, r := range result.Results {
			if r.Passed || r.Skipped {
				continue
			}
			fc := FailedCheck{Name: r.Name, File: result.File}
			if r.Error != nil {
				fc.Failures = append(fc.Failures, r.Error.Error())
			}
			for i, rec := range r.Records {
				if i == maxFailuresPerCheck {
					fc.Failures = append(fc.Failures, fmt.Sprintf("and %d more", len(r.Records)-i))
					break
				}
				fc.Failures = append(fc.Failures, diagnostic.Summary(rec))
			}
			s.FailedResults = append(s.FailedResults, fc)
		}
	}
	s.TotalChecks = s.PassedChecks + s.FailedChecks + s.SkippedChecks
	return s
}

// Notifier is the interface for notification services
type Notifier interface {
	Notify(summary *RunSummary) error

	// Name returns the name of the notifier
	Name() string
}

// Manager applies the NotifyOn policy across runs, as in watch mode.
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
	lastState bool // true if last run was successful
}

func NewManager(notifyOn NotifyOn, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
		lastState: true,
	}
}

// Notify sends notifications based on the configured policy
func (m *Manager) Notify(summary *RunSummary) error {
	shouldNotify := false
	currentSuccess := summary.FailedChecks == 0

	switch m.notifyOn {
	case NotifyAlways:
		shouldNotify = true
	case NotifyFailure:
		shouldNotify = !currentSuccess
	case NotifySuccess:
		shouldNotify = currentSuccess
	case NotifyRecovery:
		if !m.lastState && currentSuccess {
			shouldNotify = true
			summary.IsRecovery = true
		}
		if !currentSuccess {
			shouldNotify = true
		}
	}

	m.lastState = currentSuccess

	if !shouldNotify {
		return nil
	}

	var errs []string
	for _, n := range m.notifiers {
		if err := n.Notify(summary); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", n.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notification failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
