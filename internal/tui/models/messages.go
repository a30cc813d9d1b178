package models

import (
	"github.com/Dallionking/casper-risk-oracle/internal/feed"
	"github.com/Dallionking/casper-risk-oracle/internal/poller"
)

// statusTickMsg fires the recurring status fetch of one polling run.
type statusTickMsg struct{ gen poller.Generation }

// heartbeatMsg advances the "updated Ns ago" counter of one polling run.
type heartbeatMsg struct{ gen poller.Generation }

// logTickMsg fires the log fetch. It is not tied to a run.
type logTickMsg struct{}

// statusResultMsg carries the outcome of a status fetch and the run that
// issued it.
type statusResultMsg struct {
	gen    poller.Generation
	status *feed.RiskStatus
	err    error
}

// logResultMsg carries the outcome of a log fetch.
type logResultMsg struct {
	text string
	err  error
}

// feedChangedMsg reports a local feed file rewrite.
type feedChangedMsg feed.ChangeEvent

// watchClosedMsg is sent once the change channel is closed.
type watchClosedMsg struct{}
