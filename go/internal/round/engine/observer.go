package engine

import "github.com/mcdev12/multis/go/internal/models"

// Observer receives engine notifications. Calls happen on the goroutine that
// drives the machine and must not block.
type Observer interface {
	RoundStarted(s Snapshot)
	Tick(s Snapshot)
	RoundResolved(rec models.RoundRecord, s Snapshot)
	SessionCompleted(summary models.SessionSummary)
	SessionAbandoned(s Snapshot)
}

// NopObserver ignores every notification. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) RoundStarted(Snapshot) {}
func (NopObserver) Tick(Snapshot) {}
func (NopObserver) RoundResolved(models.RoundRecord, Snapshot) {}
func (NopObserver) SessionCompleted(models.SessionSummary) {}
func (NopObserver) SessionAbandoned(Snapshot) {}

// Observers fans out to several observers in order.
type Observers []Observer

func (o Observers) RoundStarted(s Snapshot) {
	for _, ob := range o {
		ob.RoundStarted(s)
	}
}

func (o Observers) Tick(s Snapshot) {
	for _, ob := range o {
		ob.Tick(s)
	}
}

func (o Observers) RoundResolved(rec models.RoundRecord, s Snapshot) {
	for _, ob := range o {
		ob.RoundResolved(rec, s)
	}
}

func (o Observers) SessionCompleted(summary models.SessionSummary) {
	for _, ob := range o {
		ob.SessionCompleted(summary)
	}
}

func (o Observers) SessionAbandoned(s Snapshot) {
	for _, ob := range o {
		ob.SessionAbandoned(s)
	}
}
