package live

import (
	"hemcore/internal/hemlog"
	"hemcore/internal/orchestrator"
)

// Broadcaster adapts a Hub into the progress sink the orchestrator's
// caller drives a run through — the teacher's internal/ws.Bridge played
// the equivalent role of adapting simulator.Callback into Hub.Broadcast
// calls.
type Broadcaster struct {
	hub         *Hub
	SampleEvery int // broadcast every Nth timestep; 0 or 1 means every step
}

func NewBroadcaster(hub *Hub, sampleEvery int) *Broadcaster {
	if sampleEvery < 1 {
		sampleEvery = 1
	}
	return &Broadcaster{hub: hub, SampleEvery: sampleEvery}
}

// OnStart broadcasts the run:started envelope.
func (b *Broadcaster) OnStart(totalSteps int) {
	msg, err := NewEnvelope(TypeRunStarted, RunStartedPayload{TotalSteps: totalSteps})
	if err != nil {
		hemlog.Default.Warn().Err(err).Msg("live: marshal run:started")
		return
	}
	b.hub.Broadcast(msg)
}

// OnStep broadcasts a sampled run:progress envelope.
func (b *Broadcaster) OnStep(res orchestrator.StepResult) {
	if res.Idx%b.SampleEvery != 0 {
		return
	}
	msg, err := NewEnvelope(TypeRunProgress, RunProgressPayload{
		Idx: res.Idx, Hour: res.Hour,
		UnmetDemandKWh: res.UnmetDemandKWh, ACH: res.ACH,
	})
	if err != nil {
		hemlog.Default.Warn().Err(err).Msg("live: marshal run:progress")
		return
	}
	b.hub.Broadcast(msg)
}

// OnComplete broadcasts the run:complete envelope.
func (b *Broadcaster) OnComplete(totalSteps int) {
	msg, err := NewEnvelope(TypeRunComplete, RunCompletePayload{TotalSteps: totalSteps})
	if err != nil {
		hemlog.Default.Warn().Err(err).Msg("live: marshal run:complete")
		return
	}
	b.hub.Broadcast(msg)
}

// OnError broadcasts a fatal run:error envelope.
func (b *Broadcaster) OnError(runErr error) {
	msg, err := NewEnvelope(TypeRunError, RunErrorPayload{Message: runErr.Error()})
	if err != nil {
		hemlog.Default.Warn().Err(err).Msg("live: marshal run:error")
		return
	}
	b.hub.Broadcast(msg)
}
