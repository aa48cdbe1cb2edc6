package live

import "encoding/json"

// Envelope wraps every progress message with a type discriminator, the
// same shape as the teacher's internal/ws.Envelope.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	TypeRunStarted  = "run:started"
	TypeRunProgress = "run:progress"
	TypeRunComplete = "run:complete"
	TypeRunError    = "run:error"
)

// RunStartedPayload announces the total number of timesteps about to run.
type RunStartedPayload struct {
	TotalSteps int `json:"total_steps"`
}

// RunProgressPayload reports one timestep's headline numbers; sent at a
// sampled cadence (see Broadcaster.SampleEvery), not every timestep — a
// year at half-hourly resolution is 17520 steps, and a message per step
// would overwhelm the client the way a log line per step would overwhelm
// a log file.
type RunProgressPayload struct {
	Idx            int     `json:"idx"`
	Hour           float64 `json:"hour"`
	UnmetDemandKWh float64 `json:"unmet_demand_kwh"`
	ACH            float64 `json:"ach"`
}

// RunCompletePayload reports the terminal state of a finished run.
type RunCompletePayload struct {
	TotalSteps int `json:"total_steps"`
}

// RunErrorPayload reports a fatal abort, per §7's Numerical/OutOfRange
// policy.
type RunErrorPayload struct {
	Message string `json:"message"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
