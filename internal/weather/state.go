package weather

// Phase names the active variant of a State.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailed  Phase = "failed"
)

// State is exactly one of Idle, Loading, Success or Failed.
// The set of variants is closed; only this package can add one.
type State interface {
	Phase() Phase
	isState()
}

// Idle is the initial state before any submission.
type Idle struct{}

// Loading means a submission is in flight.
type Loading struct{}

// Success holds the snapshot of the latest resolved submission.
type Success struct {
	Snapshot Snapshot
}

// Failed holds the user-facing message of the latest resolved submission.
type Failed struct {
	Message string
}

func (Idle) Phase() Phase    { return PhaseIdle }
func (Loading) Phase() Phase { return PhaseLoading }
func (Success) Phase() Phase { return PhaseSuccess }
func (Failed) Phase() Phase  { return PhaseFailed }

func (Idle) isState()    {}
func (Loading) isState() {}
func (Success) isState() {}
func (Failed) isState()  {}
