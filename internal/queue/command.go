package queue

import "time"

// Priority is the dispatch priority band. Higher values dispatch first;
// a plain > comparison over the int gives the ordering.
type Priority int

const (
	Low      Priority = 1
	Normal   Priority = 2
	High     Priority = 3
	Critical Priority = 4
)

// ParsePriority maps an inbound priority string to a Priority, degrading
// unknown strings to Normal.
func ParsePriority(s string) Priority {
	switch s {
	case "low":
		return Low
	case "normal":
		return Normal
	case "high":
		return High
	case "critical":
		return Critical
	default:
		return Normal
	}
}

// Status is the command lifecycle state.
type Status string

const (
	Pending    Status = "pending"
	Processing Status = "processing"
	Completed  Status = "completed"
	Failed     Status = "failed"
	TimedOut   Status = "timed_out"
	Cancelled  Status = "cancelled"
)

// Terminal reports whether s is one of the terminal states a command
// never leaves once entered.
func (s Status) Terminal() bool {
	switch s {
	case Completed, Failed, TimedOut, Cancelled:
		return true
	default:
		return false
	}
}

// Kind is the closed set of command kinds the dispatcher understands.
// An externally sourced payload may carry a string outside this set;
// that is the only path through which UnknownCommand can still occur.
type Kind string

const (
	ReadRegister         Kind = "read_register"
	WriteRegister        Kind = "write_register"
	ReadAll              Kind = "read_all"
	SetChargeMode        Kind = "set_charge_mode"
	SetDischargeMode     Kind = "set_discharge_mode"
	SetChargePower       Kind = "set_charge_power"
	SetDischargePower    Kind = "set_discharge_power"
	SetChargeSchedule    Kind = "set_charge_schedule"
	SetDischargeSchedule Kind = "set_discharge_schedule"
)

// Args carries every kind-specific parameter a command might need. Only
// the fields relevant to Kind are populated; the rest are zero.
type Args struct {
	Register string
	Value    float64
	Enable   bool
	Power    float64
	Slot     int
	Start    int
	End      int
}

// Command is the mutable lifecycle record for one submitted operation.
type Command struct {
	ID            string
	Kind          Kind
	Args          Args
	Priority      Priority
	TimeoutSecs   int
	MaxAttempts   int
	Attempts      int
	Status        Status
	CreatedAt     time.Time
	LastAttemptAt time.Time
	Result        any
	Error         string
	ResponseSink  string
}

// Snapshot is the read-only view returned to external callers querying
// command status, decoupled from the live Command so callers can't
// mutate queue state.
type Snapshot struct {
	ID            string
	Kind          Kind
	Status        Status
	Priority      Priority
	Attempts      int
	CreatedAt     time.Time
	LastAttemptAt time.Time
	Result        any
	Error         string
}

func snapshotOf(c *Command) Snapshot {
	return Snapshot{
		ID:            c.ID,
		Kind:          c.Kind,
		Status:        c.Status,
		Priority:      c.Priority,
		Attempts:      c.Attempts,
		CreatedAt:     c.CreatedAt,
		LastAttemptAt: c.LastAttemptAt,
		Result:        c.Result,
		Error:         c.Error,
	}
}
