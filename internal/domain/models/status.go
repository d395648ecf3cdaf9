package models

// SignalAction is the closed set of trading actions an origin signal can carry.
type SignalAction string

const (
	ActionEnterLong  SignalAction = "ENTER_LONG"
	ActionExitLong   SignalAction = "EXIT_LONG"
	ActionEnterShort SignalAction = "ENTER_SHORT"
	ActionExitShort  SignalAction = "EXIT_SHORT"
)

// SignalStatus is the lifecycle state of an origin signal.
type SignalStatus string

const (
	StatusProcessed SignalStatus = "processed"
	StatusPending   SignalStatus = "pending"
	StatusFailed    SignalStatus = "failed"
	StatusSent      SignalStatus = "sent"
)

// ExecutionOutcome is the terminal state of an execution record.
type ExecutionOutcome string

const (
	OutcomeSuccess ExecutionOutcome = "success"
	OutcomeFailed  ExecutionOutcome = "failed"
)

// StatusClass buckets signal statuses and execution outcomes for filtering
// and aggregation.
type StatusClass string

const (
	ClassAll     StatusClass = "all"
	ClassSuccess StatusClass = "success"
	ClassFailed  StatusClass = "failed"
	ClassPending StatusClass = "pending"
)

// SourceClass selects which of the two collections a filter passes through.
type SourceClass string

const (
	SourceAll       SourceClass = "all"
	SourceOrigin    SourceClass = "origin"
	SourceExecution SourceClass = "execution"
)

// Class maps a signal status onto its filter bucket. The switch is
// exhaustive over the declared statuses; an unknown status (bad data from
// the source) falls into ClassPending so it is never silently counted as a
// success or failure.
func (s SignalStatus) Class() StatusClass {
	switch s {
	case StatusProcessed:
		return ClassSuccess
	case StatusFailed:
		return ClassFailed
	case StatusPending, StatusSent:
		return ClassPending
	default:
		return ClassPending
	}
}

// Class maps an execution outcome onto its filter bucket. Executions have no
// pending state.
func (o ExecutionOutcome) Class() StatusClass {
	switch o {
	case OutcomeSuccess:
		return ClassSuccess
	case OutcomeFailed:
		return ClassFailed
	default:
		return ClassFailed
	}
}

// ParseStatusClass converts a raw query value to a StatusClass, defaulting
// to ClassAll.
func ParseStatusClass(s string) StatusClass {
	switch StatusClass(s) {
	case ClassSuccess, ClassFailed, ClassPending:
		return StatusClass(s)
	default:
		return ClassAll
	}
}

// ParseSourceClass converts a raw query value to a SourceClass, defaulting
// to SourceAll.
func ParseSourceClass(s string) SourceClass {
	switch SourceClass(s) {
	case SourceOrigin, SourceExecution:
		return SourceClass(s)
	default:
		return SourceAll
	}
}
