package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OriginSignal is an alert received from the external trading-signal source,
// prior to any broker-side execution. Immutable once fetched; the core never
// mutates signals in place.
type OriginSignal struct {
	ID           string          `json:"id"`
	Action       SignalAction    `json:"action"`
	Instrument   string          `json:"instrument"`
	Timestamp    time.Time       `json:"timestamp"`
	OwnerID      string          `json:"owner_id"` // raw, unnormalized
	Status       SignalStatus    `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	ErrorMessage string          `json:"error_message,omitempty"`
	// ProcessingTimeMs is set by sources that measure alert handling
	// latency; absent (nil) records are excluded from averages.
	ProcessingTimeMs *int64 `json:"processing_time_ms,omitempty"`
}

// ExecutionRecord is the per-account outcome of acting on an origin signal.
type ExecutionRecord struct {
	ID              string           `json:"id"`
	OriginSignalRef string           `json:"origin_signal_ref"`
	AccountID       string           `json:"account_id"`
	OwnerID         string           `json:"owner_id"` // raw, unnormalized
	Outcome         ExecutionOutcome `json:"outcome"`
	Timestamp       time.Time        `json:"timestamp"`
	FailureReason   string           `json:"failure_reason,omitempty"`
}

// CorrelatedSignal joins one origin signal with the execution records it
// produced, partitioned by outcome. Derived on every composition, never
// stored.
type CorrelatedSignal struct {
	Signal    OriginSignal      `json:"signal"`
	Succeeded []ExecutionRecord `json:"succeeded"`
	Failed    []ExecutionRecord `json:"failed"`
}

// CorrelatedView is the full composition result. Orphaned holds execution
// records whose referenced origin signal is absent from the input set; they
// are surfaced rather than dropped so data-quality issues stay visible.
type CorrelatedView struct {
	Signals  []CorrelatedSignal `json:"signals"`
	Orphaned []ExecutionRecord  `json:"orphaned,omitempty"`
}

// TrackingMetrics summarizes a pair of (origin, execution) collections.
type TrackingMetrics struct {
	Total               int     `json:"total"`
	SuccessCount        int     `json:"success_count"`
	FailedCount         int     `json:"failed_count"`
	PendingCount        int     `json:"pending_count"`
	AvgProcessingTimeMs float64 `json:"avg_processing_time_ms"`
	SuccessRatePct      float64 `json:"success_rate_pct"`
}

// QueryScope bounds a fetch. Privileged callers see every record in the
// bot's scope; otherwise records are restricted to the normalized OwnerID.
// Privilege is always threaded explicitly, never read from ambient state.
type QueryScope struct {
	BotID      string
	OwnerID    string
	Privileged bool
}

// FilterCriteria narrows fetched collections. Options are ANDed; the zero
// value is the identity filter.
type FilterCriteria struct {
	Search  string
	Status  StatusClass
	Source  SourceClass
	From    *time.Time
	To      *time.Time
	OwnerID string // privileged drill-down into one owner's executions
}

// IsZero reports whether the criteria would pass everything through.
func (c FilterCriteria) IsZero() bool {
	return c.Search == "" &&
		(c.Status == "" || c.Status == ClassAll) &&
		(c.Source == "" || c.Source == SourceAll) &&
		c.From == nil && c.To == nil && c.OwnerID == ""
}
