package usecase

import (
	"SigTrail/internal/domain/models"
	applogger "SigTrail/pkg/logger"
)

// Compose joins origin signals with their execution records. For each origin
// signal, executions whose OriginSignalRef matches its id are partitioned by
// outcome; executions matching no origin in the input (filtered out
// independently, or genuinely dangling) land in Orphaned. Origin input order
// is preserved.
func Compose(origin []models.OriginSignal, executions []models.ExecutionRecord, log *applogger.Logger) models.CorrelatedView {
	byRef := make(map[string][]models.ExecutionRecord, len(origin))
	known := make(map[string]struct{}, len(origin))
	for _, s := range origin {
		known[s.ID] = struct{}{}
	}

	var orphaned []models.ExecutionRecord
	for _, e := range executions {
		if _, ok := known[e.OriginSignalRef]; !ok {
			orphaned = append(orphaned, e)
			continue
		}
		byRef[e.OriginSignalRef] = append(byRef[e.OriginSignalRef], e)
	}
	if len(orphaned) > 0 && log != nil {
		log.Warn("executions with no matching origin signal",
			applogger.Int("count", len(orphaned)))
	}

	out := make([]models.CorrelatedSignal, 0, len(origin))
	for _, s := range origin {
		cs := models.CorrelatedSignal{Signal: s}
		for _, e := range byRef[s.ID] {
			switch e.Outcome.Class() {
			case models.ClassSuccess:
				cs.Succeeded = append(cs.Succeeded, e)
			default:
				cs.Failed = append(cs.Failed, e)
			}
		}
		out = append(out, cs)
	}
	return models.CorrelatedView{Signals: out, Orphaned: orphaned}
}
