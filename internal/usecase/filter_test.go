package usecase

import (
	"testing"
	"time"

	"SigTrail/internal/domain/models"
)

func sampleCollections() ([]models.OriginSignal, []models.ExecutionRecord) {
	origin := []models.OriginSignal{
		{ID: "SIG-1", Action: models.ActionEnterLong, Instrument: "EURUSD", Status: models.StatusProcessed, OwnerID: "USR-100", Timestamp: tsAt(10, 9)},
		{ID: "SIG-2", Action: models.ActionExitLong, Instrument: "GBPUSD", Status: models.StatusFailed, OwnerID: "USR-100", Timestamp: tsAt(11, 9)},
		{ID: "SIG-3", Action: models.ActionEnterShort, Instrument: "EURUSD", Status: models.StatusPending, OwnerID: "USR-200", Timestamp: tsAt(12, 9)},
	}
	execs := []models.ExecutionRecord{
		{ID: "EXE-1", OriginSignalRef: "SIG-1", AccountID: "ACC-7", OwnerID: "USR-100", Outcome: models.OutcomeSuccess, Timestamp: tsAt(10, 10)},
		{ID: "EXE-2", OriginSignalRef: "SIG-1", AccountID: "ACC-8", OwnerID: "USR-200", Outcome: models.OutcomeFailed, Timestamp: tsAt(11, 10)},
		{ID: "EXE-3", OriginSignalRef: "SIG-2", AccountID: "ACC-9", OwnerID: "USR-100", Outcome: models.OutcomeSuccess, Timestamp: tsAt(12, 10)},
	}
	return origin, execs
}

func TestApplyFilterIdentityCopies(t *testing.T) {
	origin, execs := sampleCollections()
	res := ApplyFilter(models.FilterCriteria{}, origin, execs, nil)
	if len(res.Origin) != len(origin) || len(res.Executions) != len(execs) {
		t.Fatalf("identity filter dropped records: %d/%d", len(res.Origin), len(res.Executions))
	}
	// must be fresh slices, not aliases
	res.Origin[0].ID = "mutated"
	if origin[0].ID == "mutated" {
		t.Fatalf("filter result aliases input slice")
	}
}

func TestApplyFilterStatus(t *testing.T) {
	origin, execs := sampleCollections()
	res := ApplyFilter(models.FilterCriteria{Status: models.ClassSuccess}, origin, execs, nil)
	if len(res.Origin) != 1 || res.Origin[0].ID != "SIG-1" {
		t.Fatalf("unexpected origin results %+v", res.Origin)
	}
	if len(res.Executions) != 2 {
		t.Fatalf("expected 2 successful executions, got %d", len(res.Executions))
	}
}

func TestApplyFilterPendingExcludesExecutions(t *testing.T) {
	origin, execs := sampleCollections()
	res := ApplyFilter(models.FilterCriteria{Status: models.ClassPending}, origin, execs, nil)
	if len(res.Origin) != 1 || res.Origin[0].ID != "SIG-3" {
		t.Fatalf("unexpected origin results %+v", res.Origin)
	}
	if len(res.Executions) != 0 {
		t.Fatalf("pending filter must exclude all executions, got %d", len(res.Executions))
	}
}

func TestApplyFilterSource(t *testing.T) {
	origin, execs := sampleCollections()
	res := ApplyFilter(models.FilterCriteria{Source: models.SourceOrigin}, origin, execs, nil)
	if len(res.Origin) != 3 || len(res.Executions) != 0 {
		t.Fatalf("source=origin got %d/%d", len(res.Origin), len(res.Executions))
	}
	res = ApplyFilter(models.FilterCriteria{Source: models.SourceExecution}, origin, execs, nil)
	if len(res.Origin) != 0 || len(res.Executions) != 3 {
		t.Fatalf("source=execution got %d/%d", len(res.Origin), len(res.Executions))
	}
}

func TestApplyFilterDateRangeSwapped(t *testing.T) {
	origin, execs := sampleCollections()
	from := tsAt(12, 0)
	to := tsAt(10, 0)
	// inverted range is repaired, not rejected
	res := ApplyFilter(models.FilterCriteria{From: &from, To: &to}, origin, execs, nil)
	if len(res.Origin) != 3 {
		t.Fatalf("swapped range should cover all three days, got %d", len(res.Origin))
	}
}

func TestApplyFilterEndDayInclusive(t *testing.T) {
	origin := []models.OriginSignal{
		{ID: "SIG-1", Timestamp: time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC), Status: models.StatusProcessed},
		{ID: "SIG-2", Timestamp: time.Date(2025, 6, 11, 0, 30, 0, 0, time.UTC), Status: models.StatusProcessed},
	}
	to := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	res := ApplyFilter(models.FilterCriteria{To: &to}, origin, nil, nil)
	if len(res.Origin) != 1 || res.Origin[0].ID != "SIG-1" {
		t.Fatalf("end day must be inclusive through 23:59, got %+v", res.Origin)
	}
}

func TestApplyFilterSearchCaseInsensitive(t *testing.T) {
	origin, execs := sampleCollections()
	res := ApplyFilter(models.FilterCriteria{Search: "eurusd"}, origin, execs, nil)
	if len(res.Origin) != 2 {
		t.Fatalf("expected 2 instrument matches, got %d", len(res.Origin))
	}
	res = ApplyFilter(models.FilterCriteria{Search: "sig-2"}, origin, execs, nil)
	if len(res.Origin) != 1 || res.Origin[0].ID != "SIG-2" {
		t.Fatalf("expected SIG-2, got %+v", res.Origin)
	}
	// execution search matches the origin ref too
	if len(res.Executions) != 1 || res.Executions[0].ID != "EXE-3" {
		t.Fatalf("expected EXE-3 by origin ref, got %+v", res.Executions)
	}
}

func TestApplyFilterSearchByAccountName(t *testing.T) {
	origin, execs := sampleCollections()
	resolve := func(accountID string) (string, bool) {
		if accountID == "ACC-7" {
			return "Main Account", true
		}
		return "", false
	}
	res := ApplyFilter(models.FilterCriteria{Search: "main acc"}, origin, execs, resolve)
	if len(res.Executions) != 1 || res.Executions[0].ID != "EXE-1" {
		t.Fatalf("expected match via resolved name, got %+v", res.Executions)
	}

	// nil resolver disables name matching without failing
	res = ApplyFilter(models.FilterCriteria{Search: "main acc"}, origin, execs, nil)
	if len(res.Executions) != 0 {
		t.Fatalf("nil resolver must not match names, got %+v", res.Executions)
	}
}

func TestApplyFilterOwnerDrillDown(t *testing.T) {
	origin, execs := sampleCollections()
	// owner filter normalizes before comparing
	res := ApplyFilter(models.FilterCriteria{OwnerID: "usr200"}, origin, execs, nil)
	if len(res.Executions) != 1 || res.Executions[0].ID != "EXE-2" {
		t.Fatalf("expected EXE-2 for owner USR-200, got %+v", res.Executions)
	}
}

func TestApplyFilterOrderPreserved(t *testing.T) {
	origin, execs := sampleCollections()
	res := ApplyFilter(models.FilterCriteria{Status: models.ClassSuccess}, origin, execs, nil)
	if len(res.Executions) != 2 || res.Executions[0].ID != "EXE-1" || res.Executions[1].ID != "EXE-3" {
		t.Fatalf("input order not preserved: %+v", res.Executions)
	}
}
