package core

import (
	"bytes"
	"context"
	"expvar"
	"strings"
	"testing"
	"time"
)

type captureAuditRecorder struct {
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) has(op string, status AuditStatus) bool {
	for _, entry := range c.entries {
		if entry.Operation == op && entry.Status == status {
			return true
		}
	}
	return false
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

type spanRecord struct {
	op  string
	err error
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

func (c *captureTracer) has(op string, success bool) bool {
	for _, record := range c.ended {
		if record.op == op && (record.err == nil) == success {
			return true
		}
	}
	return false
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

type captureLogger struct {
	noopLogger
	warns []string
}

func (l *captureLogger) Warn(msg string, _ ...any) { l.warns = append(l.warns, msg) }

func TestServiceObservabilityCoversOperations(t *testing.T) {
	ctx := context.Background()
	audit := &captureAuditRecorder{}
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}

	svc := NewInMemoryService(NewRulesEngine(),
		WithAuditRecorder(audit),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
	)

	ten := seedTenant(t, svc)
	project, _, err := svc.CreateProject(ctx, Project{OrganizationID: ten.org.ID, Name: "Depot"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, _, err := svc.UpdateProject(ctx, project.ID, func(p *Project) error {
		p.Status = ProjectStatusActive
		return nil
	}); err != nil {
		t.Fatalf("update project: %v", err)
	}
	if _, err := svc.DeleteProject(ctx, "missing-project"); err == nil {
		t.Fatalf("expected delete of missing project to fail")
	}
	if _, err := svc.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	for _, op := range []string{"create_project", "update_project", "delete_project"} {
		if !metrics.has(op, true) {
			t.Fatalf("expected metrics success entry for %s", op)
		}
		if !tracer.has(op, true) {
			t.Fatalf("expected finished span for %s", op)
		}
		if !audit.has(op, AuditStatusSuccess) {
			t.Fatalf("expected audit success entry for %s", op)
		}
	}
	if !metrics.has("delete_project", false) || !tracer.has("delete_project", false) || !audit.has("delete_project", AuditStatusError) {
		t.Fatalf("expected failure signals for delete_project")
	}
}

func TestWarnViolationsAreLogged(t *testing.T) {
	ctx := context.Background()
	logger := &captureLogger{}
	svc := NewInMemoryService(NewDefaultRulesEngine(), WithLogger(logger))
	ten := seedTenant(t, svc)

	other, _, err := svc.CreateOrganization(ctx, Organization{Name: "Rival Co", OwnerID: ten.user.ID})
	if err != nil {
		t.Fatalf("create second organization: %v", err)
	}
	project, _, err := svc.CreateProject(ctx, Project{OrganizationID: ten.org.ID, Name: "Shared Site"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	_, res, err := svc.CreateMovement(ctx, Movement{
		OrganizationID: other.ID,
		ProjectID:      &project.ID,
		Kind:           MovementExpense,
		AmountCents:    125_00,
		Currency:       "EUR",
		OccurredOn:     time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create movement: %v", err)
	}
	found := false
	for _, v := range res.Violations {
		if v.Rule == "movement_scope" && v.Severity == SeverityWarn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected movement_scope warning, got %+v", res.Violations)
	}
	if len(logger.warns) == 0 {
		t.Fatalf("expected warn log entries")
	}
}

func TestExpvarMetricsRecorderExports(t *testing.T) {
	recorder := NewExpvarMetricsRecorder("")
	if recorder.Name() == "" {
		t.Fatalf("expected recorder to have export name")
	}
	recorder.Observe(context.Background(), "test_op", true, 10*time.Millisecond)
	recorder.Observe(context.Background(), "test_op", false, 5*time.Millisecond)

	snapshot := recorder.Snapshot()
	if snapshot.DurationsMS["test_op"] <= 0 {
		t.Fatalf("expected positive duration, snapshot=%+v", snapshot)
	}
	if snapshot.Results["test_op"]["success"] != 1 || snapshot.Results["test_op"]["error"] != 1 {
		t.Fatalf("unexpected results snapshot=%+v", snapshot)
	}

	if v := expvar.Get(recorder.Name()); v == nil {
		t.Fatalf("expected expvar export to be registered")
	} else if !strings.Contains(v.String(), "test_op") {
		t.Fatalf("expected expvar output to contain operation: %s", v.String())
	}
}

func TestJSONTraceTracerExports(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	_, span := tracer.Start(context.Background(), "trace_op")
	span.End(nil)

	entries := tracer.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected single span entry, got %d", len(entries))
	}
	if entries[0].Operation != "trace_op" || entries[0].Status != "success" {
		t.Fatalf("unexpected span entry: %+v", entries[0])
	}
	if !strings.Contains(buf.String(), "\"operation\":\"trace_op\"") {
		t.Fatalf("expected JSON output to contain operation: %q", buf.String())
	}
}
