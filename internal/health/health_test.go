package health

import (
	"context"
	"errors"
	"testing"
)

func alwaysUp(ctx context.Context) error { return nil }

func alwaysDown(ctx context.Context) error { return errors.New("connection refused") }

func serviceByName(t *testing.T, r Report, name string) ServiceStatus {
	t.Helper()
	for _, s := range r.Services {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("service %q not in report", name)
	return ServiceStatus{}
}

func TestAllConnectedIsHealthy(t *testing.T) {
	c := NewChecker()
	c.Register("anki", alwaysUp)
	c.Register("todoist", alwaysUp)

	report := c.Check(context.Background())
	if report.Status != "healthy" {
		t.Errorf("status = %q, want healthy", report.Status)
	}
	if len(report.Services) != 2 {
		t.Errorf("got %d services", len(report.Services))
	}
}

func TestPartialFailureIsDegraded(t *testing.T) {
	c := NewChecker()
	c.Register("anki", alwaysDown)
	c.Register("todoist", alwaysUp)

	report := c.Check(context.Background())
	if report.Status != "degraded" {
		t.Errorf("status = %q, want degraded", report.Status)
	}
	anki := serviceByName(t, report, "anki")
	if anki.Status != "error" || anki.Error == "" {
		t.Errorf("anki = %+v", anki)
	}
}

func TestAllFailedIsUnhealthy(t *testing.T) {
	c := NewChecker()
	c.Register("anki", alwaysDown)
	c.Register("calendar", alwaysDown)

	report := c.Check(context.Background())
	if report.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", report.Status)
	}
}

func TestNilProbeIsNotConfigured(t *testing.T) {
	c := NewChecker()
	c.Register("todoist", nil)
	c.Register("vault", alwaysUp)

	report := c.Check(context.Background())
	if report.Status != "healthy" {
		t.Errorf("status = %q, want healthy (unconfigured services don't count)", report.Status)
	}
	todoist := serviceByName(t, report, "todoist")
	if todoist.Status != "not_configured" {
		t.Errorf("todoist = %+v", todoist)
	}
}

func TestNothingConfiguredIsHealthy(t *testing.T) {
	c := NewChecker()
	report := c.Check(context.Background())
	if report.Status != "healthy" {
		t.Errorf("status = %q, want healthy", report.Status)
	}
}

func TestServicesAreSortedByName(t *testing.T) {
	c := NewChecker()
	c.Register("vault", alwaysUp)
	c.Register("anki", alwaysUp)
	c.Register("calendar", alwaysUp)

	report := c.Check(context.Background())
	names := []string{}
	for _, s := range report.Services {
		names = append(names, s.Name)
	}
	want := []string{"anki", "calendar", "vault"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestProcessStatsPresent(t *testing.T) {
	c := NewChecker()
	report := c.Check(context.Background())
	if report.Process == nil {
		t.Fatal("process stats missing")
	}
	if report.Process.PID <= 0 {
		t.Errorf("pid = %d", report.Process.PID)
	}
}
