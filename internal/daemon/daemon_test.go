package daemon

import (
	"context"
	"strings"
	"testing"

	"liftlog/internal/testsupport"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, nil, WithOracle(&stubOracle{answer: "null"}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if d.Addr() == "" {
		t.Fatal("Addr empty after start")
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("status not running after start")
	}
	if status.CatalogExercises != 5 {
		t.Fatalf("CatalogExercises = %d, want 5", status.CatalogExercises)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("status still running after stop")
	}
}

func TestDaemonSecondInstanceRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := New(cfg, nil, WithOracle(&stubOracle{answer: "null"}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer first.Close()

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	second, err := New(cfg, nil, WithOracle(&stubOracle{answer: "null"}))
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	defer second.Close()

	err = second.Start(ctx)
	if err == nil {
		t.Fatal("expected second instance start to fail")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("err = %v, want already running", err)
	}
}
