package main

import (
	"context"
	"testing"

	"liftlog/internal/logging"
	"liftlog/internal/testsupport"
)

func TestRunDaemonReportsCatalogFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Catalog.AliasesPath = cfg.Catalog.AliasesPath + ".missing"

	if err := runDaemon(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error for missing catalog")
	}
}

func TestRunDaemonReportsStartFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = "256.256.256.256:0"

	if err := runDaemon(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error for unusable bind address")
	}
}
