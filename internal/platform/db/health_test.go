package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestHealthReport_Fail(t *testing.T) {
	report := HealthReport{
		Status: "healthy",
		Schema: "consultorio",
		Pool:   &PoolStats{TotalConns: 3, MaxConns: 20, Healthy: true},
	}

	failed := report.fail(errors.New("connection refused"))

	if failed.Status != "unhealthy" {
		t.Errorf("expected status unhealthy, got %q", failed.Status)
	}
	if failed.Error != "connection refused" {
		t.Errorf("expected error message to be kept, got %q", failed.Error)
	}
	if failed.Pool.Healthy {
		t.Error("expected pool to be marked unhealthy")
	}
	if failed.Schema != "consultorio" {
		t.Errorf("expected schema to be kept, got %q", failed.Schema)
	}
}

func TestHealthReport_JSON(t *testing.T) {
	report := HealthReport{
		Status:        "healthy",
		Schema:        "consultorio",
		SchemaVersion: 6,
		Pool:          &PoolStats{TotalConns: 1, MaxConns: 10, AcquireDuration: "250ms", Healthy: true},
	}

	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["schema_version"].(float64) != 6 {
		t.Errorf("expected schema_version 6, got %v", decoded["schema_version"])
	}
	if _, ok := decoded["error"]; ok {
		t.Error("expected error to be omitted when healthy")
	}
	pool := decoded["pool"].(map[string]interface{})
	if pool["acquire_duration"] != "250ms" {
		t.Errorf("expected acquire_duration 250ms, got %v", pool["acquire_duration"])
	}
}

func TestSchemaVersion_InvalidSchema(t *testing.T) {
	if _, err := schemaVersion(context.Background(), nil, "bad schema"); err == nil {
		t.Error("expected error for invalid schema")
	}
}
