package monitoring

import (
	"testing"
)

func TestMonitor_Snapshot(t *testing.T) {
	m := NewMonitor()
	m.Incr("orders_placed")
	m.Incr("orders_placed")
	m.Incr("tables_closed")

	snapshot := m.Snapshot()

	if snapshot["orders_placed"] != int64(2) {
		t.Errorf("Expected 'orders_placed' to be 2, but got %v", snapshot["orders_placed"])
	}
	if snapshot["tables_closed"] != int64(1) {
		t.Errorf("Expected 'tables_closed' to be 1, but got %v", snapshot["tables_closed"])
	}

	// Check uptime presence
	if _, exists := snapshot["uptime_seconds"]; !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in snapshot, but it was not")
	}
}

func TestMonitor_Count(t *testing.T) {
	m := NewMonitor()

	if m.Count("bills_archived") != 0 {
		t.Errorf("Expected zero count for unknown counter")
	}

	m.Incr("bills_archived")
	if m.Count("bills_archived") != 1 {
		t.Errorf("Expected 'bills_archived' to be 1, but got %v", m.Count("bills_archived"))
	}
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor()
	m.Incr("orders_placed")

	m.Reset()

	snapshot := m.Snapshot()
	if _, exists := snapshot["orders_placed"]; exists {
		t.Errorf("Expected 'orders_placed' to be removed after Reset(), but it was present")
	}

	// Uptime should still be present (it's added on Snapshot call)
	if _, exists := snapshot["uptime_seconds"]; !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in snapshot, but it was not")
	}
}
