package cache

import "testing"

func TestBuildAssignmentKey(t *testing.T) {
	key := BuildAssignmentKey("order-123")
	expected := "assignment:order-123"
	if key != expected {
		t.Errorf("BuildAssignmentKey() = %v, want %v", key, expected)
	}
}
