package utils

import (
	"strings"
	"testing"
)

func TestGenerateRunID(t *testing.T) {
	id1 := GenerateRunID()
	id2 := GenerateRunID()

	if id1 == "" {
		t.Error("GenerateRunID returned empty string")
	}

	if id1 == id2 {
		t.Error("GenerateRunID should return unique IDs")
	}

	if !strings.HasPrefix(id1, "run-") {
		t.Errorf("GenerateRunID should have run- prefix: %s", id1)
	}
}

func TestMemberName(t *testing.T) {
	tests := []struct {
		generation int
		index      int
		expected   string
	}{
		{0, 0, "member-0"},
		{0, 7, "member-7"},
		{1, 0, "gen-1-member-0"},
		{12, 3, "gen-12-member-3"},
	}

	for _, tt := range tests {
		got := MemberName(tt.generation, tt.index)
		if got != tt.expected {
			t.Errorf("MemberName(%d, %d) = %s, expected %s", tt.generation, tt.index, got, tt.expected)
		}
	}
}

func TestRealizationName(t *testing.T) {
	if got := RealizationName(4); got != "real-4" {
		t.Errorf("RealizationName(4) = %s, expected real-4", got)
	}
}
