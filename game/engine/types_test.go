package engine

import (
	"encoding/json"
	"testing"
)

func TestTileStateConstants(t *testing.T) {
	tests := []struct {
		state    TileState
		expected string
	}{
		{Hidden, "hidden"},
		{Revealed, "revealed"},
		{Matched, "matched"},
	}

	for _, test := range tests {
		if string(test.state) != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, string(test.state))
		}
	}
}

func TestLevelDimensions(t *testing.T) {
	tests := []struct {
		level         Level
		columns, rows int
		pairs         int
	}{
		{Easy, 4, 4, 8},
		{Medium, 6, 4, 12},
		{Hard, 6, 6, 18},
	}

	for _, test := range tests {
		c, r := test.level.Dimensions()
		if c != test.columns || r != test.rows {
			t.Errorf("%s: expected %dx%d, got %dx%d", test.level, test.columns, test.rows, c, r)
		}
		if (c*r)%2 != 0 {
			t.Errorf("%s: grid must hold an even number of tiles", test.level)
		}
		if test.level.Pairs() != test.pairs {
			t.Errorf("%s: expected %d pairs, got %d", test.level, test.pairs, test.level.Pairs())
		}
	}

	if Level(7).Valid() {
		t.Error("Expected level 7 to be invalid")
	}
	if c, r := Level(7).Dimensions(); c != 0 || r != 0 {
		t.Errorf("Expected 0x0 for unknown level, got %dx%d", c, r)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"easy", Easy, false},
		{"EASY", Easy, false},
		{" Medium ", Medium, false},
		{"h", Hard, false},
		{"impossible", Easy, true},
		{"", Easy, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := ParseLevel(test.input)
			if (err != nil) != test.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			}
			if !test.wantErr && got != test.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", test.input, got, test.expected)
			}
		})
	}
}

func TestLevelJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Level Level `json:"level"`
	}{Hard})
	if err != nil {
		t.Fatalf("Failed to marshal level: %v", err)
	}
	if string(data) != `{"level":"hard"}` {
		t.Errorf("Unexpected JSON: %s", data)
	}

	var decoded struct {
		Level Level `json:"level"`
	}
	if err := json.Unmarshal([]byte(`{"level":"medium"}`), &decoded); err != nil {
		t.Fatalf("Failed to unmarshal level: %v", err)
	}
	if decoded.Level != Medium {
		t.Errorf("Expected medium, got %v", decoded.Level)
	}

	if err := json.Unmarshal([]byte(`{"level":"nightmare"}`), &decoded); err == nil {
		t.Error("Expected error for unknown level name")
	}
}

func TestRevealResultAccepted(t *testing.T) {
	if (RevealResult{Outcome: OutcomeRejected}).Accepted() {
		t.Error("Rejected result must not be accepted")
	}
	for _, o := range []RevealOutcome{OutcomeWaiting, OutcomeMatch, OutcomeMismatch} {
		if !(RevealResult{Outcome: o}).Accepted() {
			t.Errorf("Outcome %s should be accepted", o)
		}
	}
}

func TestIdentityOf(t *testing.T) {
	seen := make(map[Identity]Symbol)
	labels := make(map[string]Symbol)
	for s := Symbol(0); int(s) < MaxIdentities; s++ {
		id := IdentityOf(s)
		if prev, ok := seen[id]; ok {
			t.Fatalf("Symbols %d and %d share identity %+v", prev, s, id)
		}
		seen[id] = s

		label := s.Label()
		if prev, ok := labels[label]; ok {
			t.Fatalf("Symbols %d and %d share label %s", prev, s, label)
		}
		labels[label] = s
	}

	if NoSymbol.Label() != "??" {
		t.Errorf("Expected masked label ??, got %s", NoSymbol.Label())
	}
	if IdentityOf(NoSymbol) != (Identity{}) {
		t.Error("Expected empty identity for NoSymbol")
	}
}
