package extract

import "testing"

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		kind    LineKind
		text    string
		dropped bool
	}{
		{"BRAN (looking down): I promise.", LineCharacter, "<boname> BRAN <eoname> I promise <eos>", false},
		{"[Blackout / Opening credits]", LineExposition, "<open-exp> Blackout / Opening credits <close-exp>", false},
		{"/ BLACKOUT /", LineExposition, "<open-exp> <BLACKOUT> <close-exp>", false},
		{"JON/ROBB: Quick, Bran, faster!", LineExposition, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			p := ParseLine(tt.line)
			if p.Kind != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, p.Kind)
			}
			if p.Dropped != tt.dropped {
				t.Errorf("Expected dropped=%v, got %v", tt.dropped, p.Dropped)
			}
			if p.Text != tt.text {
				t.Errorf("Expected %q, got %q", tt.text, p.Text)
			}
		})
	}
}
