package extract

import (
	"testing"

	"github.com/ppiankov/scriptcorpus/internal/model"
)

func TestParseCharacterLine(t *testing.T) {
	tests := []struct {
		desc     string
		line     string
		expected string
	}{
		{
			desc:     "parenthetical stripped from name",
			line:     "BRAN (looking down): I promise.",
			expected: "<boname> BRAN <eoname> I promise <eos>",
		},
		{
			desc:     "multi-word name joined",
			line:     "SEPTA MORDANE (to SANSA): Fine work, as always. Well done.",
			expected: "<boname> SEPTA_MORDANE <eoname> Fine work , as always <eos> Well done <eos>",
		},
		{
			desc:     "embedded colon kept as text",
			line:     "JAIME: As your brother, I feel it’s my duty to warn you: You worry too much.",
			expected: "<boname> JAIME <eoname> As your brother , I feel it 's my duty to warn you You worry too much <eos>",
		},
		{
			desc:     "lowercase name upper-cased",
			line:     "the hound: It’s not hunting if you pay for it.",
			expected: "<boname> THE_HOUND <eoname> It 's not hunting if you pay for it <eos>",
		},
		{
			desc:     "whitespace runs collapse",
			line:     "  NED   STARK  :   Winter   is coming ",
			expected: "<boname> NED_STARK <eoname> Winter is coming",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			u, diags := ParseCharacterLine(tt.line)
			if len(diags) != 0 {
				t.Errorf("Expected no diagnostics, got %v", diags)
			}
			if got := u.Render(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseCharacterLine_MissingText(t *testing.T) {
	for _, line := range []string{"NED:", "NED::"} {
		u, diags := ParseCharacterLine(line)
		if u.Name != "NED" {
			t.Errorf("%q: expected name NED, got %q", line, u.Name)
		}
		if u.Text != "" {
			t.Errorf("%q: expected empty text, got %q", line, u.Text)
		}
		if len(diags) != 1 || diags[0].Kind != model.DiagMissingText {
			t.Fatalf("%q: expected one missing_text diagnostic, got %v", line, diags)
		}
		if got := u.Render(); got != "<boname> NED <eoname>" {
			t.Errorf("%q: expected empty utterance span, got %q", line, got)
		}
	}
}

func TestParseCharacterLine_BlankTextIsNotMissing(t *testing.T) {
	u, diags := ParseCharacterLine("NED:   ")
	if len(diags) != 0 {
		t.Errorf("Expected no diagnostics, got %v", diags)
	}
	if got := u.Render(); got != "<boname> NED <eoname>" {
		t.Errorf("Unexpected render %q", got)
	}
}

func TestParseCharacterLine_MissingName(t *testing.T) {
	u, diags := ParseCharacterLine(" : Who said that?")
	if u.Name != "" {
		t.Errorf("Expected empty name, got %q", u.Name)
	}
	if len(diags) != 1 || diags[0].Kind != model.DiagMissingName {
		t.Fatalf("Expected one missing_name diagnostic, got %v", diags)
	}
	if got := u.Render(); got != "<boname> <eoname> Who said that <question>" {
		t.Errorf("Unexpected render %q", got)
	}
}

func TestSpeakerLabel(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"BRAN (looking down)", "BRAN "},
		{"BRAN", "BRAN"},
		{"(beat)", "(beat)"},
		{"(beat) ARYA (quietly)", "(beat) ARYA "},
		{"", ""},
	}
	for _, tt := range tests {
		if got := speakerLabel(tt.in); got != tt.expected {
			t.Errorf("speakerLabel(%q): expected %q, got %q", tt.in, tt.expected, got)
		}
	}
}
