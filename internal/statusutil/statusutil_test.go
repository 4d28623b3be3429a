package statusutil

import (
	"testing"

	"leadconsole/internal/model"
)

func TestNormalizeLeadStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    model.LeadStatus
		wantErr bool
	}{
		{in: "new", want: model.LeadStatusNew},
		{in: " Qualified ", want: model.LeadStatusQualified},
		{in: "CONVERTED", want: model.LeadStatusConverted},
		{in: "", wantErr: true},
		{in: "won", wantErr: true},
	}
	for _, tc := range tests {
		got, err := NormalizeLeadStatus(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("NormalizeLeadStatus(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NormalizeLeadStatus(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeLeadStatus(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseStage(t *testing.T) {
	t.Parallel()

	cases := map[string]model.Stage{
		"Prospecting":   model.StageProspecting,
		"proposal sent": model.StageProposalSent,
		"proposal-sent": model.StageProposalSent,
		"closed_won":    model.StageClosedWon,
		"CLOSED LOST":   model.StageClosedLost,
	}
	for in, want := range cases {
		got, err := ParseStage(in)
		if err != nil {
			t.Fatalf("ParseStage(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseStage(%q) = %q; want %q", in, got, want)
		}
	}
	if _, err := ParseStage("lost"); err == nil {
		t.Fatalf("expected error for unknown stage")
	}
}

func TestEditableLeadStatuses_ExcludesConverted(t *testing.T) {
	t.Parallel()

	for _, st := range EditableLeadStatuses() {
		if st == model.LeadStatusConverted {
			t.Fatalf("converted must not be offered for edits")
		}
	}
	if got := NextLeadStatus(model.LeadStatusQualified, 1); got != model.LeadStatusDisqualified {
		t.Fatalf("NextLeadStatus(qualified, +1) = %q; want disqualified", got)
	}
	if got := NextLeadStatus(model.LeadStatusNew, -1); got != model.LeadStatusDisqualified {
		t.Fatalf("NextLeadStatus(new, -1) = %q; want disqualified", got)
	}
}

func TestScoreBand(t *testing.T) {
	t.Parallel()

	cases := map[int]string{990: "Hot", 850: "Hot", 849: "High", 650: "High", 400: "Medium", 399: "Low", 0: "Low"}
	for score, want := range cases {
		if got := ScoreBand(score); got != want {
			t.Fatalf("ScoreBand(%d) = %q; want %q", score, got, want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	if got := FormatAmount(nil); got != "N/A" {
		t.Fatalf("FormatAmount(nil) = %q", got)
	}
	cases := map[float64]string{0: "$0", 950: "$950", 1000: "$1,000", 125000.4: "$125,000", 1234567.6: "$1,234,568"}
	for in, want := range cases {
		v := in
		if got := FormatAmount(&v); got != want {
			t.Fatalf("FormatAmount(%v) = %q; want %q", in, got, want)
		}
	}
}
