package format

import (
	"bytes"
	"testing"

	"leadconsole/internal/model"
)

func TestWriteEDN_Lead(t *testing.T) {
	var buf bytes.Buffer
	l := model.Lead{ID: 7, Name: "Amanda Foster", Company: "CloudTech", Email: "a@b.co", Source: "Referral", Score: 955, Status: model.LeadStatusQualified}
	if err := Write(&buf, l, "edn", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `{:company "CloudTech" :email "a@b.co" :id 7 :name "Amanda Foster" :score 955 :source "Referral" :status "qualified"}` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("edn mismatch:\nwant: %s\ngot:  %s", want, got)
	}
}

func TestWriteEDN_PrettyNested(t *testing.T) {
	var buf bytes.Buffer
	v := map[string]any{"total": 1, "opportunities": []model.Opportunity{{ID: "opp-1", Name: "Deal", Stage: model.StageProspecting}}}
	if err := WriteEDN(&buf, v, true); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	want := `{
  :opportunities [
    {
      :accountName ""
      :amount nil
      :id "opp-1"
      :name "Deal"
      :stage "Prospecting"
    }
  ]
  :total 1
}
`
	if got := buf.String(); got != want {
		t.Fatalf("pretty edn mismatch:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestWrite_JSONAndUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]int{"total": 3}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); got != "{\"total\":3}\n" {
		t.Fatalf("json = %q", got)
	}
	if err := Write(&buf, 1, "yaml", false); err == nil {
		t.Fatalf("expected unknown format error")
	}
	var empty bytes.Buffer
	if err := WriteEDN(&empty, []string{}, false); err != nil || empty.String() != "[]\n" {
		t.Fatalf("empty vector = %q err=%v", empty.String(), err)
	}
}
