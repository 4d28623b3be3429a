package statusutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"leadconsole/internal/model"
)

// AllStatuses is the status filter value meaning "no status constraint".
const AllStatuses = "all"

func NormalizeLeadStatus(s string) (model.LeadStatus, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, st := range model.LeadStatuses {
		if string(st) == v {
			return st, nil
		}
	}
	if v == "" {
		return "", fmt.Errorf("invalid status: empty")
	}
	return "", fmt.Errorf("invalid status: %q (expected new|contacted|qualified|converted|disqualified)", s)
}

func ValidLeadStatus(s model.LeadStatus) bool {
	for _, st := range model.LeadStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// EditableLeadStatuses are the statuses a user may pick while editing a row.
// Conversion is its own action, so "converted" is never offered.
func EditableLeadStatuses() []model.LeadStatus {
	out := make([]model.LeadStatus, 0, len(model.LeadStatuses)-1)
	for _, st := range model.LeadStatuses {
		if st == model.LeadStatusConverted {
			continue
		}
		out = append(out, st)
	}
	return out
}

// ParseStage accepts the canonical label in any case, or a dash/underscore form
// ("proposal-sent", "closed_won").
func ParseStage(s string) (model.Stage, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.NewReplacer("-", " ", "_", " ").Replace(v)
	for _, st := range model.Stages {
		if strings.ToLower(string(st)) == v {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid stage: %q", s)
}

func ValidStage(s model.Stage) bool {
	for _, st := range model.Stages {
		if st == s {
			return true
		}
	}
	return false
}

func FirstStage() model.Stage { return model.Stages[0] }

// NextLeadStatus cycles through the editable statuses (used by the status picker).
func NextLeadStatus(cur model.LeadStatus, delta int) model.LeadStatus {
	opts := EditableLeadStatuses()
	idx := 0
	for i, st := range opts {
		if st == cur {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%len(opts) + len(opts)) % len(opts)
	return opts[idx]
}

func NextStage(cur model.Stage, delta int) model.Stage {
	idx := 0
	for i, st := range model.Stages {
		if st == cur {
			idx = i
			break
		}
	}
	n := len(model.Stages)
	return model.Stages[((idx+delta)%n+n)%n]
}

// ScoreBand maps a lead score to the badge shown next to it.
func ScoreBand(score int) string {
	switch {
	case score >= 850:
		return "Hot"
	case score >= 650:
		return "High"
	case score >= 400:
		return "Medium"
	default:
		return "Low"
	}
}

// FormatAmount renders whole US dollars, or N/A for an unknown amount.
func FormatAmount(amount *float64) string {
	if amount == nil {
		return "N/A"
	}
	n := int64(math.Round(*amount))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
