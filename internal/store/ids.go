package store

import (
	"crypto/rand"
	"encoding/base32"
	"strings"

	"leadconsole/internal/model"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
// 8 chars base32 ~= 40 bits (~1 trillion) of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

const opportunityIDPrefix = "opp"

// newOpportunityID draws ids until one is unused in existing.
func newOpportunityID(existing []model.Opportunity) (string, error) {
	for {
		id, err := newRandomID(opportunityIDPrefix)
		if err != nil {
			return "", err
		}
		if !opportunityIDExists(existing, id) {
			return id, nil
		}
	}
}

func opportunityIDExists(opps []model.Opportunity, id string) bool {
	for _, o := range opps {
		if o.ID == id {
			return true
		}
	}
	return false
}

// nextLeadID is one past the largest id in use (1 for an empty collection).
func nextLeadID(leads []model.Lead) int {
	max := 0
	for _, l := range leads {
		if l.ID > max {
			max = l.ID
		}
	}
	return max + 1
}

// LooksLikeOpportunityID reports whether s has the opportunity id shape (opp-xxxxxxxx).
func LooksLikeOpportunityID(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, opportunityIDPrefix+"-") {
		return false
	}
	suffix := strings.TrimPrefix(s, opportunityIDPrefix+"-")
	if suffix == "" {
		return false
	}
	for _, r := range suffix {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
