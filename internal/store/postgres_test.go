package store

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// Every column that stores a generated ID must be UUID typed so the
// 36-character uuid.New().String() values actually fit. A VARCHAR
// narrower than that passes every in-memory test and then rejects the
// insert on Postgres.
func TestSchemaIDColumnsAreUUID(t *testing.T) {
	if len(uuid.New().String()) != 36 {
		t.Fatal("Generated IDs are expected to be 36 characters")
	}

	idColumns := []string{
		"id UUID PRIMARY KEY",
		"user_id UUID",
		"match_id UUID",
		"referred_by UUID",
	}
	for _, col := range idColumns {
		if !strings.Contains(schema, col) {
			t.Errorf("Schema must declare %q", col)
		}
	}

	// No ID-bearing column may sneak back in as a bounded VARCHAR.
	re := regexp.MustCompile(`(?m)^\s*(id|user_id|match_id|referred_by)\s+VARCHAR`)
	if m := re.FindString(schema); m != "" {
		t.Errorf("ID column declared as VARCHAR: %q", strings.TrimSpace(m))
	}
}

func TestSchemaReferralCodeFitsCodes(t *testing.T) {
	// Referral codes are 8 characters; VARCHAR(32) leaves headroom.
	if !strings.Contains(schema, "referral_code VARCHAR(32)") {
		t.Error("Schema must declare referral_code VARCHAR(32)")
	}
}
