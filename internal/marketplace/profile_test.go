package marketplace

import (
	"testing"
)

func TestProfileComplete(t *testing.T) {
	u := completeUser(1)
	if !ProfileComplete(u) {
		t.Fatalf("complete profile reported missing: %v", MissingProfileFields(u))
	}

	u.Phone = "  " // whitespace is not filled in
	u.BirthDate = nil
	missing := MissingProfileFields(u)
	if ProfileComplete(u) {
		t.Fatal("incomplete profile reported complete")
	}
	want := map[string]bool{"phone": true, "birth_date": true}
	if len(missing) != 2 || !want[missing[0]] || !want[missing[1]] {
		t.Fatalf("missing = %v, want phone and birth_date", missing)
	}
}

func TestMissingProfileFieldsEmptyUser(t *testing.T) {
	missing := MissingProfileFields(completeUser(1))
	if len(missing) != 0 {
		t.Fatalf("unexpected missing fields: %v", missing)
	}

	var zero = completeUser(1)
	zero.FirstName, zero.LastName = "", ""
	zero.Phone = ""
	got := MissingProfileFields(zero)
	if len(got) != 3 {
		t.Fatalf("missing = %v, want 3 entries", got)
	}
	// Order is stable so the UI can rely on it.
	if got[0] != "first_name" || got[1] != "last_name" || got[2] != "phone" {
		t.Fatalf("order = %v", got)
	}
}
