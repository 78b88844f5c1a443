package marketplace

import (
	"strings"

	"github.com/beswib/beswib/internal/model"
)

// Race organizers demand full runner details for a name change, so a
// buyer may not check out until every one of these is filled in.  The
// field names here double as the API's machine-readable hints.

// MissingProfileFields lists the required purchase-profile fields the
// user has not filled in yet, in a stable order.
func MissingProfileFields(u model.User) []string {
	var missing []string
	add := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	add("first_name", u.FirstName)
	add("last_name", u.LastName)
	if u.BirthDate == nil {
		missing = append(missing, "birth_date")
	}
	add("phone", u.Phone)
	add("emergency_contact_name", u.EmergencyContactName)
	add("emergency_contact_phone", u.EmergencyContactPhone)
	add("address", u.Address)
	add("postal_code", u.PostalCode)
	add("city", u.City)
	add("country", u.Country)
	return missing
}

// ProfileComplete reports whether the user may act as a buyer.
func ProfileComplete(u model.User) bool {
	return len(MissingProfileFields(u)) == 0
}
