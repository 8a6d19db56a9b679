package booking

import "strings"

// codeLength is the reservation code size shown to users.
const codeLength = 6

// ReservationCode derives the user-facing code from a backend event id:
// the id's local segment (before any "@" namespace), first 6 characters,
// upper-cased. Uniqueness is only as strong as id-prefix uniqueness.
func ReservationCode(eventID string) string {
	local := eventID
	if i := strings.Index(local, "@"); i >= 0 {
		local = local[:i]
	}
	if len(local) > codeLength {
		local = local[:codeLength]
	}
	return strings.ToUpper(local)
}

// matchesCode reports whether an event id resolves to the given code.
func matchesCode(eventID, code string) bool {
	return ReservationCode(eventID) == strings.ToUpper(code)
}
