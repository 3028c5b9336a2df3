package ephemeris

import "fmt"

// MalformedResponse indicates that the raw response text does not carry the
// structure the Horizons service normally emits: sentinel markers missing or
// out of order, the title line out of reach, or a data row whose field count
// does not match the header. It points at an unexpected response format, not
// at a caller input error.
type MalformedResponse struct {
	Reason string
}

func (e *MalformedResponse) Error() string {
	return fmt.Sprintf("malformed ephemeris response: %s", e.Reason)
}

// UnknownColumn indicates that a caller asked for a column title that is not
// present in the parsed table. Always a caller error, never produced by the
// remote service.
type UnknownColumn struct {
	Title string
}

func (e *UnknownColumn) Error() string {
	return fmt.Sprintf("unknown ephemeris column %q", e.Title)
}
