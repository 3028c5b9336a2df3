package horizons

import (
	"fmt"
	"strings"
)

// RemoteServiceFault is returned when Horizons accepted the request at the
// transport level but reports a semantic problem in the response body.
// Phrase is the marker text matched in the body; Hint says what to fix.
type RemoteServiceFault struct {
	Phrase string
	Hint   string
}

func (e *RemoteServiceFault) Error() string {
	return fmt.Sprintf("horizons fault %q: %s", e.Phrase, e.Hint)
}

// faultCatalog maps the known Horizons fault phrases to remediation hints.
// Order matters: the first phrase found in a response body wins and no
// further phrases are checked.
var faultCatalog = []struct {
	phrase string
	hint   string
}{
	{
		phrase: "Cannot use print-out interval <= zero",
		hint:   "confirm the step size is a positive interval",
	},
	{
		phrase: "Bad dates -- start must be earlier than stop",
		hint:   "check the start and stop times",
	},
	{
		phrase: `Cannot interpret date. Type "?!" or try YYYY-MMM-DD {HH:MN} format`,
		hint:   "check the date format",
	},
	{
		phrase: "Cannot interpret date. Type \"?!\" or try YYYY-Mon-Dy {HH:MM} format.",
		hint:   "check the date format",
	},
	{
		phrase: "No matches found.",
		hint:   "verify the target body against the Horizons body index",
	},
	{
		phrase: "Use ID# to make unique selection",
		hint:   "use a precise ID# to narrow the target body search",
	},
	{
		phrase: "No site matches. Use \"*@body\" to list, \"c@body\" to enter coords, ?! for help.",
		hint:   "check the target body center",
	},
	{
		phrase: "Observer table for observer=target disallowed.",
		hint:   "the target body cannot be observed from itself",
	},
	{
		phrase: "Unknown units specification -- re-enter",
		hint:   "check the step size unit",
	},
	{
		phrase: "exceeds 90024 line max -- change step-size",
		hint:   "Horizons emits at most 90024 entries; coarsen the step size",
	},
	{
		phrase: "Unknown quantity requested",
		hint:   "check the requested quantity codes",
	},
}

// DetectFault scans a response body for the known fault phrases and returns
// the matching fault, or nil when none match. Horizons returns HTTP 200 even
// for semantically invalid queries, so this content scan is the only way to
// catch them.
func DetectFault(body string) *RemoteServiceFault {
	for _, f := range faultCatalog {
		if strings.Contains(body, f.phrase) {
			return &RemoteServiceFault{Phrase: f.phrase, Hint: f.hint}
		}
	}
	return nil
}
