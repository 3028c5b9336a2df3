package tracker

import (
	"io"
	"log/slog"
	"testing"

	"github.com/indigo-pc/sunspot/internal/ephemeris"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

const sampleResponse = `header
 Date__(UT)__HR:MN:SS, Elev_(a-app),
separator
$$SOE
 1988-Dec-08 01:02:03,  10.5210,
 1988-Dec-09 01:02:03,  11.0357,
$$EOE
footer
`

func parseSample(t *testing.T) *ephemeris.Table {
	t.Helper()
	table, err := ephemeris.Parse(sampleResponse)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return table
}

func TestNotifyDeliversColumns(t *testing.T) {
	table := parseSample(t)
	trk := New(testLogger)

	var gotColumns map[string][]string
	calls := 0
	trk.Subscribe(func(tbl *ephemeris.Table, columns map[string][]string) {
		calls++
		gotColumns = columns
	}, ephemeris.DateColumn, "Elev_(a-app)")

	trk.Notify(table)

	if calls != 1 {
		t.Fatalf("observer invoked %d times, want 1", calls)
	}
	if len(gotColumns) != 2 {
		t.Fatalf("observer got %d columns, want 2", len(gotColumns))
	}
	if len(gotColumns["Elev_(a-app)"]) != 2 {
		t.Errorf("elevation column has %d values, want 2", len(gotColumns["Elev_(a-app)"]))
	}
}

func TestNotifySkipsMissingColumn(t *testing.T) {
	table := parseSample(t)
	trk := New(testLogger)

	skipped := 0
	trk.Subscribe(func(tbl *ephemeris.Table, columns map[string][]string) {
		skipped++
	}, "Azi____(a-app)___Elev")

	invoked := 0
	trk.Subscribe(func(tbl *ephemeris.Table, columns map[string][]string) {
		invoked++
	}, ephemeris.DateColumn)

	trk.Notify(table)

	if skipped != 0 {
		t.Error("observer with a missing column was invoked")
	}
	if invoked != 1 {
		t.Errorf("observer with present columns invoked %d times, want 1", invoked)
	}
}

func TestUnsubscribe(t *testing.T) {
	table := parseSample(t)
	trk := New(testLogger)

	calls := 0
	id := trk.Subscribe(func(tbl *ephemeris.Table, columns map[string][]string) {
		calls++
	}, ephemeris.DateColumn)

	trk.Notify(table)
	trk.Unsubscribe(id)
	trk.Notify(table)

	if calls != 1 {
		t.Errorf("observer invoked %d times after unsubscribe, want 1", calls)
	}
}
