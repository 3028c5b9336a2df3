package ephemeris

import (
	"fmt"
	"strings"
)

// DateColumn is the exact title Horizons uses for the timestamp column when
// TIME_DIGITS='SECONDS' and CAL_FORMAT='CAL' are requested.
const DateColumn = "Date__(UT)__HR:MN:SS"

const (
	startSentinel = "$$SOE"
	endSentinel   = "$$EOE"
)

// noiseTokens are the flag strings Horizons emits in place of a value to mark
// unavailable or unreliable quantities. They are dropped from each row before
// the fields are aligned against the column titles.
var noiseTokens = map[string]bool{
	"C": true,
	"m": true,
	"N": true,
	"A": true,
	"*": true,
	"":  true,
}

// Table is a column-indexed view of one Horizons ephemeris response.
// It is immutable once Parse returns: every column holds exactly Len values,
// in the chronological order the service emitted them.
type Table struct {
	titles  []string
	columns map[string][]string
	rows    int
}

// Parse splits raw response text into the sentinel-delimited data block and
// builds a column-indexed table from it. The column-title line is the line
// two above the start sentinel and is comma-delimited, matching the
// CSV_FORMAT='YES' output the client requests.
//
// A row whose field count, after noise-token removal, does not match the
// title count fails parsing with MalformedResponse rather than being aligned
// best-effort; silent misalignment is worse than a hard error here.
func Parse(raw string) (*Table, error) {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}

	soe := indexOf(lines, startSentinel)
	if soe < 0 {
		return nil, &MalformedResponse{Reason: fmt.Sprintf("start sentinel %s not found", startSentinel)}
	}
	eoe := indexOf(lines, endSentinel)
	if eoe < 0 {
		return nil, &MalformedResponse{Reason: fmt.Sprintf("end sentinel %s not found", endSentinel)}
	}
	if eoe < soe {
		return nil, &MalformedResponse{Reason: fmt.Sprintf("%s precedes %s", endSentinel, startSentinel)}
	}
	if soe < 2 {
		return nil, &MalformedResponse{Reason: "no column-title line above start sentinel"}
	}

	titles := splitRow(lines[soe-2])
	if len(titles) == 0 {
		return nil, &MalformedResponse{Reason: "column-title line is empty"}
	}

	columns := make(map[string][]string, len(titles))
	for _, title := range titles {
		columns[title] = make([]string, 0, eoe-soe-1)
	}

	rows := 0
	for i, line := range lines[soe+1 : eoe] {
		fields := splitRow(line)
		if len(fields) != len(titles) {
			return nil, &MalformedResponse{
				Reason: fmt.Sprintf("data row %d has %d fields, want %d", i+1, len(fields), len(titles)),
			}
		}
		for j, title := range titles {
			columns[title] = append(columns[title], fields[j])
		}
		rows++
	}

	return &Table{titles: titles, columns: columns, rows: rows}, nil
}

// splitRow splits a comma-delimited row, trims each field, and drops the
// noise tokens (which also removes empty fields).
func splitRow(line string) []string {
	parts := strings.Split(line, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if noiseTokens[p] {
			continue
		}
		fields = append(fields, p)
	}
	return fields
}

func indexOf(lines []string, sentinel string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) == sentinel {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows in the table.
func (t *Table) Len() int {
	return t.rows
}

// ColumnTitles returns the column titles in source order.
func (t *Table) ColumnTitles() []string {
	out := make([]string, len(t.titles))
	copy(out, t.titles)
	return out
}

// ValuesFor returns the values for one column title, in chronological order.
func (t *Table) ValuesFor(title string) ([]string, error) {
	col, ok := t.columns[title]
	if !ok {
		return nil, &UnknownColumn{Title: title}
	}
	out := make([]string, len(col))
	copy(out, col)
	return out, nil
}

// Dates returns the timestamp column, in chronological order.
func (t *Table) Dates() ([]string, error) {
	return t.ValuesFor(DateColumn)
}

// Correspond finds the first row where sourceTitle's value equals sourceValue
// and returns targetTitle's value at that same row. The boolean is false when
// sourceValue never occurs in the source column; that is an empty result, not
// an error. Unknown titles are errors.
func (t *Table) Correspond(targetTitle, sourceTitle, sourceValue string) (string, bool, error) {
	source, err := t.ValuesFor(sourceTitle)
	if err != nil {
		return "", false, err
	}
	target, err := t.ValuesFor(targetTitle)
	if err != nil {
		return "", false, err
	}
	for i, v := range source {
		if v == sourceValue {
			return target[i], true, nil
		}
	}
	return "", false, nil
}

// monthNames maps Horizons calendar month abbreviations to zero-padded
// numerals so date strings compare chronologically as plain strings.
var monthNames = strings.NewReplacer(
	"Jan", "01", "Feb", "02", "Mar", "03", "Apr", "04",
	"May", "05", "Jun", "06", "Jul", "07", "Aug", "08",
	"Sep", "09", "Oct", "10", "Nov", "11", "Dec", "12",
)

// NumericMonth rewrites a Horizons calendar date string, replacing the month
// abbreviation with its two-digit numeral.
func NumericMonth(s string) string {
	return monthNames.Replace(s)
}
