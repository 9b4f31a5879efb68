package db

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// CellKind tags the variant held by a Cell.
type CellKind uint8

const (
	// CellNull is SQL NULL.
	CellNull CellKind = iota
	// CellDateTime is a date or date-time value split into its components.
	CellDateTime
	// CellOther is any value that is neither NULL nor date-shaped.
	CellOther
)

func (k CellKind) String() string {
	switch k {
	case CellNull:
		return "null"
	case CellDateTime:
		return "datetime"
	default:
		return "other"
	}
}

// Cell is a raw column value as handed over by the driver, reduced to the
// three shapes the repositories care about. It implements sql.Scanner so it
// can be used directly as a Scan destination for nullable DATE/DATETIME
// columns.
//
// Components of a CellDateTime are copied verbatim from the driver and are
// not checked against the calendar; MySQL's zero date arrives as 0000-00-00.
type Cell struct {
	Kind CellKind

	Year, Month, Day     int
	Hour, Minute, Second int

	// Raw holds the driver value for CellOther.
	Raw any
}

// NullCell returns a CellNull.
func NullCell() Cell { return Cell{Kind: CellNull} }

// DateTimeCell returns a CellDateTime with the given components.
func DateTimeCell(year, month, day, hour, minute, second int) Cell {
	return Cell{
		Kind: CellDateTime,
		Year: year, Month: month, Day: day,
		Hour: hour, Minute: minute, Second: second,
	}
}

// Scan implements sql.Scanner. It never returns an error: values it cannot
// interpret become CellOther.
func (c *Cell) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = NullCell()
	case time.Time:
		// Drivers hand out the zero time.Time for zero or unparsable dates.
		if v.IsZero() {
			*c = DateTimeCell(0, 0, 0, 0, 0, 0)
			return nil
		}
		*c = DateTimeCell(v.Year(), int(v.Month()), v.Day(), v.Hour(), v.Minute(), v.Second())
	case []byte:
		*c = parseCellText(string(v), src)
	case string:
		*c = parseCellText(v, src)
	default:
		*c = Cell{Kind: CellOther, Raw: src}
	}
	return nil
}

// parseCellText reads the MySQL text forms YYYY-MM-DD and
// YYYY-MM-DD hh:mm:ss[.fraction]. A "T" separator is accepted as well.
func parseCellText(s string, raw any) Cell {
	s = strings.TrimSpace(s)
	if len(s) < len("0000-00-00") || s[4] != '-' || s[7] != '-' {
		return Cell{Kind: CellOther, Raw: raw}
	}

	var y, mo, d int
	if _, err := fmt.Sscanf(s[:10], "%4d-%2d-%2d", &y, &mo, &d); err != nil {
		return Cell{Kind: CellOther, Raw: raw}
	}
	rest := s[10:]
	if rest == "" {
		return DateTimeCell(y, mo, d, 0, 0, 0)
	}
	if rest[0] != ' ' && rest[0] != 'T' {
		return Cell{Kind: CellOther, Raw: raw}
	}

	var h, mi, sec int
	if _, err := fmt.Sscanf(rest[1:], "%2d:%2d:%2d", &h, &mi, &sec); err != nil {
		return Cell{Kind: CellOther, Raw: raw}
	}
	return DateTimeCell(y, mo, d, h, mi, sec)
}

// CoerceTimestamp turns a date-time cell into a timestamp. NULL, non-date
// values and impossible calendar dates or times of day all yield nil.
func CoerceTimestamp(c Cell) *civil.DateTime {
	date := CoerceDate(c)
	if date == nil {
		return nil
	}
	tod := civil.Time{Hour: c.Hour, Minute: c.Minute, Second: c.Second}
	if !tod.IsValid() {
		return nil
	}
	return &civil.DateTime{Date: *date, Time: tod}
}

// CoerceDate turns a date-time cell into a calendar date, discarding any
// time of day. NULL, non-date values and impossible dates yield nil.
func CoerceDate(c Cell) *civil.Date {
	if c.Kind != CellDateTime {
		return nil
	}
	d := civil.Date{Year: c.Year, Month: time.Month(c.Month), Day: c.Day}
	if !d.IsValid() {
		return nil
	}
	return &d
}
