// Package schedule computes trigger times for the restricted 5-field cron
// dialect used by the product's schedule picker and owns the live trigger
// registry. Field forms: "*", a literal integer, and "*/N" in the minute
// field. Timezones resolve to fixed UTC offsets (see zones.go).
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidExpression marks a schedule string the calculator cannot parse.
var ErrInvalidExpression = errors.New("invalid schedule expression")

type expression struct {
	minute string
	hour   string
	dom    string
	month  string
	dow    string
}

func parseExpression(expr string) (expression, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return expression{}, fmt.Errorf("%w: expected 5 fields, got %d", ErrInvalidExpression, len(fields))
	}

	e := expression{
		minute: fields[0],
		hour:   fields[1],
		dom:    fields[2],
		month:  fields[3],
		dow:    fields[4],
	}

	if _, ok := parseInterval(e.minute); !ok {
		if err := validateField(e.minute, 0, 59); err != nil {
			return expression{}, err
		}
	}
	if err := validateField(e.hour, 0, 23); err != nil {
		return expression{}, err
	}
	if err := validateField(e.dom, 1, 31); err != nil {
		return expression{}, err
	}
	if err := validateField(e.month, 1, 12); err != nil {
		return expression{}, err
	}
	if err := validateField(e.dow, 0, 7); err != nil {
		return expression{}, err
	}
	return e, nil
}

func validateField(field string, min, max int) error {
	if field == "*" {
		return nil
	}
	v, err := strconv.Atoi(field)
	if err != nil {
		return fmt.Errorf("%w: field %q is not a literal or *", ErrInvalidExpression, field)
	}
	if v < min || v > max {
		return fmt.Errorf("%w: field %q out of range [%d,%d]", ErrInvalidExpression, field, min, max)
	}
	return nil
}

// parseInterval recognizes the "*/N" minute form.
func parseInterval(field string) (int, bool) {
	rest, ok := strings.CutPrefix(field, "*/")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > 59 {
		return 0, false
	}
	return n, true
}

func literal(field string) (int, bool) {
	if field == "*" {
		return 0, false
	}
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Validate reports whether the expression is acceptable to the registry.
func Validate(expr string) error {
	_, err := parseExpression(expr)
	return err
}

// NextExecution returns the next trigger instant strictly after now, in UTC.
// The arithmetic runs in the fixed-offset local frame of the given zone.
func NextExecution(expr, timezone string, now time.Time) (time.Time, error) {
	e, err := parseExpression(expr)
	if err != nil {
		return time.Time{}, err
	}

	loc := Zone(timezone)
	local := now.In(loc)

	// Interval schedule: next multiple of N minutes strictly after now,
	// rolling into the next hour past :59.
	if n, ok := parseInterval(e.minute); ok {
		startOfHour := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
		next := ((local.Minute() / n) + 1) * n
		if next > 59 {
			return startOfHour.Add(time.Hour).UTC(), nil
		}
		return startOfHour.Add(time.Duration(next) * time.Minute).UTC(), nil
	}

	minute, haveMinute := literal(e.minute)
	hour, haveHour := literal(e.hour)
	dom, haveDOM := literal(e.dom)
	dow, haveDOW := literal(e.dow)

	if haveMinute && haveHour {
		switch {
		case !haveDOM && !haveDOW:
			// Daily at hour:minute.
			target := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
			if !target.After(local) {
				target = target.AddDate(0, 0, 1)
			}
			return target.UTC(), nil

		case haveDOW && !haveDOM:
			// Weekly on a fixed weekday. 7 is an alias for Sunday.
			if dow == 7 {
				dow = 0
			}
			days := (dow - int(local.Weekday()) + 7) % 7
			target := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
			target = target.AddDate(0, 0, days)
			if !target.After(local) {
				target = target.AddDate(0, 0, 7)
			}
			return target.UTC(), nil

		case haveDOM && !haveDOW:
			// Monthly on a fixed day-of-month.
			target := time.Date(local.Year(), local.Month(), dom, hour, minute, 0, 0, loc)
			if !target.After(local) {
				target = time.Date(local.Year(), local.Month()+1, dom, hour, minute, 0, 0, loc)
			}
			return target.UTC(), nil
		}
	}

	// Composite or unrecognized shape: top of the next hour.
	startOfHour := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
	return startOfHour.Add(time.Hour).UTC(), nil
}

// NextExecutionOrFallback never fails: a malformed expression yields one
// hour from now so a bad edit cannot silently lose the job.
func NextExecutionOrFallback(expr, timezone string, now time.Time) time.Time {
	next, err := NextExecution(expr, timezone, now)
	if err != nil {
		return now.Add(time.Hour).UTC()
	}
	return next
}

// Describe renders a human-readable summary of the expression. It never
// fails; anything unparseable comes back verbatim.
func Describe(expr, timezone string) string {
	e, err := parseExpression(expr)
	if err != nil {
		return expr
	}

	label := zoneLabel(timezone)
	if label == "" || Zone(timezone) == time.UTC {
		label = "UTC"
	}

	if n, ok := parseInterval(e.minute); ok {
		if n == 1 {
			return "Every minute"
		}
		return fmt.Sprintf("Every %d minutes", n)
	}

	minute, haveMinute := literal(e.minute)
	hour, haveHour := literal(e.hour)
	dom, haveDOM := literal(e.dom)
	dow, haveDOW := literal(e.dow)

	if haveMinute && haveHour {
		clock := formatClock(hour, minute)
		switch {
		case !haveDOM && !haveDOW:
			return fmt.Sprintf("Every day at %s (%s)", clock, label)
		case haveDOW && !haveDOM:
			if dow == 7 {
				dow = 0
			}
			return fmt.Sprintf("Every %s at %s (%s)", time.Weekday(dow), clock, label)
		case haveDOM && !haveDOW:
			return fmt.Sprintf("Monthly on day %d at %s (%s)", dom, clock, label)
		}
	}

	return "Every hour"
}

func formatClock(hour, minute int) string {
	period := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		period = "PM"
	case hour > 12:
		display = hour - 12
		period = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, period)
}
