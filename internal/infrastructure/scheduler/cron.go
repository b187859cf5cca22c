package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CronSchedule is a parsed 5-field cron expression evaluated in a fixed
// location: minute hour day-of-month month day-of-week.
//
// Supported syntax per field: *, n, n-m, */s, n-m/s and comma lists of those.
// When both day fields are restricted a day matches if either does, as in
// classic cron.
//
//	"0 2 * * *"     every day at 02:00
//	"*/15 * * * *"  every 15 minutes
//	"30 8 * * 1-5"  weekdays at 08:30
type CronSchedule struct {
	raw string
	loc *time.Location

	minute, hour, dom, month, dow uint64
	domAny, dowAny                bool
}

type cronField struct {
	name     string
	min, max int
}

var cronFields = [5]cronField{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 6},
}

// DailyAt2AM is the default nightly recomputation time.
const DailyAt2AM = "0 2 * * *"

// ParseCron parses expr. A nil loc means UTC.
func ParseCron(expr string, loc *time.Location) (*CronSchedule, error) {
	fields := strings.Fields(expr)
	if len(fields) != len(cronFields) {
		return nil, fmt.Errorf("invalid cron expression %q: expected 5 fields, got %d", expr, len(fields))
	}
	if loc == nil {
		loc = time.UTC
	}

	var masks [5]uint64
	for i, f := range fields {
		m, err := parseCronField(f, cronFields[i])
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
		}
		masks[i] = m
	}

	return &CronSchedule{
		raw:    expr,
		loc:    loc,
		minute: masks[0],
		hour:   masks[1],
		dom:    masks[2],
		month:  masks[3],
		dow:    masks[4],
		domAny: fields[2] == "*",
		dowAny: fields[4] == "*",
	}, nil
}

func parseCronField(field string, f cronField) (uint64, error) {
	var mask uint64
	for _, part := range strings.Split(field, ",") {
		lo, hi, step := f.min, f.max, 1

		rng := part
		if i := strings.IndexByte(part, '/'); i >= 0 {
			s, err := strconv.Atoi(part[i+1:])
			if err != nil || s <= 0 {
				return 0, fmt.Errorf("%s: invalid step in %q", f.name, part)
			}
			step, rng = s, part[:i]
		}

		switch {
		case rng == "*":
		case strings.Contains(rng, "-"):
			a, b, _ := strings.Cut(rng, "-")
			var err1, err2 error
			lo, err1 = strconv.Atoi(a)
			hi, err2 = strconv.Atoi(b)
			if err1 != nil || err2 != nil || lo > hi {
				return 0, fmt.Errorf("%s: invalid range %q", f.name, rng)
			}
		default:
			v, err := strconv.Atoi(rng)
			if err != nil {
				return 0, fmt.Errorf("%s: invalid value %q", f.name, rng)
			}
			lo = v
			if step == 1 {
				hi = v
			}
		}

		if lo < f.min || hi > f.max {
			return 0, fmt.Errorf("%s: %q outside [%d-%d]", f.name, part, f.min, f.max)
		}
		for v := lo; v <= hi; v += step {
			mask |= 1 << uint(v)
		}
	}
	return mask, nil
}

// Next returns the first matching minute strictly after t, expressed in the
// schedule's location. It returns the zero time if nothing matches within
// five years, which only happens for impossible dates such as "0 0 31 2 *".
func (c *CronSchedule) Next(t time.Time) time.Time {
	t = t.In(c.loc).Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(5, 0, 0)

	for t.Before(limit) {
		if !has(c.month, int(t.Month())) {
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, c.loc)
			continue
		}
		if !c.dayMatches(t) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, c.loc)
			continue
		}
		if !has(c.hour, t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, c.loc)
			continue
		}
		if !has(c.minute, t.Minute()) {
			t = t.Add(time.Minute)
			continue
		}
		return t
	}
	return time.Time{}
}

func (c *CronSchedule) dayMatches(t time.Time) bool {
	dom := has(c.dom, t.Day())
	dow := has(c.dow, int(t.Weekday()))
	switch {
	case c.domAny && c.dowAny:
		return true
	case c.domAny:
		return dow
	case c.dowAny:
		return dom
	default:
		return dom || dow
	}
}

// Location returns the location the expression is evaluated in.
func (c *CronSchedule) Location() *time.Location {
	return c.loc
}

// String returns the original expression.
func (c *CronSchedule) String() string {
	return c.raw
}

func has(mask uint64, v int) bool {
	return mask&(1<<uint(v)) != 0
}
