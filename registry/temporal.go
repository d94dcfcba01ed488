package registry

import (
	"fmt"

	"github.com/seuros/gopher-packstream/packstream"
)

// Structure signatures for temporal types.
const (
	DateSignature      byte = 0x44
	TimeSignature      byte = 0x54
	LocalTimeSignature byte = 0x74
	DateTimeSignature  byte = 0x49
	DurationSignature  byte = 0x45
)

// Date is a calendar date expressed as days since the Unix epoch.
type Date struct {
	EpochDay int64
}

// Time is a time-of-day with an explicit UTC offset, expressed as
// nanoseconds since midnight plus a timezone offset in seconds.
type Time struct {
	NanosecondsSinceMidnight int64
	TZOffsetSeconds          int64
}

// LocalTime is a time-of-day with no attached timezone.
type LocalTime struct {
	NanosecondsSinceMidnight int64
}

// DateTime is a point in time anchored to a fixed UTC offset.
type DateTime struct {
	Seconds         int64
	Nanoseconds     int64
	TZOffsetSeconds int64
}

// Duration is a calendar-aware span: months and days are calendar
// units, seconds/nanoseconds are a fixed-length remainder.
type Duration struct {
	Months      int64
	Days        int64
	Seconds     int64
	Nanoseconds int64
}

// RegisterTemporalTypes adds Date, Time, LocalTime, DateTime, and
// Duration to r.
func RegisterTemporalTypes(r *Registry) {
	r.Register(DateSignature, hydrateDate, dehydrateDate)
	r.Register(TimeSignature, hydrateTime, dehydrateTime)
	r.Register(LocalTimeSignature, hydrateLocalTime, dehydrateLocalTime)
	r.Register(DateTimeSignature, hydrateDateTime, dehydrateDateTime)
	r.Register(DurationSignature, hydrateDuration, dehydrateDuration)
}

func hydrateDate(fields []interface{}) (interface{}, error) {
	if len(fields) != 1 {
		return nil, fmt.Errorf("date structure needs exactly 1 field, got %d", len(fields))
	}
	days, ok := asInt64(fields[0])
	if !ok {
		return nil, fmt.Errorf("date epochDay is %T, want integer", fields[0])
	}
	return Date{EpochDay: days}, nil
}

func dehydrateDate(v interface{}) ([]interface{}, bool) {
	d, ok := v.(Date)
	if !ok {
		return nil, false
	}
	return []interface{}{packstream.NewI64(d.EpochDay)}, true
}

func hydrateTime(fields []interface{}) (interface{}, error) {
	if len(fields) != 2 {
		return nil, fmt.Errorf("time structure needs exactly 2 fields, got %d", len(fields))
	}
	ns, ok := asInt64(fields[0])
	if !ok {
		return nil, fmt.Errorf("time nanoseconds is %T, want integer", fields[0])
	}
	offset, ok := asInt64(fields[1])
	if !ok {
		return nil, fmt.Errorf("time tz offset is %T, want integer", fields[1])
	}
	return Time{NanosecondsSinceMidnight: ns, TZOffsetSeconds: offset}, nil
}

func dehydrateTime(v interface{}) ([]interface{}, bool) {
	t, ok := v.(Time)
	if !ok {
		return nil, false
	}
	return []interface{}{packstream.NewI64(t.NanosecondsSinceMidnight), packstream.NewI64(t.TZOffsetSeconds)}, true
}

func hydrateLocalTime(fields []interface{}) (interface{}, error) {
	if len(fields) != 1 {
		return nil, fmt.Errorf("local time structure needs exactly 1 field, got %d", len(fields))
	}
	ns, ok := asInt64(fields[0])
	if !ok {
		return nil, fmt.Errorf("local time nanoseconds is %T, want integer", fields[0])
	}
	return LocalTime{NanosecondsSinceMidnight: ns}, nil
}

func dehydrateLocalTime(v interface{}) ([]interface{}, bool) {
	t, ok := v.(LocalTime)
	if !ok {
		return nil, false
	}
	return []interface{}{packstream.NewI64(t.NanosecondsSinceMidnight)}, true
}

func hydrateDateTime(fields []interface{}) (interface{}, error) {
	if len(fields) != 3 {
		return nil, fmt.Errorf("datetime structure needs exactly 3 fields, got %d", len(fields))
	}
	seconds, ok := asInt64(fields[0])
	if !ok {
		return nil, fmt.Errorf("datetime seconds is %T, want integer", fields[0])
	}
	nanos, ok := asInt64(fields[1])
	if !ok {
		return nil, fmt.Errorf("datetime nanoseconds is %T, want integer", fields[1])
	}
	offset, ok := asInt64(fields[2])
	if !ok {
		return nil, fmt.Errorf("datetime tz offset is %T, want integer", fields[2])
	}
	return DateTime{Seconds: seconds, Nanoseconds: nanos, TZOffsetSeconds: offset}, nil
}

func dehydrateDateTime(v interface{}) ([]interface{}, bool) {
	dt, ok := v.(DateTime)
	if !ok {
		return nil, false
	}
	return []interface{}{
		packstream.NewI64(dt.Seconds),
		packstream.NewI64(dt.Nanoseconds),
		packstream.NewI64(dt.TZOffsetSeconds),
	}, true
}

func hydrateDuration(fields []interface{}) (interface{}, error) {
	if len(fields) != 4 {
		return nil, fmt.Errorf("duration structure needs exactly 4 fields, got %d", len(fields))
	}
	months, ok := asInt64(fields[0])
	if !ok {
		return nil, fmt.Errorf("duration months is %T, want integer", fields[0])
	}
	days, ok := asInt64(fields[1])
	if !ok {
		return nil, fmt.Errorf("duration days is %T, want integer", fields[1])
	}
	seconds, ok := asInt64(fields[2])
	if !ok {
		return nil, fmt.Errorf("duration seconds is %T, want integer", fields[2])
	}
	nanos, ok := asInt64(fields[3])
	if !ok {
		return nil, fmt.Errorf("duration nanoseconds is %T, want integer", fields[3])
	}
	return Duration{Months: months, Days: days, Seconds: seconds, Nanoseconds: nanos}, nil
}

func dehydrateDuration(v interface{}) ([]interface{}, bool) {
	d, ok := v.(Duration)
	if !ok {
		return nil, false
	}
	return []interface{}{
		packstream.NewI64(d.Months),
		packstream.NewI64(d.Days),
		packstream.NewI64(d.Seconds),
		packstream.NewI64(d.Nanoseconds),
	}, true
}
