package hours

import (
	"testing"
	"time"
)

// 2025-01-01 is a Wednesday.
func onWeekday(d time.Weekday) time.Time {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	offset := int(d) - int(base.Weekday())
	return base.AddDate(0, 0, offset)
}

func TestOperatesToday_WeekdayRangeOnIncludedDay(t *testing.T) {
	if !OperatesToday("Mon-Fri 9:00 - 17:00", onWeekday(time.Wednesday)) {
		t.Error("expected open on Wednesday for Mon-Fri")
	}
}

func TestOperatesToday_WeekdayRangeOnExcludedDay(t *testing.T) {
	if OperatesToday("Mon-Fri 9:00 - 17:00", onWeekday(time.Saturday)) {
		t.Error("expected closed on Saturday for Mon-Fri")
	}
}

func TestOperatesToday_IgnoresClockTime(t *testing.T) {
	// 11 PM on a Wednesday is outside the stated hours, but the evaluator
	// gates on day only.
	late := onWeekday(time.Wednesday).Add(11 * time.Hour)
	if !OperatesToday("Mon-Fri 09:00 - 17:00", late) {
		t.Error("expected open at 11 PM Wednesday for Mon-Fri")
	}
}

func TestOperatesToday_WraparoundRange(t *testing.T) {
	descriptor := "Fri-Mon 8:00 - 16:00"
	for _, d := range []time.Weekday{time.Friday, time.Saturday, time.Sunday, time.Monday} {
		if !OperatesToday(descriptor, onWeekday(d)) {
			t.Errorf("expected open on %s for Fri-Mon", d)
		}
	}
	for _, d := range []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday} {
		if OperatesToday(descriptor, onWeekday(d)) {
			t.Errorf("expected closed on %s for Fri-Mon", d)
		}
	}
}

func TestOperatesToday_DayList(t *testing.T) {
	descriptor := "Mon,Wed,Fri 10:00 - 14:00"
	if !OperatesToday(descriptor, onWeekday(time.Wednesday)) {
		t.Error("expected open on Wednesday")
	}
	if OperatesToday(descriptor, onWeekday(time.Tuesday)) {
		t.Error("expected closed on Tuesday")
	}
}

func TestOperatesToday_SingleDay(t *testing.T) {
	if !OperatesToday("Sat 9:00 - 12:00", onWeekday(time.Saturday)) {
		t.Error("expected open on Saturday")
	}
	if OperatesToday("Sat 9:00 - 12:00", onWeekday(time.Sunday)) {
		t.Error("expected closed on Sunday")
	}
}

func TestOperatesToday_FullDayNames(t *testing.T) {
	if !OperatesToday("Monday-Friday 9:00 - 17:00", onWeekday(time.Thursday)) {
		t.Error("expected full day names to parse")
	}
}

func TestOperatesToday_EmptyDescriptor(t *testing.T) {
	if !OperatesToday("", onWeekday(time.Sunday)) {
		t.Error("expected empty descriptor to default open")
	}
}

func TestOperatesToday_AlwaysOpenSentinels(t *testing.T) {
	for _, s := range []string{"24/7", "Always Open", "Daily", "Everyday"} {
		if !OperatesToday(s, onWeekday(time.Sunday)) {
			t.Errorf("expected %q open", s)
		}
	}
}

func TestOperatesToday_MalformedDefaultsOpen(t *testing.T) {
	if !OperatesToday("garbage", onWeekday(time.Saturday)) {
		t.Error("expected unparseable descriptor to default open")
	}
}

func TestOperatesToday_UnknownDayTokenDefaultsOpen(t *testing.T) {
	if !OperatesToday("Funday 9:00 - 17:00", onWeekday(time.Wednesday)) {
		t.Error("expected unknown day token to default open")
	}
}

func TestOperatesToday_TimeRangeWithoutDays(t *testing.T) {
	if !OperatesToday("9:00 - 17:00", onWeekday(time.Sunday)) {
		t.Error("expected bare time range to apply every day")
	}
}
