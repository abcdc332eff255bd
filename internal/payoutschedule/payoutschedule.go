// Package payoutschedule computes a seller's informational next payout date
// from their recurrence settings. It does not gate the hold/release pipeline.
package payoutschedule

import (
	"time"

	"marketplace-settlement/internal/model"
)

// NextPayoutDate returns the next payout date for a seller, or nil when no
// schedule is set or a custom date has already passed. Dates are normalized
// to midnight UTC.
func NextPayoutDate(seller *model.Seller, base time.Time) *time.Time {
	today := midnight(base)

	switch seller.ScheduleType {
	case model.ScheduleDaily:
		next := today.AddDate(0, 0, 1)
		return &next

	case model.ScheduleWeekly:
		payoutDay := 1 // Monday
		if seller.ScheduleDay != nil {
			payoutDay = *seller.ScheduleDay
		}
		days := payoutDay - int(today.Weekday())
		if days <= 0 {
			days += 7
		}
		next := today.AddDate(0, 0, days)
		return &next

	case model.ScheduleMonthly:
		dayOfMonth := 1
		if seller.ScheduleDay != nil {
			dayOfMonth = *seller.ScheduleDay
		}
		next := monthlyOn(today, dayOfMonth)
		if next.Before(today) {
			next = monthlyOn(today.AddDate(0, 1, 0), dayOfMonth)
		}
		return &next

	case model.ScheduleCustom:
		if seller.ScheduleDate == nil {
			return nil
		}
		custom := midnight(*seller.ScheduleDate)
		if custom.Before(today) {
			return nil
		}
		return &custom

	default:
		return nil
	}
}

// ValidSchedule reports whether a schedule type and its day field make sense
// together.
func ValidSchedule(scheduleType string, day *int) bool {
	switch scheduleType {
	case model.ScheduleDaily, model.ScheduleCustom:
		return true
	case model.ScheduleWeekly:
		return day == nil || (*day >= 0 && *day <= 6)
	case model.ScheduleMonthly:
		return day == nil || (*day >= 1 && *day <= 31)
	default:
		return false
	}
}

// monthlyOn clamps the requested day of month to the month's last day,
// so a day-31 schedule falls on Feb 28/29.
func monthlyOn(t time.Time, day int) time.Time {
	last := lastDayOfMonth(t)
	if day > last {
		day = last
	}
	return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
