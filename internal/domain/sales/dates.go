package sales

import "time"

// ValidateDates reports whether deliveryDate falls on or after orderDate.
// Only the calendar date matters; time-of-day and timezone offsets within a
// day are ignored, so same-day delivery is allowed.
func ValidateDates(orderDate, deliveryDate time.Time) bool {
	return !truncateToDate(deliveryDate).Before(truncateToDate(orderDate))
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
