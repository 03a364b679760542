package model

import "time"

// lookaheadBuffer extends open-ended windows past today so recordings
// finished moments ago (or dated oddly across timezones) are not missed.
const lookaheadBuffer = 7 * 24 * time.Hour

// TimeWindow is one calendar-month date range passed to the recordings
// endpoint. Both bounds are inclusive dates.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// FromDate formats the window start for the API query.
func (w TimeWindow) FromDate() string {
	return w.From.Format("2006-01-02")
}

// ToDate formats the window end for the API query.
func (w TimeWindow) ToDate() string {
	return w.To.Format("2006-01-02")
}

// String renders the window for log context.
func (w TimeWindow) String() string {
	return w.FromDate() + " to " + w.ToDate()
}

// MonthWindows returns the month-long windows covering the trailing
// monthsBack months plus the current month, ordered oldest to newest.
//
// The recordings endpoint caps each query at one month, so the trailing
// year has to be walked month by month. Window edges are padded:
//
//   - past months end one day into the next month, in case the API
//     treats the end date as exclusive
//   - the current month extends a week past today
//   - one extra window covers next month, catching recordings dated
//     slightly in the future
func MonthWindows(today time.Time, monthsBack int) []TimeWindow {
	today = today.Truncate(24 * time.Hour)
	currentMonthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())

	windows := make([]TimeWindow, 0, monthsBack+2)
	for i := 0; i <= monthsBack; i++ {
		monthStart := currentMonthStart.AddDate(0, i-monthsBack, 0)
		monthEnd := monthStart.AddDate(0, 1, -1)

		switch {
		case monthStart.Equal(currentMonthStart):
			monthEnd = today.Add(lookaheadBuffer)
		case monthEnd.After(today):
			monthEnd = today.Add(lookaheadBuffer)
		default:
			// One day of slack in case the API's end bound is exclusive.
			monthEnd = monthEnd.AddDate(0, 0, 1)
		}

		windows = append(windows, TimeWindow{From: monthStart, To: monthEnd})
	}

	nextMonthStart := currentMonthStart.AddDate(0, 1, 0)
	windows = append(windows, TimeWindow{
		From: nextMonthStart,
		To:   nextMonthStart.AddDate(0, 1, -1),
	})

	return windows
}
