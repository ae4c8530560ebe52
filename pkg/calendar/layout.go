package calendar

// The week view is a fixed 8:00-18:00 band at one pixel per minute.
const (
	DayStartHour  = 8
	DayEndHour    = 18
	DefaultHeight = 60
)

// Layout positions an event inside the week view.
type Layout struct {
	Top     int  `json:"top"`
	Height  int  `json:"height"`
	OffGrid bool `json:"offGrid"`
}

// WeekLayout computes (hour-8)*60+minute. Events outside the band keep that
// offset (negative or past the bottom) and are flagged, never clipped.
func WeekLayout(e Event) Layout {
	h, m := e.StartsAt.Hour(), e.StartsAt.Minute()
	return Layout{
		Top:     (h-DayStartHour)*60 + m,
		Height:  DefaultHeight,
		OffGrid: h < DayStartHour || h >= DayEndHour,
	}
}
