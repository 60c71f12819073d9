// Package calendarview derives render models for the calendar UI from an
// immutable snapshot of events. Every function is pure: identical inputs
// produce structurally identical outputs, so results are safe to memoize on
// exact input equality.
package calendarview

import (
	"fmt"
	"time"

	"github.com/acadops/calendar-api/internal/models"
)

// ViewMode selects which layout algorithm and navigation granularity is
// active. Any mode can be entered from any other at any time.
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
	ViewYear  ViewMode = "year"
)

// Valid reports whether the mode is one of the four view modes.
func (m ViewMode) Valid() bool {
	switch m {
	case ViewDay, ViewWeek, ViewMonth, ViewYear:
		return true
	}
	return false
}

// Input is the full snapshot one render pass consumes. The engine never
// mutates Events.
type Input struct {
	Reference time.Time
	Mode      ViewMode
	Events    []models.Event
	Query     string
	Selected  string    // optional date key to highlight
	Now       time.Time // zero means time.Now()
	DayHeight float64   // zero means DefaultDayHeight
}

// DayCell is one cell of a month or year grid.
type DayCell struct {
	Key           string `json:"date"`
	Day           int    `json:"day"`
	InMonth       bool   `json:"is_current_month"`
	IsToday       bool   `json:"is_today"`
	IsSelected    bool   `json:"is_selected"`
	ApprovedCount int    `json:"approved_count"`
	PendingCount  int    `json:"pending_count"`
}

// MonthGrid is the 6x7 cell grid for a single month.
type MonthGrid struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Label string     `json:"label"`
	Weeks [MatrixRows][MatrixCols]DayCell `json:"weeks"`
}

// DayColumn carries the laid-out events of one calendar day.
type DayColumn struct {
	Key     string       `json:"date"`
	Label   string       `json:"label"`
	Weekday time.Weekday `json:"weekday"`
	Blocks  []TimedBlock `json:"blocks"`
}

// View is the engine's render model: ready for presentation, no further
// derivation required. Exactly one of Month, Days or Months is populated,
// matching Mode.
type View struct {
	Mode      ViewMode    `json:"mode"`
	Title     string      `json:"title"`
	Reference string      `json:"reference"`
	Month     *MonthGrid  `json:"month,omitempty"`
	Days      []DayColumn `json:"days,omitempty"`
	Months    []MonthGrid `json:"months,omitempty"`
}

// Compose runs the full pipeline for one view mode: search filter, then
// aggregation and/or timeline layout, joined onto the date skeleton.
func Compose(in Input) View {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	todayKey := DateKey(now)

	matched := Filter(in.Events, in.Query)

	view := View{
		Mode:      in.Mode,
		Title:     Title(in.Reference, in.Mode),
		Reference: DateKey(in.Reference),
	}

	switch in.Mode {
	case ViewWeek:
		view.Days = weekColumns(StartOfWeek(in.Reference), MatrixCols, matched, in.DayHeight)
	case ViewDay:
		view.Days = weekColumns(in.Reference, 1, matched, in.DayHeight)
	case ViewYear:
		counts := Aggregate(matched)
		months := make([]MonthGrid, 0, 12)
		for m := time.January; m <= time.December; m++ {
			ref := time.Date(in.Reference.Year(), m, 1, 0, 0, 0, 0, in.Reference.Location())
			// Day-level selection is disabled at year zoom.
			months = append(months, monthGrid(ref, counts, todayKey, ""))
		}
		view.Months = months
	default:
		counts := Aggregate(matched)
		grid := monthGrid(in.Reference, counts, todayKey, in.Selected)
		view.Month = &grid
	}
	return view
}

func monthGrid(ref time.Time, counts map[string]StatusCounts, todayKey, selected string) MonthGrid {
	grid := MonthGrid{
		Year:  ref.Year(),
		Month: ref.Month(),
		Label: ref.Format("January 2006"),
	}
	for r, row := range MonthMatrix(ref) {
		for c, day := range row {
			key := DateKey(day)
			tally := counts[key]
			grid.Weeks[r][c] = DayCell{
				Key:           key,
				Day:           day.Day(),
				InMonth:       day.Month() == ref.Month(),
				IsToday:       key == todayKey,
				IsSelected:    selected != "" && key == selected,
				ApprovedCount: tally.Approved,
				PendingCount:  tally.Pending,
			}
		}
	}
	return grid
}

func weekColumns(start time.Time, days int, events []models.Event, dayHeight float64) []DayColumn {
	columns := make([]DayColumn, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		key := DateKey(day)
		visible := make([]models.Event, 0)
		for _, ev := range events {
			// Rejected events never render on the grid.
			if ev.Date == key && ev.Status != models.EventStatusRejected {
				visible = append(visible, ev)
			}
		}
		columns = append(columns, DayColumn{
			Key:     key,
			Label:   day.Format("Mon Jan 2"),
			Weekday: day.Weekday(),
			Blocks:  LayoutDay(visible, dayHeight),
		})
	}
	return columns
}

// Shift moves the reference date by delta periods of the mode's granularity:
// days, weeks, first-of-month steps, or first-of-year steps.
func Shift(ref time.Time, mode ViewMode, delta int) time.Time {
	switch mode {
	case ViewDay:
		return ref.AddDate(0, 0, delta)
	case ViewWeek:
		return ref.AddDate(0, 0, 7*delta)
	case ViewYear:
		return time.Date(ref.Year()+delta, time.January, 1, 0, 0, 0, 0, ref.Location())
	default:
		// Month index arithmetic rolls year boundaries naturally.
		return time.Date(ref.Year(), ref.Month()+time.Month(delta), 1, 0, 0, 0, 0, ref.Location())
	}
}

// Title renders the navigation heading for the mode, e.g. "November 2025" or
// "Nov 2 – Nov 8, 2025".
func Title(ref time.Time, mode ViewMode) string {
	switch mode {
	case ViewDay:
		return ref.Format("Mon, Jan 2, 2006")
	case ViewWeek:
		start := StartOfWeek(ref)
		end := start.AddDate(0, 0, 6)
		if start.Year() != end.Year() {
			return fmt.Sprintf("%s – %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
		}
		return fmt.Sprintf("%s – %s, %d", start.Format("Jan 2"), end.Format("Jan 2"), end.Year())
	case ViewYear:
		return ref.Format("2006")
	default:
		return ref.Format("January 2006")
	}
}
