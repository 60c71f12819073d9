package calendarview

import "time"

// The month grid is always 6 weeks of 7 days so short months keep a stable
// layout; leading and trailing cells spill into the adjacent months.
const (
	MatrixRows = 6
	MatrixCols = 7
)

// MonthMatrix returns the 6x7 grid of calendar days for ref's month, row
// major, anchored at the Sunday on or before the 1st.
func MonthMatrix(ref time.Time) [MatrixRows][MatrixCols]time.Time {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	anchor := first.AddDate(0, 0, -int(first.Weekday()))

	var matrix [MatrixRows][MatrixCols]time.Time
	for i := 0; i < MatrixRows*MatrixCols; i++ {
		matrix[i/MatrixCols][i%MatrixCols] = anchor.AddDate(0, 0, i)
	}
	return matrix
}
