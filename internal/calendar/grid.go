package calendar

import "time"

const (
	// DaysPerWeek is the number of columns of a month grid.
	DaysPerWeek = 7
	// WeeksPerGrid is the number of rows. Every grid has six, even for a
	// February that fits in four, so the layout never changes height.
	WeeksPerGrid = 6
	// GridCells is the total number of cells of a month grid.
	GridCells = DaysPerWeek * WeeksPerGrid
)

// Cell is one day of a month grid.
type Cell struct {
	Date          Date `json:"date"`
	InTargetMonth bool `json:"in_target_month"`
}

// MonthGrid is a Sunday-first 6x7 view of a month including the spill-over
// days of the neighbouring months.
type MonthGrid struct {
	Year  int             `json:"year"`
	Month time.Month      `json:"month"`
	Cells [GridCells]Cell `json:"cells"`
}

// BuildMonthGrid lays out the month containing target.
func BuildMonthGrid(target Date) MonthGrid {
	first := target.FirstOfMonth()
	g := MonthGrid{Year: first.Year, Month: first.Month}

	// Leading cells are the tail of the previous month.
	day := first.AddDays(-int(first.Weekday()))
	for i := range g.Cells {
		g.Cells[i] = Cell{
			Date:          day,
			InTargetMonth: day.Year == first.Year && day.Month == first.Month,
		}
		day = day.AddDays(1)
	}
	return g
}

// Weeks groups the cells into rows, Sunday first.
func (g MonthGrid) Weeks() [WeeksPerGrid][DaysPerWeek]Cell {
	var weeks [WeeksPerGrid][DaysPerWeek]Cell
	for i, c := range g.Cells {
		weeks[i/DaysPerWeek][i%DaysPerWeek] = c
	}
	return weeks
}

// First is the date of the top-left cell.
func (g MonthGrid) First() Date { return g.Cells[0].Date }

// Last is the date of the bottom-right cell.
func (g MonthGrid) Last() Date { return g.Cells[GridCells-1].Date }

// Contains reports whether d is displayed anywhere in the grid.
func (g MonthGrid) Contains(d Date) bool {
	return !d.Before(g.First()) && !d.After(g.Last())
}

// LeadingDays is the number of cells taken by the previous month.
func (g MonthGrid) LeadingDays() int {
	return int(Date{Year: g.Year, Month: g.Month, Day: 1}.Weekday())
}

// Prev builds the grid of the previous month.
func (g MonthGrid) Prev() MonthGrid {
	return BuildMonthGrid(Date{Year: g.Year, Month: g.Month, Day: 1}.AddMonths(-1))
}

// Next builds the grid of the following month.
func (g MonthGrid) Next() MonthGrid {
	return BuildMonthGrid(Date{Year: g.Year, Month: g.Month, Day: 1}.AddMonths(1))
}
