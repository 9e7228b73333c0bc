package reactive

// Tab selects which view is materialised. Any tab can be selected from any
// other; there are no sequential transitions.
type Tab string

const (
	TabTablePrimary   Tab = "table-primary"
	TabChartPrimary   Tab = "chart-primary"
	TabTableSecondary Tab = "table-secondary"
	TabChartSecondary Tab = "chart-secondary"
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabTablePrimary, TabChartPrimary, TabTableSecondary, TabChartSecondary}

var tabTitles = map[Tab]string{
	TabTablePrimary:   "Table Covid",
	TabChartPrimary:   "Graph Covid",
	TabTableSecondary: "Table Income",
	TabChartSecondary: "Graph Income",
}

// ParseTab resolves a tab name, falling back to the primary table.
func ParseTab(s string) Tab {
	for _, t := range Tabs {
		if string(t) == s {
			return t
		}
	}
	return TabTablePrimary
}

func (t Tab) Title() string { return tabTitles[t] }

// Primary reports whether the tab shows the vaccination dataset.
func (t Tab) Primary() bool {
	return t == TabTablePrimary || t == TabChartPrimary
}

// Chart reports whether the tab shows a chart rather than a table.
func (t Tab) Chart() bool {
	return t == TabChartPrimary || t == TabChartSecondary
}
