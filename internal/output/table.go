package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/wesleyorama2/memberload/internal/scenario"
)

// ActionTable renders the action catalog with each action's share of the
// total weight.
func ActionTable(w io.Writer, actions []scenario.Action) error {
	total := scenario.TotalWeight(actions)

	table := tablewriter.NewWriter(w)
	table.Header("Action", "Weight", "Share", "Steps")
	for _, a := range actions {
		share := "-"
		if total > 0 && a.Weight > 0 {
			share = fmt.Sprintf("%.1f%%", float64(a.Weight)*100/float64(total))
		}
		if err := table.Append([]string{
			a.Name,
			strconv.Itoa(a.Weight),
			share,
			strconv.Itoa(len(a.Steps)),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// StepList writes the steps of a single action, one per line.
func StepList(w io.Writer, a scenario.Action) error {
	for i, s := range a.Steps {
		if _, err := fmt.Fprintf(w, "%2d. %-4s %s\n", i+1, s.Method, s.Path); err != nil {
			return err
		}
	}
	return nil
}
