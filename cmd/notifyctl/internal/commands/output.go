package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/wolfeidau/notifyroute/internal/models"
)

func printBehaviorGroups(w io.Writer, groups []*models.BehaviorGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No behavior groups found.")
		return
	}

	fmt.Fprintf(w, "%-36s %-20s %-30s %-8s %-20s\n",
		"Behavior Group ID", "Account", "Display Name", "Actions", "Created At")
	fmt.Fprintln(w, strings.Repeat("─", 118))

	for _, g := range groups {
		account := "(default)"
		if g.AccountID != nil {
			account = truncate(*g.AccountID, 20)
		}

		fmt.Fprintf(w, "%-36s %-20s %-30s %-8d %-20s\n",
			g.ID,
			account,
			truncate(g.DisplayName, 30),
			len(g.Actions),
			g.Created.Format("2006-01-02 15:04:05"),
		)
	}
}

func printEventTypes(w io.Writer, eventTypes []*models.EventType) {
	if len(eventTypes) == 0 {
		fmt.Fprintln(w, "No event types found.")
		return
	}

	fmt.Fprintf(w, "%-36s %-30s %-36s\n", "Event Type ID", "Name", "Bundle ID")
	fmt.Fprintln(w, strings.Repeat("─", 104))

	for _, et := range eventTypes {
		fmt.Fprintf(w, "%-36s %-30s %-36s\n", et.ID, truncate(et.Name, 30), et.BundleID)
	}
}

// truncate shortens long values so table columns stay aligned
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
