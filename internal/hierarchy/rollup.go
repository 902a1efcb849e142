package hierarchy

import (
	"math"

	"github.com/timesheets-app/timesheets/internal/model"
)

// RollupSpentHours adds every project's directly logged hours to each of its
// ancestors. projects must belong to one account; direct is keyed by project
// remote id. Every project in the list appears in the result.
func RollupSpentHours(projects []*model.Project, direct map[model.Ref]float64) map[model.Ref]float64 {
	parents := make(map[model.Ref]model.Ref, len(projects))
	totals := make(map[model.Ref]float64, len(projects))
	for _, p := range projects {
		parents[p.RemoteID] = p.ParentID
		totals[p.RemoteID] = 0
	}

	for projectID, hours := range direct {
		if hours == 0 {
			continue
		}
		visited := make(map[model.Ref]bool)
		for current := projectID; current.IsSet() && !visited[current]; {
			visited[current] = true
			if _, known := parents[current]; !known {
				break
			}
			totals[current] += hours
			current = parents[current]
		}
	}

	for id, v := range totals {
		totals[id] = math.Round(v*100) / 100
	}
	return totals
}
