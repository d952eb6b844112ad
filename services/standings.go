package services

import (
	"sort"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/brackets"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/models"
)

const (
	pointsWin  = 2
	pointsDraw = 1
)

// computeGroupTables builds one table per group from the completed fixtures.
// Rows are ranked by points, then leg difference, then legs won, then the
// entrant's position in the group draw.
func computeGroupTables(entrants []*models.Entrant, fixtures []*models.Fixture) []models.GroupTable {
	type row struct {
		standing models.Standing
		position int
	}

	rows := make(map[int]*row)
	members := make(map[int][]*row)
	var groupIDs []int
	for _, e := range entrants {
		if e == nil || e.GroupID == nil {
			continue
		}
		gid := *e.GroupID
		if _, ok := members[gid]; !ok {
			groupIDs = append(groupIDs, gid)
		}
		position := e.Seed
		if e.GroupPosition != nil {
			position = *e.GroupPosition
		}
		r := &row{standing: models.Standing{EntrantID: e.ID, Name: e.Name, GroupID: gid}, position: position}
		rows[e.ID] = r
		members[gid] = append(members[gid], r)
	}
	sort.Ints(groupIDs)

	scheduled := make(map[int]int)
	played := make(map[int]int)
	for _, f := range fixtures {
		if f == nil || f.IsBye || f.EntrantBID == nil {
			continue
		}
		if f.Status != models.MatchStatusCompleted || f.ScoreA == nil || f.ScoreB == nil {
			scheduled[f.GroupID]++
			continue
		}
		played[f.GroupID]++
		a, okA := rows[f.EntrantAID]
		b, okB := rows[*f.EntrantBID]
		if !okA || !okB {
			continue
		}
		applyResult(&a.standing, *f.ScoreA, *f.ScoreB)
		applyResult(&b.standing, *f.ScoreB, *f.ScoreA)
	}

	tables := make([]models.GroupTable, 0, len(groupIDs))
	for _, gid := range groupIDs {
		group := members[gid]
		sort.SliceStable(group, func(i, j int) bool {
			x, y := group[i].standing, group[j].standing
			if x.Points != y.Points {
				return x.Points > y.Points
			}
			if x.LegDifference != y.LegDifference {
				return x.LegDifference > y.LegDifference
			}
			if x.LegsFor != y.LegsFor {
				return x.LegsFor > y.LegsFor
			}
			return group[i].position < group[j].position
		})

		table := models.GroupTable{
			GroupID:   gid,
			GroupName: brackets.GroupName(gid),
			Complete:  scheduled[gid] == 0 && (played[gid] > 0 || len(group) < 2),
			Standings: make([]models.Standing, len(group)),
		}
		for i, r := range group {
			r.standing.Rank = i + 1
			table.Standings[i] = r.standing
		}
		tables = append(tables, table)
	}
	return tables
}

func applyResult(s *models.Standing, legsFor, legsAgainst int) {
	s.Played++
	s.LegsFor += legsFor
	s.LegsAgainst += legsAgainst
	s.LegDifference = s.LegsFor - s.LegsAgainst
	switch {
	case legsFor > legsAgainst:
		s.Wins++
		s.Points += pointsWin
	case legsFor == legsAgainst:
		s.Draws++
		s.Points += pointsDraw
	default:
		s.Losses++
	}
}

func toGroupStandings(tables []models.GroupTable) []brackets.GroupStandings {
	out := make([]brackets.GroupStandings, 0, len(tables))
	for _, t := range tables {
		gs := brackets.GroupStandings{GroupID: t.GroupID, GroupName: t.GroupName}
		for _, s := range t.Standings {
			gs.Standings = append(gs.Standings, brackets.Standing{
				EntrantID:     s.EntrantID,
				Name:          s.Name,
				Rank:          s.Rank,
				Wins:          s.Wins,
				Losses:        s.Losses,
				LegDifference: s.LegDifference,
			})
		}
		out = append(out, gs)
	}
	return out
}
