package scoring

import (
	"sort"

	"github.com/kripanshu-singh/congkong-livescore/storage"
)

// Standing is one row of the leaderboard.
type Standing struct {
	Team            storage.Team   `json:"team"`
	Rank            int            `json:"rank"`
	Ranked          bool           `json:"ranked"`
	JudgeScore      float64        `json:"judgeScore"`
	FinalScore      float64        `json:"finalScore"`
	SubmissionCount int            `json:"submissionCount"`
	TotalJudges     int            `json:"totalJudges"`
	JudgeTotals     map[string]int `json:"judgeTotals"`
	CategoryTotals  map[string]int `json:"categoryTotals"`
	Audience        AudienceSignal `json:"audience"`
}

// Completion is submissionCount / totalJudges. It is informational only.
func (s Standing) Completion() float64 {
	if s.TotalJudges == 0 {
		return 0
	}
	return float64(s.SubmissionCount) / float64(s.TotalJudges)
}

// RankTeams computes the leaderboard from the current stored state.
//
// Only sealed records of rostered judges count. Teams are ordered by final score,
// then by category subtotals in settings.TieBreakOrder, then by roster order.
// Teams without any submission are unranked and placed last.
func RankTeams(teams []storage.Team, judges []storage.Judge, records []*storage.ScoreRecord, settings Settings, audience map[string]AudienceSignal) []Standing {
	settings = settings.WithDefaults()

	rostered := make(map[string]bool, len(judges))
	for _, j := range judges {
		rostered[j.ID] = true
	}

	byTeam := make(map[string][]*storage.ScoreRecord)
	for _, r := range records {
		if r == nil || !r.Locked || !rostered[r.JudgeID] {
			continue
		}
		byTeam[r.TeamID] = append(byTeam[r.TeamID], r)
	}

	standings := make([]Standing, 0, len(teams))
	for _, team := range teams {
		st := Standing{
			Team:           team,
			TotalJudges:    len(judges),
			JudgeTotals:    make(map[string]int),
			CategoryTotals: make(map[string]int),
			Audience:       audience[team.ID],
		}

		totals := make([]int, 0, len(byTeam[team.ID]))
		for _, r := range byTeam[team.ID] {
			totals = append(totals, r.Total)
			st.JudgeTotals[r.JudgeID] = r.Total
			for cat, v := range CategoryTotals(settings.Criteria, r.Detail) {
				st.CategoryTotals[cat] += v
			}
		}
		st.SubmissionCount = len(totals)
		st.Ranked = st.SubmissionCount > 0
		st.JudgeScore = AggregateJudgeScore(totals, settings.ScoringMethod)
		st.FinalScore = CombineWithVote(st.JudgeScore, st.Audience.Score, st.Audience.Rank, settings)

		standings = append(standings, st)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Ranked != b.Ranked {
			return a.Ranked
		}
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		for _, cat := range settings.TieBreakOrder {
			if a.CategoryTotals[cat] != b.CategoryTotals[cat] {
				return a.CategoryTotals[cat] > b.CategoryTotals[cat]
			}
		}
		return false
	})

	for i := range standings {
		if standings[i].Ranked {
			standings[i].Rank = i + 1
		}
	}
	return standings
}

// Winner is the first standing, if it is ranked.
func Winner(standings []Standing) (Standing, bool) {
	if len(standings) == 0 || !standings[0].Ranked {
		return Standing{}, false
	}
	return standings[0], true
}
