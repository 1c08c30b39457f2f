package scoring

import (
	"math/big"
	"sort"

	"github.com/kripanshu-singh/congkong-livescore/storage"
)

// AudienceSignal is the audience input for one team. Both fields are nil when
// the team received no votes.
type AudienceSignal struct {
	Score *float64 `json:"score"`
	Rank  *int     `json:"rank"`
	Votes int      `json:"votes"`
}

// AudienceSignals turns raw ballots into a 0..100 score per team (mean rating
// scaled by maxRating) and a competition rank over those scores (1, 2, 2, 4).
func AudienceSignals(votes []*storage.AudienceVote, maxRating int) map[string]AudienceSignal {
	if maxRating <= 0 {
		maxRating = 10
	}

	sums := make(map[string]int64)
	counts := make(map[string]int64)
	for _, v := range votes {
		if v == nil || v.TeamID == "" {
			continue
		}
		sums[v.TeamID] += int64(v.Rating)
		counts[v.TeamID]++
	}

	type entry struct {
		teamID string
		score  *big.Rat
	}
	entries := make([]entry, 0, len(sums))
	for teamID, sum := range sums {
		// sum * 100 / (count * maxRating)
		score := big.NewRat(sum*100, counts[teamID]*int64(maxRating))
		entries = append(entries, entry{teamID: teamID, score: roundRat(score)})
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].score.Cmp(entries[j].score); c != 0 {
			return c > 0
		}
		return entries[i].teamID < entries[j].teamID
	})

	out := make(map[string]AudienceSignal, len(entries))
	rank := 0
	for i, e := range entries {
		if i == 0 || e.score.Cmp(entries[i-1].score) != 0 {
			rank = i + 1
		}
		score := ratToFloat(e.score)
		r := rank
		out[e.teamID] = AudienceSignal{Score: &score, Rank: &r, Votes: int(counts[e.teamID])}
	}
	return out
}
