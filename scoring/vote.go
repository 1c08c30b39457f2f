package scoring

import "math/big"

// VoteMode selects how the audience signal is blended into the judge score.
type VoteMode string

const (
	VoteNone  VoteMode = "none"
	VoteRatio VoteMode = "ratio"
	VoteRank  VoteMode = "rank"
)

func (m VoteMode) Normalize() VoteMode {
	switch m {
	case VoteNone, VoteRatio, VoteRank:
		return m
	default:
		return VoteNone
	}
}

// CombineWithVote applies the configured vote mode to an aggregated judge score.
// A nil audience score counts as 0 and a nil rank earns RankBonusOther.
// The judge score itself is never modified; the result is rounded to two decimals.
func CombineWithVote(judgeScore float64, audienceScore *float64, audienceRank *int, s Settings) float64 {
	judge, ok := floatToRat(judgeScore)
	if !ok {
		return judgeScore
	}

	switch s.VoteMode.Normalize() {
	case VoteRatio:
		ratio := int64(clampPercent(s.VoteRatio))
		audience := new(big.Rat)
		if audienceScore != nil {
			if a, ok := floatToRat(*audienceScore); ok {
				audience = a
			}
		}
		judgePart := new(big.Rat).Mul(judge, big.NewRat(100-ratio, 100))
		audiencePart := new(big.Rat).Mul(audience, big.NewRat(ratio, 100))
		return ratToFloat(roundRat(judgePart.Add(judgePart, audiencePart)))

	case VoteRank:
		bonus := s.RankBonusOther
		if audienceRank != nil {
			switch *audienceRank {
			case 1:
				bonus = s.RankBonus1
			case 2:
				bonus = s.RankBonus2
			case 3:
				bonus = s.RankBonus3
			}
		}
		sum := new(big.Rat).Add(judge, new(big.Rat).SetInt64(int64(bonus)))
		return ratToFloat(roundRat(sum))
	}

	return ratToFloat(roundRat(judge))
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
