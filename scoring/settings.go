package scoring

import (
	"github.com/go-playground/validator/v10"
)

const (
	DefaultPresentationMinutes = 7
	DefaultQnAMinutes          = 3
	DefaultVoteRatio           = 30
)

// DefaultTieBreakOrder compares business, then market, then creativity subtotals.
var DefaultTieBreakOrder = []string{"cat_business", "cat_market", "cat_creativity"}

// Settings is the event_settings document: event metadata plus scoring configuration.
type Settings struct {
	Title             string `json:"title" validate:"max=200"`
	Date              string `json:"date"`
	Location          string `json:"location"`
	Description       string `json:"description"`
	BannerURL         string `json:"bannerUrl" validate:"omitempty,url"`
	TimerPresentation int    `json:"timerPresentation" validate:"gte=0,lte=180"`
	TimerQnA          int    `json:"timerQnA" validate:"gte=0,lte=180"`

	ScoringMethod  Method   `json:"scoringMethod" validate:"omitempty,oneof=avg trimmed sum"`
	VoteMode       VoteMode `json:"voteMode" validate:"omitempty,oneof=none ratio rank"`
	VoteRatio      int      `json:"voteRatio" validate:"gte=0,lte=100"`
	RankBonus1     int      `json:"rankBonus1" validate:"gte=-100,lte=100"`
	RankBonus2     int      `json:"rankBonus2" validate:"gte=-100,lte=100"`
	RankBonus3     int      `json:"rankBonus3" validate:"gte=-100,lte=100"`
	RankBonusOther int      `json:"rankBonusOther" validate:"gte=-100,lte=100"`

	Criteria      Rubric   `json:"criteria"`
	TieBreakOrder []string `json:"tieBreakOrder,omitempty"`
}

var validate = validator.New()

// DefaultSettings is the zero-state configuration used when no document exists.
func DefaultSettings() Settings {
	return Settings{
		TimerPresentation: DefaultPresentationMinutes,
		TimerQnA:          DefaultQnAMinutes,
		ScoringMethod:     MethodAvg,
		VoteMode:          VoteNone,
		VoteRatio:         DefaultVoteRatio,
		RankBonus1:        5,
		RankBonus2:        3,
		RankBonus3:        1,
		RankBonusOther:    0,
		Criteria:          DefaultRubric(),
		TieBreakOrder:     append([]string(nil), DefaultTieBreakOrder...),
	}
}

// WithDefaults fills the fields a partially written document may lack.
func (s Settings) WithDefaults() Settings {
	s.ScoringMethod = s.ScoringMethod.Normalize()
	s.VoteMode = s.VoteMode.Normalize()
	if len(s.Criteria.Categories) == 0 {
		s.Criteria = DefaultRubric()
	}
	if s.Criteria.TotalMaxScore <= 0 {
		s.Criteria.TotalMaxScore = DefaultTotalMaxScore
	}
	if len(s.TieBreakOrder) == 0 {
		s.TieBreakOrder = append([]string(nil), DefaultTieBreakOrder...)
	}
	if s.TimerPresentation <= 0 {
		s.TimerPresentation = DefaultPresentationMinutes
	}
	if s.TimerQnA <= 0 {
		s.TimerQnA = DefaultQnAMinutes
	}
	return s
}

// PresentationSeconds is the timer reset value.
func (s Settings) PresentationSeconds() int {
	if s.TimerPresentation <= 0 {
		return DefaultPresentationMinutes * 60
	}
	return s.TimerPresentation * 60
}

// Validate checks field ranges and the rubric. The returned error is either a
// validator.ValidationErrors or a Report.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if rep := ValidateCriteria(s.Criteria); !rep.Valid {
		return rep
	}
	return nil
}
