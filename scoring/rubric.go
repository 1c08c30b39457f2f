package scoring

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultTotalMaxScore is used when a rubric does not declare its total.
const DefaultTotalMaxScore = 100

type Criterion struct {
	ID      string `json:"id" yaml:"id"`
	Label   string `json:"label" yaml:"label"`
	LabelEn string `json:"label_en" yaml:"label_en"`
	Max     int    `json:"max" yaml:"max"`
	Desc    string `json:"desc" yaml:"desc"`
}

type Category struct {
	ID        string      `json:"id" yaml:"id"`
	Label     string      `json:"label" yaml:"label"`
	LabelEn   string      `json:"label_en" yaml:"label_en"`
	MaxPoints int         `json:"maxPoints" yaml:"maxPoints"`
	Items     []Criterion `json:"items" yaml:"items"`
}

type Rubric struct {
	Categories    []Category `json:"categories" yaml:"categories"`
	TotalMaxScore int        `json:"totalMaxScore" yaml:"totalMaxScore"`
}

// DefaultRubric is the built-in zero-state rubric: three categories, nine items, 100 points.
func DefaultRubric() Rubric {
	return Rubric{
		TotalMaxScore: DefaultTotalMaxScore,
		Categories: []Category{
			{
				ID: "cat_creativity", Label: "창의성", LabelEn: "Creativity", MaxPoints: 30,
				Items: []Criterion{
					{ID: "c1", Label: "BM 창의성", LabelEn: "Creativity", Max: 10, Desc: "기존 비즈니스 대비 차별성"},
					{ID: "c2", Label: "BM 도전성", LabelEn: "Challenge", Max: 10, Desc: "사업 추진력 또는 의지"},
					{ID: "c3", Label: "BM 혁신성", LabelEn: "Innovation", Max: 10, Desc: "산업 혁신역량 제고"},
				},
			},
			{
				ID: "cat_market", Label: "시장성", LabelEn: "Marketability", MaxPoints: 40,
				Items: []Criterion{
					{ID: "m1", Label: "성장 가능성", LabelEn: "Growth Potential", Max: 15, Desc: "목표시장 미래 성장성"},
					{ID: "m2", Label: "시장진입장벽", LabelEn: "Entry Barriers", Max: 15, Desc: "경쟁구조 및 규제"},
					{ID: "m3", Label: "파급효과", LabelEn: "Ripple Effect", Max: 10, Desc: "시장 확대 가능성"},
				},
			},
			{
				ID: "cat_business", Label: "사업성", LabelEn: "Feasibility", MaxPoints: 30,
				Items: []Criterion{
					{ID: "b1", Label: "목표 구체성", LabelEn: "Goal Specificity", Max: 10, Desc: "명료한 사업 가치 설정"},
					{ID: "b2", Label: "수익모델", LabelEn: "Business Model", Max: 10, Desc: "수익모델 구체화 정도"},
					{ID: "b3", Label: "실현 가능성", LabelEn: "Feasibility", Max: 10, Desc: "규제/비용 등 실현성"},
				},
			},
		},
	}
}

// Total returns the declared total, falling back to DefaultTotalMaxScore.
func (r Rubric) Total() int {
	if r.TotalMaxScore <= 0 {
		return DefaultTotalMaxScore
	}
	return r.TotalMaxScore
}

// Criterion looks up an item and the id of the category holding it.
func (r Rubric) Criterion(id string) (Criterion, string, bool) {
	for _, cat := range r.Categories {
		for _, item := range cat.Items {
			if item.ID == id {
				return item, cat.ID, true
			}
		}
	}
	return Criterion{}, "", false
}

// CategoryOf maps every criterion id to its category id.
func (r Rubric) CategoryOf() map[string]string {
	out := make(map[string]string)
	for _, cat := range r.Categories {
		for _, item := range cat.Items {
			out[item.ID] = cat.ID
		}
	}
	return out
}

type CategoryReport struct {
	CategoryID string   `json:"categoryId"`
	Declared   int      `json:"declared"`
	Sum        int      `json:"sum"`
	Deviation  int      `json:"deviation"`
	Valid      bool     `json:"valid"`
	Errors     []string `json:"errors,omitempty"`
}

// Report is the outcome of ValidateCriteria. Deviation is declared minus actual,
// so a category declared at 100 whose items sum to 95 carries deviation 5.
type Report struct {
	Valid         bool             `json:"valid"`
	TotalMaxScore int              `json:"totalMaxScore"`
	CategorySum   int              `json:"categorySum"`
	Deviation     int              `json:"deviation"`
	Categories    []CategoryReport `json:"categories"`
	Errors        []string         `json:"errors,omitempty"`
}

func (r Report) Error() string {
	for _, c := range r.Categories {
		if !c.Valid {
			if len(c.Errors) > 0 {
				return fmt.Sprintf("category %s: %s", c.CategoryID, c.Errors[0])
			}
			return fmt.Sprintf("category %s: sum %d != declared %d", c.CategoryID, c.Sum, c.Declared)
		}
	}
	if len(r.Errors) > 0 {
		return r.Errors[0]
	}
	if r.Deviation != 0 {
		return fmt.Sprintf("categories sum %d != total %d", r.CategorySum, r.TotalMaxScore)
	}
	return "rubric is valid"
}

// ValidateCriteria checks that item maxima add up to each category's declared
// maximum and that the categories add up to the rubric total. It never corrects.
func ValidateCriteria(r Rubric) Report {
	rep := Report{Valid: true, TotalMaxScore: r.Total()}
	seenCategories := make(map[string]bool)
	seenItems := make(map[string]bool)

	if len(r.Categories) == 0 {
		rep.Valid = false
		rep.Errors = append(rep.Errors, "rubric has no categories")
	}

	for _, cat := range r.Categories {
		cr := CategoryReport{CategoryID: cat.ID, Declared: cat.MaxPoints, Valid: true}
		if cat.ID == "" {
			cr.Errors = append(cr.Errors, "category id is empty")
		} else if seenCategories[cat.ID] {
			cr.Errors = append(cr.Errors, "duplicate category id")
		}
		seenCategories[cat.ID] = true

		for _, item := range cat.Items {
			cr.Sum += item.Max
			switch {
			case item.ID == "":
				cr.Errors = append(cr.Errors, "criterion id is empty")
			case seenItems[item.ID]:
				cr.Errors = append(cr.Errors, fmt.Sprintf("duplicate criterion id %s", item.ID))
			}
			seenItems[item.ID] = true
			if item.Max < 0 {
				cr.Errors = append(cr.Errors, fmt.Sprintf("criterion %s has negative max", item.ID))
			}
		}

		cr.Deviation = cr.Declared - cr.Sum
		cr.Valid = cr.Deviation == 0 && len(cr.Errors) == 0
		if !cr.Valid {
			rep.Valid = false
		}
		rep.CategorySum += cat.MaxPoints
		rep.Categories = append(rep.Categories, cr)
	}

	rep.Deviation = rep.TotalMaxScore - rep.CategorySum
	if rep.Deviation != 0 {
		rep.Valid = false
	}
	return rep
}

// DetailError describes one rejected entry of a score detail map.
type DetailError struct {
	CriterionID string
	Value       int
	Max         int
	Unknown     bool
}

func (e *DetailError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("unknown criterion %q", e.CriterionID)
	}
	return fmt.Sprintf("criterion %s: %d is outside [0, %d]", e.CriterionID, e.Value, e.Max)
}

// ValidateDetail checks that every key is a configured criterion and every value
// is within [0, max]. Out-of-range values are rejected, not clamped.
func ValidateDetail(r Rubric, detail map[string]int) []*DetailError {
	ids := make([]string, 0, len(detail))
	for id := range detail {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []*DetailError
	for _, id := range ids {
		v := detail[id]
		item, _, ok := r.Criterion(id)
		if !ok {
			errs = append(errs, &DetailError{CriterionID: id, Value: v, Unknown: true})
			continue
		}
		if v < 0 || v > item.Max {
			errs = append(errs, &DetailError{CriterionID: id, Value: v, Max: item.Max})
		}
	}
	return errs
}

// SumDetail is the authoritative record total.
func SumDetail(detail map[string]int) int {
	total := 0
	for _, v := range detail {
		total += v
	}
	return total
}

// CategoryTotals sums a detail map per category. Unknown keys are ignored.
func CategoryTotals(r Rubric, detail map[string]int) map[string]int {
	owner := r.CategoryOf()
	out := make(map[string]int, len(r.Categories))
	for id, v := range detail {
		if cat, ok := owner[id]; ok {
			out[cat] += v
		}
	}
	return out
}

// LoadRubricYAML decodes a rubric file. The result is not validated.
func LoadRubricYAML(rd io.Reader) (Rubric, error) {
	var r Rubric
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return Rubric{}, fmt.Errorf("decode rubric: %w", err)
	}
	return r, nil
}
