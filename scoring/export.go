package scoring

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/kripanshu-singh/congkong-livescore/storage"
)

const utf8BOM = "\ufeff"

// WriteResultsCSV writes one row per team ordered by presentation sequence, not by rank.
// The file starts with a UTF-8 BOM so spreadsheet tools detect the encoding.
func WriteResultsCSV(w io.Writer, standings []Standing, judges []storage.Judge, rubric Rubric) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)

	header := []string{"Rank", "Seq", "Team", "Affiliation", "Presenter", "Judge Score", "Final Score"}
	for _, j := range judges {
		header = append(header, j.Name)
	}
	for _, cat := range rubric.Categories {
		header = append(header, cat.Label)
	}
	header = append(header, "Submissions")
	if err := cw.Write(header); err != nil {
		return err
	}

	rows := append([]Standing(nil), standings...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Team.Seq < rows[j].Team.Seq })

	for _, st := range rows {
		rank := "-"
		if st.Ranked {
			rank = strconv.Itoa(st.Rank)
		}
		row := []string{
			rank,
			strconv.Itoa(st.Team.Seq),
			st.Team.Name,
			st.Team.Affiliation,
			st.Team.Presenter,
			strconv.FormatFloat(st.JudgeScore, 'f', 2, 64),
			strconv.FormatFloat(st.FinalScore, 'f', 2, 64),
		}
		for _, j := range judges {
			if total, ok := st.JudgeTotals[j.ID]; ok {
				row = append(row, strconv.Itoa(total))
			} else {
				row = append(row, "")
			}
		}
		for _, cat := range rubric.Categories {
			row = append(row, strconv.Itoa(st.CategoryTotals[cat.ID]))
		}
		row = append(row, strconv.Itoa(st.SubmissionCount))
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
