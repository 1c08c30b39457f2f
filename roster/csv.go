package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kripanshu-singh/congkong-livescore/storage"
)

const bom = "\ufeff"

// Import templates offered for download. Column order is fixed.
const (
	TeamTemplateHeader  = "순서,팀명,소속,발표자,시간,주제"
	JudgeTemplateHeader = "번호,성함,직함,소속,핸드폰번호,이메일"
)

var headerMarkers = []string{"순서", "번호", "order", "seq", "no", "no."}

// RowError reports the first invalid line of an import. Line is 1-based and
// counts the header row when present.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

var ErrEmptyImport = errors.New("import contains no rows")

// TeamTemplate returns the team import template with a UTF-8 BOM.
func TeamTemplate() []byte {
	return []byte(bom + TeamTemplateHeader + "\n1,Team Alpha,Alpha Inc.,Hong Gildong,10:00,AI tutoring\n")
}

func JudgeTemplate() []byte {
	return []byte(bom + JudgeTemplateHeader + "\n1,Kim Judge,Partner,Seoul Ventures,010-0000-0000,judge@example.com\n")
}

// ParseTeamsCSV reads team rows. The column layout is chosen by the number of cells:
// 4 seq,name,affiliation,presenter; 5 adds topic; 6 adds time before topic;
// 7 or more puts category after seq. Any invalid row rejects the whole file.
func ParseTeamsCSV(r io.Reader) ([]storage.Team, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	teams := make([]storage.Team, 0, len(rows))
	for _, row := range rows {
		c := row.cells
		var t storage.Team
		switch {
		case len(c) >= 7:
			t = storage.Team{Category: c[1], Name: c[2], Affiliation: c[3], Presenter: c[4], TimeSlot: c[5], Topic: c[6]}
		case len(c) == 6:
			t = storage.Team{Name: c[1], Affiliation: c[2], Presenter: c[3], TimeSlot: c[4], Topic: c[5]}
		case len(c) == 5:
			t = storage.Team{Name: c[1], Affiliation: c[2], Presenter: c[3], Topic: c[4]}
		case len(c) == 4:
			t = storage.Team{Name: c[1], Affiliation: c[2], Presenter: c[3]}
		default:
			return nil, &RowError{Line: row.line, Err: fmt.Errorf("expected at least 4 columns, got %d", len(c))}
		}
		if err := ValidateTeam(&t); err != nil {
			return nil, &RowError{Line: row.line, Err: err}
		}
		teams = append(teams, t)
	}
	return teams, nil
}

// ParseJudgesCSV reads seq,name,title,affiliation,phone,email rows. Trailing
// columns may be omitted.
func ParseJudgesCSV(r io.Reader) ([]storage.Judge, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	judges := make([]storage.Judge, 0, len(rows))
	for _, row := range rows {
		c := row.cells
		if len(c) < 2 {
			return nil, &RowError{Line: row.line, Err: fmt.Errorf("expected at least 2 columns, got %d", len(c))}
		}
		j := storage.Judge{
			Name:        cell(c, 1),
			Title:       cell(c, 2),
			Affiliation: cell(c, 3),
			Phone:       cell(c, 4),
			Email:       cell(c, 5),
		}
		if err := ValidateJudge(&j); err != nil {
			return nil, &RowError{Line: row.line, Err: err}
		}
		judges = append(judges, j)
	}
	return judges, nil
}

type csvRow struct {
	line  int
	cells []string
}

func readRows(r io.Reader) ([]csvRow, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []csvRow
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		cells := make([]string, len(rec))
		blank := true
		for i, f := range rec {
			cells[i] = norm.NFC.String(strings.TrimSpace(f))
			if cells[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		if first {
			first = false
			if isHeader(cells[0]) {
				continue
			}
		}
		rows = append(rows, csvRow{line: line, cells: cells})
	}

	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}
	return rows, nil
}

func isHeader(cell string) bool {
	cell = strings.ToLower(strings.TrimPrefix(cell, bom))
	for _, m := range headerMarkers {
		if cell == m {
			return true
		}
	}
	return false
}

func cell(c []string, i int) string {
	if i < len(c) {
		return c[i]
	}
	return ""
}
