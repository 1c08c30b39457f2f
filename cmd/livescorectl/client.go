package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kripanshu-singh/congkong-livescore/api/models"
	"github.com/kripanshu-singh/congkong-livescore/realtime"
	"github.com/kripanshu-singh/congkong-livescore/scoring"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

type client struct {
	base  string
	token string
	http  *http.Client
}

func newClient(base, token string) *client {
	return &client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError carries the status and decoded body of a non-2xx response.
type apiError struct {
	Status int
	Body   []byte
}

func (e *apiError) Error() string {
	var resp models.ErrorResponse
	if json.Unmarshal(e.Body, &resp) == nil && resp.Error != "" {
		if len(resp.Fields) > 0 {
			return fmt.Sprintf("%d: %s %v", e.Status, resp.Error, resp.Fields)
		}
		return fmt.Sprintf("%d: %s", e.Status, resp.Error)
	}
	return fmt.Sprintf("%d: %s", e.Status, strings.TrimSpace(string(e.Body)))
}

func (c *client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 300 {
		return nil, &apiError{Status: res.StatusCode, Body: raw}
	}
	return raw, nil
}

func (c *client) importCSV(ctx context.Context, path, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	raw, err := c.do(ctx, http.MethodPost, path, "text/csv", f)
	if err != nil {
		return err
	}
	var resp struct {
		List []json.RawMessage `json:"list"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return err
	}
	fmt.Printf("imported %s, roster now has %d entries\n", file, len(resp.List))
	return nil
}

func (c *client) saveCriteria(ctx context.Context, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	rubric, err := scoring.LoadRubricYAML(f)
	if err != nil {
		return err
	}
	if rep := scoring.ValidateCriteria(rubric); !rep.Valid {
		printReport(rep)
		return rep
	}

	body, err := json.Marshal(rubric)
	if err != nil {
		return err
	}
	if _, err := c.do(ctx, http.MethodPut, "/api/admin/criteria", "application/json", bytes.NewReader(body)); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnprocessableEntity {
			var resp struct {
				Report scoring.Report `json:"report"`
			}
			if json.Unmarshal(apiErr.Body, &resp) == nil {
				printReport(resp.Report)
			}
		}
		return err
	}
	fmt.Printf("rubric saved: %d categories, total %d\n", len(rubric.Categories), rubric.Total())
	return nil
}

func printReport(rep scoring.Report) {
	for _, c := range rep.Categories {
		if !c.Valid {
			fmt.Fprintf(os.Stderr, "  %s: declared %d, items sum %d (deviation %d) %s\n",
				c.CategoryID, c.Declared, c.Sum, c.Deviation, strings.Join(c.Errors, "; "))
		}
	}
	if rep.Deviation != 0 {
		fmt.Fprintf(os.Stderr, "  categories sum %d, total %d\n", rep.CategorySum, rep.TotalMaxScore)
	}
}

func (c *client) export(ctx context.Context, file string) error {
	raw, err := c.do(ctx, http.MethodGet, "/api/admin/results/export", "", nil)
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, raw, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", file, len(raw))
	return nil
}

// leaderboard mirrors the fields of the leaderboard document the watch command prints.
type leaderboard struct {
	Method    scoring.Method     `json:"method"`
	VoteMode  scoring.VoteMode   `json:"voteMode"`
	Standings []scoring.Standing `json:"standings"`
}

func (c *client) watch(ctx context.Context, out io.Writer) error {
	endpoint := "ws" + strings.TrimPrefix(c.base, "http") + "/ws"
	rc, err := realtime.Dial(ctx, endpoint, c.token)
	if err != nil {
		return err
	}
	defer rc.Close()

	err = rc.Run(ctx, func(m realtime.Message) {
		if m.Name != storage.DocLeaderboard {
			return
		}
		var board leaderboard
		if err := json.Unmarshal(m.Data, &board); err != nil {
			fmt.Fprintf(os.Stderr, "bad leaderboard: %v\n", err)
			return
		}
		printLeaderboard(out, m.Version, board)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printLeaderboard(out io.Writer, version uint64, board leaderboard) {
	fmt.Fprintf(out, "\n-- leaderboard v%d (%s, vote %s) --\n", version, board.Method, board.VoteMode)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTEAM\tJUDGE\tFINAL\tSUBMITTED")
	for _, st := range board.Standings {
		rank := "-"
		if st.Ranked {
			rank = fmt.Sprint(st.Rank)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%d/%d\n", rank, st.Team.Name, st.JudgeScore, st.FinalScore, st.SubmissionCount, st.TotalJudges)
	}
	_ = tw.Flush()
}
