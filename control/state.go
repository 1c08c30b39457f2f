// Package control holds the shared event-control state: the spotlighted team,
// the presentation timer and the global score lock with per-judge exceptions.
package control

import "slices"

type Timer struct {
	IsRunning bool `json:"isRunning"`
	Seconds   int  `json:"seconds"`
}

// State is the control_state document.
type State struct {
	ActiveTeamID   string   `json:"activeTeamId"`
	Timer          Timer    `json:"timer"`
	GlobalLock     bool     `json:"globalLock"`
	UnlockedJudges []string `json:"unlockedJudges"`
}

// Default is the zero state with a stopped timer set to presentationSeconds.
func Default(presentationSeconds int) State {
	return State{
		Timer:          Timer{Seconds: presentationSeconds},
		UnlockedJudges: []string{},
	}
}

func (s State) Clone() State {
	c := s
	c.UnlockedJudges = append([]string{}, s.UnlockedJudges...)
	return c
}

// Editable reports whether judgeID may submit or change scores.
func (s State) Editable(judgeID string) bool {
	return !s.GlobalLock || slices.Contains(s.UnlockedJudges, judgeID)
}

// SetGlobalLock sets the lock and always clears the exception list, in both directions.
func (s *State) SetGlobalLock(locked bool) {
	s.GlobalLock = locked
	s.UnlockedJudges = []string{}
}

// ToggleJudgeException flips judgeID's exception. It is a no-op while unlocked
// and reports whether anything changed.
func (s *State) ToggleJudgeException(judgeID string) bool {
	if !s.GlobalLock || judgeID == "" {
		return false
	}
	if i := slices.Index(s.UnlockedJudges, judgeID); i >= 0 {
		s.UnlockedJudges = slices.Delete(s.UnlockedJudges, i, i+1)
		return true
	}
	s.UnlockedJudges = append(s.UnlockedJudges, judgeID)
	return true
}

func (s *State) SetActiveTeam(teamID string) {
	s.ActiveTeamID = teamID
}

// ToggleTimer starts or pauses the timer. A timer at zero cannot be started.
func (s *State) ToggleTimer() {
	s.SetTimerRunning(!s.Timer.IsRunning)
}

func (s *State) SetTimerRunning(running bool) {
	if running && s.Timer.Seconds <= 0 {
		s.Timer.IsRunning = false
		return
	}
	s.Timer.IsRunning = running
}

// Tick advances a running timer by one second. The timer stops at zero.
func (s *State) Tick() bool {
	if !s.Timer.IsRunning {
		return false
	}
	if s.Timer.Seconds > 0 {
		s.Timer.Seconds--
	}
	if s.Timer.Seconds <= 0 {
		s.Timer.Seconds = 0
		s.Timer.IsRunning = false
	}
	return true
}

// ResetTimer stops the timer and sets it back to seconds.
func (s *State) ResetTimer(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	s.Timer = Timer{Seconds: seconds}
}
