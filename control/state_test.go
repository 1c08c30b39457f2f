package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalLockClearsExceptions(t *testing.T) {
	t.Run("Happy path - off then on clears exceptions", func(t *testing.T) {
		s := Default(420)
		s.SetGlobalLock(true)
		assert.True(t, s.ToggleJudgeException("j1"))
		assert.Equal(t, []string{"j1"}, s.UnlockedJudges)

		s.SetGlobalLock(false)
		s.SetGlobalLock(true)
		assert.Empty(t, s.UnlockedJudges)
	})

	t.Run("Happy path - setting the same value still clears", func(t *testing.T) {
		s := Default(420)
		s.SetGlobalLock(true)
		s.ToggleJudgeException("j1")
		s.SetGlobalLock(true)
		assert.Empty(t, s.UnlockedJudges)
	})
}

func TestEditable(t *testing.T) {
	s := Default(420)
	assert.True(t, s.Editable("j1"))

	s.SetGlobalLock(true)
	assert.False(t, s.Editable("j1"))

	s.ToggleJudgeException("j1")
	assert.True(t, s.Editable("j1"))
	assert.False(t, s.Editable("j2"))

	s.ToggleJudgeException("j1")
	assert.False(t, s.Editable("j1"))
}

func TestToggleJudgeException_NoopWhenUnlocked(t *testing.T) {
	s := Default(420)
	assert.False(t, s.ToggleJudgeException("j1"))
	assert.Empty(t, s.UnlockedJudges)
}

func TestSetActiveTeam(t *testing.T) {
	s := Default(420)
	s.SetGlobalLock(true)
	s.SetActiveTeam("t3")
	assert.Equal(t, "t3", s.ActiveTeamID)
	assert.True(t, s.GlobalLock)
	assert.False(t, s.Editable("j1"))
}

func TestTimer(t *testing.T) {
	t.Run("Happy path - tick decrements while running", func(t *testing.T) {
		s := Default(3)
		assert.False(t, s.Tick(), "stopped timer does not tick")

		s.ToggleTimer()
		assert.True(t, s.Timer.IsRunning)
		assert.True(t, s.Tick())
		assert.Equal(t, 2, s.Timer.Seconds)
	})

	t.Run("Happy path - floor at zero stops the timer", func(t *testing.T) {
		s := Default(1)
		s.ToggleTimer()
		s.Tick()
		assert.Equal(t, 0, s.Timer.Seconds)
		assert.False(t, s.Timer.IsRunning)
		assert.False(t, s.Tick())
		assert.Equal(t, 0, s.Timer.Seconds)
	})

	t.Run("Unhappy path - cannot start at zero", func(t *testing.T) {
		s := Default(0)
		s.ToggleTimer()
		assert.False(t, s.Timer.IsRunning)
	})

	t.Run("Happy path - reset stops and restores", func(t *testing.T) {
		s := Default(420)
		s.ToggleTimer()
		s.Tick()
		s.ResetTimer(420)
		assert.Equal(t, Timer{IsRunning: false, Seconds: 420}, s.Timer)
	})
}

func TestClone(t *testing.T) {
	s := Default(420)
	s.SetGlobalLock(true)
	s.ToggleJudgeException("j1")

	c := s.Clone()
	c.ToggleJudgeException("j2")
	assert.Equal(t, []string{"j1"}, s.UnlockedJudges)
	assert.Equal(t, []string{"j1", "j2"}, c.UnlockedJudges)
}
