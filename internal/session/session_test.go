package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureCreatesAndKeeps(t *testing.T) {
	s := NewStore()

	sess := s.Ensure(100, -200)
	require.NotNil(t, sess)
	assert.Equal(t, StatusAwaitingPhoto, sess.Status)
	assert.Equal(t, int64(-200), sess.HouseChat)

	sess.Step = StepSurname
	again := s.Ensure(100, 0)
	assert.Same(t, sess, again, "живая сессия не пересоздаётся")
	assert.Equal(t, StepSurname, again.Step)
	assert.Equal(t, int64(-200), again.HouseChat, "нулевой houseChat не затирает дом")
}

func TestEnsureRestartsFinishedSession(t *testing.T) {
	s := NewStore()

	old := s.Ensure(100, -200)
	old.Status = StatusApproved

	fresh := s.Ensure(100, 0)
	assert.NotSame(t, old, fresh, "после approved цикл начинается заново")
	assert.Equal(t, StatusAwaitingPhoto, fresh.Status)
	assert.Equal(t, StepNone, fresh.Step)
	assert.Equal(t, int64(0), fresh.HouseChat)
}

func TestEnsureKeepsDeniedSession(t *testing.T) {
	s := NewStore()

	old := s.Ensure(100, -200)
	old.Status = StatusDenied

	assert.Same(t, old, s.Ensure(100, 0))
}

func TestDelete(t *testing.T) {
	s := NewStore()
	s.Ensure(100, -200)
	s.Delete(100)
	assert.Nil(t, s.Get(100))
}

func TestPendingReasonSlotLastWriterWins(t *testing.T) {
	s := NewStore()

	assert.Equal(t, int64(0), s.PendingReason())

	s.SetPendingReason(100)
	s.SetPendingReason(200)
	assert.Equal(t, int64(200), s.PendingReason())

	s.SetPendingReason(0)
	assert.Equal(t, int64(0), s.PendingReason())
}
