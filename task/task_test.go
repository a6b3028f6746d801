package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngleSideAngle/swiper/cell"
)

// countingInner increments *b.Get() once per Step and reports done after n
// steps, returning the final value of the guarded cell.
func countingInner(b *Borrow[int], n int) Inner[int] {
	steps := 0
	return StepFunc[int](func(ctx context.Context) (int, bool, error) {
		*b.Get()++
		steps++
		if steps >= n {
			return *b.Get(), true, nil
		}
		return 0, false, nil
	})
}

func TestTask_S1_UncontestedRun(t *testing.T) {
	c := cell.New("motor", 0)
	a := Wrap1("A", c, func(b *Borrow[int]) Inner[int] { return countingInner(b, 5) })

	var p Progress[int]
	for i := 0; i < 4; i++ {
		p = a.Examine(context.Background())
		assert.True(t, p.Pending)
	}
	p = a.Examine(context.Background())
	assert.False(t, p.Pending)
	require.NoError(t, p.Err)
	assert.Equal(t, 5, p.Value)
	assert.Equal(t, 5, *c.Value())
	assert.False(t, c.IsHeldBy(a.Handle()))
}

func TestTask_S2_ImmediateStealOnFirstPoll(t *testing.T) {
	c := cell.New("motor", 0)
	a := Wrap1("A", c, func(b *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) {
			*b.Get()++
			return 0, false, nil
		})
	})

	a.Examine(context.Background())
	a.Examine(context.Background())
	assert.Equal(t, 2, *c.Value())

	b := Wrap1("B", c, func(bb *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) {
			*bb.Get() = 100
			return 100, true, nil
		})
	})

	p := b.Examine(context.Background())
	require.False(t, p.Pending)
	require.NoError(t, p.Err)
	assert.Equal(t, 100, *c.Value())
	assert.False(t, c.IsHeldBy(b.Handle()))

	p = a.Examine(context.Background())
	require.False(t, p.Pending)
	require.Error(t, p.Err)
	var preemptErr *PreemptionError
	require.ErrorAs(t, p.Err, &preemptErr)
	assert.Equal(t, "motor", preemptErr.Requirement)
}

func TestTask_S3_MultiRequirementAtomicity(t *testing.T) {
	c1 := cell.New("c1", 0)
	c2 := cell.New("c2", 0)

	a := Wrap1("A", c1, func(b *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) { return 0, false, nil })
	})
	a.Examine(context.Background())
	assert.True(t, c1.IsHeldBy(a.Handle()))

	b := Wrap2("B", c1, c2, func(b1, b2 *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) { return 0, true, nil })
	})
	p := b.Examine(context.Background())
	require.False(t, p.Pending)
	require.NoError(t, p.Err)
	assert.False(t, c1.IsHeldBy(b.Handle()))
	assert.False(t, c2.IsHeldBy(b.Handle()))

	p = a.Examine(context.Background())
	require.Error(t, p.Err)
	var preemptErr *PreemptionError
	require.ErrorAs(t, p.Err, &preemptErr)
	assert.Equal(t, "c1", preemptErr.Requirement)
}

func TestTask_S4_NonOverlappingTasksCoexist(t *testing.T) {
	c1 := cell.New("c1", 0)
	c2 := cell.New("c2", 0)

	a := Wrap1("A", c1, func(b *Borrow[int]) Inner[int] { return countingInner(b, 3) })
	b := Wrap1("B", c2, func(b *Borrow[int]) Inner[int] { return countingInner(b, 3) })

	for i := 0; i < 2; i++ {
		pa := a.Examine(context.Background())
		pb := b.Examine(context.Background())
		assert.True(t, pa.Pending)
		assert.True(t, pb.Pending)
	}
	pa := a.Examine(context.Background())
	pb := b.Examine(context.Background())
	assert.NoError(t, pa.Err)
	assert.NoError(t, pb.Err)
	assert.Equal(t, 3, *c1.Value())
	assert.Equal(t, 3, *c2.Value())
}

func TestTask_S5_VoluntaryCompletionReleases(t *testing.T) {
	c := cell.New("motor", 0)

	a := Wrap1("A", c, func(b *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) {
			*b.Get()++
			return *b.Get(), true, nil
		})
	})
	p := a.Examine(context.Background())
	require.NoError(t, p.Err)
	assert.False(t, c.IsHeldBy(a.Handle()))

	cc := Wrap1("C", c, func(b *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) {
			*b.Get()++
			return *b.Get(), true, nil
		})
	})
	p = cc.Examine(context.Background())
	require.NoError(t, p.Err)
	assert.Equal(t, 2, p.Value)
}

func TestTask_S6_SelfCancellationViaCancel(t *testing.T) {
	c := cell.New("motor", 0)

	a := Wrap1("A", c, func(b *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) { return 0, false, nil })
	})
	a.Examine(context.Background())
	require.True(t, c.IsHeldBy(a.Handle()))

	a.Cancel()
	assert.False(t, c.IsHeldBy(a.Handle()))
	assert.Equal(t, Done, a.State())
}

func TestTask_RepeatedExamineAfterPreemptionRepeatsError(t *testing.T) {
	c := cell.New("motor", 0)
	a := Wrap1("A", c, func(b *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) { return 0, false, nil })
	})
	a.Examine(context.Background())

	b := Wrap1("B", c, func(b *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) { return 0, true, nil })
	})
	b.Examine(context.Background())

	p1 := a.Examine(context.Background())
	p2 := a.Examine(context.Background())
	require.Error(t, p1.Err)
	require.Error(t, p2.Err)
	assert.Equal(t, p1.Err.(*PreemptionError).Requirement, p2.Err.(*PreemptionError).Requirement)
	assert.Equal(t, Preempted, a.State())
}

func TestTask_ExamineAfterDonePanics(t *testing.T) {
	c := cell.New("motor", 0)
	a := Wrap1("A", c, func(b *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) { return 0, true, nil })
	})
	a.Examine(context.Background())
	require.Equal(t, Done, a.State())
	assert.Panics(t, func() { a.Examine(context.Background()) })
}

// recordingObserver records every notification it receives, in order, as
// plain strings — enough to assert which transitions fired without pulling
// in the diagnostics package.
type recordingObserver struct {
	events []string
}

func (o *recordingObserver) Claimed(requirement, stolenFrom string) {
	o.events = append(o.events, "claimed:"+requirement+":"+stolenFrom)
}

func (o *recordingObserver) Stolen(requirement, newHolder string) {
	o.events = append(o.events, "stolen:"+requirement+":"+newHolder)
}

func (o *recordingObserver) Released(requirement string) {
	o.events = append(o.events, "released:"+requirement)
}

func TestTask_ObserverSeesClaimedAndReleasedOnVoluntaryCompletion(t *testing.T) {
	c := cell.New("motor", 0)
	a := Wrap1("A", c, func(b *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) {
			*b.Get()++
			return *b.Get(), true, nil
		})
	})
	obs := &recordingObserver{}
	a.Observe(obs)

	p := a.Examine(context.Background())
	require.NoError(t, p.Err)
	assert.Equal(t, []string{"claimed:motor:", "released:motor"}, obs.events)
}

func TestTask_ObserverSeesStolenWhenPreempted(t *testing.T) {
	c := cell.New("motor", 0)
	a := Wrap1("A", c, func(b *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) { return 0, false, nil })
	})
	obsA := &recordingObserver{}
	a.Observe(obsA)
	a.Examine(context.Background())

	b := Wrap1("B", c, func(bb *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) { return 100, true, nil })
	})
	b.Examine(context.Background())

	p := a.Examine(context.Background())
	require.Error(t, p.Err)
	// B has already finished and released the cell, so A sees no current
	// holder to name.
	require.Len(t, obsA.events, 2)
	assert.Equal(t, "claimed:motor:", obsA.events[0])
	assert.Equal(t, "stolen:motor:", obsA.events[1])
}

func TestTask_ObserverSeesReleasedOnCancel(t *testing.T) {
	c := cell.New("motor", 0)
	a := Wrap1("A", c, func(b *Borrow[int]) Inner[int] {
		return StepFunc[int](func(ctx context.Context) (int, bool, error) { return 0, false, nil })
	})
	obs := &recordingObserver{}
	a.Observe(obs)
	a.Examine(context.Background())

	a.Cancel()
	assert.Equal(t, []string{"claimed:motor:", "released:motor"}, obs.events)
}
