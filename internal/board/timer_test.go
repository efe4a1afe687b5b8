package board

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OCAP2/boarding/pkg/core"
)

func TestBoardTime_EqualCrews(t *testing.T) {
	b, tg := newPair()

	got := BoardTime(b, tg, DefaultParams())

	assert.InDelta(t, math.E, got, 1e-9)
}

func TestBoardTime_Clamped(t *testing.T) {
	p := DefaultParams()
	b, tg := newPair()

	b.Crew, tg.Crew = 100, 1
	assert.Equal(t, p.MinTime, BoardTime(b, tg, p))

	b.Crew, tg.Crew = 1, 100
	assert.Equal(t, p.MaxTime, BoardTime(b, tg, p))
}

func TestBoardTime_Monotonic(t *testing.T) {
	p := DefaultParams()
	b, tg := newPair()

	for bc := 1; bc <= 30; bc++ {
		prev := 0.0
		for tc := 0; tc <= 60; tc++ {
			b.Crew, tg.Crew = bc, tc
			got := BoardTime(b, tg, p)
			assert.GreaterOrEqual(t, got, prev, "bc=%d tc=%d", bc, tc)
			assert.GreaterOrEqual(t, got, p.MinTime)
			assert.LessOrEqual(t, got, p.MaxTime)
			prev = got
		}
	}

	for tc := 0; tc <= 30; tc++ {
		prev := math.Inf(1)
		for bc := 1; bc <= 60; bc++ {
			b.Crew, tg.Crew = bc, tc
			got := BoardTime(b, tg, p)
			assert.LessOrEqual(t, got, prev, "bc=%d tc=%d", bc, tc)
			prev = got
		}
	}
}

func TestBoardTime_ZeroCrewBoarder(t *testing.T) {
	b, tg := newPair()
	b.Crew = 0
	tg.Crew = 2

	got := BoardTime(b, tg, DefaultParams())

	assert.False(t, math.IsInf(got, 0))
	assert.InDelta(t, math.Exp(2), got, 1e-9)
}

func TestBoardTime_MissingVehicle(t *testing.T) {
	b, tg := newPair()

	assert.Less(t, BoardTime(nil, tg, DefaultParams()), 0.0)
	assert.Less(t, BoardTime(b, nil, DefaultParams()), 0.0)
	assert.Less(t, BoardTime((*core.Vehicle)(nil), nil, DefaultParams()), 0.0)
}
