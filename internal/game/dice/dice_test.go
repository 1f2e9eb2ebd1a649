package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roadwar/internal/game/dice"
)

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 9, r.Sum())
	assert.Equal(t, 12, r.Total())
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}}
	assert.Panics(t, func() { _ = r.String() })
}

func TestRollResult_Total_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		faces := rapid.SliceOf(rapid.IntRange(1, 20)).Draw(rt, "dice")
		modifier := rapid.IntRange(-100, 100).Draw(rt, "modifier")
		r := dice.RollResult{Expression: "NdS+M", Dice: faces, Modifier: modifier}
		expected := modifier
		for _, d := range faces {
			expected += d
		}
		assert.Equal(rt, expected, r.Total())
		assert.Contains(rt, r.String(), fmt.Sprintf("%d", r.Total()))
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		in    string
		count int
		sides int
		mod   int
		kh    int
	}{
		{"d20", 1, 20, 0, 0},
		{"2d6", 2, 6, 0, 0},
		{"2d6+3", 2, 6, 3, 0},
		{"4d8-2", 4, 8, -2, 0},
		{"4d6kh3", 4, 6, 0, 3},
		{"4d6kh3+1", 4, 6, 1, 3},
		{" 1D8 + 2 ", 1, 8, 2, 0},
	}
	for _, tc := range tests {
		e, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.count, e.Count, tc.in)
		assert.Equal(t, tc.sides, e.Sides, tc.in)
		assert.Equal(t, tc.mod, e.Modifier, tc.in)
		assert.Equal(t, tc.kh, e.KeepHighest, tc.in)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "20", "0d6", "xd6", "2d1", "2dx", "2d6+x", "2d6kh2", "3d6kh0"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "expected error for %q", in)
	}
}

func TestExpression_String(t *testing.T) {
	assert.Equal(t, "2d6+3", dice.MustParse("2d6+3").String())
	assert.Equal(t, "4d6kh3-1", dice.MustParse("4d6kh3-1").String())
	assert.Equal(t, "1d8", dice.MustParse("d8").String())
}

func TestMustParse_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("bogus") })
}

func TestRoll_KeepHighest(t *testing.T) {
	src := dice.NewSequenceSource(2, 6, 1, 5)
	r := dice.Roll(dice.MustParse("4d6kh3"), src)
	assert.Equal(t, []int{6, 5, 2}, r.Dice)
	assert.Equal(t, 13, r.Total())
}

func TestRoll_Property_DiceWithinFaces(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		seed := rapid.Uint64().Draw(rt, "seed")
		r := dice.Roll(dice.Expression{Count: count, Sides: sides}, dice.NewSeededSource(seed))
		require.Len(rt, r.Dice, count)
		for _, d := range r.Dice {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, sides)
		}
	})
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(20), b.Intn(20))
	}
}

func TestSequenceSource_ReplaysAndClamps(t *testing.T) {
	src := dice.NewSequenceSource(10, 25, 0)
	assert.Equal(t, 10, dice.Die(src, 20))
	assert.Equal(t, 20, dice.Die(src, 20), "faces above n clamp to n")
	assert.Equal(t, 1, dice.Die(src, 20), "faces below 1 clamp to 1")
	assert.Equal(t, 1, dice.Die(src, 20), "last face repeats once exhausted")
	assert.Equal(t, 3, src.Consumed())
}

func TestRoller_LogsEveryRoll(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(dice.NewSequenceSource(4, 5, 17), zap.New(core))

	res, err := r.RollExpr("2d6+3")
	require.NoError(t, err)
	assert.Equal(t, 12, res.Total())
	nat := r.D20()
	assert.Equal(t, 17, nat)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "dice roll", entries[0].Message)
	assert.True(t, strings.HasPrefix(entries[1].Message, "d20"))
}

func TestRoller_RollN_ZeroCount(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSequenceSource(3), zap.NewNop())
	res := r.RollN(0, 6)
	assert.Empty(t, res.Dice)
	assert.Equal(t, 0, res.Total())
}

func TestNewLoggedRoller_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { dice.NewLoggedRoller(nil, zap.NewNop()) })
}
