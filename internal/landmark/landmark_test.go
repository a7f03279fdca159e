package landmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handsign/internal/detector"
)

func TestFromNormalized(t *testing.T) {
	t.Run("scales and rounds to pixels", func(t *testing.T) {
		hand := detector.OpenPalmLandmarks()

		set, err := FromNormalized(hand.Points[:], 640, 480)
		require.NoError(t, err)
		require.Len(t, set, detector.NumLandmarks)

		// 0.5*640 = 320, 0.8*480 = 384
		assert.Equal(t, Landmark{ID: detector.Wrist, X: 320, Y: 384}, set[detector.Wrist])
		// 0.73*640 = 467.2, 0.60*480 = 288
		assert.Equal(t, Landmark{ID: detector.ThumbTip, X: 467, Y: 288}, set[detector.ThumbTip])
		assert.True(t, set.Valid())
	})

	t.Run("rounds half away from zero", func(t *testing.T) {
		points := make([]detector.Point3D, detector.NumLandmarks)
		points[0] = detector.Point3D{X: 0.25, Y: 0.75}

		set, err := FromNormalized(points, 2, 2)
		require.NoError(t, err)
		// 0.5 -> 1, 1.5 -> 2
		assert.Equal(t, 1, set[0].X)
		assert.Equal(t, 2, set[0].Y)
	})

	t.Run("ids are dense and ordered", func(t *testing.T) {
		hand := detector.ClosedFistLandmarks()
		set, err := FromNormalized(hand.Points[:], 100, 100)
		require.NoError(t, err)
		for i, lm := range set {
			assert.Equal(t, i, lm.ID)
		}
	})

	t.Run("empty input is an empty set", func(t *testing.T) {
		set, err := FromNormalized(nil, 640, 480)
		require.NoError(t, err)
		assert.True(t, set.Empty())
	})

	t.Run("wrong cardinality", func(t *testing.T) {
		_, err := FromNormalized(make([]detector.Point3D, 20), 640, 480)
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = FromNormalized(make([]detector.Point3D, 22), 640, 480)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("bad frame size", func(t *testing.T) {
		hand := detector.OpenPalmLandmarks()
		_, err := FromNormalized(hand.Points[:], 0, 480)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestFromHands(t *testing.T) {
	hands := []detector.HandLandmarks{detector.OpenPalmLandmarks(), detector.ClosedFistLandmarks()}

	t.Run("no hands", func(t *testing.T) {
		set, err := FromHands(nil, 0, 640, 480)
		require.NoError(t, err)
		assert.True(t, set.Empty())
	})

	t.Run("selects by index", func(t *testing.T) {
		set, err := FromHands(hands, 1, 640, 480)
		require.NoError(t, err)
		// ClosedFist thumb tip X = 0.52*640
		assert.Equal(t, 333, set[detector.ThumbTip].X)
	})

	t.Run("index past detections", func(t *testing.T) {
		set, err := FromHands(hands, 2, 640, 480)
		require.NoError(t, err)
		assert.True(t, set.Empty())
	})

	t.Run("negative index", func(t *testing.T) {
		_, err := FromHands(hands, -1, 640, 480)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestSet_At(t *testing.T) {
	hand := detector.OpenPalmLandmarks()
	set, err := FromNormalized(hand.Points[:], 640, 480)
	require.NoError(t, err)

	lm, err := set.At(detector.IndexTip)
	require.NoError(t, err)
	assert.Equal(t, detector.IndexTip, lm.ID)
	assert.Equal(t, set.Wrist(), set[0])

	_, err = set.At(21)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = Set{}.At(0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSet_Valid(t *testing.T) {
	assert.True(t, Set{}.Valid())
	assert.False(t, Set{{ID: 0}}.Valid())

	set := make(Set, detector.NumLandmarks)
	for i := range set {
		set[i].ID = i
	}
	assert.True(t, set.Valid())

	set[5].ID = 9
	assert.False(t, set.Valid())
}
