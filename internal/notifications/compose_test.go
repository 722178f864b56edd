package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albapepper/usage-relay/internal/usage"
)

const ceiling = 2 * time.Hour

func summary(secs int64) *usage.Summary {
	return &usage.Summary{TotalSeconds: secs, Formatted: usage.FormatKorean(secs)}
}

func TestComposeSuppressesAtCeiling(t *testing.T) {
	t.Parallel()

	for _, dir := range []Direction{Morning, Evening} {
		text, ok := Compose(dir, "민지", summary(7200), ceiling)
		assert.False(t, ok, dir)
		assert.Empty(t, text)

		_, ok = Compose(dir, "민지", summary(9000), ceiling)
		assert.False(t, ok, dir)
	}
}

func TestComposeJustBelowCeiling(t *testing.T) {
	t.Parallel()

	text, ok := Compose(Evening, "민지", summary(7199), ceiling)
	assert.True(t, ok)
	assert.Contains(t, text, "1시간 59분")
	assert.Contains(t, text, "1분 미만 남았습니다")
}

func TestComposeZeroUsage(t *testing.T) {
	t.Parallel()

	morning, ok := Compose(Morning, "민지", summary(0), ceiling)
	assert.True(t, ok)
	assert.Contains(t, morning, "[민지님]")
	assert.Contains(t, morning, "어제는 앱을 사용하지 않으셨어요")

	evening, ok := Compose(Evening, "민지", summary(0), ceiling)
	assert.True(t, ok)
	assert.Contains(t, evening, "오늘은 아직 앱을 사용하지 않으셨어요")
	assert.Contains(t, evening, "2시간")

	assert.NotEqual(t, morning, evening)
}

func TestComposeEncouragement(t *testing.T) {
	t.Parallel()

	morning, ok := Compose(Morning, "민지", summary(3600), ceiling)
	assert.True(t, ok)
	assert.Equal(t, "[민지님] 어제 앱 사용 시간은 1시간입니다. 오늘은 목표 2시간을 채워 보세요!", morning)

	evening, ok := Compose(Evening, "민지", summary(3661), ceiling)
	assert.True(t, ok)
	assert.Equal(t, "[민지님] 오늘 지금까지 1시간 1분 사용하셨어요. 목표까지 58분 남았습니다. 조금만 더 힘내세요!", evening)
}

func TestComposeNoCeiling(t *testing.T) {
	t.Parallel()

	text, ok := Compose(Evening, "u1", summary(100000), 0)
	assert.True(t, ok)
	assert.Contains(t, text, "27시간 46분")
	assert.NotContains(t, text, "목표")

	text, ok = Compose(Morning, "u1", nil, 0)
	assert.True(t, ok)
	assert.Contains(t, text, "어제는")
}

func TestComposeIsPure(t *testing.T) {
	t.Parallel()

	s := summary(1800)
	first, _ := Compose(Evening, "민지", s, ceiling)
	for i := 0; i < 10; i++ {
		again, ok := Compose(Evening, "민지", s, ceiling)
		assert.True(t, ok)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, int64(1800), s.TotalSeconds)
}

func TestTargetDate(t *testing.T) {
	t.Parallel()

	kst := time.FixedZone("KST", 9*60*60)
	// 22:30 UTC on the 9th is 07:30 KST on the 10th.
	now := time.Date(2025, time.March, 9, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-09", TargetDate(Morning, now, kst))
	assert.Equal(t, "2025-03-10", TargetDate(Evening, now, kst))

	newYear := time.Date(2025, time.January, 1, 7, 0, 0, 0, kst)
	assert.Equal(t, "2024-12-31", TargetDate(Morning, newYear, kst))
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	d, err := ParseDirection("morning")
	assert.NoError(t, err)
	assert.Equal(t, Morning, d)

	_, err = ParseDirection("noon")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}
