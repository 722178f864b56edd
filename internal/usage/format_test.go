package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatKorean(t *testing.T) {
	t.Parallel()

	cases := []struct {
		secs int64
		want string
	}{
		{0, "1분 미만"},
		{59, "1분 미만"},
		{90, "1분"},
		{2700, "45분"},
		{3600, "1시간"},
		{3661, "1시간 1분"},
		{7200, "2시간"},
		{9000, "2시간 30분"},
		{-5, "1분 미만"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatKorean(c.secs), "seconds=%d", c.secs)
	}
}

func TestFormatHMS(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "00:00:00", FormatHMS(0))
	assert.Equal(t, "00:01:30", FormatHMS(90))
	assert.Equal(t, "01:01:01", FormatHMS(3661))
	assert.Equal(t, "26:00:00", FormatHMS(26*3600))
}
