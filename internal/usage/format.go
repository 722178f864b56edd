package usage

import "fmt"

// FormatKorean renders seconds compactly: "2시간 30분", "1시간", "45분", or
// "1분 미만" when less than a minute.
func FormatKorean(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%d시간 %d분", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%d시간", hours)
	case minutes > 0:
		return fmt.Sprintf("%d분", minutes)
	default:
		return "1분 미만"
	}
}

// FormatHMS renders seconds as zero-padded HH:MM:SS.
func FormatHMS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
