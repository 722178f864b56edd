package notifications

import (
	"fmt"
	"time"

	"github.com/albapepper/usage-relay/internal/usage"
)

// Compose renders the message for one user. The second return value is false
// when usage already meets the ceiling and no message should be sent. A
// non-positive ceiling disables suppression.
func Compose(dir Direction, username string, s *usage.Summary, ceiling time.Duration) (string, bool) {
	var total int64
	if s != nil {
		total = s.TotalSeconds
	}
	goal := int64(ceiling / time.Second)
	if goal > 0 && total >= goal {
		return "", false
	}

	if total <= 0 {
		return zeroUsageMessage(dir, username, goal), true
	}

	used := usage.FormatKorean(total)
	if dir == Morning {
		if goal > 0 {
			return fmt.Sprintf("[%s님] 어제 앱 사용 시간은 %s입니다. 오늘은 목표 %s을 채워 보세요!",
				username, used, usage.FormatKorean(goal)), true
		}
		return fmt.Sprintf("[%s님] 어제 앱 사용 시간은 %s입니다. 오늘도 힘내세요!", username, used), true
	}
	if goal > 0 {
		return fmt.Sprintf("[%s님] 오늘 지금까지 %s 사용하셨어요. 목표까지 %s 남았습니다. 조금만 더 힘내세요!",
			username, used, usage.FormatKorean(goal-total)), true
	}
	return fmt.Sprintf("[%s님] 오늘 지금까지 %s 사용하셨어요. 조금만 더 힘내세요!", username, used), true
}

func zeroUsageMessage(dir Direction, username string, goal int64) string {
	if dir == Morning {
		return fmt.Sprintf("[%s님] 어제는 앱을 사용하지 않으셨어요. 오늘은 꼭 시작해 보세요!", username)
	}
	if goal > 0 {
		return fmt.Sprintf("[%s님] 오늘은 아직 앱을 사용하지 않으셨어요. 목표 %s, 지금 시작해 보세요!",
			username, usage.FormatKorean(goal))
	}
	return fmt.Sprintf("[%s님] 오늘은 아직 앱을 사용하지 않으셨어요. 지금 시작해 보세요!", username)
}
