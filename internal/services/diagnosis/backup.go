package diagnosis

import (
	"strings"
	"time"
)

const dayMillis = 24 * 60 * 60 * 1000

// backupLayouts 是采集端见过的几种备份时间格式。
// Time Machine 的 latestbackup 输出在不同系统版本上并不一致。
var backupLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// BackupAgeDays 计算备份时间距 now 的整天数：绝对毫秒差除以一天毫秒数，向上取整。
// 解析失败返回 0，评估继续进行。
func BackupAgeDays(raw string, now time.Time) int {
	t, ok := parseBackupTime(raw)
	if !ok {
		return 0
	}

	elapsed := now.Sub(t).Milliseconds()
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return int((elapsed + dayMillis - 1) / dayMillis)
}

func parseBackupTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range backupLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
