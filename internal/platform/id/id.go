package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// New 生成带前缀的唯一 ID：prefix + 去掉连字符的 UUID 前 12 位。
// 带前缀是为了日志可读（disp_xxx 一眼可知是台账记录）。
func New(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%s", prefix, raw[:12])
}
