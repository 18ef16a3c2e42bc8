package ui

import (
	"strings"
	"unicode/utf8"
)

// truncateName 按字符截断名字，超长时以省略号结尾
func truncateName(name string, maxLen int) string {
	if utf8.RuneCountInString(name) <= maxLen {
		return name
	}
	runes := []rune(name)
	return string(runes[:maxLen-1]) + "…"
}

// countdownBar 拍桌窗口剩余时间条
func countdownBar(remaining, total float64, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	ratio := max(0, min(1, remaining/total))
	filled := int(ratio * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
