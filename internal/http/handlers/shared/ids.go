package shared

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseID 接受 JSON 数字或数字字符串，非正整数返回 false。
func ParseID(raw json.RawMessage) (uint, bool) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return 0, false
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		text = strings.TrimSpace(str)
	}
	id, err := strconv.ParseUint(text, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ParseFormID 解析表单字段中的 id。
func ParseFormID(value string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
