package util

import "strings"

// Strip 反复去掉字符串头尾出现的指定片段，直到不再变化。
// AI 补全偶尔会带着换行或 "A: " 前缀回显，存库前要剥掉。
func Strip(s string, marks []string) string {
	for {
		before := s
		for _, mark := range marks {
			for strings.HasPrefix(s, mark) {
				s = strings.TrimPrefix(s, mark)
			}
			for strings.HasSuffix(s, mark) {
				s = strings.TrimSuffix(s, mark)
			}
		}
		if s == before {
			return s
		}
	}
}
