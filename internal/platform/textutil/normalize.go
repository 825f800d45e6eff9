package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Clean: 入力文字列をNFC正規化し、前後の空白を落とす。
// タイトル・氏名などはコピー＆ペースト由来の合成済み/未合成が混在するため、
// 保存前に必ず通す。
func Clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// CleanPtr: nil と空文字はそのまま nil 扱いにする
func CleanPtr(p *string) *string {
	if p == nil {
		return nil
	}
	c := Clean(*p)
	if c == "" {
		return nil
	}
	return &c
}
