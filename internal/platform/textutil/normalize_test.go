package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
		// 結合文字列 (e + U+0301) を合成済み形に正規化する
		{"nfc composition", "Café", "Café"},
		{"already composed", "Café", "Café"},
		{"japanese untouched", "図書館", "図書館"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanPtr(t *testing.T) {
	assert.Nil(t, CleanPtr(nil))

	empty := "   "
	assert.Nil(t, CleanPtr(&empty), "whitespace-only collapses to nil")

	v := " isbn-123 "
	got := CleanPtr(&v)
	assert.NotNil(t, got)
	assert.Equal(t, "isbn-123", *got)
}
