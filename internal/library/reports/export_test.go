package reports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func TestEncodeCSV(t *testing.T) {
	borrowDate := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	dueDate := borrowDate.AddDate(0, 0, 14)
	returnDate := borrowDate.AddDate(0, 0, 16)

	rows := []ExportRow{
		{
			BorrowingID: "01ARZ3NDEKTSV4RRFFQ69G5FAV",
			BookTitle:   "Perpustakaan Digital",
			MemberCode:  "M-0001",
			MemberName:  "Tanaka",
			BorrowDate:  borrowDate,
			DueDate:     dueDate,
			ReturnDate:  &returnDate,
			Status:      "returned",
			Fine:        2000,
		},
		{
			BorrowingID: "01BX5ZZKBKACTAV9WEVGEMMVRZ",
			BookTitle:   "Go言語による並行処理",
			MemberCode:  "M-0002",
			MemberName:  "Sato",
			BorrowDate:  borrowDate,
			DueDate:     dueDate,
			Status:      "borrowed",
			Fine:        0,
		},
	}

	data, err := EncodeCSV(rows)
	require.NoError(t, err)

	// BOM付きUTF-16LEで始まること
	require.True(t, len(data) >= 2)
	assert.Equal(t, []byte{0xFF, 0xFE}, data[:2])

	// デコードして中身を確認
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	r := csv.NewReader(transform.NewReader(bytes.NewReader(data), dec))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "Perpustakaan Digital", records[1][1])
	assert.Equal(t, "2025-06-17 10:00:00", records[1][6])
	assert.Equal(t, "2000", records[1][8])
	assert.Equal(t, "Go言語による並行処理", records[2][1])
	assert.Equal(t, "", records[2][6], "active borrowing has no return date")
	assert.Equal(t, "0", records[2][8])
}

func TestEncodeCSV_Empty(t *testing.T) {
	data, err := EncodeCSV(nil)
	require.NoError(t, err)

	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	r := csv.NewReader(transform.NewReader(bytes.NewReader(data), dec))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
	assert.Equal(t, exportHeader, records[0])
}
