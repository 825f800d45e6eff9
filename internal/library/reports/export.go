package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var exportHeader = []string{
	"borrowing_id", "book_title", "member_code", "member_name",
	"borrow_date", "due_date", "return_date", "status", "fine",
}

// EncodeCSV: 表計算ソフトでの文字化けを避けるため、BOM付きUTF-16LEで書き出す
func EncodeCSV(rows []ExportRow) ([]byte, error) {
	var b bytes.Buffer
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	w := csv.NewWriter(transform.NewWriter(&b, enc))

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		returned := ""
		if r.ReturnDate != nil {
			returned = r.ReturnDate.UTC().Format("2006-01-02 15:04:05")
		}
		record := []string{
			r.BorrowingID,
			r.BookTitle,
			r.MemberCode,
			r.MemberName,
			r.BorrowDate.UTC().Format("2006-01-02 15:04:05"),
			r.DueDate.UTC().Format("2006-01-02 15:04:05"),
			returned,
			r.Status,
			strconv.FormatInt(r.Fine, 10),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
