package ebooks

import "time"

type Ebook struct {
	EbookID       string    `json:"ebook_id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Category      string    `json:"category"`
	ISBN          *string   `json:"isbn,omitempty"`
	PublishedYear *int      `json:"published_year,omitempty"`
	Publisher     *string   `json:"publisher,omitempty"`
	Description   *string   `json:"description,omitempty"`
	CoverImage    *string   `json:"cover_image,omitempty"`
	PDFPath       string    `json:"pdf_path"`
	FileSize      int64     `json:"file_size"`
	TotalViews    int64     `json:"total_views"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SearchQuery struct {
	Keyword  string
	Category *string
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}

// カテゴリ別冊数はJSONのオブジェクトとして返す
type Stats struct {
	TotalEbooks   int64            `json:"total_ebooks"`
	TotalFileSize int64            `json:"total_file_size"`
	ByCategory    map[string]int64 `json:"by_category"`
}
