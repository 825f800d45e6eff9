package ebooks

type CreateEbookRequest struct {
	Title         string  `json:"title" binding:"required"`
	Author        string  `json:"author" binding:"required"`
	Category      string  `json:"category" binding:"required"`
	ISBN          *string `json:"isbn"`
	PublishedYear *int    `json:"published_year"`
	Publisher     *string `json:"publisher"`
	Description   *string `json:"description"`
	CoverImage    *string `json:"cover_image"`
	PDFPath       string  `json:"pdf_path" binding:"required"`
	FileSize      int64   `json:"file_size" binding:"required"`
}

type UpdateEbookRequest struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	Category      *string `json:"category"`
	ISBN          *string `json:"isbn"`
	PublishedYear *int    `json:"published_year"`
	Publisher     *string `json:"publisher"`
	Description   *string `json:"description"`
	CoverImage    *string `json:"cover_image"`
}

type ListResponse struct {
	Items []Ebook `json:"items"`
	Total int64   `json:"total"`
}

// 閲覧カウント更新後に返す
type ViewResponse struct {
	PDFPath    string `json:"pdf_path"`
	TotalViews int64  `json:"total_views"`
}
