package books

import "time"

type CreateBookRequest struct {
	Title         string  `json:"title" binding:"required"`
	Author        string  `json:"author" binding:"required"`
	Category      string  `json:"category" binding:"required"`
	ISBN          *string `json:"isbn,omitempty"`
	Stock         int     `json:"stock"`
	PublishedYear *int    `json:"published_year,omitempty"`
	Publisher     *string `json:"publisher,omitempty"`
	Description   *string `json:"description,omitempty"`
	CoverImage    *string `json:"cover_image,omitempty"`
}

type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty"`
	Author        *string `json:"author,omitempty"`
	Category      *string `json:"category,omitempty"`
	ISBN          *string `json:"isbn,omitempty"`
	Stock         *int    `json:"stock,omitempty"`
	PublishedYear *int    `json:"published_year,omitempty"`
	Publisher     *string `json:"publisher,omitempty"`
	Description   *string `json:"description,omitempty"`
	CoverImage    *string `json:"cover_image,omitempty"`
}

type BookResponse struct {
	BookID        string    `json:"book_id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Category      string    `json:"category"`
	ISBN          *string   `json:"isbn,omitempty"`
	Stock         int       `json:"stock"`
	Available     int       `json:"available"`
	PublishedYear *int      `json:"published_year,omitempty"`
	Publisher     *string   `json:"publisher,omitempty"`
	Description   *string   `json:"description,omitempty"`
	CoverImage    *string   `json:"cover_image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toResponse(b *Book) BookResponse {
	return BookResponse{
		BookID:        b.BookID,
		Title:         b.Title,
		Author:        b.Author,
		Category:      b.Category,
		ISBN:          b.ISBN,
		Stock:         b.Stock,
		Available:     b.Available,
		PublishedYear: b.PublishedYear,
		Publisher:     b.Publisher,
		Description:   b.Description,
		CoverImage:    b.CoverImage,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

type ListResponse struct {
	Items []BookResponse `json:"items"`
	Total int64          `json:"total"`
}
