package models

import "time"

type Book struct {
	ID               int64
	Title            string
	Description      *string
	AuthorName       string
	PublisherName    *string
	PublishedDate    *time.Time
	UnitPrice        float64
	PhotoPath        *string
	TotalRatingValue int
	TotalRatingCount int
	CategoryID       int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
