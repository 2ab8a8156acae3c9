package models

import "time"

// Comment is a single review of a book. One comment per (account, book) pair.
type Comment struct {
	ID          int64
	Rating      int // 1-5
	Content     *string
	AccountID   int64
	BookID      int64
	CommentDate time.Time
}
