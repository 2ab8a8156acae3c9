package models

type Category struct {
	ID        int64
	Name      string
	SortOrder int
}
