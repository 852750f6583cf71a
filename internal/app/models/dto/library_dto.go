package dto

// CreateBookRequest adds a catalog item
type CreateBookRequest struct {
	ISBN        string `json:"isbn" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	Category    string `json:"category"`
	TotalCopies int    `json:"totalCopies" binding:"required,min=1"`
}

// UpdateBookRequest updates the editable catalog fields
type UpdateBookRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	Category    string `json:"category"`
	TotalCopies int    `json:"totalCopies" binding:"required,min=1"`
}

// BorrowRequest borrows a book for a student
type BorrowRequest struct {
	StudentID int64 `json:"studentId"` // ignored for student callers
	BookID    int64 `json:"bookId" binding:"required,min=1"`
}

// ReturnRequest returns a borrowed book
type ReturnRequest struct {
	BorrowID int64 `json:"borrowId" binding:"required,min=1"`
}

// RenewRequest extends a loan's due date
type RenewRequest struct {
	BorrowID int64 `json:"borrowId" binding:"required,min=1"`
}

// ReturnResult carries the overdue derivation computed at return time
type ReturnResult struct {
	BorrowID    int64   `json:"borrowId"`
	IsOverdue   bool    `json:"isOverdue"`
	DaysOverdue int     `json:"daysOverdue"`
	Fine        float64 `json:"fine"`
}
