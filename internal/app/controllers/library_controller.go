package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/campuserp/internal/app/audit"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/services"
	"github.com/emre/campuserp/internal/middleware"
	"github.com/emre/campuserp/internal/pkg/helpers"
)

// LibraryController handles the book catalog and loan lifecycle
type LibraryController struct {
	libraryService *services.LibraryService
}

// NewLibraryController creates a new LibraryController
func NewLibraryController(libraryService *services.LibraryService) *LibraryController {
	return &LibraryController{libraryService: libraryService}
}

// CreateBook adds a catalog item
func (c *LibraryController) CreateBook(ctx *gin.Context) {
	var req dto.CreateBookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	book, err := c.libraryService.CreateBook(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "book.create", "book", book.ID, "Added book "+book.ISBN)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(book, "Book added"))
}

// GetBook retrieves a catalog item
func (c *LibraryController) GetBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	book, err := c.libraryService.GetBook(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(book, "Book retrieved"))
}

// ListBooks retrieves the catalog with filtering and pagination
func (c *LibraryController) ListBooks(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.BookFilter{
		Category:  ctx.Query("category"),
		Search:    ctx.Query("search"),
		Available: ctx.Query("available") == "true",
		Page:      page,
		Size:      size,
	}

	books, totalItems, err := c.libraryService.ListBooks(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(books, "Books retrieved", pagination))
}

// UpdateBook updates a catalog item; copy-count changes adjust
// availability
func (c *LibraryController) UpdateBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	book, err := c.libraryService.UpdateBook(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "book.update", "book", id, "Updated book "+book.ISBN)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(book, "Book updated"))
}

// DeleteBook removes a catalog item without loan history
func (c *LibraryController) DeleteBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.libraryService.DeleteBook(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "book.delete", "book", id, "Removed book")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Book removed"))
}

// Borrow lends a book to a student, enforcing the loan limit and
// blocking borrowers with overdue loans
func (c *LibraryController) Borrow(ctx *gin.Context) {
	var req dto.BorrowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	record, err := c.libraryService.Borrow(ctx, middleware.GetScope(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "book.borrow", "borrow", record.ID,
		fmt.Sprintf("Lent book %d to student %d", record.BookID, record.StudentID))
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(record, "Book borrowed"))
}

// Return closes a loan; an overdue return also raises a library fine
func (c *LibraryController) Return(ctx *gin.Context) {
	var req dto.ReturnRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	result, err := c.libraryService.Return(ctx, middleware.GetScope(ctx), req.BorrowID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "book.return", "borrow", req.BorrowID,
		fmt.Sprintf("Returned loan (fine %.2f)", result.Fine))
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Book returned"))
}

// Renew extends a loan's due date within the renewal limit
func (c *LibraryController) Renew(ctx *gin.Context) {
	var req dto.RenewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	record, err := c.libraryService.Renew(ctx, middleware.GetScope(ctx), req.BorrowID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "book.renew", "borrow", req.BorrowID, "Renewed loan")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(record, "Loan renewed"))
}

// ListLoans retrieves borrow records narrowed by the caller's scope
func (c *LibraryController) ListLoans(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.BorrowFilter{
		StudentID: queryInt64(ctx, "studentId"),
		BookID:    queryInt64(ctx, "bookId"),
		Status:    ctx.Query("status"),
		Overdue:   ctx.Query("overdue") == "true",
		Page:      page,
		Size:      size,
	}

	records, totalItems, err := c.libraryService.ListLoans(ctx, middleware.GetScope(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(records, "Loans retrieved", pagination))
}
