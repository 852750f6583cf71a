package services

import (
	"context"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
)

// DepartmentService handles department management
type DepartmentService struct {
	departmentRepo *repositories.DepartmentRepository
	facultyRepo    *repositories.FacultyRepository
}

// NewDepartmentService creates a new department service
func NewDepartmentService(departmentRepo *repositories.DepartmentRepository, facultyRepo *repositories.FacultyRepository) *DepartmentService {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		facultyRepo:    facultyRepo,
	}
}

// Create creates a department. A head, when given, must be an existing
// faculty member.
func (s *DepartmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*models.Department, error) {
	if req.HeadID != nil {
		if _, err := s.facultyRepo.GetByID(ctx, *req.HeadID); err != nil {
			return nil, err
		}
	}

	dept := &models.Department{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		HeadID:      req.HeadID,
	}
	if err := s.departmentRepo.Create(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Get retrieves one department
func (s *DepartmentService) Get(ctx context.Context, id int64) (*models.Department, error) {
	return s.departmentRepo.GetByID(ctx, id)
}

// List retrieves departments with pagination
func (s *DepartmentService) List(ctx context.Context, search string, page, size int) ([]*models.Department, int64, error) {
	return s.departmentRepo.List(ctx, search, page, size)
}

// Update updates a department
func (s *DepartmentService) Update(ctx context.Context, id int64, req *dto.UpdateDepartmentRequest) (*models.Department, error) {
	dept, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.HeadID != nil {
		if _, err := s.facultyRepo.GetByID(ctx, *req.HeadID); err != nil {
			return nil, err
		}
	}

	dept.Name = req.Name
	dept.Code = req.Code
	dept.Description = req.Description
	dept.HeadID = req.HeadID
	if err := s.departmentRepo.Update(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Delete removes a department without members or courses
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	return s.departmentRepo.Delete(ctx, id)
}
