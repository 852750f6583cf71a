package services

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/filestorage"
	"github.com/emre/campuserp/internal/pkg/logger"
)

// NoticeService handles the notice board
type NoticeService struct {
	noticeRepo  *repositories.NoticeRepository
	studentRepo *repositories.StudentRepository
	facultyRepo *repositories.FacultyRepository
	storage     filestorage.FileStorage
}

// NewNoticeService creates a new notice service
func NewNoticeService(
	noticeRepo *repositories.NoticeRepository,
	studentRepo *repositories.StudentRepository,
	facultyRepo *repositories.FacultyRepository,
	storage filestorage.FileStorage,
) *NoticeService {
	return &NoticeService{
		noticeRepo:  noticeRepo,
		studentRepo: studentRepo,
		facultyRepo: facultyRepo,
		storage:     storage,
	}
}

// CreateNoticeInput is the validated notice payload plus an optional
// attachment
type CreateNoticeInput struct {
	Title       string
	Body        string
	Priority    models.NoticePriority
	TargetRoles []models.Role
	TargetDepts []int64
	ExpiresAt   *time.Time
	Attachment  *multipart.FileHeader
}

// Create publishes a notice, storing the attachment first when present
func (s *NoticeService) Create(ctx context.Context, authorID int64, input *CreateNoticeInput) (*models.Notice, error) {
	for _, role := range input.TargetRoles {
		if !role.IsValid() {
			return nil, apperrors.NewValidationError("unknown target role")
		}
	}
	if input.ExpiresAt != nil && input.ExpiresAt.Before(time.Now()) {
		return nil, apperrors.NewValidationError("expiresAt must be in the future")
	}

	notice := &models.Notice{
		Title:       input.Title,
		Body:        input.Body,
		AuthorID:    authorID,
		Priority:    input.Priority,
		Status:      models.NoticePublished,
		TargetRoles: input.TargetRoles,
		TargetDepts: input.TargetDepts,
		ExpiresAt:   input.ExpiresAt,
	}
	if notice.Priority == "" {
		notice.Priority = models.NoticeNormal
	}

	if input.Attachment != nil {
		url, err := s.storage.SaveFile(input.Attachment, "notices")
		if err != nil {
			return nil, err
		}
		notice.AttachmentURL = &url
	}

	if err := s.noticeRepo.Create(ctx, notice); err != nil {
		if notice.AttachmentURL != nil {
			if cleanupErr := s.storage.DeleteFile(*notice.AttachmentURL); cleanupErr != nil {
				logger.Warn().Err(cleanupErr).Msg("Failed to remove orphaned attachment")
			}
		}
		return nil, err
	}
	return notice, nil
}

// readerDepartment resolves the department a reader belongs to; zero for
// roles without one.
func (s *NoticeService) readerDepartment(ctx context.Context, sc scope.Scope) (int64, error) {
	switch sc.Kind {
	case scope.KindStudent:
		student, err := s.studentRepo.GetByUserID(ctx, sc.UserID)
		if err != nil {
			return 0, err
		}
		return student.DepartmentID, nil
	case scope.KindFaculty:
		member, err := s.facultyRepo.GetByUserID(ctx, sc.UserID)
		if err != nil {
			return 0, err
		}
		return member.DepartmentID, nil
	}
	return 0, nil
}

func roleForKind(kind scope.Kind) models.Role {
	switch kind {
	case scope.KindAdmin:
		return models.RoleAdmin
	case scope.KindStudent:
		return models.RoleStudent
	case scope.KindFaculty:
		return models.RoleFaculty
	case scope.KindLibrarian:
		return models.RoleLibrarian
	}
	return ""
}

// List retrieves notices. Admins see everything; every other role sees
// published, unexpired notices targeted at them.
func (s *NoticeService) List(ctx context.Context, sc scope.Scope, filter repositories.NoticeFilter) ([]*models.Notice, int64, error) {
	if sc.Kind == scope.KindAdmin {
		return s.noticeRepo.ListAll(ctx, filter)
	}

	deptID, err := s.readerDepartment(ctx, sc)
	if err != nil {
		return nil, 0, err
	}
	return s.noticeRepo.ListForReader(ctx, roleForKind(sc.Kind), deptID, filter)
}

// Get retrieves one notice and logs the view. Non-admin readers only see
// notices targeted at them.
func (s *NoticeService) Get(ctx context.Context, sc scope.Scope, id int64) (*models.Notice, error) {
	notice, err := s.noticeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if sc.Kind != scope.KindAdmin {
		deptID, err := s.readerDepartment(ctx, sc)
		if err != nil {
			return nil, err
		}
		if notice.Status != models.NoticePublished ||
			notice.IsExpired(time.Now()) ||
			!notice.Targets(roleForKind(sc.Kind), deptID) {
			return nil, apperrors.ErrNoticeNotFound
		}
	}

	if err := s.noticeRepo.MarkViewed(ctx, id, sc.UserID); err != nil {
		logger.Warn().Err(err).Int64("noticeID", id).Msg("Failed to log notice view")
	}
	return notice, nil
}

// UpdateNoticeInput is the validated update payload
type UpdateNoticeInput struct {
	Title       string
	Body        string
	Priority    models.NoticePriority
	TargetRoles []models.Role
	TargetDepts []int64
	ExpiresAt   *time.Time
}

// Update edits a notice. Faculty may only edit their own notices.
func (s *NoticeService) Update(ctx context.Context, sc scope.Scope, id int64, input *UpdateNoticeInput) (*models.Notice, error) {
	notice, err := s.noticeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc.Kind != scope.KindAdmin && notice.AuthorID != sc.UserID {
		return nil, apperrors.ErrPermissionDenied
	}

	notice.Title = input.Title
	notice.Body = input.Body
	notice.Priority = input.Priority
	notice.TargetRoles = input.TargetRoles
	notice.TargetDepts = input.TargetDepts
	notice.ExpiresAt = input.ExpiresAt

	if err := s.noticeRepo.Update(ctx, notice); err != nil {
		return nil, err
	}
	return notice, nil
}

// Archive retires a notice from listings
func (s *NoticeService) Archive(ctx context.Context, sc scope.Scope, id int64) error {
	notice, err := s.noticeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sc.Kind != scope.KindAdmin && notice.AuthorID != sc.UserID {
		return apperrors.ErrPermissionDenied
	}
	return s.noticeRepo.UpdateStatus(ctx, id, models.NoticeArchived)
}

// Delete removes a notice and its attachment
func (s *NoticeService) Delete(ctx context.Context, sc scope.Scope, id int64) error {
	notice, err := s.noticeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sc.Kind != scope.KindAdmin && notice.AuthorID != sc.UserID {
		return apperrors.ErrPermissionDenied
	}

	if err := s.noticeRepo.Delete(ctx, id); err != nil {
		return err
	}
	if notice.AttachmentURL != nil {
		if err := s.storage.DeleteFile(*notice.AttachmentURL); err != nil {
			logger.Warn().Err(err).Int64("noticeID", id).Msg("Failed to remove attachment")
		}
	}
	return nil
}

// MarkRead logs that the caller read a notice without fetching it
func (s *NoticeService) MarkRead(ctx context.Context, sc scope.Scope, id int64) error {
	if _, err := s.Get(ctx, sc, id); err != nil {
		return err
	}
	return nil
}

// Stats returns a notice's view log. Authors see their own notices,
// administrators see all.
func (s *NoticeService) Stats(ctx context.Context, sc scope.Scope, id int64) (*dto.NoticeStats, error) {
	notice, err := s.noticeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc.Kind != scope.KindAdmin && notice.AuthorID != sc.UserID {
		return nil, apperrors.ErrPermissionDenied
	}

	views, err := s.noticeRepo.Views(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.NoticeStats{
		NoticeID:  id,
		ViewCount: int64(len(views)),
		Views:     views,
	}, nil
}

// ArchiveExpired retires published notices past their expiry. Run
// periodically.
func (s *NoticeService) ArchiveExpired(ctx context.Context) (int64, error) {
	return s.noticeRepo.ArchiveExpired(ctx)
}
