package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nmby204/SGE/internal/authz"
	"github.com/nmby204/SGE/internal/models"
	appErrors "github.com/nmby204/SGE/pkg/errors"
	"github.com/nmby204/SGE/pkg/storage"
)

type evidenceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Evidence, error)
	List(ctx context.Context, filter models.EvidenceFilter) ([]models.Evidence, int, error)
	Create(ctx context.Context, evidence *models.Evidence) error
	Update(ctx context.Context, evidence *models.Evidence) error
	Review(ctx context.Context, id string, status models.EvidenceStatus, feedback string) error
	Delete(ctx context.Context, id string) error
}

// EvidenceService manages training evidence records. Every record needs a
// supporting document; a record without one is meaningless.
type EvidenceService struct {
	repo      evidenceRepository
	store     storage.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEvidenceService constructs an EvidenceService instance.
func NewEvidenceService(repo evidenceRepository, store storage.Store, validate *validator.Validate, logger *zap.Logger) *EvidenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EvidenceService{repo: repo, store: store, validator: validate, logger: logger}
}

// Create registers a training course with its document.
func (s *EvidenceService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateEvidenceRequest, file *FileUpload) (*models.Evidence, error) {
	if !authz.Can(authz.OpEvidenceCreate, claims.Role, true) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only professors register training evidence")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evidence payload")
	}
	hasDriveRef := req.DriveFileID != nil && *req.DriveFileID != ""
	if file == nil && !hasDriveRef {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a supporting document is required")
	}

	evidence := &models.Evidence{
		ProfessorID: claims.UserID,
		CourseName:  req.CourseName,
		Institution: req.Institution,
		Date:        req.Date,
		Hours:       req.Hours,
		Status:      models.EvidenceStatusPending,
		IsActive:    true,
	}

	if file != nil {
		result, err := s.store.Save(ctx, file.Filename, file.Reader)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to store document")
		}
		evidence.FileURL = result.URL
		evidence.FileName = &file.Filename
		evidence.StorageType = models.StorageTypeLocal
	} else {
		evidence.DriveFileID = req.DriveFileID
		evidence.StorageType = models.StorageTypeDrive
		if req.DriveFileURL != nil {
			evidence.FileURL = *req.DriveFileURL
		}
	}

	if err := s.repo.Create(ctx, evidence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create evidence")
	}

	s.logger.Info("evidence registered",
		zap.String("evidence_id", evidence.ID),
		zap.String("professor_id", evidence.ProfessorID),
		zap.String("course", evidence.CourseName))
	return evidence, nil
}

// Get returns an evidence record visible to the caller.
func (s *EvidenceService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Evidence, error) {
	evidence, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(authz.OpEvidenceRead, claims.Role, evidence.ProfessorID == claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "evidence belongs to another professor")
	}
	return evidence, nil
}

// List returns evidence records scoped to the caller.
func (s *EvidenceService) List(ctx context.Context, claims *models.JWTClaims, filter models.EvidenceFilter) ([]models.Evidence, *models.Pagination, error) {
	filter.ProfessorID = authz.ScopeOwner(claims.Role, claims.UserID, filter.ProfessorID)

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evidence")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return records, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Update revises an evidence record. Only the owner may edit, and only while
// the record is pending; a verdict freezes it.
func (s *EvidenceService) Update(ctx context.Context, claims *models.JWTClaims, id string, req models.UpdateEvidenceRequest, file *FileUpload) (*models.Evidence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evidence payload")
	}

	evidence, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(authz.OpEvidenceUpdate, claims.Role, evidence.ProfessorID == claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owning professor may edit evidence")
	}
	if evidence.Status != models.EvidenceStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "reviewed evidence cannot be edited")
	}

	if req.CourseName != nil {
		evidence.CourseName = *req.CourseName
	}
	if req.Institution != nil {
		evidence.Institution = *req.Institution
	}
	if req.Date != nil {
		evidence.Date = *req.Date
	}
	if req.Hours != nil {
		evidence.Hours = *req.Hours
	}

	if file != nil {
		result, err := s.store.Save(ctx, file.Filename, file.Reader)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to store document")
		}
		evidence.FileURL = result.URL
		evidence.FileName = &file.Filename
		evidence.DriveFileID = nil
		evidence.StorageType = models.StorageTypeLocal
	}

	if err := s.repo.Update(ctx, evidence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update evidence")
	}
	return evidence, nil
}

// Review records an approve or reject verdict with mandatory feedback.
func (s *EvidenceService) Review(ctx context.Context, claims *models.JWTClaims, id string, req models.ReviewEvidenceRequest) (*models.Evidence, error) {
	if !authz.Can(authz.OpEvidenceReview, claims.Role, false) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators and admins review evidence")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if req.Status != models.EvidenceStatusApproved && req.Status != models.EvidenceStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "verdict must be approved or rejected")
	}

	evidence, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Review(ctx, id, req.Status, req.Feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review evidence")
	}

	evidence.Status = req.Status
	evidence.Feedback = &req.Feedback

	s.logger.Info("evidence reviewed",
		zap.String("evidence_id", id),
		zap.String("reviewer_id", claims.UserID),
		zap.String("verdict", string(req.Status)))
	return evidence, nil
}

// Delete soft-deletes an evidence record.
func (s *EvidenceService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	evidence, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !authz.Can(authz.OpEvidenceDelete, claims.Role, evidence.ProfessorID == claims.UserID) {
		return appErrors.Clone(appErrors.ErrForbidden, "evidence belongs to another professor")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evidence")
	}
	return nil
}

func (s *EvidenceService) find(ctx context.Context, id string) (*models.Evidence, error) {
	evidence, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evidence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evidence")
	}
	return evidence, nil
}
