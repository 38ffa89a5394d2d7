package service

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nmby204/SGE/internal/authz"
	"github.com/nmby204/SGE/internal/models"
	appErrors "github.com/nmby204/SGE/pkg/errors"
	"github.com/nmby204/SGE/pkg/storage"
)

// FileUpload carries an incoming multipart file into a service.
type FileUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

type planningRepository interface {
	FindByID(ctx context.Context, id string) (*models.Planning, error)
	List(ctx context.Context, filter models.PlanningFilter) ([]models.Planning, int, error)
	History(ctx context.Context, courseName, excludeCycle string) ([]models.Planning, error)
	Create(ctx context.Context, planning *models.Planning) error
	Update(ctx context.Context, planning *models.Planning) error
	Review(ctx context.Context, id string, status models.PlanningStatus, feedback string) error
	Delete(ctx context.Context, id string) error
}

// PlanningService implements the planning review workflow: professors submit
// and revise, coordinators and admins review.
type PlanningService struct {
	repo      planningRepository
	store     storage.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlanningService constructs a PlanningService instance.
func NewPlanningService(repo planningRepository, store storage.Store, validate *validator.Validate, logger *zap.Logger) *PlanningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PlanningService{repo: repo, store: store, validator: validate, logger: logger}
}

// Create submits a new planning owned by the calling professor. An attachment
// may come either as an uploaded file or as a drive reference; the uploaded
// file wins when both are present.
func (s *PlanningService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreatePlanningRequest, file *FileUpload) (*models.Planning, error) {
	if !authz.Can(authz.OpPlanningCreate, claims.Role, true) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only professors submit plannings")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid planning payload")
	}

	planning := &models.Planning{
		ProfessorID:    claims.UserID,
		CourseName:     req.CourseName,
		Partial:        req.Partial,
		Cycle:          req.Cycle,
		Content:        req.Content,
		Objectives:     req.Objectives,
		Methodology:    req.Methodology,
		Evaluation:     req.Evaluation,
		Resources:      req.Resources,
		Status:         models.PlanningStatusPending,
		StorageType:    models.StorageTypeLocal,
		ReviewDeadline: req.ReviewDeadline,
		IsActive:       true,
	}

	if err := s.attach(ctx, planning, req.DriveFileID, req.DriveFileURL, file); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, planning); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create planning")
	}

	s.logger.Info("planning submitted",
		zap.String("planning_id", planning.ID),
		zap.String("professor_id", planning.ProfessorID),
		zap.String("course", planning.CourseName))
	return planning, nil
}

// Get returns a planning visible to the caller.
func (s *PlanningService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Planning, error) {
	planning, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(authz.OpPlanningRead, claims.Role, planning.ProfessorID == claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "planning belongs to another professor")
	}
	return planning, nil
}

// List returns plannings scoped to the caller. Professors only ever see their
// own rows regardless of the filter they send.
func (s *PlanningService) List(ctx context.Context, claims *models.JWTClaims, filter models.PlanningFilter) ([]models.Planning, *models.Pagination, error) {
	filter.ProfessorID = authz.ScopeOwner(claims.Role, claims.UserID, filter.ProfessorID)

	plannings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plannings")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return plannings, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// History returns prior-cycle plannings for the same course so reviewers can
// compare against past submissions.
func (s *PlanningService) History(ctx context.Context, claims *models.JWTClaims, id string) ([]models.Planning, error) {
	planning, err := s.Get(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.History(ctx, planning.CourseName, planning.Cycle)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load planning history")
	}
	if claims.Role == models.RoleProfessor {
		own := history[:0]
		for _, entry := range history {
			if entry.ProfessorID == claims.UserID {
				own = append(own, entry)
			}
		}
		history = own
	}
	return history, nil
}

// Update revises an editable planning. Revising after an adjustments request
// resubmits the planning: status returns to pending and the prior feedback is
// cleared.
func (s *PlanningService) Update(ctx context.Context, claims *models.JWTClaims, id string, req models.UpdatePlanningRequest, file *FileUpload) (*models.Planning, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid planning payload")
	}

	planning, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(authz.OpPlanningUpdate, claims.Role, planning.ProfessorID == claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owning professor may edit a planning")
	}
	if !planning.Status.Editable() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "approved plannings cannot be edited")
	}

	resubmitted := planning.Status == models.PlanningStatusAdjustments

	if req.CourseName != nil {
		planning.CourseName = *req.CourseName
	}
	if req.Partial != nil {
		planning.Partial = *req.Partial
	}
	if req.Cycle != nil {
		planning.Cycle = *req.Cycle
	}
	if req.Content != nil {
		planning.Content = *req.Content
	}
	if req.Objectives != nil {
		planning.Objectives = *req.Objectives
	}
	if req.Methodology != nil {
		planning.Methodology = *req.Methodology
	}
	if req.Evaluation != nil {
		planning.Evaluation = *req.Evaluation
	}
	if req.Resources != nil {
		planning.Resources = req.Resources
	}
	if req.ReviewDeadline != nil {
		planning.ReviewDeadline = req.ReviewDeadline
	}

	if file != nil {
		if err := s.attach(ctx, planning, nil, nil, file); err != nil {
			return nil, err
		}
	}

	if resubmitted {
		planning.Status = models.PlanningStatusPending
		planning.Feedback = nil
	}

	if err := s.repo.Update(ctx, planning); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update planning")
	}

	if resubmitted {
		s.logger.Info("planning resubmitted", zap.String("planning_id", planning.ID))
	}
	return planning, nil
}

// Review records a verdict with mandatory feedback. Any planning may be
// re-reviewed, including approved ones; the latest verdict stands.
func (s *PlanningService) Review(ctx context.Context, claims *models.JWTClaims, id string, req models.ReviewPlanningRequest) (*models.Planning, error) {
	if !authz.Can(authz.OpPlanningReview, claims.Role, false) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators and admins review plannings")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if req.Status != models.PlanningStatusApproved && req.Status != models.PlanningStatusAdjustments {
		return nil, appErrors.Clone(appErrors.ErrValidation, "verdict must be approved or adjustments_required")
	}

	planning, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Review(ctx, id, req.Status, req.Feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review planning")
	}

	planning.Status = req.Status
	planning.Feedback = &req.Feedback

	s.logger.Info("planning reviewed",
		zap.String("planning_id", id),
		zap.String("reviewer_id", claims.UserID),
		zap.String("verdict", string(req.Status)))
	return planning, nil
}

// Delete soft-deletes a planning. Professors may only remove their own
// approved plannings; reviewers may remove any.
func (s *PlanningService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	planning, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !authz.Can(authz.OpPlanningDelete, claims.Role, planning.ProfessorID == claims.UserID) {
		return appErrors.Clone(appErrors.ErrForbidden, "planning belongs to another professor")
	}
	if claims.Role == models.RoleProfessor && planning.Status != models.PlanningStatusApproved {
		return appErrors.Clone(appErrors.ErrConflict, "only approved plannings can be removed by their owner")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete planning")
	}
	return nil
}

func (s *PlanningService) find(ctx context.Context, id string) (*models.Planning, error) {
	planning, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "planning not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load planning")
	}
	return planning, nil
}

func (s *PlanningService) attach(ctx context.Context, planning *models.Planning, driveID, driveURL *string, file *FileUpload) error {
	switch {
	case file != nil:
		result, err := s.store.Save(ctx, file.Filename, file.Reader)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to store attachment")
		}
		planning.FileURL = &result.URL
		planning.FileName = &file.Filename
		planning.FileSize = &result.Size
		planning.DriveFileID = nil
		planning.StorageType = models.StorageTypeLocal
	case driveID != nil && *driveID != "":
		planning.DriveFileID = driveID
		planning.FileURL = driveURL
		planning.StorageType = models.StorageTypeDrive
	}
	return nil
}
