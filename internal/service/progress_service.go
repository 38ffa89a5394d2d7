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
)

type progressRepository interface {
	FindByID(ctx context.Context, id string) (*models.PartialProgress, error)
	ListByPlanning(ctx context.Context, planningID string) ([]models.PartialProgress, error)
	List(ctx context.Context, filter models.ProgressFilter) ([]models.PartialProgress, error)
	Stats(ctx context.Context, filter models.ProgressFilter) (*models.ProgressStats, error)
	Create(ctx context.Context, progress *models.PartialProgress) error
	Update(ctx context.Context, progress *models.PartialProgress) error
	Delete(ctx context.Context, id string) error
}

type progressPlanningRepository interface {
	FindByID(ctx context.Context, id string) (*models.Planning, error)
}

// ProgressService tracks partial progress against approved plannings. The
// status band is always derived server-side from the percentage.
type ProgressService struct {
	repo      progressRepository
	plannings progressPlanningRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgressService constructs a ProgressService instance.
func NewProgressService(repo progressRepository, plannings progressPlanningRepository, validate *validator.Validate, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProgressService{repo: repo, plannings: plannings, validator: validate, logger: logger}
}

// Create records a progress entry. Professors may only report against their
// own approved plannings; reviewers may record against any planning.
func (s *ProgressService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateProgressRequest) (*models.PartialProgress, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}

	planning, err := s.findPlanning(ctx, req.PlanningID)
	if err != nil {
		return nil, err
	}
	if !authz.CanCreateProgress(claims.Role, planning.ProfessorID == claims.UserID, planning.Status) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "progress can only be reported on own approved plannings")
	}

	progress := &models.PartialProgress{
		PlanningID:         req.PlanningID,
		Partial:            req.Partial,
		ProgressPercentage: req.ProgressPercentage,
		Status:             models.DeriveProgressStatus(req.ProgressPercentage),
		Achievements:       req.Achievements,
		Challenges:         req.Challenges,
		Adjustments:        req.Adjustments,
		DueDate:            req.DueDate,
		NextCheckpoint:     req.NextCheckpoint,
		IsActive:           true,
	}
	if err := s.repo.Create(ctx, progress); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create progress entry")
	}

	s.logger.Info("progress recorded",
		zap.String("progress_id", progress.ID),
		zap.String("planning_id", progress.PlanningID),
		zap.Int("percentage", progress.ProgressPercentage))
	return progress, nil
}

// Get returns a single progress entry visible to the caller.
func (s *ProgressService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.PartialProgress, error) {
	progress, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	planning, err := s.findPlanning(ctx, progress.PlanningID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewProgress(claims.Role, planning.ProfessorID == claims.UserID, planning.Status) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "progress belongs to another professor")
	}
	progress.Planning = planning
	return progress, nil
}

// ListByPlanning returns all progress entries for one planning, ordered by
// partial.
func (s *ProgressService) ListByPlanning(ctx context.Context, claims *models.JWTClaims, planningID string) ([]models.PartialProgress, error) {
	planning, err := s.findPlanning(ctx, planningID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewProgress(claims.Role, planning.ProfessorID == claims.UserID, planning.Status) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "progress belongs to another professor")
	}

	entries, err := s.repo.ListByPlanning(ctx, planningID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list progress")
	}
	return entries, nil
}

// List returns progress entries scoped to the caller. Professors only see
// entries whose parent planning is still approved, matching the per-entry
// view gate.
func (s *ProgressService) List(ctx context.Context, claims *models.JWTClaims, filter models.ProgressFilter) ([]models.PartialProgress, error) {
	filter.ProfessorID = authz.ScopeOwner(claims.Role, claims.UserID, filter.ProfessorID)
	filter.ApprovedOnly = claims.Role == models.RoleProfessor

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list progress")
	}
	return entries, nil
}

// Stats aggregates progress entries scoped to the caller.
func (s *ProgressService) Stats(ctx context.Context, claims *models.JWTClaims, filter models.ProgressFilter) (*models.ProgressStats, error) {
	filter.ProfessorID = authz.ScopeOwner(claims.Role, claims.UserID, filter.ProfessorID)
	filter.ApprovedOnly = claims.Role == models.RoleProfessor

	stats, err := s.repo.Stats(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate progress")
	}
	return stats, nil
}

// Update revises a progress entry. A changed percentage re-derives the
// status band.
func (s *ProgressService) Update(ctx context.Context, claims *models.JWTClaims, id string, req models.UpdateProgressRequest) (*models.PartialProgress, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}

	progress, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	planning, err := s.findPlanning(ctx, progress.PlanningID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(authz.OpProgressUpdate, claims.Role, planning.ProfessorID == claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "progress belongs to another professor")
	}

	if req.ProgressPercentage != nil {
		progress.ProgressPercentage = *req.ProgressPercentage
		progress.Status = models.DeriveProgressStatus(*req.ProgressPercentage)
	}
	if req.Achievements != nil {
		progress.Achievements = req.Achievements
	}
	if req.Challenges != nil {
		progress.Challenges = req.Challenges
	}
	if req.Adjustments != nil {
		progress.Adjustments = req.Adjustments
	}
	if req.DueDate != nil {
		progress.DueDate = req.DueDate
	}
	if req.NextCheckpoint != nil {
		progress.NextCheckpoint = req.NextCheckpoint
	}

	if err := s.repo.Update(ctx, progress); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update progress entry")
	}
	return progress, nil
}

// Delete soft-deletes a progress entry.
func (s *ProgressService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	progress, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	planning, err := s.findPlanning(ctx, progress.PlanningID)
	if err != nil {
		return err
	}
	if !authz.Can(authz.OpProgressDelete, claims.Role, planning.ProfessorID == claims.UserID) {
		return appErrors.Clone(appErrors.ErrForbidden, "progress belongs to another professor")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete progress entry")
	}
	return nil
}

func (s *ProgressService) find(ctx context.Context, id string) (*models.PartialProgress, error) {
	progress, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "progress entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress entry")
	}
	return progress, nil
}

func (s *ProgressService) findPlanning(ctx context.Context, id string) (*models.Planning, error) {
	planning, err := s.plannings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "planning not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load planning")
	}
	return planning, nil
}
