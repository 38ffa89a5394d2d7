// Package authz centralizes every role and ownership decision in a single
// declarative policy table so routes and services cannot drift apart.
package authz

import (
	"github.com/nmby204/SGE/internal/models"
)

// Operation names a guarded workflow action.
type Operation string

const (
	OpPlanningCreate Operation = "planning.create"
	OpPlanningRead   Operation = "planning.read"
	OpPlanningUpdate Operation = "planning.update"
	OpPlanningReview Operation = "planning.review"
	OpPlanningDelete Operation = "planning.delete"

	OpEvidenceCreate Operation = "evidence.create"
	OpEvidenceRead   Operation = "evidence.read"
	OpEvidenceUpdate Operation = "evidence.update"
	OpEvidenceReview Operation = "evidence.review"
	OpEvidenceDelete Operation = "evidence.delete"

	OpProgressCreate Operation = "progress.create"
	OpProgressRead   Operation = "progress.read"
	OpProgressUpdate Operation = "progress.update"
	OpProgressDelete Operation = "progress.delete"

	OpUserManage   Operation = "users.manage"
	OpReportView   Operation = "reports.view"
	OpCalendarView Operation = "calendar.view"
)

// rule pairs the roles allowed unconditionally with the roles allowed only
// when the requester owns the target row.
type rule struct {
	roles      []models.UserRole
	ownerRoles []models.UserRole
}

var policy = map[Operation]rule{
	OpPlanningCreate: {roles: []models.UserRole{models.RoleProfessor}},
	OpPlanningRead:   {roles: []models.UserRole{models.RoleAdmin, models.RoleCoordinator}, ownerRoles: []models.UserRole{models.RoleProfessor}},
	OpPlanningUpdate: {ownerRoles: []models.UserRole{models.RoleProfessor}},
	OpPlanningReview: {roles: []models.UserRole{models.RoleAdmin, models.RoleCoordinator}},
	OpPlanningDelete: {roles: []models.UserRole{models.RoleAdmin, models.RoleCoordinator}, ownerRoles: []models.UserRole{models.RoleProfessor}},

	OpEvidenceCreate: {roles: []models.UserRole{models.RoleProfessor}},
	OpEvidenceRead:   {roles: []models.UserRole{models.RoleAdmin, models.RoleCoordinator}, ownerRoles: []models.UserRole{models.RoleProfessor}},
	OpEvidenceUpdate: {ownerRoles: []models.UserRole{models.RoleProfessor}},
	OpEvidenceReview: {roles: []models.UserRole{models.RoleAdmin, models.RoleCoordinator}},
	OpEvidenceDelete: {roles: []models.UserRole{models.RoleAdmin, models.RoleCoordinator}, ownerRoles: []models.UserRole{models.RoleProfessor}},

	OpProgressCreate: {roles: []models.UserRole{models.RoleAdmin, models.RoleCoordinator}, ownerRoles: []models.UserRole{models.RoleProfessor}},
	OpProgressRead:   {roles: []models.UserRole{models.RoleAdmin, models.RoleCoordinator}, ownerRoles: []models.UserRole{models.RoleProfessor}},
	OpProgressUpdate: {roles: []models.UserRole{models.RoleAdmin, models.RoleCoordinator}, ownerRoles: []models.UserRole{models.RoleProfessor}},
	OpProgressDelete: {roles: []models.UserRole{models.RoleAdmin, models.RoleCoordinator}, ownerRoles: []models.UserRole{models.RoleProfessor}},

	OpUserManage:   {roles: []models.UserRole{models.RoleAdmin}},
	OpReportView:   {roles: []models.UserRole{models.RoleAdmin, models.RoleCoordinator}},
	OpCalendarView: {roles: []models.UserRole{models.RoleAdmin, models.RoleCoordinator, models.RoleProfessor}},
}

// Can reports whether role may perform op. isOwner only matters for roles
// listed under the ownership requirement.
func Can(op Operation, role models.UserRole, isOwner bool) bool {
	r, ok := policy[op]
	if !ok {
		return false
	}
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	if !isOwner {
		return false
	}
	for _, allowed := range r.ownerRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// AllowedRoles returns every role that can perform op in at least some
// circumstance. Route-level middleware uses this as a coarse pre-filter;
// ownership is still checked per row.
func AllowedRoles(op Operation) []models.UserRole {
	r, ok := policy[op]
	if !ok {
		return nil
	}
	out := make([]models.UserRole, 0, len(r.roles)+len(r.ownerRoles))
	out = append(out, r.roles...)
	for _, owner := range r.ownerRoles {
		seen := false
		for _, existing := range out {
			if existing == owner {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, owner)
		}
	}
	return out
}

// ScopeOwner returns the professor id that list queries must be restricted
// to. Professors are always pinned to their own rows; any client-supplied
// professor filter is silently overridden, never errored.
func ScopeOwner(role models.UserRole, requesterID, requested string) string {
	if role == models.RoleProfessor {
		return requesterID
	}
	return requested
}

// CanCreateProgress gates partial-progress creation on the parent planning.
// Reviewers may always record progress; the owning professor only once the
// planning is approved.
func CanCreateProgress(role models.UserRole, isOwner bool, planningStatus models.PlanningStatus) bool {
	if role.IsReviewer() {
		return true
	}
	return role == models.RoleProfessor && isOwner && planningStatus == models.PlanningStatusApproved
}

// CanViewProgress mirrors CanCreateProgress for reads. The server-side check
// is authoritative; any client-side mirror is UX only.
func CanViewProgress(role models.UserRole, isOwner bool, planningStatus models.PlanningStatus) bool {
	return CanCreateProgress(role, isOwner, planningStatus)
}
