package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nmby204/SGE/internal/models"
)

func TestCanPlanningReview(t *testing.T) {
	assert.True(t, Can(OpPlanningReview, models.RoleAdmin, false))
	assert.True(t, Can(OpPlanningReview, models.RoleCoordinator, false))
	// professors never review, not even their own plannings
	assert.False(t, Can(OpPlanningReview, models.RoleProfessor, false))
	assert.False(t, Can(OpPlanningReview, models.RoleProfessor, true))
}

func TestCanPlanningUpdateRequiresOwnership(t *testing.T) {
	assert.True(t, Can(OpPlanningUpdate, models.RoleProfessor, true))
	assert.False(t, Can(OpPlanningUpdate, models.RoleProfessor, false))
	// review is a separate operation; reviewers cannot edit content
	assert.False(t, Can(OpPlanningUpdate, models.RoleAdmin, false))
	assert.False(t, Can(OpPlanningUpdate, models.RoleCoordinator, false))
}

func TestCanPlanningRead(t *testing.T) {
	assert.True(t, Can(OpPlanningRead, models.RoleAdmin, false))
	assert.True(t, Can(OpPlanningRead, models.RoleCoordinator, false))
	assert.True(t, Can(OpPlanningRead, models.RoleProfessor, true))
	assert.False(t, Can(OpPlanningRead, models.RoleProfessor, false))
}

func TestCanUserManage(t *testing.T) {
	assert.True(t, Can(OpUserManage, models.RoleAdmin, false))
	assert.False(t, Can(OpUserManage, models.RoleCoordinator, false))
	assert.False(t, Can(OpUserManage, models.RoleProfessor, true))
}

func TestScopeOwnerPinsProfessors(t *testing.T) {
	assert.Equal(t, "prof-1", ScopeOwner(models.RoleProfessor, "prof-1", "prof-2"))
	assert.Equal(t, "prof-2", ScopeOwner(models.RoleCoordinator, "coord-1", "prof-2"))
	assert.Equal(t, "", ScopeOwner(models.RoleAdmin, "admin-1", ""))
}

func TestCanCreateProgress(t *testing.T) {
	cases := []struct {
		name    string
		role    models.UserRole
		isOwner bool
		status  models.PlanningStatus
		want    bool
	}{
		{"admin always", models.RoleAdmin, false, models.PlanningStatusPending, true},
		{"coordinator always", models.RoleCoordinator, false, models.PlanningStatusAdjustments, true},
		{"owner on approved", models.RoleProfessor, true, models.PlanningStatusApproved, true},
		{"owner on pending", models.RoleProfessor, true, models.PlanningStatusPending, false},
		{"owner on adjustments", models.RoleProfessor, true, models.PlanningStatusAdjustments, false},
		{"non-owner professor", models.RoleProfessor, false, models.PlanningStatusApproved, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanCreateProgress(tc.role, tc.isOwner, tc.status))
			assert.Equal(t, tc.want, CanViewProgress(tc.role, tc.isOwner, tc.status))
		})
	}
}

func TestAllowedRolesDeduplicates(t *testing.T) {
	roles := AllowedRoles(OpPlanningDelete)
	assert.ElementsMatch(t, []models.UserRole{models.RoleAdmin, models.RoleCoordinator, models.RoleProfessor}, roles)
}

func TestUnknownOperationDenied(t *testing.T) {
	assert.False(t, Can(Operation("planning.publish"), models.RoleAdmin, true))
	assert.Nil(t, AllowedRoles(Operation("planning.publish")))
}
