package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/romitgit/tc-project-service/internal/model"
	"github.com/romitgit/tc-project-service/internal/port/outbound"
)

// ========== Invite Adapter ==========

// InviteAdapter implements InviteDatabasePort.
type InviteAdapter struct {
	db *gorm.DB
}

// NewInviteAdapter creates a new invite adapter.
func NewInviteAdapter(db *gorm.DB) *InviteAdapter {
	return &InviteAdapter{db: db}
}

func (a *InviteAdapter) ListOpenByProject(ctx context.Context, projectID int64) ([]*model.ProjectMemberInvite, error) {
	var invites []*model.ProjectMemberInvite
	err := a.db.WithContext(ctx).
		Where("project_id = ? AND status IN ?", projectID, model.OpenInviteStatuses).
		Order("created_at ASC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

func (a *InviteAdapter) Create(ctx context.Context, invite *model.ProjectMemberInvite) error {
	return a.db.WithContext(ctx).Create(invite).Error
}

// ========== Member Adapter ==========

// MemberAdapter implements MemberDatabasePort.
type MemberAdapter struct {
	db *gorm.DB
}

// NewMemberAdapter creates a new member adapter.
func NewMemberAdapter(db *gorm.DB) *MemberAdapter {
	return &MemberAdapter{db: db}
}

func (a *MemberAdapter) ListByProject(ctx context.Context, projectID int64) ([]*model.ProjectMember, error) {
	var members []*model.ProjectMember
	err := a.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Compile-time interface checks
var (
	_ outbound.InviteDatabasePort = (*InviteAdapter)(nil)
	_ outbound.MemberDatabasePort = (*MemberAdapter)(nil)
)
