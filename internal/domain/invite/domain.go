package invite

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/romitgit/tc-project-service/internal/infra/events"
	"github.com/romitgit/tc-project-service/internal/infra/task"
	"github.com/romitgit/tc-project-service/internal/model"
	"github.com/romitgit/tc-project-service/internal/port/inbound"
	"github.com/romitgit/tc-project-service/internal/port/outbound"
)

// TaskRunner runs detached background work.
type TaskRunner interface {
	Go(name string, decorate func(context.Context) context.Context, fn task.Func) bool
}

// Domain implements the project member invite domain logic.
type Domain struct {
	inviteDB  outbound.InviteDatabasePort
	memberDB  outbound.MemberDatabasePort
	identity  outbound.IdentityPort
	publisher outbound.EventPublisherPort
	mailer    outbound.InvitationMailerPort
	runner    TaskRunner
	bus       *events.Bus
	cfg       *Config
	logger    *zap.Logger
}

// NewDomain creates a new invite domain.
func NewDomain(
	inviteDB outbound.InviteDatabasePort,
	memberDB outbound.MemberDatabasePort,
	identity outbound.IdentityPort,
	publisher outbound.EventPublisherPort,
	mailer outbound.InvitationMailerPort,
	runner TaskRunner,
	bus *events.Bus,
	cfg *Config,
	logger *zap.Logger,
) *Domain {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	_ = cfg.Validate()
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Domain{
		inviteDB:  inviteDB,
		memberDB:  memberDB,
		identity:  identity,
		publisher: publisher,
		mailer:    mailer,
		runner:    runner,
		bus:       bus,
		cfg:       cfg,
		logger:    logger.Named("invite"),
	}
}

// Compile-time interface check
var _ inbound.InviteDomain = (*Domain)(nil)

// CreateInvites reconciles a bulk invite request against the project's current state,
// authorizes every candidate and creates the surviving invites.
//
// Per-candidate rejections are returned in the output's Failed list and never abort
// sibling candidates. Validation, authorization, role lookup and persistence errors are
// fatal and no partial output is returned.
func (d *Domain) CreateInvites(ctx context.Context, caller *model.Caller, projectID int64, in *inbound.CreateInvitesInput) (*inbound.CreateInvitesOutput, error) {
	if caller == nil || caller.UserID <= 0 {
		return nil, ErrMissingCaller
	}
	if projectID <= 0 {
		return nil, ErrInvalidProjectID
	}

	req, failed, err := normalizeRequest(in, d.cfg.EmailLookupMaxResults)
	if err != nil {
		return nil, err
	}

	if err := authorizeRequest(caller, req.role); err != nil {
		d.logger.Info("invite role forbidden",
			zap.Int64("project_id", projectID),
			zap.Int64("caller_id", caller.UserID),
			zap.String("role", string(req.role)),
		)
		return nil, err
	}

	snap, err := d.loadSnapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// User id candidates
	userIDs := snap.dedupUserIDs(req.userIDs)
	if IsManagerTier(req.role) && len(userIDs) > 0 {
		lookups, err := d.lookupRoles(ctx, userIDs)
		if err != nil {
			return nil, err
		}
		allowed, rejected := gateManagerCandidates(lookups)
		userIDs = allowed
		failed = append(failed, rejected...)
	}

	mat := newMaterializer(projectID, caller, req.role, time.Now())
	records := make([]*model.ProjectMemberInvite, 0, len(userIDs)+len(req.emails))
	for _, id := range userIDs {
		records = append(records, mat.forUser(id))
	}

	// Email candidates
	if len(req.emails) > 0 {
		res, emailFailed := d.lookupEmails(ctx, req.emails)
		failed = append(failed, emailFailed...)
		if res != nil {
			for _, c := range snap.dedupRegistered(res.registered, d.cfg.CanonicalizeRegisteredEmailAliases, userIDs) {
				records = append(records, mat.forRegistered(c))
			}
			for _, email := range snap.dedupUnregistered(res.unregistered, d.cfg.CanonicalizeUnregisteredEmailAliases, res.registeredEmails()) {
				records = append(records, mat.forEmail(email))
			}
		}
	}

	if err := d.persist(ctx, records); err != nil {
		return nil, err
	}

	d.dispatch(ctx, projectID, req.role, records, failed)

	d.logger.Info("invites processed",
		zap.Int64("project_id", projectID),
		zap.Int64("caller_id", caller.UserID),
		zap.String("role", string(req.role)),
		zap.Int("created", len(records)),
		zap.Int("failed", len(failed)),
	)

	return &inbound.CreateInvitesOutput{
		Success: records,
		Failed:  failed,
	}, nil
}

// ListOpenInvites lists pending and requested invites of a project.
func (d *Domain) ListOpenInvites(ctx context.Context, projectID int64) (*inbound.ListInvitesOutput, error) {
	if projectID <= 0 {
		return nil, ErrInvalidProjectID
	}

	invites, err := d.inviteDB.ListOpenByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: invites: %w", ErrSnapshotFailed, err)
	}
	if invites == nil {
		invites = []*model.ProjectMemberInvite{}
	}
	return &inbound.ListInvitesOutput{Invites: invites}, nil
}

// loadSnapshot captures membership and open invites once, before any fan-out.
func (d *Domain) loadSnapshot(ctx context.Context, projectID int64) (*snapshot, error) {
	members, err := d.memberDB.ListByProject(ctx, projectID)
	if err != nil {
		d.logger.Error("failed to load project members", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("%w: members: %w", ErrSnapshotFailed, err)
	}

	invites, err := d.inviteDB.ListOpenByProject(ctx, projectID)
	if err != nil {
		d.logger.Error("failed to load open invites", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("%w: invites: %w", ErrSnapshotFailed, err)
	}

	return newSnapshot(members, invites), nil
}

// persist stores every record as one group. The first failure fails the call.
func (d *Domain) persist(ctx context.Context, records []*model.ProjectMemberInvite) error {
	if len(records) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.PersistConcurrency)
	for _, inv := range records {
		g.Go(func() error {
			return d.inviteDB.Create(gctx, inv)
		})
	}

	if err := g.Wait(); err != nil {
		d.logger.Error("failed to persist invites",
			zap.Int("records", len(records)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return nil
}
