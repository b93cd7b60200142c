package users

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/accounts-backend/pkg/config"
	"github.com/angelmondragon/accounts-backend/pkg/db/models"
	"github.com/angelmondragon/accounts-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/accounts-backend/pkg/errors"
	"github.com/angelmondragon/accounts-backend/pkg/logger"
	"github.com/angelmondragon/accounts-backend/pkg/metrics"
	"github.com/google/uuid"
)

const (
	MsgUserNotFound       = "User not found."
	MsgTargetUserNotFound = "Target user not found."
	MsgAdminOnly          = "Only administrators can perform role or status changes."
)

const (
	opRegister         = "register"
	opUpdate           = "update"
	opUpdateRoleStatus = "update_role_status"
	opGetByID          = "get_by_id"
	opGetAll           = "get_all"
)

// Service is the account pipeline: normalize, validate, mutate, persist, map.
type Service interface {
	Register(ctx context.Context, req RegistrationRequest) (*UserDTO, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*UserDTO, error)
	UpdateRoleStatus(ctx context.Context, targetID string, req RoleStatusUpdateRequest, performerID string) (*UserDTO, error)
	// GetByID returns (nil, nil) when the record is absent or soft-deleted.
	GetByID(ctx context.Context, id string) (*UserDTO, error)
	GetAll(ctx context.Context) ([]UserDTO, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// ServiceParams packages the dependencies for the user service.
type ServiceParams struct {
	Repo           Repository
	Hasher         passwordHasher
	PasswordPolicy config.PasswordPolicyConfig
	Audit          AuditSink
	Notifier       WelcomeNotifier
	Logger         *logger.Logger
	Metrics        *metrics.OperationMetrics
	Now            func() time.Time
	NewID          func() string
}

type service struct {
	repo         Repository
	hasher       passwordHasher
	audit        AuditSink
	notifier     WelcomeNotifier
	logg         *logger.Logger
	metrics      *metrics.OperationMetrics
	now          func() time.Time
	newID        func() string
	registration Chain[RegistrationContext]
	update       Chain[UpdateContext]
}

// NewService builds the user service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository required")
	}
	if params.Hasher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "password hasher required")
	}

	now := params.Now
	if now == nil {
		now = time.Now
	}
	utcNow := func() time.Time { return now().UTC() }

	newID := params.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	policy := params.PasswordPolicy
	if policy.MinLength == 0 && policy.MaxLength == 0 {
		policy = config.DefaultPasswordPolicy()
	}

	return &service{
		repo:         params.Repo,
		hasher:       params.Hasher,
		audit:        params.Audit,
		notifier:     params.Notifier,
		logg:         logg,
		metrics:      params.Metrics,
		now:          utcNow,
		newID:        newID,
		registration: NewRegistrationChain(params.Repo, policy, utcNow),
		update:       NewUpdateChain(params.Repo, utcNow),
	}, nil
}

func (s *service) Register(ctx context.Context, req RegistrationRequest) (dto *UserDTO, err error) {
	defer s.observe(opRegister, time.Now(), &err)

	rc := RegistrationContext{
		FirstName:   trimName(req.FirstName),
		LastName:    trimName(req.LastName),
		DisplayName: req.DisplayName,
		PhoneNumber: normalizePhonePtr(req.PhoneNumber),
		Password:    req.Password,
		DateOfBirth: req.DateOfBirth.timePtr(),
	}
	if email := NormalizeEmail(req.Email); email != nil {
		rc.Email = *email
	}

	if err := s.registration.Run(ctx, rc); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(rc.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           s.newID(),
		FirstName:    rc.FirstName,
		LastName:     rc.LastName,
		DisplayName:  displayNameOrDefault(rc.DisplayName, rc.FirstName, rc.LastName),
		Email:        rc.Email,
		PhoneNumber:  rc.PhoneNumber,
		PasswordHash: hash,
		DateOfBirth:  rc.DateOfBirth,
		Role:         enums.UserRoleUser,
		Status:       enums.UserStatusActive,
		IsDeleted:    false,
		CreatedAt:    s.now(),
	}

	if err := s.repo.Add(ctx, user); err != nil {
		return nil, translateWriteError(err, "create user")
	}

	logCtx := s.logg.WithUserID(ctx, user.ID)
	s.logg.Info(logCtx, "user.registered")

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, user.Email, user.DisplayName)
	}

	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (dto *UserDTO, err error) {
	defer s.observe(opUpdate, time.Now(), &err)

	user, err := s.loadActive(ctx, id, MsgUserNotFound)
	if err != nil {
		return nil, err
	}

	uc := UpdateContext{
		ID:          user.ID,
		FirstName:   trimName(req.FirstName),
		LastName:    trimName(req.LastName),
		DisplayName: req.DisplayName,
		PhoneNumber: normalizePhonePtr(req.PhoneNumber),
		DateOfBirth: req.DateOfBirth.timePtr(),
	}
	if err := s.update.Run(ctx, uc); err != nil {
		return nil, err
	}

	now := s.now()
	user.FirstName = uc.FirstName
	user.LastName = uc.LastName
	user.DisplayName = displayNameOrDefault(uc.DisplayName, uc.FirstName, uc.LastName)
	user.PhoneNumber = uc.PhoneNumber
	user.DateOfBirth = uc.DateOfBirth
	user.UpdatedAt = &now

	if err := s.repo.Update(ctx, user.ID, user); err != nil {
		return nil, translateWriteError(err, "update user")
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "user.updated")
	return FromModel(user), nil
}

func (s *service) UpdateRoleStatus(ctx context.Context, targetID string, req RoleStatusUpdateRequest, performerID string) (dto *UserDTO, err error) {
	defer s.observe(opUpdateRoleStatus, time.Now(), &err)

	if err := s.authorizeAdmin(ctx, performerID); err != nil {
		return nil, err
	}

	role, status, err := parseRoleStatus(req)
	if err != nil {
		return nil, err
	}

	user, err := s.loadActive(ctx, targetID, MsgTargetUserNotFound)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var events []AuditEvent
	if role != nil && *role != user.Role {
		events = append(events, AuditEvent{
			ActorID:    performerID,
			TargetID:   user.ID,
			Field:      AuditFieldRole,
			From:       user.Role.String(),
			To:         role.String(),
			OccurredAt: now,
		})
		user.Role = *role
	}
	if status != nil && *status != user.Status {
		events = append(events, AuditEvent{
			ActorID:    performerID,
			TargetID:   user.ID,
			Field:      AuditFieldStatus,
			From:       user.Status.String(),
			To:         status.String(),
			OccurredAt: now,
		})
		user.Status = *status
	}
	user.UpdatedAt = &now

	if err := s.repo.Update(ctx, user.ID, user); err != nil {
		return nil, translateWriteError(err, "update user role/status")
	}

	logCtx := s.logg.WithPerformerID(s.logg.WithUserID(ctx, user.ID), performerID)
	s.logg.Info(s.logg.WithField(logCtx, "changes", len(events)), "user.role_status_updated")
	s.emitAudit(logCtx, events)

	return FromModel(user), nil
}

func (s *service) GetByID(ctx context.Context, id string) (dto *UserDTO, err error) {
	defer s.observe(opGetByID, time.Now(), &err)

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil || user.IsDeleted {
		return nil, nil
	}
	return FromModel(user), nil
}

func (s *service) GetAll(ctx context.Context) (dtos []UserDTO, err error) {
	defer s.observe(opGetAll, time.Now(), &err)

	records, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]UserDTO, 0, len(records))
	for i := range records {
		if records[i].IsDeleted {
			continue
		}
		out = append(out, *FromModel(&records[i]))
	}
	return out, nil
}

func (s *service) authorizeAdmin(ctx context.Context, performerID string) error {
	if strings.TrimSpace(performerID) == "" {
		return pkgerrors.New(pkgerrors.CodeForbidden, MsgAdminOnly)
	}
	performer, err := s.repo.GetByID(ctx, performerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load performer")
	}
	if performer == nil || performer.IsDeleted || performer.Role != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, MsgAdminOnly)
	}
	return nil
}

func (s *service) loadActive(ctx context.Context, id, notFoundMsg string) (*models.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil || user.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return user, nil
}

// emitAudit runs after the write committed, so a sink failure is logged
// rather than returned.
func (s *service) emitAudit(ctx context.Context, events []AuditEvent) {
	if s.audit == nil || len(events) == 0 {
		return
	}
	if err := s.audit.Record(ctx, events...); err != nil {
		s.logg.Error(ctx, "user.audit.emit_failed", err)
	}
}

func (s *service) observe(op string, start time.Time, errp *error) {
	outcome := metrics.OutcomeSuccess
	if err := *errp; err != nil {
		outcome = metrics.OutcomeError
		if pkgerrors.IsCode(err, pkgerrors.CodeValidation) ||
			pkgerrors.IsCode(err, pkgerrors.CodeForbidden) ||
			pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			outcome = metrics.OutcomeRejected
		}
	}
	s.metrics.Observe(op, outcome, time.Since(start))
}

func parseRoleStatus(req RoleStatusUpdateRequest) (*enums.UserRole, *enums.UserStatus, error) {
	var role *enums.UserRole
	if req.Role != nil {
		r, err := enums.ParseUserRole(*req.Role)
		if err != nil {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "Invalid role %q.", *req.Role)
		}
		role = &r
	}
	var status *enums.UserStatus
	if req.Status != nil {
		st, err := enums.ParseUserStatus(*req.Status)
		if err != nil {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "Invalid status %q.", *req.Status)
		}
		status = &st
	}
	return role, status, nil
}

// translateWriteError maps a unique index violation to the same message the
// uniqueness validators produce, closing the check-then-write race.
func translateWriteError(err error, action string) error {
	if dup, ok := asDuplicate(err); ok {
		if dup.Field == duplicateFieldPhone {
			return pkgerrors.New(pkgerrors.CodeValidation, MsgPhoneInUse)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, MsgEmailInUse)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
