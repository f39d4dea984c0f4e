package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"agency-billing-backend/internal/auth"
	"agency-billing-backend/internal/models"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const minPasswordLength = 8

// ErrInvalidCredentials is returned by Login for unknown emails, wrong
// passwords and deactivated accounts alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	users  *repository.UserRepository
	bills  *repository.BillRepository
	tokens *auth.TokenManager
	log    *logrus.Logger
}

func NewUserService(users *repository.UserRepository, bills *repository.BillRepository, tokens *auth.TokenManager, log *logrus.Logger) *UserService {
	return &UserService{users: users, bills: bills, tokens: tokens, log: log}
}

type UserInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
	UserType             string
	IsActive             *bool
}

type UserPage struct {
	Users     []models.User `json:"users"`
	Total     int64         `json:"total"`
	Page      int           `json:"page"`
	PageSize  int           `json:"page_size"`
	CanCreate bool          `json:"can_create"`
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login checks the password and issues a token for an active user.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, password) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	token, expires, err := s.tokens.Issue(user.ID, user.UserType)
	if err != nil {
		return nil, err
	}
	s.log.WithField("user_id", user.ID).Info("user logged in")
	return &LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, actor *models.User, filter repository.UserFilter) (*UserPage, error) {
	if !actor.CanManageBills() {
		return nil, services.Forbidden("Unauthorized to manage users.")
	}
	list, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := &UserPage{
		Users:     list,
		Total:     total,
		Page:      max(filter.Page, 1),
		PageSize:  filter.PageSize,
		CanCreate: actor.IsApprover(),
	}
	if page.PageSize <= 0 {
		page.PageSize = 15
	}
	return page, nil
}

func (s *UserService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.User, error) {
	if !actor.CanManageBills() {
		return nil, services.Forbidden("Unauthorized to view user details.")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, services.NotFound("user")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, actor *models.User, in UserInput) (*models.User, error) {
	if !actor.IsApprover() {
		return nil, services.Forbidden("Only approvers can create users.")
	}
	if err := s.validate(ctx, in, nil); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Password: hash,
		UserType: in.UserType,
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "created_by": actor.ID}).Info("user created")
	return user, nil
}

// Update edits a user. An empty password keeps the current one.
func (s *UserService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in UserInput) (*models.User, error) {
	if !actor.IsApprover() {
		return nil, services.Forbidden("Only approvers can edit users.")
	}
	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in, &user.ID); err != nil {
		return nil, err
	}
	isActive := in.IsActive == nil || *in.IsActive
	if actor.ID == user.ID {
		if !isActive {
			return nil, services.Forbidden("You cannot deactivate your own account.")
		}
		if in.UserType != user.UserType {
			return nil, services.Forbidden("You cannot change your own user type.")
		}
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Email = strings.TrimSpace(in.Email)
	user.UserType = in.UserType
	user.IsActive = isActive
	if in.Password != "" {
		if user.Password, err = auth.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user that never created or approved a bill.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if !actor.IsApprover() {
		return services.Forbidden("Only approvers can delete users.")
	}
	if actor.ID == id {
		return services.Forbidden("You cannot delete your own account.")
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	n, err := s.bills.CountByUser(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return services.Conflict("Cannot delete user who has created or approved bills.")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return services.NotFound("user")
		}
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "deleted_by": actor.ID}).Info("user deleted")
	return nil
}

// ToggleStatus flips is_active on another user's account.
func (s *UserService) ToggleStatus(ctx context.Context, actor *models.User, id uuid.UUID) (*models.User, error) {
	if !actor.IsApprover() {
		return nil, services.Forbidden("Only approvers can change user status.")
	}
	if actor.ID == id {
		return nil, services.Forbidden("You cannot deactivate your own account.")
	}
	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = !user.IsActive
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "is_active": user.IsActive}).Info("user status changed")
	return user, nil
}

// EnsureApprover creates an active approver when no user exists yet, so a
// fresh installation can log in.
func (s *UserService) EnsureApprover(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	n, err := s.users.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user := &models.User{
		Name:     "Administrator",
		Email:    email,
		Password: hash,
		UserType: models.UserTypeApprover,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.log.WithField("email", email).Info("bootstrap approver created")
	return nil
}

func (s *UserService) validate(ctx context.Context, in UserInput, exclude *uuid.UUID) error {
	var v services.Validator
	v.Check(strings.TrimSpace(in.Name) != "", "name", "The name field is required.")
	v.Check(len(in.Name) <= 255, "name", "The name may not be greater than 255 characters.")
	v.CheckTag(strings.TrimSpace(in.Email), "required,email,max=255", "email", "The email must be a valid email address.")
	v.Check(in.UserType == models.UserTypeAccountManager || in.UserType == models.UserTypeApprover, "user_type", "The selected user type is invalid.")

	if exclude == nil || in.Password != "" {
		v.Check(len(in.Password) >= minPasswordLength, "password", "The password must be at least 8 characters.")
		v.Check(in.Password == in.PasswordConfirmation, "password", "The password confirmation does not match.")
	}

	taken, err := s.users.EmailTaken(ctx, strings.TrimSpace(in.Email), exclude)
	if err != nil {
		return err
	}
	v.Check(!taken, "email", "The email has already been taken.")
	return v.Err()
}
