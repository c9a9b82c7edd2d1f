package service

import (
	"context"
	"log/slog"
	"strings"

	"backoffice/internal/apperror"
	"backoffice/internal/auth"
	"backoffice/internal/model"
	"backoffice/internal/policy"
	"backoffice/internal/repository"
	"backoffice/pkg/pagination"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// DTOs for Request validation
type CreateUserRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6"`
	Title    *string `json:"title"`
	Role     string  `json:"role" binding:"required"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	Password     string `json:"password"`
	Confirmation string `json:"confirm_password"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Title     *string   `json:"title"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt string    `json:"created_at"`
}

type Capabilities struct {
	CanMutate           bool `json:"can_mutate"`
	CanSeeContractValue bool `json:"can_see_contract_value"`
}

type MeResponse struct {
	UserResponse
	Capabilities Capabilities `json:"capabilities"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Login(ctx context.Context, req LoginUserRequest) (*LoginResponse, error)
	// Authenticate resolves a session subject into the acting profile.
	Authenticate(ctx context.Context, userID uuid.UUID) (policy.Actor, error)
	Me(ctx context.Context) (*MeResponse, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	ListUsers(ctx context.Context, p pagination.Params) (pagination.Page[UserResponse], error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	// CreateAdmin bootstraps an administrator without an acting user.
	CreateAdmin(ctx context.Context, email, password, name string, title *string) (*UserResponse, error)
}

type userService struct {
	repo   repository.UserRepository
	tokens *auth.TokenIssuer
	audit  AuditService
	logger *slog.Logger
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, tokens *auth.TokenIssuer, audit AuditService, logger *slog.Logger) UserService {
	return &userService{repo: repo, tokens: tokens, audit: audit, logger: logger}
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Title:     user.Title,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func userRole(u *model.User) policy.Role {
	if r, ok := policy.ParseRole(u.Role); ok {
		return r
	}
	return policy.Role(u.Role)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", apperror.Invalidf("password must be at least %d characters", minPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hashed), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*LoginResponse, error) {
	invalid := apperror.Unauthorized("invalid email or password")

	user, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, invalid
	}
	if !user.Active {
		return nil, apperror.Unauthorized("account is inactive")
	}

	token, err := s.tokens.Issue(user.ID, string(userRole(user)))
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &LoginResponse{Token: token, User: mapToResponse(user)}, nil
}

func (s *userService) Authenticate(ctx context.Context, userID uuid.UUID) (policy.Actor, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return policy.Actor{}, apperror.Unauthorized("user no longer exists")
		}
		return policy.Actor{}, err
	}
	if !user.Active {
		return policy.Actor{}, apperror.Unauthorized("account is inactive")
	}
	return policy.Actor{ID: user.ID, Name: user.Name, Role: userRole(user)}, nil
}

func (s *userService) Me(ctx context.Context) (*MeResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	return &MeResponse{
		UserResponse: mapToResponse(user),
		Capabilities: Capabilities{
			CanMutate:           actor.CanMutate(),
			CanSeeContractValue: actor.CanSeeContractValue(),
		},
	}, nil
}

func (s *userService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return err
	}
	if req.Password != req.Confirmation {
		return apperror.Invalid("passwords do not match")
	}

	if err := s.repo.UpdatePassword(ctx, actor.ID, hashed); err != nil {
		return storeError(err, "user not found")
	}
	return s.audit.Record(ctx, model.ActionChangePassword, actor.ID.String(), actor.Name, nil)
}

func (s *userService) ListUsers(ctx context.Context, p pagination.Params) (pagination.Page[UserResponse], error) {
	users, total, err := s.repo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return pagination.Page[UserResponse]{}, errors.Wrap(err, "list users")
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, mapToResponse(&users[i]))
	}
	return pagination.NewPage(responses, total, p), nil
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if _, err := mutator(ctx); err != nil {
		return nil, err
	}
	role, ok := policy.ParseRole(req.Role)
	if !ok {
		return nil, apperror.Invalid("invalid role: must be admin, user, director or finance")
	}
	return s.create(ctx, req, role)
}

func (s *userService) CreateAdmin(ctx context.Context, email, password, name string, title *string) (*UserResponse, error) {
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	return s.create(ctx, CreateUserRequest{Name: name, Email: email, Password: password, Title: title}, policy.RoleAdmin)
}

func (s *userService) create(ctx context.Context, req CreateUserRequest, role policy.Role) (*UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, apperror.Invalid("name, email and password are required")
	}
	if err := validatorInstance().Var(email, "email"); err != nil {
		return nil, apperror.Invalid("invalid email format")
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Title:    trimmed(req.Title),
		Password: hashed,
		Role:     string(role),
		Active:   true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.Conflict("email already exists", err)
		}
		return nil, err
	}

	if err := s.audit.Record(ctx, model.ActionCreateUser, user.ID.String(), user.Email,
		map[string]string{"role": user.Role}); err != nil {
		s.logger.ErrorContext(ctx, "user audit not recorded", "error", err)
	}

	res := mapToResponse(user)
	return &res, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	actor, err := mutator(ctx)
	if err != nil {
		return err
	}
	if id == actor.ID {
		return apperror.Invalid("you cannot delete your own account")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "user not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "user not found")
	}
	return s.audit.Record(ctx, model.ActionDeleteUser, id.String(), user.Email, nil)
}
