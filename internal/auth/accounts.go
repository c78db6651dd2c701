package auth

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/snapshot"
	"restaurant-order-service/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,40}$`)

const minPasswordLength = 6

type RegisterInput struct {
	Username string     `json:"username" validate:"required,min=3,max=40"`
	Password string     `json:"password" validate:"required,min=6,max=128"`
	Name     string     `json:"name" validate:"required,max=120"`
	Email    string     `json:"email" validate:"omitempty,email"`
	Phone    string     `json:"phone" validate:"omitempty,max=30"`
	Role     model.Role `json:"role" validate:"omitempty,oneof=customer staff chef rider admin"`
}

// Session is the result of a successful sign in.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

type Accounts struct {
	store     store.Store
	snapshots snapshot.Marker
	logger    *zap.Logger
	secret    string
	ttl       time.Duration
	now       func() time.Time
}

func NewAccounts(st store.Store, marker snapshot.Marker, logger *zap.Logger, secret string, ttl time.Duration) *Accounts {
	if marker == nil {
		marker = snapshot.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Accounts{
		store:     st,
		snapshots: marker,
		logger:    logger,
		secret:    secret,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register signs up a customer and signs them in.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Role = model.RoleCustomer
	u, err := a.create(ctx, in)
	if err != nil {
		return nil, err
	}
	return a.issue(u)
}

// CreateUser adds an account of any role on behalf of an admin.
func (a *Accounts) CreateUser(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Role == "" {
		in.Role = model.RoleCustomer
	}
	return a.create(ctx, in)
}

func (a *Accounts) create(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if !usernamePattern.MatchString(username) {
		return nil, apperr.Validation("Username must be 3-40 letters, digits, dots or underscores", nil)
	}
	if strings.HasPrefix(strings.ToLower(username), model.DemoUsernamePrefix) {
		return nil, apperr.Validation("Usernames starting with demo_ are reserved", nil)
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Validation("Password must be at least 6 characters", nil)
	}
	if !in.Role.IsValid() {
		return nil, apperr.Validation("Unknown role", map[string]any{"role": in.Role})
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:           "user_" + uuid.NewString(),
		Username:     username,
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         in.Role,
		PasswordHash: hash,
		CreatedAt:    a.now(),
	}
	if u.Name == "" {
		u.Name = username
	}
	if err := a.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict(apperr.ErrUsernameTaken, "Username is already taken")
		}
		return nil, err
	}
	a.snapshots.MarkDirty(snapshot.KeyUsers)
	a.logger.Info("user created", zap.String("userId", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Login accepts a username, email or phone number with the account password.
func (a *Accounts) Login(ctx context.Context, identifier, password string) (*Session, error) {
	u, err := a.store.Users().FindByLogin(ctx, strings.TrimSpace(identifier))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if u == nil || !CheckPassword(u.PasswordHash, password) {
		return nil, apperr.New(apperr.ErrInvalidCredentials, "Invalid username or password", http.StatusUnauthorized, nil)
	}
	return a.issue(u)
}

// DemoLogin signs in as the shared demo account of a role, creating it on first use.
func (a *Accounts) DemoLogin(ctx context.Context, role model.Role) (*Session, error) {
	if !role.IsValid() {
		return nil, apperr.Validation("Unknown role", map[string]any{"role": role})
	}
	username := model.DemoUsernamePrefix + string(role)
	u, err := a.store.Users().GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		u = &model.User{
			ID:        "user_" + uuid.NewString(),
			Username:  username,
			Name:      "Demo " + strings.ToUpper(string(role[:1])) + string(role[1:]),
			Role:      role,
			CreatedAt: a.now(),
		}
		err = a.store.Users().Create(ctx, u)
		if errors.Is(err, store.ErrDuplicate) {
			u, err = a.store.Users().GetByUsername(ctx, username)
		} else if err == nil {
			a.snapshots.MarkDirty(snapshot.KeyUsers)
		}
	}
	if err != nil {
		return nil, err
	}
	return a.issue(u)
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (a *Accounts) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := a.store.Users().GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	_, err = a.create(ctx, RegisterInput{Username: username, Password: password, Name: "Administrator", Role: model.RoleAdmin})
	if apperr.HasCode(err, apperr.ErrUsernameTaken) {
		return nil
	}
	return err
}

func (a *Accounts) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := a.store.Users().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(apperr.ErrUserNotFound, "User not found")
	}
	return u, err
}

// List returns accounts, optionally only those of role.
func (a *Accounts) List(ctx context.Context, role model.Role) ([]*model.User, error) {
	all, err := a.store.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.User, 0, len(all))
	for _, u := range all {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (a *Accounts) issue(u *model.User) (*Session, error) {
	token, expires, err := IssueAccessToken(u, a.secret, a.ttl, a.now())
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: u}, nil
}
