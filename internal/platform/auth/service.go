package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"LIBRIS-backend/internal/platform/db"
	"LIBRIS-backend/internal/platform/textutil"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrAuthFailed    = errors.New("authentication failed")
	ErrLastAdmin     = errors.New("last super admin")
)

type Service struct {
	store  AdminStore
	secret []byte
}

func NewService(conn *sql.DB, secret []byte) *Service {
	return &Service{store: NewStore(conn), secret: secret}
}

func (s *Service) Secret() []byte { return s.secret }

// Login: email + password を検証して JWT を発行する
func (s *Service) Login(ctx context.Context, email, password string) (string, *Admin, error) {
	acct, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, err
	}
	if acct == nil {
		return "", nil, ErrAuthFailed
	}
	if acct.Status != StatusActive {
		return "", nil, ErrAuthFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthFailed
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  acct.AdminID,
		"name": acct.Name,
		"role": acct.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return tokenString, acct, nil
}

func (s *Service) GetAdmin(ctx context.Context, adminID string) (*Admin, error) {
	a, err := s.store.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *Service) ListAdmins(ctx context.Context) ([]Admin, error) {
	return s.store.List(ctx)
}

func (s *Service) CreateAdmin(ctx context.Context, name, email, password, role string) (*Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if role == "" {
		role = RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	a := &Admin{
		AdminID:      ulid.Make().String(),
		Name:         textutil.Clean(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       StatusActive,
	}
	if err := s.store.Create(ctx, a); err != nil {
		if db.IsDupKey(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) UpdateAdmin(ctx context.Context, adminID string, name, email, role, status *string) (*Admin, error) {
	a, err := s.GetAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		a.Name = textutil.Clean(*name)
	}
	if email != nil {
		a.Email = strings.ToLower(strings.TrimSpace(*email))
	}
	if role != nil {
		a.Role = *role
	}
	if status != nil {
		a.Status = *status
	}

	// SUPER_ADMIN を最後の1人から降格させない
	if a.Role != RoleSuperAdmin || a.Status != StatusActive {
		if err := s.guardLastSuperAdmin(ctx, adminID); err != nil {
			return nil, err
		}
	}

	n, err := s.store.Update(ctx, a)
	if err != nil {
		if db.IsDupKey(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *Service) DeleteAdmin(ctx context.Context, adminID string) error {
	if err := s.guardLastSuperAdmin(ctx, adminID); err != nil {
		return err
	}
	n, err := s.store.Delete(ctx, adminID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, adminID, current, next string) error {
	a, err := s.GetAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(current)); err != nil {
		return ErrAuthFailed
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	n, err := s.store.UpdatePassword(ctx, adminID, string(hash))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// guardLastSuperAdmin: adminID が最後の有効な SUPER_ADMIN なら操作を拒否
func (s *Service) guardLastSuperAdmin(ctx context.Context, adminID string) error {
	a, err := s.store.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrNotFound
	}
	if a.Role != RoleSuperAdmin || a.Status != StatusActive {
		return nil
	}
	n, err := s.store.CountByRole(ctx, RoleSuperAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}
