package accounts

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/aula-lms/aula-lms/internal/platform/httpx"
	"github.com/aula-lms/aula-lms/internal/shared"
)

// TokenIssuer signs session claims into a bearer token.
type TokenIssuer interface {
	Encode(sess shared.Session) (string, error)
}

// Service wraps registration and login business rules.
type Service struct {
	repo   Repository
	issuer TokenIssuer
}

// NewService constructs a Service.
func NewService(repo Repository, issuer TokenIssuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

// Register performs the self-service student signup and returns the new
// account id with a freshly issued token.
func (s *Service) Register(ctx context.Context, email, password, name string, contactInfo *string) (int64, string, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return 0, "", err
	}
	if existing != nil {
		return 0, "", httpx.Fail(httpx.ErrDuplicate, "There is already a user with that email!")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", err
	}

	id, err := s.repo.Create(ctx, NewAccount{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         shared.RoleStudent,
		ContactInfo:  contactInfo,
	})
	if err != nil {
		return 0, "", err
	}

	tok, err := s.issuer.Encode(shared.Session{AccountID: id, Name: name, Email: email, Role: shared.RoleStudent})
	if err != nil {
		return 0, "", err
	}
	return id, tok, nil
}

// Login validates credentials and issues a token. The caller learns only
// that the credentials were invalid, never which part.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if acc == nil {
		return "", httpx.Fail(httpx.ErrValidation, "Invalid credentials!")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return "", httpx.Fail(httpx.ErrValidation, "Invalid credentials!")
	}

	return s.issuer.Encode(shared.Session{
		AccountID: acc.ID,
		Name:      acc.Name,
		Email:     acc.Email,
		Role:      acc.Role,
	})
}

// CreateAccount is the admin-issued account creation for staff (and,
// rarely, students registered on someone's behalf).
func (s *Service) CreateAccount(ctx context.Context, acc NewAccount, password string) (int64, error) {
	if !acc.Role.Valid() {
		return 0, httpx.Fail(httpx.ErrValidation, "Unknown account type!")
	}
	existing, err := s.repo.FindByEmail(ctx, acc.Email)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, httpx.Fail(httpx.ErrDuplicate, "There is already a user with that email!")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	acc.PasswordHash = string(hash)

	return s.repo.Create(ctx, acc)
}
