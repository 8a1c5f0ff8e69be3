package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/places-api/internal/domain/entity"
	repo "github.com/oksasatya/places-api/internal/domain/repository"
	"github.com/oksasatya/places-api/internal/domain/service"
	"github.com/oksasatya/places-api/pkg/apperror"
	"github.com/oksasatya/places-api/pkg/helpers"
	"github.com/oksasatya/places-api/pkg/mailer/templates"
)

const (
	msgInvalidCredentials = "Invalid credentials, could not log you in."
	msgUserExists         = "User exists already, please login instead."
	msgAuthFailed         = "Authentication failed!"
)

// Notify holds what outgoing emails need to link back to the app.
type Notify struct {
	AppName     string
	SupportURL  string
	FrontendURL string
}

type UserService struct {
	Repo         repo.UserRepository
	JWT          *helpers.JWTManager
	Events       service.EventPublisher
	Logger       *logrus.Logger
	BcryptCost   int
	DefaultImage string
	Notify       Notify
}

func NewUserService(r repo.UserRepository, jwt *helpers.JWTManager, events service.EventPublisher, logger *logrus.Logger, bcryptCost int, defaultImage string) *UserService {
	return &UserService{
		Repo:         r,
		JWT:          jwt,
		Events:       events,
		Logger:       logger,
		BcryptCost:   bcryptCost,
		DefaultImage: defaultImage,
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Image    string
}

type AuthResult struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	UserID string
	Email  string
}

// NormalizeEmail trims and lowercases, so lookups and the unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	email := NormalizeEmail(in.Email)

	_, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return AuthResult{}, apperror.Conflict(msgUserExists)
	case !errors.Is(err, repo.ErrNotFound):
		helpers.LogError(s.Logger, "signup lookup failed", err, logrus.Fields{"email": email})
		return AuthResult{}, apperror.Internal("Signing up failed, please try again later.", err)
	}

	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return AuthResult{}, apperror.Internal("Could not create user, please try again.", err)
	}

	image := in.Image
	if image == "" {
		image = s.DefaultImage
	}
	u := &entity.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Image:        image,
		PlaceIDs:     []string{},
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return AuthResult{}, apperror.Conflict(msgUserExists)
		}
		helpers.LogError(s.Logger, "create user failed", err, logrus.Fields{"email": email})
		return AuthResult{}, apperror.Internal("Signing up failed, please try again later.", err)
	}

	res, err := s.issue(u)
	if err != nil {
		return AuthResult{}, err
	}

	s.publish(ctx, service.Event{
		Name: service.EventUserSignedUp,
		To:   u.Email,
		Data: templates.NewWelcomeData(u.Name, u.Email,
			templates.WithApp(s.Notify.AppName, s.Notify.SupportURL),
			templates.WithTime(u.CreatedAt)),
	})
	helpers.LogInfo(s.Logger, "user signed up", logrus.Fields{"user_id": u.ID})
	return res, nil
}

// Login answers with the same Unauthorized error for an unknown email and a wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AuthResult{}, apperror.Unauthorized(msgInvalidCredentials)
		}
		return AuthResult{}, apperror.Internal("Logging in failed, please try again later.", err)
	}
	ok, err := helpers.CheckPassword(u.PasswordHash, password)
	if err != nil {
		helpers.LogError(s.Logger, "password check failed", err, logrus.Fields{"user_id": u.ID})
		return AuthResult{}, apperror.Internal("Could not log you in, please check your credentials and try again.", err)
	}
	if !ok {
		return AuthResult{}, apperror.Unauthorized(msgInvalidCredentials)
	}
	return s.issue(u)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("Fetching users failed, please try again later.", err)
	}
	return users, nil
}

// Authenticate verifies a bearer token. Every failure is the same Unauthorized error.
func (s *UserService) Authenticate(token string) (Identity, error) {
	claims, err := s.JWT.VerifyToken(token)
	if err != nil {
		return Identity{}, apperror.Unauthorized(msgAuthFailed)
	}
	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

func (s *UserService) issue(u *entity.User) (AuthResult, error) {
	token, exp, err := s.JWT.IssueToken(u.ID, u.Email)
	if err != nil {
		helpers.LogError(s.Logger, "issue token failed", err, logrus.Fields{"user_id": u.ID})
		return AuthResult{}, apperror.Internal("Could not issue token, please try again later.", err)
	}
	return AuthResult{UserID: u.ID, Email: u.Email, Token: token, ExpiresAt: exp}, nil
}

func (s *UserService) publish(ctx context.Context, ev service.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		helpers.LogWarn(s.Logger, "publish event failed", err, logrus.Fields{"event": ev.Name})
	}
}
