package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/global-bites/models"
	"github.com/yeremiapane/global-bites/repositories"
	"github.com/yeremiapane/global-bites/utils"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type CreateUserInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type ProfileInput struct {
	Name            *string `json:"name"`
	Bio             *string `json:"bio"`
	Password        *string `json:"password"`
	CurrentPassword *string `json:"current_password"`
}

type AuthService struct {
	users repositories.UserRepository
	jwt   *utils.JWTManager
}

func NewAuthService(users repositories.UserRepository, jwt *utils.JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwt}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, utils.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) Logout(token string, claims *utils.CustomClaims) {
	s.jwt.Revoke(token, claims)
}

func (s *AuthService) CurrentUser(ctx context.Context, rawID string) (*models.User, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, utils.NewUnauthorized("invalid session")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.NewUnauthorized("session user no longer exists")
		}
		return nil, err
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", utils.NewInvalidInput("password must be at least %d characters", minPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (s *AuthService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := utils.ValidateLength("name", in.Name, 2, 100); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !strings.Contains(email, "@") {
		return nil, utils.NewInvalidInput("email is invalid")
	}

	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = models.RoleStaff
	}
	if role != models.RoleAdmin && role != models.RoleStaff {
		return nil, utils.NewInvalidInput("role must be admin or staff")
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hashed,
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, rawID string, in ProfileInput) (*models.User, error) {
	user, err := s.CurrentUser(ctx, rawID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		if err := utils.ValidateLength("name", *in.Name, 2, 100); err != nil {
			return nil, err
		}
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Bio != nil {
		fields["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.Password != nil {
		if in.CurrentPassword == nil ||
			bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(*in.CurrentPassword)) != nil {
			return nil, utils.NewUnauthorized("current password is incorrect")
		}
		hashed, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hashed
	}

	if err := s.users.Update(ctx, user.ID, fields); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, user.ID)
}
