// Package auth implements account authentication: bcrypt password checks,
// HS256 JWTs, and server-side sessions for revocation. The grading engine
// never consults this package directly; the gateway middleware validates
// tokens here and passes the caller's email and role downstream.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"unirecords/internal/apperr"
	"unirecords/internal/shared"
)

// Service authenticates accounts against the accounts and sessions
// collections.
type Service struct {
	db          *mongo.Database
	config      *shared.AppConfig
	accountsCol *mongo.Collection
	sessionsCol *mongo.Collection
}

// Claims is the JWT payload: the account identity plus registered claims.
type Claims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// LoginResult carries the issued token and the authenticated account.
type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Account   shared.Account `json:"account"`
}

// NewService creates an auth Service.
func NewService(db *mongo.Database, config *shared.AppConfig) *Service {
	return &Service{
		db:          db,
		config:      config,
		accountsCol: db.Collection("accounts"),
		sessionsCol: db.Collection("sessions"),
	}
}

// Login verifies credentials and issues a JWT backed by a session document.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var account shared.Account
	err := s.accountsCol.FindOne(queryCtx, bson.M{"email": email}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.Forbidden("invalid credentials")
		}
		return nil, apperr.Internal(err, "failed to retrieve account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Forbidden("invalid credentials")
	}

	if !account.IsActive {
		return nil, apperr.Forbidden("account is inactive")
	}

	token, expiresAt, err := s.GenerateToken(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, apperr.Internal(err, "failed to generate token")
	}

	session := shared.Session{
		ID:        shared.GenerateID("sess"),
		AccountID: account.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if _, err := s.sessionsCol.InsertOne(queryCtx, session); err != nil {
		return nil, apperr.Internal(err, "failed to create session")
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// Logout removes the session for the token. Idempotent: an unknown token is
// still a successful logout.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return apperr.Validation("token is required")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.sessionsCol.DeleteMany(queryCtx, bson.M{"token": token}); err != nil {
		return apperr.Internal(err, "failed to logout")
	}
	return nil
}

// Validate checks the token signature, the session's existence, and the
// account's active flag, and returns the account it belongs to.
func (s *Service) Validate(ctx context.Context, token string) (*shared.Account, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil, apperr.Forbidden("invalid or expired token")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := s.sessionsCol.CountDocuments(queryCtx, bson.M{"token": token})
	if err != nil {
		return nil, apperr.Internal(err, "failed to check session")
	}
	if count == 0 {
		return nil, apperr.Forbidden("session expired or revoked")
	}

	var account shared.Account
	err = s.accountsCol.FindOne(queryCtx, bson.M{"_id": claims.AccountID}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.Forbidden("account not found")
		}
		return nil, apperr.Internal(err, "failed to retrieve account")
	}

	if !account.IsActive {
		return nil, apperr.Forbidden("account is inactive")
	}
	return &account, nil
}

// ChangePassword verifies the old password, stores a new hash, and revokes
// every session for the account.
func (s *Service) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if accountID == "" || oldPassword == "" || newPassword == "" {
		return apperr.Validation("all fields are required")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var account shared.Account
	err := s.accountsCol.FindOne(queryCtx, bson.M{"_id": accountID}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperr.NotFound("account not found")
		}
		return apperr.Internal(err, "failed to retrieve account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(oldPassword)); err != nil {
		return apperr.Forbidden("incorrect old password")
	}

	newHash, err := HashPassword(newPassword, s.config.Security.BCryptCost)
	if err != nil {
		return apperr.Internal(err, "failed to process password")
	}

	_, err = s.accountsCol.UpdateOne(queryCtx, bson.M{"_id": accountID}, bson.M{
		"$set": bson.M{
			"password_hash": newHash,
			"updated_at":    primitive.NewDateTimeFromTime(time.Now()),
		},
	})
	if err != nil {
		return apperr.Internal(err, "failed to update password")
	}

	// Force re-login everywhere.
	_, _ = s.sessionsCol.DeleteMany(queryCtx, bson.M{"account_id": accountID})
	return nil
}

// ============================================================================
// Token Helpers
// ============================================================================

// GenerateToken creates a signed HS256 JWT for the account.
func (s *Service) GenerateToken(accountID, email, role string) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.config.Security.JWTExpirationHours) * time.Hour)

	claims := Claims{
		AccountID: accountID,
		Email:     email,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        shared.GenerateID("jti"),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "university-records",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Security.JWTSecret))
	return signed, expiresAt, err
}

// ParseToken validates the signature and expiry and extracts the claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Security.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
