package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"traffic-monitor/internal/domain/admin"
	"traffic-monitor/internal/repository"
)

type AdminStore interface {
	Create(ctx context.Context, row *repository.AdminRow) error
	FindByCenterID(ctx context.Context, centerID string) (*repository.AdminRow, error)
	List(ctx context.Context) ([]repository.AdminRow, error)
}

// AdminClaims is the JWT body handed to a center operator on login.
type AdminClaims struct {
	CenterID string `json:"center_id"`
	jwt.RegisteredClaims
}

type AdminService struct {
	store      AdminStore
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
	log        zerolog.Logger
}

func NewAdminService(store AdminStore, secret string, tokenTTL time.Duration, bcryptCost int, log zerolog.Logger) *AdminService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AdminService{
		store:      store,
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
		log:        log.With().Str("component", "admin").Logger(),
	}
}

func (s *AdminService) Register(ctx context.Context, payload admin.RegisterPayload) (*admin.Admin, error) {
	centerID := strings.TrimSpace(payload.CenterID)
	if centerID == "" {
		return nil, fmt.Errorf("%w: center_id is required", ErrInvalidInput)
	}
	if payload.Lat == nil || payload.Lng == nil {
		return nil, fmt.Errorf("%w: lat and lng are required", ErrInvalidInput)
	}
	if len(payload.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	existing, err := s.store.FindByCenterID(ctx, centerID)
	if err != nil {
		s.log.Error().Err(err).Str("center_id", centerID).Msg("failed to look up admin")
		return nil, storeError("look up admin", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: admin for center %s", ErrConflict, centerID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	row := &repository.AdminRow{
		CenterID:     centerID,
		PasswordHash: string(hash),
		Latitude:     *payload.Lat,
		Longitude:    *payload.Lng,
		CenterName:   strings.TrimSpace(payload.CenterName),
		CreatedAt:    s.now(),
	}
	if err := s.store.Create(ctx, row); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: admin for center %s", ErrConflict, centerID)
		}
		s.log.Error().Err(err).Str("center_id", centerID).Msg("failed to create admin")
		return nil, storeError("create admin", err)
	}

	s.log.Info().
		Int64("admin_id", row.ID).
		Str("center_id", centerID).
		Msg("admin registered")

	a := row.ToDomain()
	return &a, nil
}

// Login checks the password and issues a signed token. Unknown centers and
// wrong passwords fail the same way.
func (s *AdminService) Login(ctx context.Context, payload admin.LoginPayload) (*admin.Session, error) {
	centerID := strings.TrimSpace(payload.CenterID)

	row, err := s.store.FindByCenterID(ctx, centerID)
	if err != nil {
		s.log.Error().Err(err).Str("center_id", centerID).Msg("failed to look up admin")
		return nil, storeError("look up admin", err)
	}
	if row == nil {
		s.log.Warn().Str("center_id", centerID).Msg("login for unknown center")
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(payload.Password)); err != nil {
		s.log.Warn().Str("center_id", centerID).Msg("login with wrong password")
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	now := s.now()
	expires := now.Add(s.tokenTTL)
	claims := AdminClaims{
		CenterID: row.CenterID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   row.CenterID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info().Str("center_id", row.CenterID).Msg("admin logged in")
	return &admin.Session{Token: token, CenterID: row.CenterID, ExpiresAt: expires}, nil
}

func (s *AdminService) ParseToken(token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	if claims.CenterID == "" {
		return nil, fmt.Errorf("%w: token has no center", ErrUnauthorized)
	}
	return claims, nil
}

func (s *AdminService) List(ctx context.Context) ([]admin.Admin, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list admins")
		return nil, storeError("list admins", err)
	}
	result := make([]admin.Admin, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.ToDomain())
	}
	return result, nil
}

func (s *AdminService) Get(ctx context.Context, centerID string) (*admin.Admin, error) {
	row, err := s.store.FindByCenterID(ctx, centerID)
	if err != nil {
		s.log.Error().Err(err).Str("center_id", centerID).Msg("failed to look up admin")
		return nil, storeError("look up admin", err)
	}
	if row == nil {
		return nil, fmt.Errorf("%w: admin for center %s", ErrNotFound, centerID)
	}
	a := row.ToDomain()
	return &a, nil
}
