package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	companyrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/company"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"github.com/pulseboard/pulseboard-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	CompanyName string `json:"company_name"`
	Timezone    string `json:"timezone"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type AuthResult struct {
	Token   string         `json:"token"`
	Profile *types.Profile `json:"profile"`
}

type authClaims struct {
	ProfileID string `json:"profile_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles signup, login, and bearer-token verification. Signup
// bootstraps a company with its owner profile in one transaction.
type AuthService interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ParseToken(tokenString string) (*ctxutil.RequestData, error)
}

type authService struct {
	db          *gorm.DB
	companyRepo companyrepos.CompanyRepo
	profileRepo companyrepos.ProfileRepo
	secret      []byte
	tokenTTL    time.Duration
	log         *logger.Logger
}

func NewAuthService(
	db *gorm.DB,
	companyRepo companyrepos.CompanyRepo,
	profileRepo companyrepos.ProfileRepo,
	baseLog *logger.Logger,
) AuthService {
	svcLog := baseLog.With("service", "AuthService")
	secret := utils.GetEnv("JWT_SECRET_KEY", "dev-secret-change-me", svcLog)
	ttlMinutes := utils.GetEnvAsInt("ACCESS_TOKEN_TTL_MIN", 1440, svcLog)
	return &authService{
		db:          db,
		companyRepo: companyRepo,
		profileRepo: profileRepo,
		secret:      []byte(secret),
		tokenTTL:    time.Duration(ttlMinutes) * time.Minute,
		log:         svcLog,
	}
}

func (as *authService) Register(ctx context.Context, input *RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, fmt.Errorf("Email and password are required.")
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		return nil, fmt.Errorf("Company name is required.")
	}

	exists, err := as.profileRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if exists {
		return nil, fmt.Errorf("An account with this email already exists.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var profile *types.Profile
	err = as.db.Transaction(func(tx *gorm.DB) error {
		company := &types.Company{
			Name:     strings.TrimSpace(input.CompanyName),
			Timezone: defaultString(input.Timezone, "UTC"),
		}
		if _, cerr := as.companyRepo.Create(ctx, tx, company); cerr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(cerr))
		}

		p := &types.Profile{
			CompanyID: company.ID,
			Email:     email,
			Password:  string(hashed),
			FullName:  strings.TrimSpace(input.FullName),
			Role:      types.RoleOwner,
			IsActive:  true,
		}
		if _, perr := as.profileRepo.Create(ctx, tx, p); perr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(perr))
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := as.issueToken(profile)
	if err != nil {
		return nil, err
	}
	as.log.Info("company registered",
		"company_id", profile.CompanyID,
		"profile_id", profile.ID,
	)
	return &AuthResult{Token: token, Profile: profile}, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	profile, err := as.profileRepo.GetByEmail(ctx, nil, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if profile == nil || !profile.IsActive {
		return nil, pkgerrors.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(password)) != nil {
		return nil, pkgerrors.ErrUnauthorized
	}

	token, err := as.issueToken(profile)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Profile: profile}, nil
}

func (as *authService) issueToken(profile *types.Profile) (string, error) {
	now := time.Now()
	claims := authClaims{
		ProfileID: profile.ID.String(),
		CompanyID: profile.CompanyID.String(),
		Role:      profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secret)
}

func (as *authService) ParseToken(tokenString string) (*ctxutil.RequestData, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return as.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, pkgerrors.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*authClaims)
	if !ok {
		return nil, pkgerrors.ErrUnauthorized
	}
	profileID, err := uuid.Parse(claims.ProfileID)
	if err != nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	companyID, err := uuid.Parse(claims.CompanyID)
	if err != nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	return &ctxutil.RequestData{
		ProfileID: profileID,
		CompanyID: companyID,
		Role:      claims.Role,
	}, nil
}
