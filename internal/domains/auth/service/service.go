package service

import (
	"context"
	"fmt"
	"rosariello/config"
	"rosariello/infras/jwt"
	"rosariello/infras/otel"
	"rosariello/internal/domains/auth/model/dto"
	userModel "rosariello/internal/domains/user/model"
	userRepo "rosariello/internal/domains/user/repository"
	"rosariello/shared"
	"rosariello/shared/constant"
	gDto "rosariello/shared/dto"
	"rosariello/shared/failure"
	gModel "rosariello/shared/model"
	"rosariello/shared/password"
	"rosariello/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Auth interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
	EnsureAdmin(ctx context.Context) error
}

type serviceImpl struct {
	userRepo   userRepo.User
	cfg        *config.Config
	otel       otel.Otel
	jwtService jwt.JWT
}

func New(userRepo userRepo.User, cfg *config.Config, otel otel.Otel, jwt jwt.JWT) Auth {
	s := &serviceImpl{
		userRepo:   userRepo,
		cfg:        cfg,
		otel:       otel,
		jwtService: jwt,
	}

	if err := s.EnsureAdmin(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to ensure admin account")
	}

	return s
}

// EnsureAdmin seeds the configured admin account if it does not exist yet.
// There is no registration endpoint, the admin is the only account and it
// comes from configuration.
func (s *serviceImpl) EnsureAdmin(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".EnsureAdmin")
	defer scope.End()
	defer scope.TraceIfError(err)

	if s.cfg.Admin.Email == constant.Empty || s.cfg.Admin.Password == constant.Empty {
		log.Warn().Msg("no admin credentials configured, skipping admin account seeding")

		return nil
	}

	exists, err := s.userRepo.Exist(ctx, emailFilter(s.cfg.Admin.Email))
	if err != nil {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	if exists {
		return nil
	}

	hashedPassword, err := password.Hash(s.cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := userModel.User{
		ID:       uuid.NewString(),
		Email:    s.cfg.Admin.Email,
		Password: hashedPassword,
		Role:     constant.RoleAdmin,
		Active:   true,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  constant.RoleAdmin,
			ModifiedBy: constant.RoleAdmin,
		},
	}

	if err = s.userRepo.Insert(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	log.Info().Str("email", s.cfg.Admin.Email).Msg("admin account created")

	return nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := emailFilter(req.Email)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil || user.ID == constant.Empty {
		log.Warn().Str("email", req.Email).Msg("login attempt with non-existent email")

		return res, failure.BadRequestFromString("invalid email or password") // nolint:wrapcheck
	}

	if err := password.Verify(req.Password, user.Password); err != nil {
		log.Warn().Str("email", req.Email).Msg("login attempt with wrong password")

		return res, failure.BadRequestFromString("invalid email or password") // nolint:wrapcheck
	}

	if !user.Active {
		return res, failure.BadRequestFromString("user account is deactivated") // nolint:wrapcheck
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	lastLogin := dto.UpdateLastLoginRequest{LastLogin: timezone.Now()}
	updatedFields := shared.TransformFields(lastLogin, user.ID)

	if err := s.userRepo.Update(ctx, updatedFields, filter); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")

		return res, fmt.Errorf("failed to update last login: %w", err)
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer scope.TraceIfError(err)

	tokenPair, err := s.jwtService.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token") // nolint:wrapcheck
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func emailFilter(email string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    userModel.FieldEmail,
				Operator: gDto.FilterOperatorEq,
				Value:    email,
				Table:    userModel.TableName,
			},
		},
	}
}
