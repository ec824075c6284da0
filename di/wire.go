//go:build wireinject
// +build wireinject

package di

import (
	"rosariello/config"
	"rosariello/infras/jwt"
	"rosariello/infras/otel"
	"rosariello/infras/postgres"
	"rosariello/infras/redis"
	"rosariello/shared/cache"
	"rosariello/transport/http"
	"rosariello/transport/http/middleware"
	"rosariello/transport/http/router"

	bookingRepository "rosariello/internal/domains/booking/repository"
	bookingService "rosariello/internal/domains/booking/service"
	bookingHandler "rosariello/internal/handlers/booking"

	authService "rosariello/internal/domains/auth/service"
	userRepository "rosariello/internal/domains/user/repository"
	authHandler "rosariello/internal/handlers/auth"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var authDomain = wire.NewSet(
	userRepository.New,
	authService.New,
)

var domains = wire.NewSet(
	bookingDomain,
	authDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	authHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
