package service

import (
	"github.com/gisoinvest/auth-service/internal/config"
	"github.com/gisoinvest/auth-service/internal/repository"
)

type Services struct {
	Auth     *AuthService
	Sessions *SessionService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	sessions := NewSessionService(repos.Session, cfg)
	return &Services{
		Auth:     NewAuthService(repos.User, sessions),
		Sessions: sessions,
	}
}
