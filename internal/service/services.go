package service

import (
	"github.com/rafaeltorres/user-registry/internal/config"
	"github.com/rafaeltorres/user-registry/internal/repository"
)

type Services struct {
	Auth *AuthService
	User *UserService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, events EventSink) *Services {
	return &Services{
		Auth: NewAuthService(repos.User, cfg),
		User: NewUserService(repos.User, events),
	}
}
