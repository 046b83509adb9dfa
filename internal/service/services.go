package service

import (
	"github.com/marcus/code-playground/internal/config"
	"github.com/marcus/code-playground/internal/repository"
)

type Services struct {
	Auth      *AuthService
	Admission *AdmissionService
	Profile   *ProfileService
}

func NewServices(repos *repository.Repositories, exchanger IdentityExchanger, cfg *config.Config) *Services {
	return &Services{
		Auth:      NewAuthService(exchanger, repos.User, repos.Admission, cfg),
		Admission: NewAdmissionService(repos.Admission),
		Profile:   NewProfileService(repos.User),
	}
}
