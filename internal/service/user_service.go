package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rafaeltorres/user-registry/internal/domain"
	"github.com/rafaeltorres/user-registry/internal/repository"
	"github.com/rafaeltorres/user-registry/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ValidationError carries the per-field failures of a create/update request.
type ValidationError struct {
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// EventSink receives user mutation events; the websocket hub implements it.
type EventSink interface {
	Publish(event domain.UserEvent)
}

type UserService struct {
	userRepo repository.UserRepository
	events   EventSink
}

func NewUserService(userRepo repository.UserRepository, events EventSink) *UserService {
	return &UserService{
		userRepo: userRepo,
		events:   events,
	}
}

type AddressInput struct {
	Street     string
	Number     string
	Complement string
	District   string
	City       string
	State      string
	PostalCode string
}

// CreateUserInput covers both API versions: v1 handlers leave Address and
// Password empty, v2 handlers require them before calling Create.
type CreateUserInput struct {
	Name        string
	Sex         string
	Email       string
	BirthDate   string
	Nationality string
	Birthplace  string
	CPF         string
	Address     *AddressInput
	Password    string
}

// UpdateUserInput deliberately has no CPF field: CPF and ID are immutable
// after creation.
type UpdateUserInput struct {
	Name        string
	Sex         string
	Email       string
	BirthDate   string
	Nationality string
	Birthplace  string
	Address     *AddressInput
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	birthDate, errs := validation.ValidateProfile(validation.ProfileFields{
		Name:        input.Name,
		Sex:         input.Sex,
		Email:       input.Email,
		BirthDate:   input.BirthDate,
		Nationality: input.Nationality,
		Birthplace:  input.Birthplace,
	})
	if err := validation.ValidateCPF(input.CPF); err != nil {
		errs = append(errs, validation.FieldError{Field: "cpf", Message: err.Error()})
	}
	if input.Address != nil {
		errs = append(errs, validation.ValidateAddress(validation.AddressFields(*input.Address))...)
	}
	if input.Password != "" {
		errs = append(errs, validation.ValidatePassword(input.Password)...)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	// Validation happens before any persistence call; an invalid CPF never
	// reaches the store.
	cpf := validation.NormalizeCPF(input.CPF)

	if exists, err := s.userRepo.EmailExists(ctx, input.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, domain.ErrEmailExists
	}
	if exists, err := s.userRepo.CPFExists(ctx, cpf); err != nil {
		return nil, err
	} else if exists {
		return nil, domain.ErrCPFExists
	}

	user := &domain.User{
		ID:          uuid.New(),
		Name:        input.Name,
		Sex:         domain.Sex(input.Sex),
		Email:       input.Email,
		BirthDate:   birthDate,
		Nationality: input.Nationality,
		Birthplace:  input.Birthplace,
		CPF:         cpf,
	}

	if input.Address != nil {
		user.Address = addressFromInput(input.Address)
	}

	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(domain.UserEventCreated, user)
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) SearchByName(ctx context.Context, name string) ([]*domain.User, error) {
	return s.userRepo.SearchByName(ctx, name)
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	birthDate, errs := validation.ValidateProfile(validation.ProfileFields{
		Name:        input.Name,
		Sex:         input.Sex,
		Email:       input.Email,
		BirthDate:   input.BirthDate,
		Nationality: input.Nationality,
		Birthplace:  input.Birthplace,
	})
	if input.Address != nil {
		errs = append(errs, validation.ValidateAddress(validation.AddressFields(*input.Address))...)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if input.Email != user.Email {
		if exists, err := s.userRepo.EmailExists(ctx, input.Email); err != nil {
			return nil, err
		} else if exists {
			return nil, domain.ErrEmailExists
		}
	}

	user.Name = input.Name
	user.Sex = domain.Sex(input.Sex)
	user.Email = input.Email
	user.BirthDate = birthDate
	user.Nationality = input.Nationality
	user.Birthplace = input.Birthplace
	if input.Address != nil {
		user.Address = addressFromInput(input.Address)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.publish(domain.UserEventUpdated, user)
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	s.publish(domain.UserEventDeleted, user)
	return nil
}

func (s *UserService) publish(eventType string, user *domain.User) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.UserEvent{
		Type:   eventType,
		UserID: user.ID,
		Name:   user.Name,
		At:     time.Now(),
	})
}

func addressFromInput(in *AddressInput) *domain.Address {
	return &domain.Address{
		Street:     in.Street,
		Number:     in.Number,
		Complement: in.Complement,
		District:   in.District,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
	}
}
