package service

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/internal/repository"
	"github.com/limbo/fittrack/pkg/entity"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo     repository.UsersRepositoryI
	verifier ProviderVerifier
}

func NewUserService(usersRepo repository.UsersRepositoryI, verifier ProviderVerifier) *UserService {
	if usersRepo == nil {
		log.Fatal("provided nil usersRepo")
	}
	return &UserService{
		repo:     usersRepo,
		verifier: verifier,
	}
}

func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (us *UserService) SignUp(ctx context.Context, req *SignUpRequest) (*entity.User, error) {
	req.Email = normalizeEmail(req.Email)
	err := validate.Struct(*req)
	if err != nil {
		if validationError, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationError {
				switch fieldErr.Field() {
				case "Email":
					return nil, errorvalues.ErrInvalidEmail
				case "Password":
					// bcrypt ignores everything past 72 bytes
					if fieldErr.Tag() == "max" {
						return nil, errorvalues.ErrPasswordTooLong
					}
					return nil, errorvalues.ErrWeakPassword
				case "DisplayName":
					return nil, errorvalues.ErrInvalidDisplayName
				}
			}
			err = errors.New("validation error: ")
			for _, fieldErr := range validationError {
				err = errors.Join(err, fieldErr)
			}
			return nil, err
		}
		return nil, errors.New("validation unexpected error: " + err.Error())
	}
	passwordHash, err := Hash(req.Password)
	if err != nil {
		return nil, errors.New("hashing password error: " + err.Error())
	}
	id, err := us.repo.Create(ctx, &entity.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		DisplayName:  req.DisplayName,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrEmailInUse) {
			return nil, err
		}
		return nil, errors.New("repository creating error: " + err.Error())
	}
	return us.GetByID(ctx, id)
}

func (us *UserService) SignIn(ctx context.Context, email, password string) (*entity.User, error) {
	email = normalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, errorvalues.ErrInvalidEmail
	}
	user, err := us.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUnknownUser) {
			return nil, err
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	if !user.HasPassword() {
		return nil, errorvalues.ErrPasswordNotSet
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errorvalues.ErrWrongPassword
	}
	return user, nil
}

// SocialSignIn resolves the provider identity to a user in this order: existing link,
// existing account with the same verified email (the identity gets linked to it),
// brand new account.
func (us *UserService) SocialSignIn(ctx context.Context, provider, idToken string) (*entity.User, error) {
	if us.verifier == nil {
		return nil, errorvalues.ErrUnknownProvider
	}
	claims, err := us.verifier.Verify(ctx, provider, idToken)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUnknownProvider) || errors.Is(err, errorvalues.ErrInvalidProviderToken) {
			return nil, err
		}
		return nil, errors.New("verifying provider token error: " + err.Error())
	}
	user, err := us.findByIdentity(ctx, provider, claims.Subject)
	if err == nil || !errors.Is(err, errorvalues.ErrUnknownUser) {
		return user, err
	}

	email := normalizeEmail(claims.Email)
	if err = validate.Var(email, "required,email"); err != nil {
		return nil, errorvalues.ErrInvalidEmail
	}
	if claims.EmailVerified {
		user, err = us.repo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			err = us.repo.LinkIdentity(ctx, entity.Identity{Provider: provider, Subject: claims.Subject, UserID: user.ID})
			if err != nil {
				if errors.Is(err, errorvalues.ErrIdentityLinked) {
					return nil, err
				}
				return nil, errors.New("repository linking error: " + err.Error())
			}
			return user, nil
		case !errors.Is(err, errorvalues.ErrUnknownUser):
			return nil, errors.New("repository searching error: " + err.Error())
		}
	}

	id, err := us.repo.CreateWithIdentity(ctx, &entity.User{
		Email:       email,
		DisplayName: claims.Name,
	}, entity.Identity{Provider: provider, Subject: claims.Subject})
	if err != nil {
		switch {
		// Concurrent first sign-in with the same identity won the race
		case errors.Is(err, errorvalues.ErrIdentityLinked):
			return us.findByIdentity(ctx, provider, claims.Subject)
		// The users insert fails on the email first, so the race mostly surfaces here
		case errors.Is(err, errorvalues.ErrEmailInUse):
			user, findErr := us.findByIdentity(ctx, provider, claims.Subject)
			if findErr == nil {
				return user, nil
			}
			if errors.Is(findErr, errorvalues.ErrUnknownUser) {
				return nil, err
			}
			return nil, findErr
		}
		return nil, errors.New("repository creating error: " + err.Error())
	}
	return us.GetByID(ctx, id)
}

func (us *UserService) findByIdentity(ctx context.Context, provider, subject string) (*entity.User, error) {
	user, err := us.repo.FindByIdentity(ctx, provider, subject)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUnknownUser) {
			return nil, err
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	return user, nil
}

func (us *UserService) GetByID(ctx context.Context, uid uuid.UUID) (*entity.User, error) {
	user, err := us.repo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUnknownUser) {
			return nil, err
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	return user, nil
}

func (us *UserService) UpdateProfile(ctx context.Context, uid uuid.UUID, req *ProfileUpdateRequest) (*entity.User, error) {
	if err := validate.Struct(*req); err != nil {
		if validationError, ok := err.(validator.ValidationErrors); ok {
			err = errorvalues.ErrInvalidProfile
			for _, fieldErr := range validationError {
				err = errors.Join(err, fieldErr)
			}
			return nil, err
		}
		return nil, errors.New("validation unexpected error: " + err.Error())
	}
	user, err := us.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	user.DisplayName = req.DisplayName
	user.Phone = req.Phone
	user.WeightKg = req.WeightKg
	user.HeightCm = req.HeightCm
	user.AvatarURI = req.AvatarURI
	if err = us.repo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, errorvalues.ErrUnknownUser) {
			return nil, err
		}
		return nil, errors.New("repository updating error: " + err.Error())
	}
	return us.GetByID(ctx, uid)
}
