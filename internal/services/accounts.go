package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/utils"
)

// Session is what signup and signin hand back to the client.
type Session struct {
	AccessToken string `json:"access_token"`
	ProfileImg  string `json:"profile_img"`
	Username    string `json:"username"`
	Fullname    string `json:"fullname"`
}

type AccountService struct {
	Deps
	signer *auth.Signer
	cost   int
}

func NewAccountService(d Deps, signer *auth.Signer) *AccountService {
	return &AccountService{Deps: d.withDefaults(), signer: signer, cost: bcrypt.DefaultCost}
}

func (s *AccountService) Signup(ctx context.Context, fullname, email, password string) (Session, error) {
	fullname = strings.TrimSpace(fullname)
	email = strings.ToLower(strings.TrimSpace(email))
	if len(fullname) < 3 {
		return Session{}, apperr.Validation("Fullname must be at least 3 letters long")
	}
	if email == "" {
		return Session{}, apperr.Validation("Enter Email")
	}
	if !utils.ValidEmail(email) {
		return Session{}, apperr.Validation("Email is invalid")
	}
	if !utils.ValidPassword(password) {
		return Session{}, apperr.Validation("Password should be 6 to 20 characters long with a numeric, 1 lowercase and 1 uppercase letters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Session{}, apperr.Storage(err)
	}
	username, err := s.freeUsername(ctx, email)
	if err != nil {
		return Session{}, err
	}

	u := models.User{
		ID:         s.NewID(),
		Fullname:   fullname,
		Username:   username,
		Email:      email,
		Password:   string(hash),
		ProfileImg: utils.DefaultProfileImg(),
		CreatedAt:  s.now(),
	}
	if err := s.Store.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Session{}, apperr.Validation("Email already exists")
		}
		return Session{}, apperr.Storage(err)
	}
	return s.session(u)
}

// freeUsername appends a random suffix when the email's handle is taken.
func (s *AccountService) freeUsername(ctx context.Context, email string) (string, error) {
	base := utils.UsernameFromEmail(email)
	if base == "" {
		base = "user"
	}
	candidate := base
	for range 5 {
		_, err := s.Store.UserByUsername(ctx, candidate)
		if errors.Is(err, repository.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", apperr.Storage(err)
		}
		candidate = base + utils.RandomString(5)
	}
	return candidate, nil
}

func (s *AccountService) Signin(ctx context.Context, email, password string) (Session, error) {
	u, err := s.Store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, apperr.Validation("Email not found")
	}
	if err != nil {
		return Session{}, apperr.Storage(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return Session{}, apperr.Validation("Incorrect password")
	}
	return s.session(u)
}

func (s *AccountService) session(u models.User) (Session, error) {
	tok, err := s.signer.Sign(u.ID, u.Admin)
	if err != nil {
		return Session{}, apperr.Storage(err)
	}
	return Session{AccessToken: tok, ProfileImg: u.ProfileImg, Username: u.Username, Fullname: u.Fullname}, nil
}
