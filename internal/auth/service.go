package auth

import (
	"context"
	"fmt"
	"strings"
)

// MaxRequestedRoles caps how many role names a registration may ask for.
const MaxRequestedRoles = 3

const (
	loginMessage    = "user logged in successfully"
	registerMessage = "user created successfully"
)

// AuthResponse is the envelope returned by login and registration.
type AuthResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	JWT      string `json:"jwt"`
	Status   bool   `json:"status"`
}

// Service orchestrates credential verification, user registration and token
// issuance. It holds no mutable state; every request runs independently.
type Service struct {
	store  Store
	hasher PasswordHasher
	codec  *Codec
}

// ServiceOption configures Service construction.
type ServiceOption func(*Service)

// WithHasher overrides the password hasher (tests swap in a cheap one).
func WithHasher(h PasswordHasher) ServiceOption {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// NewService constructs the authentication service.
func NewService(store Store, codec *Codec, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("auth: store is required")
	}
	if codec == nil {
		return nil, fmt.Errorf("auth: token codec is required")
	}
	s := &Service{
		store:  store,
		hasher: BcryptHasher{},
		codec:  codec,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Authenticate verifies a username/password pair and returns the principal
// with its derived authority set. It performs no writes and issues no token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Principal{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		return Principal{}, err
	}
	if err := checkAccountState(user); err != nil {
		return Principal{}, err
	}
	if !s.hasher.Matches(password, user.PasswordHash) {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{
		Username:    user.Username,
		Authorities: Authorities(user.Roles),
	}, nil
}

// Login authenticates credentials and issues an access token.
func (s *Service) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	principal, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	token, err := s.codec.Issue(principal)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Username: principal.Username,
		Message:  loginMessage,
		JWT:      token,
		Status:   true,
	}, nil
}

// Register creates a new enabled user with the resolvable subset of the
// requested roles, then issues a token exactly as Login does. Role names
// that do not exist are dropped; only a fully unresolvable request fails.
func (s *Service) Register(ctx context.Context, username, password string, roleNames []string) (*AuthResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	names := dedupeNames(roleNames)
	if len(names) > MaxRequestedRoles {
		return nil, fmt.Errorf("%w: at most %d roles may be requested", ErrInvalidInput, MaxRequestedRoles)
	}
	roles, err := s.store.FindRolesByNameIn(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, ErrUnknownRole
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &User{
		Username:              username,
		PasswordHash:          hash,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
		Roles:                 roles,
	}
	saved, err := s.store.SaveUser(ctx, user)
	if err != nil {
		return nil, err
	}
	principal := Principal{
		Username:    saved.Username,
		Authorities: Authorities(saved.Roles),
	}
	token, err := s.codec.Issue(principal)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Username: saved.Username,
		Message:  registerMessage,
		JWT:      token,
		Status:   true,
	}, nil
}

func checkAccountState(user *User) error {
	switch {
	case !user.Enabled:
		return ErrAccountDisabled
	case !user.AccountNonLocked:
		return ErrAccountLocked
	case !user.AccountNonExpired:
		return ErrAccountExpired
	case !user.CredentialsNonExpired:
		return ErrCredentialsExpired
	}
	return nil
}

func dedupeNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
