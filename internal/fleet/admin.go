package fleet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fleet-records-backend/internal/access"
	"fleet-records-backend/internal/auth"
	"fleet-records-backend/internal/model"
	"fleet-records-backend/internal/store"
)

// Lookups is one reference table with its rows.
type Lookups struct {
	Kind  string            `json:"kind"`
	Title string            `json:"title"`
	Rows  []model.Directory `json:"rows"`
}

// UserView is a user as shown to managers.
type UserView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func kindOf(slug string) (store.Kind, error) {
	k, ok := store.KindOf(slug)
	if !ok {
		return store.Kind{}, ErrNotFound
	}
	return k, nil
}

// ListLookups returns a reference table. Any authenticated actor may read
// them since every form needs them.
func (s *Service) ListLookups(ctx context.Context, actor access.Actor, slug string) (*Lookups, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	k, err := kindOf(slug)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListLookups(ctx, k)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.Directory{}
	}
	return &Lookups{Kind: k.Slug, Title: k.Title, Rows: rows}, nil
}

// CreateLookup adds a reference row.
func (s *Service) CreateLookup(ctx context.Context, actor access.Actor, slug string, in LookupInput) (*model.Directory, error) {
	if err := s.requireManager(actor); err != nil {
		return nil, err
	}
	k, err := kindOf(slug)
	if err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}
	d := &model.Directory{Name: in.Name, Description: in.Description}
	if err := s.store.CreateLookup(ctx, k, d); err != nil {
		return nil, storeError(err, k.Title)
	}
	return d, nil
}

// UpdateLookup renames or redescribes a reference row.
func (s *Service) UpdateLookup(ctx context.Context, actor access.Actor, slug string, id int64, in LookupInput) (*model.Directory, error) {
	if err := s.requireManager(actor); err != nil {
		return nil, err
	}
	k, err := kindOf(slug)
	if err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}
	d := &model.Directory{ID: id, Name: in.Name, Description: in.Description}
	if err := s.store.UpdateLookup(ctx, k, d); err != nil {
		return nil, storeError(err, k.Title)
	}
	return d, nil
}

// DeleteLookup removes a reference row that nothing points at.
func (s *Service) DeleteLookup(ctx context.Context, actor access.Actor, slug string, id int64) error {
	if err := s.requireManager(actor); err != nil {
		return err
	}
	k, err := kindOf(slug)
	if err != nil {
		return err
	}
	return storeError(s.store.DeleteLookup(ctx, k, id), fmt.Sprintf("%s %d", k.Title, id))
}

// CreateUser opens an account.
func (s *Service) CreateUser(ctx context.Context, actor access.Actor, in UserInput) (*UserView, error) {
	if err := s.requireManager(actor); err != nil {
		return nil, err
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate(in); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{Email: in.Email, PasswordHash: hash, Role: in.Role}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, storeError(err, "user "+u.Email)
	}
	return &UserView{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}

// ListUsers lists accounts, optionally of a single role.
func (s *Service) ListUsers(ctx context.Context, actor access.Actor, role string) ([]UserView, error) {
	if err := s.requireManager(actor); err != nil {
		return nil, err
	}
	if role != "" && access.ParseRole(role) == access.RoleNone {
		return nil, invalid("role", "must be one of: manager client service_company")
	}
	users, err := s.store.ListUsers(ctx, role)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, len(users))
	for i, u := range users {
		out[i] = UserView{ID: u.ID, Email: u.Email, Role: u.Role}
	}
	return out, nil
}

// Login checks credentials. Unknown emails and wrong passwords fail the
// same way.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.store.UserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, auth.ErrInvalidCredentials
	case err != nil:
		return nil, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}
	return u, nil
}

// ActorByID resolves the identity behind a verified token. A user deleted
// since the token was issued is unauthenticated.
func (s *Service) ActorByID(ctx context.Context, id int64) (access.Actor, error) {
	u, err := s.store.UserByID(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return access.Actor{}, ErrUnauthenticated
	case err != nil:
		return access.Actor{}, err
	}
	return access.ActorFor(u), nil
}
