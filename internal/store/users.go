package store

import (
	"context"
	"fmt"
	"strings"

	"fleet-records-backend/internal/model"
)

func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return translate(s.db.WithContext(ctx).Create(u).Error, ErrBadReference)
}

func (s *gormStore) UserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Take(&u, id).Error; err != nil {
		return nil, translate(err, err)
	}
	return &u, nil
}

func (s *gormStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&u).Error
	if err != nil {
		return nil, translate(err, err)
	}
	return &u, nil
}

// ListUsers returns users ordered by email; an empty role lists everyone.
func (s *gormStore) ListUsers(ctx context.Context, role string) ([]model.User, error) {
	q := s.db.WithContext(ctx).Order("email ASC")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var users []model.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
