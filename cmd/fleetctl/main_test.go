package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-records-backend/internal/auth"
	"fleet-records-backend/internal/db/dbtest"
	"fleet-records-backend/internal/model"
	"fleet-records-backend/internal/store"
)

func run(t *testing.T, s store.Store, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmdWith(func(string) (store.Store, func(), error) {
		return s, func() {}, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeed(t *testing.T) {
	s := store.NewGormStore(dbtest.New(t))

	out, err := run(t, s, "seed", "../../internal/seed/testdata/fixture.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "lookups 5, users 3, machines 2, maintenance 1, claims 1")

	out, err = run(t, s, "lookups", "list", "machine_models")
	require.NoError(t, err)
	assert.Contains(t, out, "PD5")
	assert.Contains(t, out, "PD8")

	_, err = run(t, s, "lookups", "list", "colours")
	assert.ErrorContains(t, err, `unknown lookup table "colours"`)
}

func TestUsersAdd(t *testing.T) {
	s := store.NewGormStore(dbtest.New(t))

	_, err := run(t, s, "users", "add", "--email", "boss@example.com", "--password", "boss-password")
	require.NoError(t, err)

	u, err := s.UserByEmail(context.Background(), "boss@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, u.Role)
	assert.NoError(t, auth.CheckPassword(u.PasswordHash, "boss-password"))

	_, err = run(t, s, "users", "add", "--email", "x@example.com", "--password", "long-enough", "--role", "admin")
	assert.ErrorContains(t, err, "fixture does not match schema")

	out, err := run(t, s, "users", "list", "--role", "manager")
	require.NoError(t, err)
	assert.Contains(t, out, "boss@example.com")
}
