package users_test

import (
	"testing"
	"time"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/elousi1010/quanlyveso-sub000/token"
	"github.com/elousi1010/quanlyveso-sub000/users"
	fakeuserrepo "github.com/elousi1010/quanlyveso-sub000/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "national", raw: "0901234567", want: "0901234567"},
		{name: "separators", raw: " 090.123-4567 ", want: "0901234567"},
		{name: "plus country code", raw: "+84 901 234 567", want: "0901234567"},
		{name: "bare country code", raw: "84901234567", want: "0901234567"},
		{name: "too short", raw: "090123", wantErr: true},
		{name: "no leading zero", raw: "1901234567", wantErr: true},
		{name: "letters", raw: "09012345ab", wantErr: true},
		{name: "plus in the middle", raw: "090+1234567", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := users.NormalizePhoneNumber(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, apperrors.ErrInvalidPhoneNumber)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, users.ValidatePasswordStrength("matkhau123"))
	require.Error(t, users.ValidatePasswordStrength("ab1"))
	require.Error(t, users.ValidatePasswordStrength("12345678"))
	require.Error(t, users.ValidatePasswordStrength("abcdefgh"))
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("matkhau123")
	require.NoError(t, err)
	require.NotEqual(t, "matkhau123", hash)

	u := &users.User{PasswordHash: hash}
	require.True(t, u.CheckPassword("matkhau123"))
	require.False(t, u.CheckPassword("matkhau124"))
}

func TestEffectivePermission(t *testing.T) {
	u := &users.User{Role: token.RoleSeller}
	perm := u.EffectivePermission()
	require.Equal(t, "seller", perm.Code)
	require.True(t, perm.Can(users.ResourceTransactions, token.ActionCreate))
	require.False(t, perm.Can(users.ResourceTickets, token.ActionUpdate))

	u.Permission = &token.Permission{Code: "custom", Actions: map[string]int{users.ResourceReports: int(token.ActionRead)}}
	require.Equal(t, "custom", u.EffectivePermission().Code)

	require.Nil(t, users.DefaultPermission(token.Role("guest")))
	require.True(t, users.DefaultPermission(token.RoleAdmin).Can(users.ResourceOrganizations, token.ActionDelete))
}

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()

	alice := &users.User{Name: "Alice", PhoneNumber: "0901234567", Role: token.RoleAgent}
	require.NoError(t, repo.Upsert(alice))
	require.NotEmpty(t, alice.ID)

	got, err := repo.GetByPhoneNumber("0901234567")
	require.NoError(t, err)
	require.Equal(t, "Alice", got.Name)

	got.Name = "changed"
	again, err := repo.GetByID(alice.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice", again.Name, "returned users are copies")

	err = repo.Upsert(&users.User{Name: "Bob", PhoneNumber: "0901234567"})
	require.ErrorIs(t, err, apperrors.ErrPhoneNumberTaken)

	require.NoError(t, repo.SetBlocked("0901234567", true))
	at := time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)
	require.NoError(t, repo.SetLastLogin("0901234567", at))
	got, err = repo.GetByID(alice.ID)
	require.NoError(t, err)
	require.True(t, got.Blocked)
	require.Equal(t, at, got.LastLogin)

	_, err = repo.GetByPhoneNumber("0999999999")
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	require.ErrorIs(t, repo.SetBlocked("0999999999", true), apperrors.ErrUserNotFound)
}
