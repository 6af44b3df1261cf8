package services

import (
	"testing"

	"github.com/abhilash-IITm/car-parking/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMember(t *testing.T) {
	setupTestDB(t)

	member := &models.Member{
		FullName: "Alice Chen",
		Username: "alice",
		Password: "secret123",
		Role:     models.RoleUser,
	}
	require.NoError(t, RegisterMember(member))
	assert.NotZero(t, member.MemberID)
	assert.NotEqual(t, "secret123", member.Password, "password must be stored hashed")

	// username 重複
	dup := &models.Member{FullName: "Other", Username: "alice", Password: "secret123", Role: models.RoleUser}
	assert.Error(t, RegisterMember(dup))

	// 不認識的角色
	bad := &models.Member{FullName: "Bad", Username: "bob", Password: "secret123", Role: "superuser"}
	assert.Error(t, RegisterMember(bad))
}

func TestLoginMember(t *testing.T) {
	setupTestDB(t)

	member := &models.Member{FullName: "Alice Chen", Username: "alice", Password: "secret123", Role: models.RoleUser}
	require.NoError(t, RegisterMember(member))

	got, err := LoginMember("alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, member.MemberID, got.MemberID)

	_, err = LoginMember("alice", "wrongpass")
	assert.Error(t, err)

	_, err = LoginMember("nobody", "secret123")
	assert.Error(t, err)
}

func TestGetMemberByID(t *testing.T) {
	setupTestDB(t)

	member := createTestMember(t, "alice")

	got, err := GetMemberByID(member.MemberID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)

	got, err = GetMemberByID(404)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetAllMembers(t *testing.T) {
	setupTestDB(t)

	createTestMember(t, "alice")
	createTestMember(t, "bob")

	members, err := GetAllMembers()
	require.NoError(t, err)
	assert.Len(t, members, 2)
}
