package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"moviesmama/internal/domain"
)

func TestUserDocument_FieldNames(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := toDocument(&domain.User{
		ID:                   "id-1",
		Name:                 "A",
		Email:                "a@x.com",
		PasswordHash:         "hash",
		NotificationSettings: map[string]bool{"email": true},
		CreatedAt:            now,
		UpdatedAt:            now,
	})

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))

	assert.Equal(t, "id-1", m["_id"])
	assert.Equal(t, "a@x.com", m["email"])
	assert.Equal(t, "hash", m["password"])
	assert.Equal(t, false, m["isVerified"])
	assert.Contains(t, m, "lastLogin")
	assert.Contains(t, m, "notificationSettings")
	assert.Contains(t, m, "createdAt")
	assert.NotContains(t, m, "resetPasswordToken")
	assert.NotContains(t, m, "resetPasswordExpire")
}

func TestUserDocument_Roundtrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	token := "tok"
	user := &domain.User{
		ID:                   "id-1",
		Name:                 "A",
		Email:                "a@x.com",
		PasswordHash:         "hash",
		IsVerified:           true,
		ResetPasswordToken:   &token,
		ResetPasswordExpire:  &now,
		LastLogin:            &now,
		NotificationSettings: map[string]bool{"email": true},
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	raw, err := bson.Marshal(toDocument(user))
	require.NoError(t, err)

	var doc userDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got := fromDocument(doc)

	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.True(t, got.IsVerified)
	require.NotNil(t, got.ResetPasswordToken)
	assert.Equal(t, token, *got.ResetPasswordToken)
	require.NotNil(t, got.LastLogin)
	assert.True(t, now.Equal(*got.LastLogin))
	assert.True(t, now.Equal(got.CreatedAt))
	assert.Equal(t, user.NotificationSettings, got.NotificationSettings)
}

func TestFromDocument_NilSettings(t *testing.T) {
	got := fromDocument(userDocument{ID: "id-1"})
	assert.NotNil(t, got.NotificationSettings)
	assert.Nil(t, got.LastLogin)
}
