package models_test

import (
	"penpal/backend/internal/models"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestUserBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestUserBeforeCreate_GeneratesUUID(t *testing.T) {
	// Arrange
	user := &models.User{Username: "alice", Email: "alice@example.com"}
	assert.Empty(t, user.ID, "User ID should be empty before BeforeCreate")

	// Act - GORM would call this automatically
	err := user.BeforeCreate(nil)

	// Assert
	assert.NoError(t, err)
	parsed, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr, "User ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
}

// TestUserBeforeCreate_PreservesExistingID verifies that the hook doesn't overwrite an existing ID.
func TestUserBeforeCreate_PreservesExistingID(t *testing.T) {
	existingID := uuid.New().String()
	user := &models.User{ID: existingID, Username: "bob"}

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existingID, user.ID)
}

// TestUserBeforeCreate_MultipleUsers verifies unique UUIDs are generated for multiple users.
func TestUserBeforeCreate_MultipleUsers(t *testing.T) {
	users := []*models.User{{Username: "a"}, {Username: "b"}, {Username: "c"}}
	generated := make(map[string]bool)

	for _, user := range users {
		assert.NoError(t, user.BeforeCreate(nil))
		assert.NotContains(t, generated, user.ID, "Each user should have a unique ID")
		generated[user.ID] = true
	}

	assert.Len(t, generated, len(users))
}

// TestUserStructTags guards the tags the repositories rely on.
func TestUserStructTags(t *testing.T) {
	userType := reflect.TypeOf(models.User{})

	idField, found := userType.FieldByName("ID")
	assert.True(t, found)
	assert.Contains(t, idField.Tag.Get("gorm"), "primaryKey")

	nameField, found := userType.FieldByName("Username")
	assert.True(t, found)
	assert.Contains(t, nameField.Tag.Get("gorm"), "uniqueIndex")

	roomType := reflect.TypeOf(models.ChatRoom{})
	pairField, found := roomType.FieldByName("PairKey")
	assert.True(t, found)
	assert.Contains(t, pairField.Tag.Get("gorm"), "uniqueIndex", "PairKey must stay unique")
}

func TestNewUserProfile_Defaults(t *testing.T) {
	p := models.NewUserProfile()

	assert.Equal(t, models.ProficiencyBeginner, p.Proficiency)
	assert.True(t, p.IsAvailable)
	assert.Nil(t, p.NativeLanguageID)
	assert.Empty(t, p.LearningLanguages)
}

func TestProficiency_Valid(t *testing.T) {
	tests := []struct {
		level models.Proficiency
		want  bool
	}{
		{models.ProficiencyBeginner, true},
		{models.ProficiencyIntermediate, true},
		{models.ProficiencyAdvanced, true},
		{models.ProficiencyNative, true},
		{"expert", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.Valid())
		})
	}
}

func TestUserProfile_LanguageHelpers(t *testing.T) {
	english := uint(1)
	p := &models.UserProfile{
		NativeLanguageID:  &english,
		LearningLanguages: []models.Language{{ID: 2, Name: "Spanish", Code: "es"}},
	}

	assert.True(t, p.IsNativeIn(1))
	assert.False(t, p.IsNativeIn(2))
	assert.True(t, p.IsLearning(2))
	assert.False(t, p.IsLearning(1))

	var noNative models.UserProfile
	assert.False(t, noNative.IsNativeIn(1))
	assert.Equal(t, "", noNative.Username())
}

func TestPairKey_IsOrderIndependent(t *testing.T) {
	a := uuid.New().String()
	b := uuid.New().String()

	assert.Equal(t, models.PairKey(a, b, 3), models.PairKey(b, a, 3))
	assert.NotEqual(t, models.PairKey(a, b, 3), models.PairKey(a, b, 4))
}

func TestRoomName(t *testing.T) {
	assert.Equal(t, "Spanish: alice & bob", models.RoomName("Spanish", "alice", "bob"))
}

func TestChatRoom_OtherParticipant(t *testing.T) {
	room := &models.ChatRoom{Participants: []models.User{{ID: "u1", Username: "alice"}, {ID: "u2", Username: "bob"}}}

	other := room.OtherParticipant("u1")
	if assert.NotNil(t, other) {
		assert.Equal(t, "bob", other.Username)
	}
	assert.Nil(t, (&models.ChatRoom{}).OtherParticipant("u1"))
}

// BenchmarkUserBeforeCreate measures UUID generation performance.
func BenchmarkUserBeforeCreate(b *testing.B) {
	user := &models.User{Username: "benchmark_user"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		user.ID = ""
		_ = user.BeforeCreate(nil)
	}
}
