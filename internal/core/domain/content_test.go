package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentKey_Validate(t *testing.T) {
	tests := []struct {
		name    string
		key     ContentKey
		wantErr string
	}{
		{
			name: "valid",
			key:  ContentKey{Chapter: "Basics", Lesson: "Variables", Title: "Intro"},
		},
		{
			name:    "missing chapter",
			key:     ContentKey{Lesson: "Variables", Title: "Intro"},
			wantErr: "chapter is required",
		},
		{
			name:    "blank lesson",
			key:     ContentKey{Chapter: "Basics", Lesson: "   ", Title: "Intro"},
			wantErr: "lesson is required",
		},
		{
			name:    "missing title",
			key:     ContentKey{Chapter: "Basics", Lesson: "Variables"},
			wantErr: "title is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestContentItem_Validate(t *testing.T) {
	valid := ContentItem{
		Key:     ContentKey{Chapter: "Basics", Lesson: "Variables", Title: "Intro"},
		DocType: DocTypeText,
		Body:    "some body",
	}
	assert.NoError(t, valid.Validate())

	noBody := valid
	noBody.Body = "  "
	assert.ErrorIs(t, noBody.Validate(), ErrInvalidInput)

	badType := valid
	badType.DocType = "audio"
	assert.ErrorIs(t, badType.Validate(), ErrInvalidInput)

	// An unset doc type is tolerated; stores default it.
	unsetType := valid
	unsetType.DocType = ""
	assert.NoError(t, unsetType.Validate())
}

func TestChunkID_Deterministic(t *testing.T) {
	key := ContentKey{Chapter: "第1章", Lesson: "変数", Title: "はじめに"}

	id1 := ChunkID(key, 0, "変数は値を保持します。")
	id2 := ChunkID(key, 0, "変数は値を保持します。")

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 32)
}

func TestChunkID_VariesWithInputs(t *testing.T) {
	key := ContentKey{Chapter: "Basics", Lesson: "Variables", Title: "Intro"}

	base := ChunkID(key, 0, "chunk text")

	assert.NotEqual(t, base, ChunkID(key, 1, "chunk text"))
	assert.NotEqual(t, base, ChunkID(key, 0, "other text"))

	otherKey := key
	otherKey.Lesson = "Functions"
	assert.NotEqual(t, base, ChunkID(otherKey, 0, "chunk text"))
}

func TestChunkID_OnlyPrefixFeedsHash(t *testing.T) {
	key := ContentKey{Chapter: "Basics", Lesson: "Variables", Title: "Intro"}
	prefix := strings.Repeat("a", 50)

	id1 := ChunkID(key, 0, prefix+"different tail one")
	id2 := ChunkID(key, 0, prefix+"different tail two")

	assert.Equal(t, id1, id2)
}

func TestDocType_IsValid(t *testing.T) {
	assert.True(t, DocTypeText.IsValid())
	assert.True(t, DocTypeVideo.IsValid())
	assert.False(t, DocType("audio").IsValid())
	assert.False(t, DocType("").IsValid())
}

func TestContentKey_String(t *testing.T) {
	key := ContentKey{Chapter: "Basics", Lesson: "Variables", Title: "Intro"}
	assert.Equal(t, "Basics/Variables/Intro", key.String())
}
