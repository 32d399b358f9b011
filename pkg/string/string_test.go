package string

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Username":      "username",
		"DisplayName":   "display_name",
		"ReleaseDate":   "release_date",
		"ISRC":          "isrc",
		"MinPopularity": "min_popularity",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToSnakeCase(in), in)
	}
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("Radiohead", "RADIO"))
	assert.True(t, ContainsFold("Radiohead", ""))
	assert.False(t, ContainsFold("Radiohead", "blur"))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []int64{10, 11, 12}, Dedupe([]int64{10, 11, 10, 12, 11}))
	assert.Empty(t, Dedupe([]int64{}))
}

func TestTrimSpacePtr(t *testing.T) {
	assert.Nil(t, TrimSpacePtr(nil))
	v := "  alice "
	assert.Equal(t, "alice", *TrimSpacePtr(&v))
}
