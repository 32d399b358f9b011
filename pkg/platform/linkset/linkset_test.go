package linkset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddRemoveAreIdempotent(t *testing.T) {
	l := New()

	assert.True(t, l.Add(1, 10))
	assert.False(t, l.Add(1, 10))
	assert.True(t, l.Add(1, 11))
	assert.True(t, l.Add(2, 10))

	assert.Equal(t, []int64{10, 11}, l.Right(1))
	assert.Equal(t, []int64{1, 2}, l.Left(10))

	assert.True(t, l.Remove(1, 10))
	assert.False(t, l.Remove(1, 10))
	assert.False(t, l.Remove(5, 50))
	assert.Equal(t, []int64{11}, l.Right(1))
	assert.Equal(t, []int64{2}, l.Left(10))
}

func TestDropKeepsBothSidesConsistent(t *testing.T) {
	l := New()
	l.Add(1, 10)
	l.Add(2, 10)
	l.Add(2, 20)

	l.DropRight(10)
	assert.Empty(t, l.Right(1))
	assert.Equal(t, []int64{20}, l.Right(2))
	assert.Empty(t, l.Left(10))

	l.DropLeft(2)
	assert.Empty(t, l.Left(20))
	assert.Equal(t, []int64{}, l.Right(2))
}

func TestReplace(t *testing.T) {
	l := New()
	l.Add(1, 10)
	l.Add(1, 11)

	l.Replace(1, []int64{11, 12, 12})

	assert.Equal(t, []int64{11, 12}, l.Right(1))
	assert.Empty(t, l.Left(10))
}

func TestCloneIsIndependent(t *testing.T) {
	l := New()
	l.Add(1, 10)

	c := l.Clone()
	c.Add(1, 11)
	c.Remove(1, 10)

	assert.Equal(t, []int64{10}, l.Right(1))
	assert.Equal(t, []int64{11}, c.Right(1))
}
