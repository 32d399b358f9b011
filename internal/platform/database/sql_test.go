package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLState(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(errors.New("boom")))
	assert.Equal(t, "users_email_key", ConstraintName(unique))
	assert.Empty(t, ConstraintName(errors.New("boom")))
}

func TestJSONListScan(t *testing.T) {
	var ids []int64
	require.NoError(t, IDs(&ids).Scan([]byte("[3,1,2]")))
	assert.Equal(t, []int64{3, 1, 2}, ids)

	require.NoError(t, IDs(&ids).Scan(nil))
	assert.Equal(t, []int64{}, ids)

	var roles []string
	require.NoError(t, Strings(&roles).Scan(`["ROLE_USER"]`))
	assert.Equal(t, []string{"ROLE_USER"}, roles)

	assert.Error(t, IDs(&ids).Scan(42))
	assert.Error(t, IDs(&ids).Scan("not json"))
}

func TestNullableIDScan(t *testing.T) {
	var id *int64
	require.NoError(t, NullableID{Dst: &id}.Scan(int64(5)))
	require.NotNil(t, id)
	assert.Equal(t, int64(5), *id)

	require.NoError(t, NullableID{Dst: &id}.Scan(nil))
	assert.Nil(t, id)
}
