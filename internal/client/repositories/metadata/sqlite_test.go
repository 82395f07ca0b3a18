package metadata

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/payslips/internal/common"
	"github.com/dmitrijs2005/payslips/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newRepo(t *testing.T) (*SQLiteRepository, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return NewSQLiteRepository(db), db
}

func TestGet(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	v, err := r.Get(ctx, common.MetaKeyCurrentUser)
	require.NoError(t, err)
	assert.Nil(t, v, "absent key")

	require.NoError(t, r.Set(ctx, common.MetaKeyPushToken, []byte("old")))
	require.NoError(t, r.Set(ctx, common.MetaKeyPushToken, []byte("new")))

	v, err = r.Get(ctx, common.MetaKeyPushToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestGetMany_ReturnsPresentKeysOnly(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, common.MetaKeyPinSalt, []byte{0xAA}))
	require.NoError(t, r.Set(ctx, common.MetaKeyToken, []byte{0x01}))

	m, err := r.GetMany(ctx, common.MetaKeyPinSalt, common.MetaKeyPinVerifier)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{common.MetaKeyPinSalt: {0xAA}}, m)

	m, err = r.GetMany(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestDelete_ManyKeys(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, common.MetaKeyPinSalt, []byte{1}))
	require.NoError(t, r.Set(ctx, common.MetaKeyPinVerifier, []byte{2}))
	require.NoError(t, r.Set(ctx, common.MetaKeyToken, []byte{3}))

	require.NoError(t, r.Delete(ctx, common.MetaKeyPinSalt, common.MetaKeyPinVerifier, "absent"))

	m, err := r.GetMany(ctx, common.MetaKeyPinSalt, common.MetaKeyPinVerifier, common.MetaKeyToken)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{common.MetaKeyToken: {3}}, m)

	require.NoError(t, r.Delete(ctx))
	require.NoError(t, r.Delete(ctx, common.MetaKeyPinSalt), "idempotent")
}

func TestRepository_InsideTransaction_RollsBack(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, func(tx dbx.DBTX) error {
		if err := NewSQLiteRepository(tx).Set(ctx, common.MetaKeyToken, []byte("sealed")); err != nil {
			return err
		}
		return errors.New("salt write failed")
	})
	require.Error(t, err)

	v, err := r.Get(ctx, common.MetaKeyToken)
	require.NoError(t, err)
	assert.Nil(t, v, "rolled back write must not be visible")
}

func TestRepository_ErrorsNameTheKey(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, `get metadata "k"`)

	_, err = r.GetMany(ctx, "a", "b")
	require.ErrorContains(t, err, "get metadata [a b]")

	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), `set metadata "k"`)
	require.ErrorContains(t, r.Delete(ctx, "k"), "delete metadata [k]")
}
