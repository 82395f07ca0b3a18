package push

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/payslips/internal/client/client"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallation_TokenIsStable(t *testing.T) {
	ctx := context.Background()
	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "payslips.db"))
	require.NoError(t, err)
	defer db.Close()

	inst := NewInstallation(db)
	first, err := inst.Token(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	second, err := NewInstallation(db).Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInstallation_Rotate(t *testing.T) {
	ctx := context.Background()
	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "payslips.db"))
	require.NoError(t, err)
	defer db.Close()

	inst := NewInstallation(db)
	ids := []string{"id-1", "id-2"}
	inst.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	tok, err := inst.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "id-1", tok)

	rotated, err := inst.Rotate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "id-2", rotated)

	tok, err = inst.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "id-2", tok)
}
