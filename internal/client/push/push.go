// Package push owns the device's push installation token, the identifier the
// backend uses to address notifications to this install.
package push

import (
	"context"

	"github.com/dmitrijs2005/payslips/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/payslips/internal/common"
	"github.com/dmitrijs2005/payslips/internal/dbx"
	"github.com/google/uuid"
)

// TokenSource yields the current push token. An empty token means none is
// available yet and registration should be skipped.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Installation is a TokenSource backed by a uuid persisted in the metadata
// table. It is created on first use and kept until rotated.
type Installation struct {
	repo  metadata.Repository
	newID func() string
}

func NewInstallation(db dbx.DBTX) *Installation {
	return &Installation{repo: metadata.NewSQLiteRepository(db), newID: uuid.NewString}
}

func (i *Installation) Token(ctx context.Context) (string, error) {
	v, err := i.repo.Get(ctx, common.MetaKeyPushToken)
	if err != nil {
		return "", err
	}
	if v != nil {
		return string(v), nil
	}
	return i.Rotate(ctx)
}

// Rotate replaces the installation token and returns the new value.
func (i *Installation) Rotate(ctx context.Context) (string, error) {
	id := i.newID()
	if err := i.repo.Set(ctx, common.MetaKeyPushToken, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}
