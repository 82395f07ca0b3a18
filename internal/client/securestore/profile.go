package securestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/payslips/internal/client/models"
	"github.com/dmitrijs2005/payslips/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/payslips/internal/common"
	json "github.com/goccy/go-json"
)

// ProfileStore keeps the serialized snapshot of the logged-in employee.
// Load returns (nil, nil) when no snapshot exists.
type ProfileStore interface {
	Save(ctx context.Context, e models.Employee) error
	Load(ctx context.Context) (*models.Employee, error)
	Delete(ctx context.Context) error
}

type SQLiteProfileStore struct {
	repo metadata.Repository
}

func NewSQLiteProfileStore(db *sql.DB) *SQLiteProfileStore {
	return &SQLiteProfileStore{repo: metadata.NewSQLiteRepository(db)}
}

func (s *SQLiteProfileStore) Save(ctx context.Context, e models.Employee) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return s.repo.Set(ctx, common.MetaKeyCurrentUser, data)
}

func (s *SQLiteProfileStore) Load(ctx context.Context) (*models.Employee, error) {
	data, err := s.repo.Get(ctx, common.MetaKeyCurrentUser)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var e models.Employee
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: profile snapshot: %v", common.ErrDecoding, err)
	}
	return &e, nil
}

func (s *SQLiteProfileStore) Delete(ctx context.Context) error {
	return s.repo.Delete(ctx, common.MetaKeyCurrentUser)
}
