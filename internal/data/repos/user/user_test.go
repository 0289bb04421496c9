package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/awareness-backend/internal/data/repos/testutil"
	types "github.com/yungbote/awareness-backend/internal/domain"
	"github.com/yungbote/awareness-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewUserRepo(db, testutil.Logger(t))

	u := &types.User{Email: "userrepo@example.com", Password: "pw", FirstName: "A", LastName: "B"}
	if _, err := repo.Create(dbc, []*types.User{u}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Fatalf("expected id assigned on create")
	}
	if u.Role != types.RoleEmployee {
		t.Fatalf("default role: want=%s got=%s", types.RoleEmployee, u.Role)
	}

	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{u.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByEmails(dbc, []string{"  UserRepo@example.com "}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByEmails: err=%v len=%d", err, len(rows))
	}
	if ok, err := repo.EmailExists(dbc, "userrepo@example.com"); err != nil || !ok {
		t.Fatalf("EmailExists: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.EmailExists(dbc, "missing@example.com"); err != nil || ok {
		t.Fatalf("EmailExists missing: ok=%v err=%v", ok, err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := repo.SetCertification(dbc, u.ID, true, &now); err != nil {
		t.Fatalf("SetCertification: %v", err)
	}
	locked, err := repo.LockByID(dbc, u.ID)
	if err != nil {
		t.Fatalf("LockByID: %v", err)
	}
	if !locked.IsCertified || locked.CertificationDate == nil {
		t.Fatalf("expected certified user, got %+v", locked)
	}

	if err := repo.SetCertification(dbc, u.ID, false, nil); err != nil {
		t.Fatalf("SetCertification clear: %v", err)
	}
	locked, err = repo.LockByID(dbc, u.ID)
	if err != nil {
		t.Fatalf("LockByID after clear: %v", err)
	}
	if locked.IsCertified || locked.CertificationDate != nil {
		t.Fatalf("expected cleared certification, got %+v", locked)
	}

	if err := repo.SetCertification(dbc, uuid.New(), true, &now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("SetCertification unknown user: want ErrRecordNotFound got %v", err)
	}
	if _, err := repo.LockByID(dbc, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("LockByID unknown user: want ErrRecordNotFound got %v", err)
	}
}
