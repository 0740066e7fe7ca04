package workshop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var workshopCols = []string{"id", "title", "description", "submitter_id", "status", "approved_by", "decided_at", "reject_reason", "created_at"}

func TestPGStoreCreateAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGStore(db)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	w := &Workshop{
		ID:          "01WORKSHOP",
		Title:       "Intro to Go",
		Description: "basics",
		SubmitterID: "01USER",
		Status:      StatusPending,
		CreatedAt:   now,
	}

	mock.ExpectExec("insert into workshops").
		WithArgs(w.ID, w.Title, w.Description, w.SubmitterID, "pending", nil, nil, "", w.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.Create(context.Background(), w); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rows := sqlmock.NewRows(workshopCols).
		AddRow(w.ID, w.Title, w.Description, w.SubmitterID, "pending", nil, nil, nil, w.CreatedAt)
	mock.ExpectQuery("select id, title, description.*from workshops where id").
		WithArgs(w.ID).
		WillReturnRows(rows)

	got, err := store.Get(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusPending || got.ApprovedBy != nil || got.DecidedAt != nil {
		t.Fatalf("unexpected row: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreGetMiss(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGStore(db)
	mock.ExpectQuery("select id, title, description").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(workshopCols))

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStoreListByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGStore(db)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	decided := now.Add(time.Hour)

	rows := sqlmock.NewRows(workshopCols).
		AddRow("w1", "A", "", "u1", "approved", "admin", decided, nil, now)
	mock.ExpectQuery("select id, title, description.*from workshops where status.*order by created_at").
		WithArgs("approved").
		WillReturnRows(rows)

	got, err := store.List(context.Background(), StatusApproved)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].ApprovedBy == nil || *got[0].ApprovedBy != "admin" {
		t.Fatalf("unexpected approver: %+v", got[0])
	}
	if got[0].DecidedAt == nil || !got[0].DecidedAt.Equal(decided) {
		t.Fatalf("unexpected decision time: %+v", got[0])
	}
}

func TestPGStoreDecideGuardsPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGStore(db)
	decided := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	d := Decision{Status: StatusRejected, ActorID: "admin", DecidedAt: decided, Reason: "duplicate"}

	mock.ExpectExec("update workshops").
		WithArgs("rejected", "admin", decided, "duplicate", "w1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	matched, err := store.Decide(context.Background(), "w1", d)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !matched {
		t.Fatal("expected a pending row to be matched")
	}

	// A second decision matches nothing: the row left pending already.
	mock.ExpectExec("update workshops").
		WithArgs("rejected", "admin", decided, "duplicate", "w1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	matched, err = store.Decide(context.Background(), "w1", d)
	if err != nil {
		t.Fatalf("second Decide: %v", err)
	}
	if matched {
		t.Fatal("expected no pending row on second decision")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
