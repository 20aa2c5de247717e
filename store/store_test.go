package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/danielhkuo/onlyfringe/db"
	"github.com/danielhkuo/onlyfringe/models"
	"github.com/danielhkuo/onlyfringe/store"
	"github.com/danielhkuo/onlyfringe/testutil"
)

func TestCreateUser_GetUser(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()

	u := testutil.CreateTestUser(t, st, "alice")

	got, err := st.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "alice" || got.Email != "alice@example.com" {
		t.Errorf("unexpected user %+v", got)
	}
	if !got.CreatedAt.Equal(u.CreatedAt) {
		t.Errorf("created_at changed: %v != %v", got.CreatedAt, u.CreatedAt)
	}

	if _, err := st.GetUser(ctx, uuid.NewString()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUser_Duplicates(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	testutil.CreateTestUser(t, st, "alice")

	tests := []struct {
		name     string
		username string
		email    string
		wantErr  error
	}{
		{"same username", "alice", "other@example.com", store.ErrDuplicateUser},
		{"same email", "alice2", "alice@example.com", store.ErrDuplicateUser},
		{"distinct", "bob", "bob@example.com", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := st.CreateUser(ctx, models.User{
				ID:        uuid.NewString(),
				Username:  tt.username,
				Email:     tt.email,
				CreatedAt: time.Now().UTC(),
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateUser_ConcurrentDuplicates(t *testing.T) {
	st := testutil.SetupTestStore(t)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = st.CreateUser(context.Background(), models.User{
				ID:        uuid.NewString(),
				Username:  "racer",
				Email:     "racer@example.com",
				CreatedAt: time.Now().UTC(),
			})
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, store.ErrDuplicateUser):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != attempts-1 {
		t.Errorf("expected 1 success and %d duplicates, got %d and %d", attempts-1, ok, dup)
	}
}

func TestCreateUser_PostgresUniqueViolation(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	st := store.New(conn, db.DialectPostgres)

	mock.ExpectExec(`INSERT INTO users \(id,username,email,created_at\) VALUES \(\$1,\$2,\$3,\$4\)`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23503", Message: "foreign key violation"})

	err = st.CreateUser(context.Background(), models.User{ID: "u1", Username: "a", Email: "a@example.com"})
	if !errors.Is(err, store.ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser, got %v", err)
	}

	err = st.CreateUser(context.Background(), models.User{ID: "u2", Username: "b", Email: "b@example.com"})
	if err == nil || errors.Is(err, store.ErrDuplicateUser) {
		t.Errorf("other errors must not map to duplicate, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateArgument_GetArgument(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, st, "alice")

	category := "science"
	title := "First"
	now := time.Now().UTC().Truncate(time.Microsecond)
	arg := models.Argument{
		ID:                 uuid.NewString(),
		Title:              "Ocean temperatures",
		Content:            testutil.ValidContent(),
		Category:           &category,
		UserID:             user.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
		IsVerified:         true,
		VerificationStatus: models.StatusApproved,
		FactCheck:          &models.Verdict{IsValid: true, Score: 88, Issues: []string{}, FactualAccuracy: "good"},
		Sources: []models.Source{
			{ID: uuid.NewString(), URL: "https://z.example.com", Title: &title, IsValid: true, CreatedAt: now},
			{ID: uuid.NewString(), URL: "https://a.example.com", IsValid: true, CreatedAt: now},
			{ID: uuid.NewString(), URL: "https://m.example.com", IsValid: true, CreatedAt: now},
		},
	}
	if err := st.CreateArgument(ctx, &arg); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetArgument(ctx, arg.ID)
	if err != nil {
		t.Fatal(err)
	}

	if got.Title != arg.Title || got.Content != arg.Content {
		t.Errorf("unexpected argument %+v", got)
	}
	if got.Category == nil || *got.Category != "science" {
		t.Errorf("category lost: %v", got.Category)
	}
	if got.Author == nil || got.Author.Username != "alice" {
		t.Errorf("author not attached: %+v", got.Author)
	}
	if !got.IsVerified || got.VerificationStatus != models.StatusApproved {
		t.Errorf("status lost: %v %s", got.IsVerified, got.VerificationStatus)
	}
	if got.FactCheck == nil || got.FactCheck.Score != 88 || got.FactCheck.FactualAccuracy != "good" {
		t.Errorf("verdict not round-tripped: %+v", got.FactCheck)
	}
	if got.Rebuttals == nil || len(got.Rebuttals) != 0 {
		t.Errorf("expected empty rebuttals, got %v", got.Rebuttals)
	}

	// Sources keep submission order
	if len(got.Sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(got.Sources))
	}
	for i, want := range []string{"https://z.example.com", "https://a.example.com", "https://m.example.com"} {
		if got.Sources[i].URL != want {
			t.Errorf("source %d: expected %s, got %s", i, want, got.Sources[i].URL)
		}
	}
	if got.Sources[0].Title == nil || *got.Sources[0].Title != "First" {
		t.Errorf("source title lost: %v", got.Sources[0].Title)
	}
	if got.Sources[1].Title != nil {
		t.Errorf("absent title should stay nil, got %q", *got.Sources[1].Title)
	}

	if _, err := st.GetArgument(ctx, uuid.NewString()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateArgument_UnknownUser(t *testing.T) {
	st := testutil.SetupTestStore(t)

	arg := models.Argument{
		ID:                 uuid.NewString(),
		Title:              "Orphan",
		Content:            testutil.ValidContent(),
		UserID:             uuid.NewString(),
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
		VerificationStatus: models.StatusRejected,
	}
	if err := st.CreateArgument(context.Background(), &arg); err == nil {
		t.Error("foreign key should reject an unknown user")
	}
}

func TestListArguments(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, st, "alice")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	oldApproved := testutil.CreateTestArgumentAt(t, st, user.ID, models.StatusApproved, base)
	rejected := testutil.CreateTestArgumentAt(t, st, user.ID, models.StatusRejected, base.Add(time.Hour))
	newApproved := testutil.CreateTestArgumentAt(t, st, user.ID, models.StatusApproved, base.Add(2*time.Hour))

	approved, err := st.ListArguments(ctx, store.ArgumentFilter{Status: models.StatusApproved})
	if err != nil {
		t.Fatal(err)
	}
	if len(approved) != 2 {
		t.Fatalf("expected 2 approved, got %d", len(approved))
	}
	if approved[0].ID != newApproved.ID || approved[1].ID != oldApproved.ID {
		t.Error("approved arguments should be newest first")
	}
	for _, a := range approved {
		if a.VerificationStatus != models.StatusApproved {
			t.Errorf("filter leaked %s", a.VerificationStatus)
		}
		if len(a.Sources) != 2 || a.Author == nil {
			t.Errorf("details missing on %s", a.ID)
		}
	}

	all, err := st.ListArguments(ctx, store.ArgumentFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[1].ID != rejected.ID {
		t.Errorf("unfiltered list should hold all three newest first, got %d", len(all))
	}

	none, err := st.ListArguments(ctx, store.ArgumentFilter{Status: models.StatusPending})
	if err != nil {
		t.Fatal(err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil list, got %v", none)
	}
}

func TestListArguments_CreatedBefore(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, st, "alice")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	old := testutil.CreateTestArgumentAt(t, st, user.ID, models.StatusRejected, base)
	testutil.CreateTestArgumentAt(t, st, user.ID, models.StatusRejected, base.Add(48*time.Hour))
	testutil.CreateTestArgumentAt(t, st, user.ID, models.StatusApproved, base.Add(-time.Hour))

	got, err := st.ListArguments(ctx, store.ArgumentFilter{
		Status:        models.StatusRejected,
		CreatedBefore: base.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != old.ID {
		t.Errorf("expected only the old rejected argument, got %d", len(got))
	}
}

func TestListArguments_Category(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, st, "alice")

	for _, c := range []string{"science", "history", "science"} {
		category := c
		now := time.Now().UTC()
		a := models.Argument{
			ID: uuid.NewString(), Title: c, Content: testutil.ValidContent(), Category: &category,
			UserID: user.ID, CreatedAt: now, UpdatedAt: now, VerificationStatus: models.StatusApproved,
		}
		if err := st.CreateArgument(ctx, &a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := st.ListArguments(ctx, store.ArgumentFilter{Status: models.StatusApproved, Category: "science"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 science arguments, got %d", len(got))
	}
}

func TestCreateRebuttal(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	alice := testutil.CreateTestUser(t, st, "alice")
	bob := testutil.CreateTestUser(t, st, "bob")
	arg := testutil.CreateTestArgument(t, st, alice.ID, models.StatusApproved)

	now := time.Now().UTC()
	reb := models.Rebuttal{
		ID:                 uuid.NewString(),
		ArgumentID:         arg.ID,
		Content:            "The data was misread.",
		UserID:             bob.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
		VerificationStatus: models.StatusRejected,
		FactCheck:          &models.Verdict{Score: 10, Issues: []string{"weak"}},
		Sources: []models.Source{
			{ID: uuid.NewString(), URL: "https://example.com/1", IsValid: true, CreatedAt: now},
			{ID: uuid.NewString(), URL: "https://example.com/2", IsValid: true, CreatedAt: now},
		},
	}
	if err := st.CreateRebuttal(ctx, &reb); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetRebuttal(ctx, reb.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ArgumentID != arg.ID || got.Author == nil || got.Author.Username != "bob" {
		t.Errorf("unexpected rebuttal %+v", got)
	}
	if len(got.Sources) != 2 || got.Sources[0].URL != "https://example.com/1" {
		t.Errorf("unexpected sources %+v", got.Sources)
	}

	parent, err := st.GetArgument(ctx, arg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(parent.Rebuttals) != 1 || parent.Rebuttals[0].ID != reb.ID {
		t.Fatalf("rebuttal not attached to argument: %+v", parent.Rebuttals)
	}
	if parent.Rebuttals[0].Author == nil || len(parent.Rebuttals[0].Sources) != 2 {
		t.Error("nested rebuttal should carry author and sources")
	}
}

func TestCreateRebuttal_MissingArgument(t *testing.T) {
	st := testutil.SetupTestStore(t)
	bob := testutil.CreateTestUser(t, st, "bob")

	reb := models.Rebuttal{
		ID:                 uuid.NewString(),
		ArgumentID:         uuid.NewString(),
		Content:            "text",
		UserID:             bob.ID,
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
		VerificationStatus: models.StatusRejected,
	}
	if err := st.CreateRebuttal(context.Background(), &reb); err == nil {
		t.Error("foreign key should reject a rebuttal without a parent")
	}
	if _, err := st.GetRebuttal(context.Background(), reb.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("failed insert must not leave a row, got %v", err)
	}
}

func TestDeleteArgument_Cascades(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := store.New(conn, db.DialectSQLite)
	ctx := context.Background()

	alice := testutil.CreateTestUser(t, st, "alice")
	arg := testutil.CreateTestArgument(t, st, alice.ID, models.StatusApproved)

	now := time.Now().UTC()
	reb := models.Rebuttal{
		ID: uuid.NewString(), ArgumentID: arg.ID, Content: "No.", UserID: alice.ID,
		CreatedAt: now, UpdatedAt: now, VerificationStatus: models.StatusRejected,
		Sources: []models.Source{{ID: uuid.NewString(), URL: "https://example.com", IsValid: true, CreatedAt: now}},
	}
	if err := st.CreateRebuttal(ctx, &reb); err != nil {
		t.Fatal(err)
	}

	if err := st.DeleteArgument(ctx, arg.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := st.GetArgument(ctx, arg.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("argument should be gone, got %v", err)
	}
	if _, err := st.GetRebuttal(ctx, reb.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("rebuttal should be gone, got %v", err)
	}
	for _, table := range []string{"sources", "rebuttals", "rebuttal_sources"} {
		var n int
		if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("%s should be empty after cascade, has %d rows", table, n)
		}
	}

	if err := st.DeleteArgument(ctx, arg.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestPing(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := store.New(conn, db.DialectSQLite)

	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	conn.Close()
	if err := st.Ping(context.Background()); err == nil {
		t.Error("ping on a closed database should fail")
	}
}
