package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"traffic-monitor/internal/domain/admin"
	"traffic-monitor/internal/repository"
)

type fakeAdminStore struct {
	rows   map[string]repository.AdminRow
	nextID int64
	err    error
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{rows: make(map[string]repository.AdminRow)}
}

func (f *fakeAdminStore) Create(_ context.Context, row *repository.AdminRow) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[row.CenterID]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	row.ID = f.nextID
	f.rows[row.CenterID] = *row
	return nil
}

func (f *fakeAdminStore) FindByCenterID(_ context.Context, centerID string) (*repository.AdminRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	row, ok := f.rows[centerID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (f *fakeAdminStore) List(context.Context) ([]repository.AdminRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]repository.AdminRow, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, row)
	}
	return out, nil
}

func registerPayload(centerID, password string) admin.RegisterPayload {
	lat, lng := 18.5, 73.85
	return admin.RegisterPayload{
		CenterID:   centerID,
		Password:   password,
		Lat:        &lat,
		Lng:        &lng,
		CenterName: "Shivajinagar",
	}
}

func newTestAdminService(store AdminStore) *AdminService {
	return NewAdminService(store, "test-secret", time.Hour, bcrypt.MinCost, zerolog.Nop())
}

func TestAdminService_RegisterAndLogin(t *testing.T) {
	store := newFakeAdminStore()
	s := newTestAdminService(store)
	ctx := context.Background()

	a, err := s.Register(ctx, registerPayload(" PUN-01 ", "correct-horse"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if a.CenterID != "PUN-01" || a.Lat != 18.5 || a.CenterName != "Shivajinagar" {
		t.Errorf("Register() = %+v", a)
	}
	if store.rows["PUN-01"].PasswordHash == "correct-horse" {
		t.Fatal("password stored in plain text")
	}

	session, err := s.Login(ctx, admin.LoginPayload{CenterID: "PUN-01", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	claims, err := s.ParseToken(session.Token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.CenterID != "PUN-01" || claims.Subject != "PUN-01" || claims.ID == "" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestAdminService_RegisterConflict(t *testing.T) {
	s := newTestAdminService(newFakeAdminStore())
	ctx := context.Background()

	if _, err := s.Register(ctx, registerPayload("PUN-01", "password-1")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Register(ctx, registerPayload("PUN-01", "password-2")); !errors.Is(err, ErrConflict) {
		t.Errorf("second Register() error = %v, want ErrConflict", err)
	}
}

func TestAdminService_RegisterValidation(t *testing.T) {
	s := newTestAdminService(newFakeAdminStore())

	tests := []struct {
		name    string
		payload admin.RegisterPayload
	}{
		{"blank center", registerPayload("  ", "password-1")},
		{"short password", registerPayload("PUN-01", "short")},
		{"missing coordinates", admin.RegisterPayload{CenterID: "PUN-01", Password: "password-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Register(context.Background(), tt.payload); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Register() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAdminService_LoginFailures(t *testing.T) {
	s := newTestAdminService(newFakeAdminStore())
	ctx := context.Background()
	if _, err := s.Register(ctx, registerPayload("PUN-01", "correct-horse")); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Login(ctx, admin.LoginPayload{CenterID: "PUN-01", Password: "wrong-horse"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wrong password error = %v, want ErrUnauthorized", err)
	}
	if _, err := s.Login(ctx, admin.LoginPayload{CenterID: "PUN-99", Password: "correct-horse"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unknown center error = %v, want ErrUnauthorized", err)
	}

	failing := newTestAdminService(&fakeAdminStore{err: errors.New("db down")})
	if _, err := failing.Login(ctx, admin.LoginPayload{CenterID: "PUN-01", Password: "x"}); !errors.Is(err, ErrStore) {
		t.Errorf("store failure error = %v, want ErrStore", err)
	}
}

func TestAdminService_ParseToken(t *testing.T) {
	s := newTestAdminService(newFakeAdminStore())
	ctx := context.Background()
	if _, err := s.Register(ctx, registerPayload("PUN-01", "correct-horse")); err != nil {
		t.Fatal(err)
	}
	session, err := s.Login(ctx, admin.LoginPayload{CenterID: "PUN-01", Password: "correct-horse"})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("expired", func(t *testing.T) {
		later := newTestAdminService(newFakeAdminStore())
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := later.ParseToken(session.Token); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAdminService(newFakeAdminStore(), "other-secret", time.Hour, bcrypt.MinCost, zerolog.Nop())
		if _, err := other.ParseToken(session.Token); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, AdminClaims{CenterID: "PUN-01"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.ParseToken(token); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := s.ParseToken("not-a-token"); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})
}

func TestAdminService_ListAndGet(t *testing.T) {
	s := newTestAdminService(newFakeAdminStore())
	ctx := context.Background()
	for _, id := range []string{"PUN-01", "PUN-02"} {
		if _, err := s.Register(ctx, registerPayload(id, "password-1")); err != nil {
			t.Fatal(err)
		}
	}

	admins, err := s.List(ctx)
	if err != nil || len(admins) != 2 {
		t.Fatalf("List() = %v, %v", admins, err)
	}

	a, err := s.Get(ctx, "PUN-02")
	if err != nil || a.CenterID != "PUN-02" {
		t.Errorf("Get() = %+v, %v", a, err)
	}
	if _, err := s.Get(ctx, "PUN-03"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}
