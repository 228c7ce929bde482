package userservice

import (
	"context"
	"errors"
	"testing"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/users"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
)

type passthroughUOW struct{}

func (passthroughUOW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memUsersRepo is an in-memory stand-in for the Postgres users repository.
type memUsersRepo struct {
	nextID int64
	byName map[string]users.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{byName: make(map[string]users.User)}
}

func (r *memUsersRepo) Create(_ context.Context, u *users.User) error {
	if _, ok := r.byName[u.Username]; ok {
		return users.ErrDuplicate
	}
	r.nextID++
	u.ID = r.nextID
	r.byName[u.Username] = *u
	return nil
}

func (r *memUsersRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	u, ok := r.byName[username]
	if !ok {
		return nil, users.ErrNotFound
	}
	u.PasswordHash = ""
	return &u, nil
}

func (r *memUsersRepo) GetWithPassword(_ context.Context, username string) (*users.User, error) {
	u, ok := r.byName[username]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &u, nil
}

func (r *memUsersRepo) FindExisting(_ context.Context, username, email string) (*users.User, error) {
	for _, u := range r.byName {
		if u.Username == username || u.Email == email {
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (r *memUsersRepo) ListAll(_ context.Context) ([]users.User, error) {
	out := make([]users.User, 0, len(r.byName))
	for _, u := range r.byName {
		u.PasswordHash = ""
		out = append(out, u)
	}
	return out, nil
}

func (r *memUsersRepo) Update(_ context.Context, u *users.User) error {
	var oldName string
	for name, existing := range r.byName {
		if existing.ID == u.ID {
			oldName = name
		}
	}
	if oldName == "" {
		return users.ErrNotFound
	}
	delete(r.byName, oldName)
	r.byName[u.Username] = *u
	return nil
}

func (r *memUsersRepo) Delete(_ context.Context, username string) error {
	if _, ok := r.byName[username]; !ok {
		return users.ErrNotFound
	}
	delete(r.byName, username)
	return nil
}

func newTestService() (*Service, *memUsersRepo) {
	repo := newMemUsersRepo()
	return New(passthroughUOW{}, repo, logger.NewLogger("test")), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Register(context.Background(), "teemu", "teemu@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if created.Role != users.RoleCustomer {
		t.Errorf("role = %s, want customer", created.Role)
	}
	if created.PasswordHash == "correct-horse" {
		t.Error("password stored as plaintext")
	}

	if _, err := svc.Login(context.Background(), "teemu", "correct-horse"); err != nil {
		t.Errorf("Login with correct password: %v", err)
	}
	if _, err := svc.Login(context.Background(), "teemu", "wrong"); !errors.Is(err, users.ErrNotFound) {
		t.Errorf("Login with wrong password err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Login(context.Background(), "nobody", "x"); !errors.Is(err, users.ErrNotFound) {
		t.Errorf("Login for unknown user err = %v, want ErrNotFound", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Register(context.Background(), "teemu", "teemu@example.com", "pw-12345678"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(context.Background(), "teemu", "other@example.com", "pw-12345678"); !errors.Is(err, users.ErrDuplicate) {
		t.Errorf("duplicate username err = %v, want ErrDuplicate", err)
	}
	if _, err := svc.Register(context.Background(), "other", "teemu@example.com", "pw-12345678"); !errors.Is(err, users.ErrDuplicate) {
		t.Errorf("duplicate email err = %v, want ErrDuplicate", err)
	}
}

func TestGetUserAuthorization(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), "teemu", "t@example.com", "pw-12345678"); err != nil {
		t.Fatal(err)
	}

	self := &users.User{Username: "teemu", Role: users.RoleCustomer}
	admin := &users.User{Username: "boss", Role: users.RoleAdmin}
	stranger := &users.User{Username: "other", Role: users.RoleCustomer}

	if _, err := svc.GetUser(context.Background(), self, "teemu"); err != nil {
		t.Errorf("self denied: %v", err)
	}
	if _, err := svc.GetUser(context.Background(), admin, "teemu"); err != nil {
		t.Errorf("admin denied: %v", err)
	}
	if _, err := svc.GetUser(context.Background(), stranger, "teemu"); !errors.Is(err, users.ErrForbidden) {
		t.Errorf("stranger err = %v, want ErrForbidden", err)
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	svc, _ := newTestService()

	customer := &users.User{Username: "teemu", Role: users.RoleCustomer}
	if _, err := svc.ListUsers(context.Background(), customer); !errors.Is(err, users.ErrForbidden) {
		t.Errorf("customer err = %v, want ErrForbidden", err)
	}

	admin := &users.User{Username: "boss", Role: users.RoleAdmin}
	if _, err := svc.ListUsers(context.Background(), admin); err != nil {
		t.Errorf("admin denied: %v", err)
	}
}

func TestUpdateUserRoleRequiresAdmin(t *testing.T) {
	svc, repo := newTestService()
	if _, err := svc.Register(context.Background(), "teemu", "t@example.com", "pw-12345678"); err != nil {
		t.Fatal(err)
	}

	self := &users.User{Username: "teemu", Role: users.RoleCustomer}
	role := "admin"
	if _, err := svc.UpdateUser(context.Background(), self, "teemu", ports.UserUpdate{Role: &role}); !errors.Is(err, users.ErrForbidden) {
		t.Fatalf("self-promotion err = %v, want ErrForbidden", err)
	}

	admin := &users.User{Username: "boss", Role: users.RoleAdmin}
	updated, err := svc.UpdateUser(context.Background(), admin, "teemu", ports.UserUpdate{Role: &role})
	if err != nil {
		t.Fatalf("admin role update: %v", err)
	}
	if updated.Role != users.RoleAdmin {
		t.Errorf("role = %s, want admin", updated.Role)
	}
	if got := repo.byName["teemu"].Role; got != users.RoleAdmin {
		t.Errorf("persisted role = %s, want admin", got)
	}
}

func TestUpdateUserChangesPassword(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), "teemu", "t@example.com", "old-password1"); err != nil {
		t.Fatal(err)
	}

	self := &users.User{Username: "teemu", Role: users.RoleCustomer}
	newPw := "new-password1"
	if _, err := svc.UpdateUser(context.Background(), self, "teemu", ports.UserUpdate{Password: &newPw}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	if _, err := svc.Login(context.Background(), "teemu", "new-password1"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	if _, err := svc.Login(context.Background(), "teemu", "old-password1"); err == nil {
		t.Error("old password still accepted")
	}
}

func TestDeleteUserAuthorization(t *testing.T) {
	svc, repo := newTestService()
	if _, err := svc.Register(context.Background(), "teemu", "t@example.com", "pw-12345678"); err != nil {
		t.Fatal(err)
	}

	stranger := &users.User{Username: "other", Role: users.RoleCustomer}
	if err := svc.DeleteUser(context.Background(), stranger, "teemu"); !errors.Is(err, users.ErrForbidden) {
		t.Fatalf("stranger delete err = %v, want ErrForbidden", err)
	}

	self := &users.User{Username: "teemu", Role: users.RoleCustomer}
	if err := svc.DeleteUser(context.Background(), self, "teemu"); err != nil {
		t.Fatalf("self delete: %v", err)
	}
	if _, ok := repo.byName["teemu"]; ok {
		t.Error("user still present after delete")
	}
}
