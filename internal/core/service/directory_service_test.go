package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/udla/user-directory/internal/core/domain"
)

func seedUsers(t *testing.T, f *fixture, n int) {
	t.Helper()
	names := []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace"}
	if n > len(names) {
		t.Fatalf("at most %d seed users", len(names))
	}
	for _, name := range names[:n] {
		f.register(t, name, "pass123")
	}
}

func TestDirectoryService_List_Pagination(t *testing.T) {
	f := newFixture(t)
	seedUsers(t, f, 4) // plus the bootstrap admin: 5 users

	want := []struct {
		page    int
		items   int
		hasNext bool
		hasPrev bool
	}{
		{page: 1, items: 3, hasNext: true, hasPrev: false},
		{page: 2, items: 2, hasNext: false, hasPrev: true},
		{page: 3, items: 0, hasNext: false, hasPrev: true},
	}

	for _, w := range want {
		res, err := f.dir.List(context.Background(), f.admin, w.page, 3)
		if err != nil {
			t.Fatalf("page %d: %v", w.page, err)
		}
		if len(res.Items) != w.items {
			t.Fatalf("page %d: expected %d items, got %d", w.page, w.items, len(res.Items))
		}
		p := res.Pagination
		if p.TotalItems != 5 || p.TotalPages != 2 || p.CurrentPage != w.page || p.Offset != 3 {
			t.Fatalf("page %d: unexpected metadata %+v", w.page, p)
		}
		if p.HasNext != w.hasNext || p.HasPrevious != w.hasPrev {
			t.Fatalf("page %d: unexpected flags %+v", w.page, p)
		}
	}
}

func TestDirectoryService_List_OrderedByID(t *testing.T) {
	f := newFixture(t)
	seedUsers(t, f, 3)

	res, err := f.dir.List(context.Background(), f.admin, 2, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Items) != 2 || res.Items[0].Username != "bob" || res.Items[1].Username != "carol" {
		t.Fatalf("unexpected window: %+v", res.Items)
	}
}

func TestDirectoryService_List_InvalidParams(t *testing.T) {
	f := newFixture(t)

	_, err := f.dir.List(context.Background(), f.admin, 0, -1)
	fe := fieldErrors(t, err)
	if !fe.Has("page") || !fe.Has("offset") {
		t.Fatalf("expected page and offset errors, got %v", fe)
	}
}

func TestDirectoryService_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	bob := f.register(t, "bob", "pass123").User
	ctx := context.Background()

	checks := map[string]func() error{
		"list": func() error { _, err := f.dir.List(ctx, bob, 1, 10); return err },
		"get":  func() error { _, err := f.dir.Get(ctx, bob, "bob"); return err },
		"update": func() error {
			_, err := f.dir.Update(ctx, bob, "bob", domain.UserPatch{Role: domain.Some("admin")})
			return err
		},
		"deactivate": func() error { _, err := f.dir.Deactivate(ctx, bob, "admin"); return err },
	}

	for name, fn := range checks {
		if err := fn(); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected ErrForbidden, got %v", name, err)
		}
	}
}

func TestDirectoryService_Get(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pass123")

	u, err := f.dir.Get(context.Background(), f.admin, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Email != "alice@udla.edu.ec" {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := f.dir.Get(context.Background(), f.admin, "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDirectoryService_Update_Partial(t *testing.T) {
	f := newFixture(t)
	before := f.register(t, "alice", "pass123").User

	u, err := f.dir.Update(context.Background(), f.admin, "alice", domain.UserPatch{
		Email: domain.Some(" Alice.New@UDLA.edu.ec"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if u.Email != "alice.new@udla.edu.ec" {
		t.Fatalf("email not updated: %q", u.Email)
	}
	if u.Username != before.Username || u.Role != before.Role || u.PasswordHash != before.PasswordHash {
		t.Fatalf("untouched fields changed: %+v", u)
	}
}

func TestDirectoryService_Update_Password(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pass123")

	if _, err := f.dir.Update(context.Background(), f.admin, "alice", domain.UserPatch{
		Password: domain.Some("new-pass"),
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, err := f.auth.Login(context.Background(), "alice", "pass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password should fail, got %v", err)
	}
	if _, err := f.auth.Login(context.Background(), "alice", "new-pass"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}
}

func TestDirectoryService_Update_EmptyPatch(t *testing.T) {
	f := newFixture(t)
	before := f.register(t, "alice", "pass123").User

	u, err := f.dir.Update(context.Background(), f.admin, "alice", domain.UserPatch{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !u.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("empty patch must not touch the user")
	}
}

func TestDirectoryService_Update_NullField(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pass123")

	_, err := f.dir.Update(context.Background(), f.admin, "alice", domain.UserPatch{
		Username: domain.Optional[string]{Set: true, Null: true},
	})
	if !fieldErrors(t, err).Has("username") {
		t.Fatalf("expected username error, got %v", err)
	}
}

func TestDirectoryService_Update_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pass123")
	f.register(t, "bob", "pass123")

	_, err := f.dir.Update(context.Background(), f.admin, "bob", domain.UserPatch{
		Username: domain.Some("alice"),
	})
	if !errors.Is(err, domain.ErrUserExists) || !fieldErrors(t, err).Has("username") {
		t.Fatalf("expected duplicate username error, got %v", err)
	}
}

func TestDirectoryService_Update_UnchangedValuesSkipUniqueness(t *testing.T) {
	f := newFixture(t)

	// Resending the admin's own reserved username and email is not a conflict.
	u, err := f.dir.Update(context.Background(), f.admin, "admin", domain.UserPatch{
		Username: domain.Some("admin"),
		Email:    domain.Some("ADMIN@udla.edu.ec"),
		Role:     domain.Some("superuser"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if u.Username != "admin" || u.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestDirectoryService_Update_RenameToReserved(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pass123")

	_, err := f.dir.Update(context.Background(), f.admin, "alice", domain.UserPatch{
		Username: domain.Some("Admin"),
	})
	if !fieldErrors(t, err).Has("username") {
		t.Fatalf("expected reserved username error, got %v", err)
	}
}

func TestDirectoryService_Update_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.dir.Update(context.Background(), f.admin, "nobody", domain.UserPatch{Role: domain.Some("admin")})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDirectoryService_Deactivate(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pass123")

	u, err := f.dir.Deactivate(context.Background(), f.admin, "alice")
	if err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if u.IsActive {
		t.Fatalf("user should be inactive")
	}

	// Soft delete: the row is still there.
	if _, err := f.dir.Get(context.Background(), f.admin, "alice"); err != nil {
		t.Fatalf("deactivated user should still exist: %v", err)
	}

	if _, err := f.dir.Deactivate(context.Background(), f.admin, "alice"); !errors.Is(err, domain.ErrAlreadyInactive) {
		t.Fatalf("expected ErrAlreadyInactive, got %v", err)
	}
}

func TestDirectoryService_Deactivate_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.dir.Deactivate(context.Background(), f.admin, "nobody")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDirectoryService_List_LargeOffset(t *testing.T) {
	f := newFixture(t)
	seedUsers(t, f, 2)

	res, err := f.dir.List(context.Background(), f.admin, 1, 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Items) != 3 || res.Pagination.TotalPages != 1 {
		t.Fatalf("unexpected result: %+v", res.Pagination)
	}
}

func TestDirectoryService_List_HugePageIsEmpty(t *testing.T) {
	f := newFixture(t)
	seedUsers(t, f, 4)
	f.users.listCalls = 0

	res, err := f.dir.List(context.Background(), f.admin, math.MaxInt, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Items) != 0 {
		t.Fatalf("expected no items past the last page, got %d", len(res.Items))
	}
	if res.Pagination.TotalPages != 3 || res.Pagination.HasNext {
		t.Fatalf("unexpected metadata: %+v", res.Pagination)
	}
	if f.users.listCalls != 0 {
		t.Fatalf("store should not be read for a page past the end")
	}
}

func TestDirectoryService_List_HugeOffset(t *testing.T) {
	f := newFixture(t)
	seedUsers(t, f, 4)

	res, err := f.dir.List(context.Background(), f.admin, 1, math.MaxInt)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Items) != 5 || res.Pagination.TotalPages != 1 || res.Pagination.HasNext {
		t.Fatalf("unexpected result: %d items %+v", len(res.Items), res.Pagination)
	}
}
