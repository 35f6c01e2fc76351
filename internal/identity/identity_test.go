package identity

import (
	"context"
	"errors"
	"testing"
)

func TestParseRoleNormalizesCase(t *testing.T) {
	cases := []struct {
		raw  string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{"ADMIN", RoleAdmin, true},
		{" Seller ", RoleSeller, true},
		{"CALL_CENTER", RoleCallCenter, true},
		{"super_admin", RoleSuperAdmin, true},
		{"warehouse", Role("warehouse"), false},
		{"", Role(""), false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseRole(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRoleHome(t *testing.T) {
	if got := RoleSeller.Home(); got != "/dashboard/seller" {
		t.Fatalf("unexpected home: %s", got)
	}
	if got := Role("warehouse").Home(); got != "" {
		t.Fatalf("expected empty home for unknown role, got %s", got)
	}
}

func TestUserIdentityNormalizesAtBoundary(t *testing.T) {
	u := &User{ID: "u-1", Email: "a@b.c", Name: "A", Role: "ADMIN", Status: "Pending"}
	id := u.Identity()
	if id.Role != RoleAdmin {
		t.Fatalf("role not normalized: %q", id.Role)
	}
	if id.Status != StatusPending {
		t.Fatalf("status not normalized: %q", id.Status)
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Fatal("expected no identity in empty context")
	}
	want := Identity{ID: "u-7", Role: RoleModerator, Status: StatusApproved}
	ctx = ContextWithIdentity(ctx, want)
	got, ok := FromContext(ctx)
	if !ok || got != want {
		t.Fatalf("unexpected identity: %+v, ok=%v", got, ok)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	u := &User{ID: "u-1", Email: "Ops@AvolShip.io", Name: "Ops", Role: "ADMIN", Status: "approved"}
	if err := store.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, u); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	found, err := store.FindByEmail(ctx, "OPS@avolship.io")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found.Role != RoleAdmin {
		t.Fatalf("role not normalized on create: %q", found.Role)
	}

	if err := store.UpdateStatus(ctx, "u-1", StatusRejected); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	found, err = store.FindByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Status != StatusRejected {
		t.Fatalf("status not updated: %q", found.Status)
	}

	if _, err := store.FindByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	users, err := store.List(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("List: %v, n=%d", err, len(users))
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(hash, "s3cret"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}
