package memory

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/vytalle/storefront/internal/core/domain"
	"github.com/vytalle/storefront/internal/core/ports"
)

func TestSessionStore_ScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	a, b := store.Scope("a"), store.Scope("b")

	if err := a.Set(ctx, "vytalle_session", "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := b.Get(ctx, "vytalle_session"); !errors.Is(err, ports.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound in other scope, got %v", err)
	}
	if v, err := a.Get(ctx, "vytalle_session"); err != nil || v != "one" {
		t.Fatalf("unexpected value %q err %v", v, err)
	}
	if err := a.Delete(ctx, "vytalle_session"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := a.Delete(ctx, "vytalle_session"); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := NewUserRepository(DemoAccounts(), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	u, err := repo.FindActiveByEmail(ctx, " JOAO@vendedor.com ")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.Role != domain.RoleVendor || u.Commission() != 5 {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := repo.FindActiveByEmail(ctx, "carlos@vendedor.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("inactive user must not be found, got %v", err)
	}

	if ok, _ := repo.CheckPassword(ctx, "joao@vendedor.com", "vendedor123"); !ok {
		t.Fatalf("expected password match")
	}
	if ok, _ := repo.CheckPassword(ctx, "joao@vendedor.com", "wrong"); ok {
		t.Fatalf("expected password mismatch")
	}
	if ok, err := repo.CheckPassword(ctx, "ghost@vytalle.com.br", "x"); ok || err != nil {
		t.Fatalf("unknown email should be a plain mismatch, got %v %v", ok, err)
	}
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(SeedProducts())

	list, err := c.ListActive(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 active products, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name > list[i].Name {
			t.Fatalf("list not sorted by name")
		}
	}

	if _, err := c.FindBySlug(ctx, "fio-pdo-espiculado"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("inactive product must not be found, got %v", err)
	}
	p, err := c.FindBySlug(ctx, "acido-hialuronico-1ml-lips")
	if err != nil || p.ID != "prd-002" {
		t.Fatalf("unexpected %+v %v", p, err)
	}
}
