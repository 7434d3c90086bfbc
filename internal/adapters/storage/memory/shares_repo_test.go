package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"safety-inspections/internal/domain/shares"
)

func TestSharesRepo_DuplicateToken(t *testing.T) {
	repo := NewSharesRepo()
	ctx := context.Background()

	first := shares.Grant{ID: "g-1", InspectionID: "insp-1", Token: "tok-1", Permission: shares.PermissionView, CreatedBy: "u-1", IsActive: true}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	second := shares.Grant{ID: "g-2", InspectionID: "insp-2", Token: "tok-1", Permission: shares.PermissionView, CreatedBy: "u-2", IsActive: true}
	if err := repo.Create(ctx, second); err != shares.ErrDuplicateToken {
		t.Fatalf("expected ErrDuplicateToken, got %v", err)
	}

	// el grant original no se pisó
	got, err := repo.GetByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetByToken returned error: %v", err)
	}
	if got.ID != "g-1" {
		t.Fatalf("expected original grant preserved, got %s", got.ID)
	}
}

func TestSharesRepo_ConcurrentIncrementAccess(t *testing.T) {
	repo := NewSharesRepo()
	ctx := context.Background()

	g := shares.Grant{ID: "g-1", InspectionID: "insp-1", Token: "tok-1", Permission: shares.PermissionView, CreatedBy: "u-1", IsActive: true}
	if err := repo.Create(ctx, g); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if err := repo.IncrementAccess(ctx, "tok-1", time.Now()); err != nil {
				t.Errorf("IncrementAccess returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	// ningún incremento se pierde bajo concurrencia
	got, err := repo.GetByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetByToken returned error: %v", err)
	}
	if got.AccessCount != workers {
		t.Fatalf("expected access count %d, got %d", workers, got.AccessCount)
	}
}

func TestSharesRepo_ListByInspection_NewestFirst(t *testing.T) {
	repo := NewSharesRepo()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"g-old", "g-mid", "g-new"} {
		g := shares.Grant{
			ID: id, InspectionID: "insp-1", Token: "tok-" + id,
			Permission: shares.PermissionView, CreatedBy: "u-1", IsActive: true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, g); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}
	other := shares.Grant{ID: "g-x", InspectionID: "insp-2", Token: "tok-x", Permission: shares.PermissionView, CreatedBy: "u-1", IsActive: true}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, err := repo.ListByInspection(ctx, "insp-1")
	if err != nil {
		t.Fatalf("ListByInspection returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 grants, got %d", len(got))
	}
	for i, want := range []string{"g-new", "g-mid", "g-old"} {
		if got[i].ID != want {
			t.Fatalf("expected %s at position %d, got %s", want, i, got[i].ID)
		}
	}
}

func TestSharesRepo_DeleteRemovesTokenIndex(t *testing.T) {
	repo := NewSharesRepo()
	ctx := context.Background()

	g := shares.Grant{ID: "g-1", InspectionID: "insp-1", Token: "tok-1", Permission: shares.PermissionView, CreatedBy: "u-1", IsActive: true}
	if err := repo.Create(ctx, g); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := repo.Delete(ctx, "g-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := repo.GetByToken(ctx, "tok-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// el token quedó libre para un grant nuevo
	again := shares.Grant{ID: "g-2", InspectionID: "insp-1", Token: "tok-1", Permission: shares.PermissionView, CreatedBy: "u-1", IsActive: true}
	if err := repo.Create(ctx, again); err != nil {
		t.Fatalf("expected token reusable after delete, got %v", err)
	}
}
