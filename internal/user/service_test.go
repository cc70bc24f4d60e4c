package user

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestGetOrCreateNewPhone(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	u, created, err := svc.GetOrCreate(ctx, "+79123456789")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if !created {
		t.Fatalf("expected creation for new phone")
	}
	if u.Phone != "+79123456789" {
		t.Fatalf("expected phone to round-trip, got %q", u.Phone)
	}
	if len(u.InviteCode) != 6 {
		t.Fatalf("expected 6-character invite code, got %q", u.InviteCode)
	}
	if u.HasActivated() {
		t.Fatalf("new user should not have an activated invite code")
	}
}

func TestGetOrCreateReturnsExisting(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	first, _, err := svc.GetOrCreate(ctx, "+79123456789")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	second, created, err := svc.GetOrCreate(ctx, "+79123456789")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if created {
		t.Fatalf("expected no creation on second call")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same user, got %s and %s", first.ID, second.ID)
	}
	if second.InviteCode != first.InviteCode {
		t.Fatalf("invite code must not be regenerated: %q vs %q", first.InviteCode, second.InviteCode)
	}
}

func TestGetOrCreateRetriesOnInviteCodeCollision(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	codes := []string{"SAME00", "SAME00", "OTHER1"}
	var calls int
	svc.SetInviteCodeGenerator(func() string {
		code := codes[calls%len(codes)]
		calls++
		return code
	})

	first, _, err := svc.GetOrCreate(ctx, "+70000000001")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.InviteCode != "SAME00" {
		t.Fatalf("expected first user to take SAME00, got %q", first.InviteCode)
	}

	second, created, err := svc.GetOrCreate(ctx, "+70000000002")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if !created {
		t.Fatalf("expected creation for second phone")
	}
	if second.InviteCode != "OTHER1" {
		t.Fatalf("expected retry to pick OTHER1, got %q", second.InviteCode)
	}
}

func TestGetOrCreateExhaustsCollisionRetries(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	svc.SetInviteCodeGenerator(func() string { return "SAME00" })

	if _, _, err := svc.GetOrCreate(ctx, "+70000000001"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, _, err := svc.GetOrCreate(ctx, "+70000000002"); err == nil {
		t.Fatalf("expected error when every generated code collides")
	}
}

// racingRepository reports the phone as absent on the first lookup, so the
// service attempts a creation that loses against a pre-existing row.
type racingRepository struct {
	Repository
	mu     sync.Mutex
	misses int
}

func (r *racingRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	r.mu.Lock()
	first := r.misses == 0
	r.misses++
	r.mu.Unlock()
	if first {
		return User{}, ErrNotFound
	}
	return r.Repository.FindByPhone(ctx, phone)
}

func TestGetOrCreateLosesCreationRace(t *testing.T) {
	mem := NewMemoryRepository()
	ctx := context.Background()

	winner, _, err := NewService(mem).GetOrCreate(ctx, "+79123456789")
	if err != nil {
		t.Fatalf("seed winner: %v", err)
	}

	svc := NewService(&racingRepository{Repository: mem})
	u, created, err := svc.GetOrCreate(ctx, "+79123456789")
	if err != nil {
		t.Fatalf("get or create after lost race: %v", err)
	}
	if created {
		t.Fatalf("loser must not report a creation")
	}
	if u.ID != winner.ID {
		t.Fatalf("loser must observe the winner's record, got %s want %s", u.ID, winner.ID)
	}
}

func TestConcurrentCreationsYieldUniqueInviteCodes(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	results := make([]User, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, _, err := svc.GetOrCreate(ctx, fmt.Sprintf("+7912345%04d", i))
			results[i] = u
			errs[i] = err
		}(i)
	}
	wg.Wait()

	seen := make(map[string]string, n)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("create %d: %v", i, errs[i])
		}
		if other, dup := seen[results[i].InviteCode]; dup {
			t.Fatalf("invite code %q assigned to both %s and %s", results[i].InviteCode, other, results[i].Phone)
		}
		seen[results[i].InviteCode] = results[i].Phone
	}
}

func TestSetActivatedInviteCodeIsWriteOnce(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	u, _, err := svc.GetOrCreate(ctx, "+79123456789")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.SetActivatedInviteCode(ctx, u.ID, "ABC123"); err != nil {
		t.Fatalf("first activation write: %v", err)
	}
	if err := svc.SetActivatedInviteCode(ctx, u.ID, "DEF456"); err != ErrAlreadyActivated {
		t.Fatalf("expected ErrAlreadyActivated, got %v", err)
	}

	reloaded, err := svc.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ActivatedInviteCode != "ABC123" {
		t.Fatalf("activated code must be unchanged, got %q", reloaded.ActivatedInviteCode)
	}
}
