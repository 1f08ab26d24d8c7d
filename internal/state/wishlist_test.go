package state

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"storefront-gateway/internal/domain"
)

func wishlistItemsFixture() []domain.ProductSummary {
	return []domain.ProductSummary{
		{ID: "p1", Title: "Wireless Mouse"},
		{ID: "p2", Title: "Notebook"},
	}
}

func TestWishlist_AddItem_MutatesThenRefetches(t *testing.T) {
	items := wishlistItemsFixture()
	api := &mockWishlistAPI{
		addWishlistItem: func(_ context.Context, token, productID string) error {
			if token != "upstream-token" || productID != "p2" {
				t.Errorf("unexpected mutation %s/%s", token, productID)
			}
			return nil
		},
		wishlist: func(context.Context, string) ([]domain.ProductSummary, error) {
			return items, nil
		},
	}
	snapshots := newMockSnapshotCache()
	notifier := &mockNotifier{}
	wishlist := NewWishlist(api, snapshots, notifier)
	session := sessionFixture()

	got, err := wishlist.AddItem(context.Background(), session, "p2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls := api.recorded(); len(calls) != 2 || calls[0] != "add" || calls[1] != "fetch" {
		t.Errorf("expected mutation followed by full re-fetch, got %v", calls)
	}
	if diff := cmp.Diff(&domain.WishlistSnapshot{Items: items}, got); diff != "" {
		t.Errorf("snapshot must come from the re-fetch (-want +got):\n%s", diff)
	}

	cached, err := snapshots.GetWishlist(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("snapshot not written through to cache: %v", err)
	}
	if len(cached.Items) != 2 {
		t.Errorf("unexpected cached snapshot: %+v", cached)
	}

	successes := notifier.allSuccesses()
	if len(successes) != 1 || successes[0] != "Product added to your wishlist." {
		t.Errorf("expected add notification, got %v", successes)
	}
}

func TestWishlist_AddItem_MutationFailureSkipsRefetch(t *testing.T) {
	wantErr := errors.New("upstream said no")
	api := &mockWishlistAPI{
		addWishlistItem: func(context.Context, string, string) error { return wantErr },
	}
	notifier := &mockNotifier{}
	wishlist := NewWishlist(api, newMockSnapshotCache(), notifier)

	_, err := wishlist.AddItem(context.Background(), sessionFixture(), "p2")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if calls := api.recorded(); len(calls) != 1 {
		t.Errorf("no re-fetch after a failed mutation, got %v", calls)
	}
	if got := notifier.allSuccesses(); len(got) != 0 {
		t.Errorf("no success notification on failure, got %v", got)
	}
}

func TestWishlist_RemoveItem_MutatesThenRefetches(t *testing.T) {
	remaining := []domain.ProductSummary{{ID: "p1", Title: "Wireless Mouse"}}
	api := &mockWishlistAPI{
		removeWishlistItem: func(_ context.Context, _, productID string) error {
			if productID != "p2" {
				t.Errorf("expected removal of p2, got %q", productID)
			}
			return nil
		},
		wishlist: func(context.Context, string) ([]domain.ProductSummary, error) {
			return remaining, nil
		},
	}
	wishlist := NewWishlist(api, newMockSnapshotCache(), &mockNotifier{})

	got, err := wishlist.RemoveItem(context.Background(), sessionFixture(), "p2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ID != "p1" {
		t.Errorf("unexpected snapshot: %+v", got)
	}
}

func TestWishlist_Contains_IsLocal(t *testing.T) {
	api := &mockWishlistAPI{
		wishlist: func(context.Context, string) ([]domain.ProductSummary, error) {
			return wishlistItemsFixture(), nil
		},
	}
	wishlist := NewWishlist(api, newMockSnapshotCache(), &mockNotifier{})
	session := sessionFixture()

	if wishlist.Contains(session.ID, "p1") {
		t.Error("unhydrated mirror must read as not contained")
	}

	if _, err := wishlist.Refresh(context.Background(), session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	callsAfterRefresh := len(api.recorded())

	if !wishlist.Contains(session.ID, "p1") {
		t.Error("expected p1 in wishlist")
	}
	if wishlist.Contains(session.ID, "p99") {
		t.Error("p99 is not in the wishlist")
	}
	if len(api.recorded()) != callsAfterRefresh {
		t.Error("Contains must not touch the network")
	}
}

func TestWishlist_RequiresSession(t *testing.T) {
	wishlist := NewWishlist(&mockWishlistAPI{}, newMockSnapshotCache(), &mockNotifier{})
	anonymous := &domain.Session{}

	if _, err := wishlist.AddItem(context.Background(), anonymous, "p1"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("AddItem: expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := wishlist.RemoveItem(context.Background(), anonymous, "p1"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("RemoveItem: expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := wishlist.Snapshot(context.Background(), anonymous); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("Snapshot: expected ErrNotAuthenticated, got %v", err)
	}
}

func TestWishlist_Snapshot_CacheFallback(t *testing.T) {
	session := sessionFixture()
	snapshots := newMockSnapshotCache()
	snapshots.wishlists[session.ID] = &domain.WishlistSnapshot{Items: wishlistItemsFixture()}

	api := &mockWishlistAPI{}
	wishlist := NewWishlist(api, snapshots, &mockNotifier{})

	got, err := wishlist.Snapshot(context.Background(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 2 {
		t.Errorf("expected cached snapshot, got %+v", got)
	}
	if len(api.recorded()) != 0 {
		t.Error("cache hit must not touch the upstream")
	}
}
