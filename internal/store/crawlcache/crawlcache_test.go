package crawlcache

import (
	"context"
	"path/filepath"
	"testing"

	"fedilens/internal/model"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPutPostIdempotent(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	lang := "en"
	p := model.Post{ID: "1", Language: &lang, Account: model.PostAuthor{Acct: "a@x.com"}}
	if err := db.PutPost(ctx, p); err != nil {
		t.Fatalf("PutPost: %v", err)
	}
	// second write with different content must not replace the first
	p2 := model.Post{ID: "1", Account: model.PostAuthor{Acct: "other@y.com"}}
	if err := db.PutPost(ctx, p2); err != nil {
		t.Fatalf("PutPost repeat: %v", err)
	}

	got, err := db.LoadPosts(ctx)
	if err != nil {
		t.Fatalf("LoadPosts: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d posts, want 1", len(got))
	}
	if got[0].Account.Acct != "a@x.com" {
		t.Fatalf("first record lost: %+v", got[0])
	}
	if got[0].Language == nil || *got[0].Language != "en" {
		t.Fatalf("language not restored: %+v", got[0])
	}
}

func TestLoadPostsInsertionOrder(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		if err := db.PutPost(ctx, model.Post{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := db.LoadPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "a", "b"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("order %v, want %v", got, want)
		}
	}
}

func TestAccounts(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	n := 12
	a := model.Account{ID: "1", Acct: "a@x.com", Domain: "x.com", FollowersCount: &n}
	if err := db.PutAccount(ctx, a); err != nil {
		t.Fatalf("PutAccount: %v", err)
	}
	if err := db.PutAccount(ctx, a); err != nil {
		t.Fatalf("PutAccount repeat: %v", err)
	}
	got, err := db.LoadAccounts(ctx)
	if err != nil {
		t.Fatalf("LoadAccounts: %v", err)
	}
	if len(got) != 1 || got[0].Domain != "x.com" {
		t.Fatalf("got %+v", got)
	}
	if got[0].FollowersCount == nil || *got[0].FollowersCount != 12 {
		t.Fatalf("followers not restored: %+v", got[0])
	}
}

func TestCursors(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	if _, err := db.LoadCursor(ctx, "posts:max_id:ai"); err == nil {
		t.Fatal("expected error for absent cursor")
	}
	if err := db.SaveCursor(ctx, "posts:max_id:ai", "100"); err != nil {
		t.Fatalf("SaveCursor: %v", err)
	}
	if err := db.SaveCursor(ctx, "posts:max_id:ai", "200"); err != nil {
		t.Fatalf("SaveCursor update: %v", err)
	}
	v, err := db.LoadCursor(ctx, "posts:max_id:ai")
	if err != nil {
		t.Fatalf("LoadCursor: %v", err)
	}
	if v != "200" {
		t.Fatalf("cursor = %q, want 200", v)
	}
}
