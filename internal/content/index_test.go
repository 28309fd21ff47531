package content

import (
	"testing"
	"time"
)

func sampleUserData() UserData {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return UserData{
		Username:       "kojied",
		AccountCreated: ts,
		LinkKarma:      120,
		CommentKarma:   4500,
		Posts: []PostRecord{
			{ID: "p1", Title: "Learning Rust", Subreddit: "rust", CreatedAt: ts, Score: 10, URL: "https://reddit.com/r/rust/comments/p1"},
			{ID: "p2", Title: "Weekend hike", Content: "Went up the ridge", Subreddit: "hiking", CreatedAt: ts, Score: 3, URL: "https://reddit.com/r/hiking/comments/p2"},
		},
		Comments: []CommentRecord{
			{ID: "c1", Content: "I love systems programming in Rust", Subreddit: "rust", CreatedAt: ts, Score: 7, URL: "https://reddit.com/r/rust/comments/p1/_/c1"},
		},
	}
}

func TestBuildIndex_PostsThenComments(t *testing.T) {
	idx := BuildIndex(sampleUserData())

	if len(idx.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(idx.Items))
	}

	wantIDs := []string{"p1", "p2", "c1"}
	wantKinds := []Kind{KindPost, KindPost, KindComment}
	for i, it := range idx.Items {
		if it.ID != wantIDs[i] {
			t.Errorf("item %d: expected id %s, got %s", i, wantIDs[i], it.ID)
		}
		if it.Kind != wantKinds[i] {
			t.Errorf("item %d: expected kind %s, got %s", i, wantKinds[i], it.Kind)
		}
	}

	if idx.Items[1].Body != "Went up the ridge" {
		t.Errorf("expected post content mapped to body, got %q", idx.Items[1].Body)
	}
	if idx.Items[2].Title != "" {
		t.Errorf("expected empty title for comment, got %q", idx.Items[2].Title)
	}
}

func TestBuildIndex_UserMetaPassThrough(t *testing.T) {
	data := sampleUserData()
	idx := BuildIndex(data)

	if idx.User.Username != "kojied" {
		t.Errorf("expected username kojied, got %q", idx.User.Username)
	}
	if !idx.User.AccountCreated.Equal(data.AccountCreated) {
		t.Errorf("expected account created %v, got %v", data.AccountCreated, idx.User.AccountCreated)
	}
	if idx.User.LinkKarma != 120 || idx.User.CommentKarma != 4500 {
		t.Errorf("unexpected karma: %+v", idx.User)
	}
}

func TestBuildIndex_Empty(t *testing.T) {
	idx := BuildIndex(UserData{Username: "ghost"})
	if len(idx.Items) != 0 {
		t.Errorf("expected no items, got %d", len(idx.Items))
	}
	if idx.Items == nil {
		t.Error("expected non-nil items slice")
	}
}

func TestBuildIndex_KeepsDuplicates(t *testing.T) {
	data := UserData{
		Posts:    []PostRecord{{ID: "same", Title: "a"}},
		Comments: []CommentRecord{{ID: "same", Content: "a"}, {ID: "same", Content: "a"}},
	}
	idx := BuildIndex(data)
	if len(idx.Items) != 3 {
		t.Errorf("expected duplicates kept, got %d items", len(idx.Items))
	}
}

func TestPostsAndComments(t *testing.T) {
	idx := BuildIndex(sampleUserData())
	if n := len(idx.Posts()); n != 2 {
		t.Errorf("expected 2 posts, got %d", n)
	}
	if n := len(idx.Comments()); n != 1 {
		t.Errorf("expected 1 comment, got %d", n)
	}
}

func TestSearchText(t *testing.T) {
	post := Item{Kind: KindPost, Title: "Learning RUST", Body: "Day One"}
	if got := post.SearchText(); got != "learning rust day one" {
		t.Errorf("unexpected post search text %q", got)
	}

	comment := Item{Kind: KindComment, Body: "Hello There"}
	if got := comment.SearchText(); got != " hello there" {
		t.Errorf("unexpected comment search text %q", got)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindPost, "post"},
		{KindComment, "comment"},
		{Kind(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
