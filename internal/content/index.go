package content

// Index is the flattened, ordered view of a user's content for one run.
type Index struct {
	User  UserMeta
	Items []Item
}

// BuildIndex flattens posts then comments, preserving fetch order.
// Nothing is filtered or deduplicated and nothing can fail: absent fields
// already arrive as zero values from the fetcher.
func BuildIndex(data UserData) Index {
	items := make([]Item, 0, len(data.Posts)+len(data.Comments))

	for _, p := range data.Posts {
		items = append(items, Item{
			Kind:      KindPost,
			ID:        p.ID,
			Title:     p.Title,
			Body:      p.Content,
			Subreddit: p.Subreddit,
			CreatedAt: p.CreatedAt,
			Score:     p.Score,
			URL:       p.URL,
		})
	}
	for _, c := range data.Comments {
		items = append(items, Item{
			Kind:      KindComment,
			ID:        c.ID,
			Body:      c.Content,
			Subreddit: c.Subreddit,
			CreatedAt: c.CreatedAt,
			Score:     c.Score,
			URL:       c.URL,
		})
	}

	return Index{
		User: UserMeta{
			Username:       data.Username,
			AccountCreated: data.AccountCreated,
			LinkKarma:      data.LinkKarma,
			CommentKarma:   data.CommentKarma,
		},
		Items: items,
	}
}

// Posts returns the post items in index order.
func (idx Index) Posts() []Item {
	return idx.filter(KindPost)
}

// Comments returns the comment items in index order.
func (idx Index) Comments() []Item {
	return idx.filter(KindComment)
}

func (idx Index) filter(k Kind) []Item {
	var out []Item
	for _, it := range idx.Items {
		if it.Kind == k {
			out = append(out, it)
		}
	}
	return out
}
