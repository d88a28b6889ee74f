package model

// PostAuthor is the flattened author sub-record carried on each post.
type PostAuthor struct {
	ID          string `json:"id"`
	Acct        string `json:"acct"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}

// Post is a normalized status. Optional fields are pointers so that
// "absent" survives a JSON round trip instead of collapsing to zero.
type Post struct {
	ID              string     `json:"id"`
	CreatedAt       string     `json:"created_at"`
	Language        *string    `json:"language"`
	ContentHTML     string     `json:"content_html"`
	InReplyToID     *string    `json:"in_reply_to_id"`
	ReblogOfID      *string    `json:"reblog_of_id"`
	Account         PostAuthor `json:"account"`
	Mentions        []string   `json:"mentions"`
	Tags            []string   `json:"tags"`
	RepliesCount    *int       `json:"replies_count"`
	ReblogsCount    *int       `json:"reblogs_count"`
	FavouritesCount *int       `json:"favourites_count"`
	URL             *string    `json:"url"`
}

// Connected reports whether the post references a reply or boost parent.
func (p Post) Connected() bool { return p.InReplyToID != nil || p.ReblogOfID != nil }

// Account is a normalized account. Domain is derived from Acct once, at
// normalization time.
type Account struct {
	ID             string `json:"id"`
	Acct           string `json:"acct"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	URL            string `json:"url"`
	FollowersCount *int   `json:"followers_count"`
	FollowingCount *int   `json:"following_count"`
	StatusesCount  *int   `json:"statuses_count"`
	NoteHTML       string `json:"note_html"`
	Bot            bool   `json:"bot"`
	Domain         string `json:"domain"`
}

// EdgeHint is an externally supplied candidate relationship between two
// accounts, by id pair or acct pair. It is not guaranteed to resolve.
type EdgeHint struct {
	SrcID   string `json:"src_id"`
	DstID   string `json:"dst_id"`
	SrcAcct string `json:"src_acct"`
	DstAcct string `json:"dst_acct"`
	Reason  string `json:"reason"`
}
