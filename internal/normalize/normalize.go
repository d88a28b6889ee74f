package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"fedilens/internal/model"
)

// Status converts one raw API status record into a canonical post.
// Identifiers are coerced to strings, missing optional fields stay nil,
// and the nested account is flattened to a small author sub-record.
func Status(raw map[string]any) model.Post {
	p := model.Post{
		ID:          asString(raw["id"]),
		CreatedAt:   asString(raw["created_at"]),
		Language:    asStringPtr(raw["language"]),
		ContentHTML: asString(raw["content"]),
		InReplyToID: asStringPtr(raw["in_reply_to_id"]),
		URL:         asStringPtr(raw["url"]),
	}
	if reblog, ok := raw["reblog"].(map[string]any); ok {
		p.ReblogOfID = asStringPtr(reblog["id"])
	}
	if acct, ok := raw["account"].(map[string]any); ok {
		p.Account = model.PostAuthor{
			ID:          asString(acct["id"]),
			Acct:        asString(acct["acct"]),
			Username:    asString(acct["username"]),
			DisplayName: asString(acct["display_name"]),
			URL:         asString(acct["url"]),
		}
	}
	p.Mentions = collectField(raw["mentions"], "acct")
	p.Tags = collectField(raw["tags"], "name")
	p.RepliesCount = asIntPtr(raw["replies_count"])
	p.ReblogsCount = asIntPtr(raw["reblogs_count"])
	p.FavouritesCount = asIntPtr(raw["favourites_count"])
	return p
}

// AccountRecord converts one raw API account record into a canonical
// account. The domain is derived from the acct handle once, here.
func AccountRecord(raw map[string]any, localDomain string) model.Account {
	acct := asString(raw["acct"])
	return model.Account{
		ID:             asString(raw["id"]),
		Acct:           acct,
		Username:       asString(raw["username"]),
		DisplayName:    asString(raw["display_name"]),
		URL:            asString(raw["url"]),
		FollowersCount: asIntPtr(raw["followers_count"]),
		FollowingCount: asIntPtr(raw["following_count"]),
		StatusesCount:  asIntPtr(raw["statuses_count"]),
		NoteHTML:       asString(raw["note"]),
		Bot:            raw["bot"] == true,
		Domain:         DomainFromAcct(acct, localDomain),
	}
}

// DomainFromAcct extracts the instance domain from an acct handle.
// A handle is either "name@domain" or a bare local "name"; locals get
// the fallback domain, empty handles get "unknown".
func DomainFromAcct(acct, fallback string) string {
	if acct == "" {
		return "unknown"
	}
	if i := strings.IndexByte(acct, '@'); i >= 0 {
		return strings.ToLower(acct[i+1:])
	}
	if fallback == "" {
		return "unknown"
	}
	return fallback
}

// collectField pulls one string field out of a list of raw sub-records.
func collectField(v any, key string) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			if s := asString(m[key]); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		// whole-number ids decoded as float64 must not grow a ".0"
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := asString(v)
	if s == "" {
		return nil
	}
	return &s
}

func asIntPtr(v any) *int {
	switch t := v.(type) {
	case float64:
		n := int(t)
		return &n
	case int:
		return &t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			n := int(i)
			return &n
		}
	}
	return nil
}
