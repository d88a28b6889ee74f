package collect

import (
	"context"
	"time"

	"fedilens/internal/dedup"
	"fedilens/internal/fediclient"
	"fedilens/internal/logging"
	"fedilens/internal/model"
	"fedilens/internal/normalize"
	"fedilens/internal/store/crawlcache"
)

// PostsOptions bounds a keyword-seeded post collection run.
type PostsOptions struct {
	Hashtags []string
	// Final size after trimming
	Target int
	// Collected above target before trimming; improves the odds of
	// keeping posts whose thread partners are also in the set
	Buffer int
	// Items per timeline call
	BatchLimit int
	// Cap on thread-context posts admitted per seed
	MaxContextPerSeed int
	Pace              time.Duration
}

// Posts gathers hashtag-seeded posts with thread-context expansion.
// Each new seed's conversation (ancestors and descendants) is pulled up
// to the per-seed cap, everything is deduplicated across hashtags and
// contexts, and the result is trimmed to exactly opts.Target preferring
// connected posts. Cached posts from earlier runs are admitted first so
// an interrupted collection resumes instead of restarting.
func Posts(ctx context.Context, client fediclient.Client, cache *crawlcache.DB, opts PostsOptions) ([]model.Post, error) {
	seen := dedup.NewSet()
	var out []model.Post
	want := opts.Target + opts.Buffer

	if cache != nil {
		cached, err := cache.LoadPosts(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range cached {
			if seen.Admit(p.ID) {
				out = append(out, p)
			}
		}
		if len(cached) > 0 {
			logging.Info("posts_resume", map[string]any{"cached": len(cached)})
		}
	}

	admit := func(raw fediclient.Record) (model.Post, bool) {
		p := normalize.Status(raw)
		if !seen.Admit(p.ID) {
			return p, false
		}
		out = append(out, p)
		if cache != nil {
			_ = cache.PutPost(ctx, p)
		}
		return p, true
	}

	for _, tag := range opts.Hashtags {
		if len(out) >= want {
			break
		}
		logging.Info("posts_hashtag", map[string]any{"tag": tag, "have": len(out), "want": want})
		maxID := ""
		if cache != nil {
			if v, err := cache.LoadCursor(ctx, "posts:max_id:"+tag); err == nil {
				maxID = v
			}
		}
		for len(out) < want {
			page, err := client.TimelineHashtag(ctx, tag, opts.BatchLimit, maxID)
			if err != nil {
				// a hashtag timeline an instance refuses is degraded data,
				// not a dead run
				logging.Warn("posts_hashtag_unavailable", map[string]any{"tag": tag, "error": err.Error()})
				break
			}
			if len(page) == 0 {
				break
			}
			maxID = normalize.Status(page[len(page)-1]).ID
			if cache != nil {
				_ = cache.SaveCursor(ctx, "posts:max_id:"+tag, maxID)
			}

			for _, raw := range page {
				if len(out) >= want {
					break
				}
				seedPost, added := admit(raw)
				if added && len(out) < want {
					expandContext(ctx, client, seedPost.ID, opts.MaxContextPerSeed, func() bool { return len(out) >= want }, admit)
				}
				pace(ctx, opts.Pace)
			}
			pace(ctx, opts.Pace)
		}
	}

	final := PreferConnected(out, opts.Target)
	logging.Info("posts_done", map[string]any{"collected": len(out), "final": len(final)})
	return final, nil
}

// expandContext admits a seed's thread ancestors and descendants up to
// maxAdd new posts. Missing context support yields nothing, silently.
func expandContext(ctx context.Context, client fediclient.Client, seedID string, maxAdd int, full func() bool, admit func(fediclient.Record) (model.Post, bool)) {
	ancestors, descendants, err := client.StatusContext(ctx, seedID)
	if err != nil {
		return
	}
	added := 0
	for _, raw := range append(ancestors, descendants...) {
		if _, ok := admit(raw); ok {
			added++
			if added >= maxAdd || full() {
				return
			}
		}
	}
}

// PreferConnected trims posts to at most n, keeping every post with a
// reply or boost parent first and filling remaining slots in order.
func PreferConnected(posts []model.Post, n int) []model.Post {
	var connected, others []model.Post
	for _, p := range posts {
		if p.Connected() {
			connected = append(connected, p)
		} else {
			others = append(others, p)
		}
	}
	if len(connected) >= n {
		return connected[:n]
	}
	slots := n - len(connected)
	if slots > len(others) {
		slots = len(others)
	}
	return append(connected, others[:slots]...)
}

func pace(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
