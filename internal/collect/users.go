package collect

import (
	"context"
	"strings"
	"time"

	"fedilens/internal/dedup"
	"fedilens/internal/fediclient"
	"fedilens/internal/logging"
	"fedilens/internal/model"
	"fedilens/internal/normalize"
	"fedilens/internal/store/crawlcache"
)

// UsersOptions bounds a seed-account expansion run.
type UsersOptions struct {
	// Seed accts, "name@instance" or local "name"
	Seeds []string
	// Final size after trimming
	Target int
	// Items per followers/following call
	FetchLimit int
	// Fallback domain for local accts
	LocalDomain string
	Pace        time.Duration
}

// Users expands from seed accounts across followers and following,
// breadth-first, deduplicating by account id, until Target accounts are
// collected or the frontier is exhausted. Seeds that cannot be resolved
// are logged and skipped. Cached accounts from earlier runs are admitted
// first.
func Users(ctx context.Context, client fediclient.Client, cache *crawlcache.DB, opts UsersOptions) ([]model.Account, error) {
	seen := dedup.NewSet()
	var out []model.Account
	var queue []string

	if cache != nil {
		cached, err := cache.LoadAccounts(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range cached {
			if seen.Admit(a.ID) {
				out = append(out, a)
				queue = append(queue, a.ID)
			}
		}
		if len(cached) > 0 {
			logging.Info("users_resume", map[string]any{"cached": len(cached)})
		}
	}

	admit := func(raw fediclient.Record) bool {
		a := normalize.AccountRecord(raw, opts.LocalDomain)
		if !seen.Admit(a.ID) {
			return false
		}
		out = append(out, a)
		queue = append(queue, a.ID)
		if cache != nil {
			_ = cache.PutAccount(ctx, a)
		}
		return true
	}

	for _, seed := range opts.Seeds {
		raw, err := ResolveAccount(ctx, client, seed)
		if err != nil || raw == nil {
			logging.Warn("users_seed_unresolved", map[string]any{"acct": seed})
			continue
		}
		if admit(raw) {
			logging.Info("users_seed", map[string]any{"acct": seed, "id": normalize.AccountRecord(raw, opts.LocalDomain).ID})
		}
	}

	for len(queue) > 0 && len(out) < opts.Target {
		id := queue[0]
		queue = queue[1:]

		// followers, then following; either may be unavailable on a
		// given instance
		if followers, err := client.AccountFollowers(ctx, id, opts.FetchLimit); err == nil {
			for _, raw := range followers {
				if admit(raw) && len(out) >= opts.Target {
					break
				}
			}
		}
		if len(out) >= opts.Target {
			break
		}
		if following, err := client.AccountFollowing(ctx, id, opts.FetchLimit); err == nil {
			for _, raw := range following {
				if admit(raw) && len(out) >= opts.Target {
					break
				}
			}
		}
		pace(ctx, opts.Pace)
	}

	if len(out) > opts.Target {
		out = out[:opts.Target]
	}
	logging.Info("users_done", map[string]any{"collected": len(out)})
	return out, nil
}

// ResolveAccount maps an acct string to a raw account record via account
// search, preferring an exact acct match.
func ResolveAccount(ctx context.Context, client fediclient.Client, acct string) (fediclient.Record, error) {
	results, err := client.SearchAccounts(ctx, acct, 5)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	for _, r := range results {
		got, _ := r["acct"].(string)
		if got != "" && (got == acct || strings.HasSuffix(acct, got)) {
			return r, nil
		}
	}
	return results[0], nil
}
