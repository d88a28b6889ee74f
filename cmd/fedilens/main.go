package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fedilens/internal/cmdlog"
	"fedilens/internal/collect"
	"fedilens/internal/config"
	"fedilens/internal/content"
	"fedilens/internal/export"
	"fedilens/internal/fediclient"
	"fedilens/internal/logging"
	"fedilens/internal/measure"
	"fedilens/internal/metrics"
	"fedilens/internal/model"
	"fedilens/internal/normalize"
	"fedilens/internal/socialgraph"
	"fedilens/internal/store/crawlcache"
	"fedilens/internal/theme"
	"fedilens/internal/util"
)

func main() {
	metrics.StartServer("")
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	var err error
	switch cmd {
	case "init":
		err = cmdlog.Run("init", cmdInit)
	case "verify":
		err = cmdlog.Run("verify", cmdVerify)
	case "posts":
		err = cmdlog.Run("posts", cmdPosts)
	case "users":
		err = cmdlog.Run("users", cmdUsers)
	case "build":
		err = cmdlog.Run("build", cmdBuild)
	case "measure":
		err = cmdlog.Run("measure", cmdMeasure)
	case "analyze":
		err = cmdlog.Run("analyze", cmdAnalyze)
	default:
		printHelp()
		return
	}
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: fedilens <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./fedilens.yaml")
	fmt.Println("  verify      Check API credentials and timeline access")
	fmt.Println("  posts       Collect hashtag-seeded posts with thread context")
	fmt.Println("  users       Collect accounts by follower/following expansion")
	fmt.Println("  build       Build diffusion and friendship graphs, export GEXF/CSV")
	fmt.Println("  measure     Compute network measures on the friendship graph")
	fmt.Println("  analyze     LLM keyword extraction and word cloud")
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = config.Default()
			cfg.ResolveEnv()
			return cfg, nil
		}
		return cfg, err
	}
	return cfg, nil
}

func newClient(cfg config.Config) *fediclient.HTTPClient {
	return fediclient.NewHTTPClient(cfg.API.BaseURL, cfg.API.AccessToken)
}

func cmdInit() error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./fedilens.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	if err := config.Save(*path, config.Default()); err != nil {
		return err
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
	return nil
}

func cmdVerify() error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	cfgPath := fs.String("config", "./fedilens.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.RequireAPI(); err != nil {
		return err
	}
	client := newClient(cfg)
	ctx := context.Background()

	me, err := client.VerifyCredentials(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Auth OK")
	fmt.Println("Username:", me["username"])
	fmt.Println("Acct:", me["acct"])
	fmt.Println("Profile URL:", me["url"])

	public, err := client.TimelinePublic(ctx, 3)
	if err != nil {
		return err
	}
	fmt.Println("Public timeline sample:", len(public))
	for _, raw := range public {
		p := normalize.Status(raw)
		preview := util.Snippet(normalize.StripHTML(p.ContentHTML), 80)
		fmt.Println("-", p.ID, "by", p.Account.Acct, ":", preview)
	}

	if tag, err := client.TimelineHashtag(ctx, "ai", 3, ""); err == nil {
		fmt.Println("Hashtag #ai sample:", len(tag))
	} else {
		fmt.Println("Hashtag timeline not available on this instance:", err)
	}
	return nil
}

func cmdPosts() error {
	fs := flag.NewFlagSet("posts", flag.ExitOnError)
	cfgPath := fs.String("config", "./fedilens.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.RequireAPI(); err != nil {
		return err
	}
	cache, err := crawlcache.Open(cfg.Paths.DBPath)
	if err != nil {
		return err
	}
	defer cache.Close()

	start := time.Now()
	metrics.CollectRuns.Inc()
	posts, err := collect.Posts(context.Background(), newClient(cfg), cache, collect.PostsOptions{
		Hashtags:          cfg.Collect.Hashtags,
		Target:            cfg.Collect.TargetPosts,
		Buffer:            cfg.Collect.Buffer,
		BatchLimit:        cfg.Collect.BatchLimit,
		MaxContextPerSeed: cfg.Collect.MaxContextPerSeed,
		Pace:              time.Duration(cfg.Collect.PaceMs) * time.Millisecond,
	})
	if err != nil {
		metrics.CollectErrors.Inc()
		return err
	}
	metrics.ObserveCollectDuration(start)
	out := filepath.Join(cfg.Paths.DataDir, "posts.json")
	if err := saveJSON(out, posts); err != nil {
		return err
	}
	fmt.Printf("Saved %d posts to %s\n", len(posts), out)
	return nil
}

func cmdUsers() error {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	cfgPath := fs.String("config", "./fedilens.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.RequireAPI(); err != nil {
		return err
	}
	cache, err := crawlcache.Open(cfg.Paths.DBPath)
	if err != nil {
		return err
	}
	defer cache.Close()

	start := time.Now()
	metrics.CollectRuns.Inc()
	users, err := collect.Users(context.Background(), newClient(cfg), cache, collect.UsersOptions{
		Seeds:       cfg.Collect.SeedAccounts,
		Target:      cfg.Collect.TargetUsers,
		FetchLimit:  cfg.Collect.FetchLimit,
		LocalDomain: cfg.InstanceDomain(),
		Pace:        time.Duration(cfg.Collect.PaceMs) * time.Millisecond,
	})
	if err != nil {
		metrics.CollectErrors.Inc()
		return err
	}
	metrics.ObserveCollectDuration(start)
	out := filepath.Join(cfg.Paths.DataDir, "users.json")
	if err := saveJSON(out, users); err != nil {
		return err
	}
	fmt.Printf("Saved %d users to %s\n", len(users), out)
	return nil
}

func cmdBuild() error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	cfgPath := fs.String("config", "./fedilens.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	var posts []model.Post
	if err := loadJSON(filepath.Join(cfg.Paths.DataDir, "posts.json"), &posts); err != nil {
		return fmt.Errorf("load posts: %w", err)
	}
	var users []model.Account
	if err := loadJSON(filepath.Join(cfg.Paths.DataDir, "users.json"), &users); err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	// backfill domain for user files produced outside this tool
	for i := range users {
		if users[i].Domain == "" {
			users[i].Domain = normalize.DomainFromAcct(users[i].Acct, cfg.InstanceDomain())
		}
	}

	var hints []model.EdgeHint
	hintsPath := filepath.Join(cfg.Paths.DataDir, "user_edges.json")
	if _, err := os.Stat(hintsPath); err == nil {
		if err := loadJSON(hintsPath, &hints); err != nil {
			logging.Warn("build_edge_hints_unreadable", map[string]any{"path": hintsPath, "error": err.Error()})
		} else {
			logging.Info("build_edge_hints", map[string]any{"count": len(hints)})
		}
	}

	diffusion := socialgraph.BuildDiffusion(posts)
	friendship := socialgraph.BuildFriendship(users, hints)
	if friendship.Strategy == socialgraph.DomainFallback {
		logging.Warn("build_friendship_fallback", map[string]any{"skipped_hints": friendship.SkippedHints})
		fmt.Println("warning: no edge hints resolved; falling back to domain grouping")
	}

	socialgraph.Sanitize(diffusion)
	socialgraph.Sanitize(friendship.Graph)

	for _, out := range []struct {
		prefix string
		g      *socialgraph.Graph
	}{
		{"information_diffusion", diffusion},
		{"friendship", friendship.Graph},
	} {
		prefix, g := out.prefix, out.g
		gexfPath := filepath.Join(cfg.Paths.GraphsDir, prefix+".gexf")
		if err := export.WriteGEXF(g, gexfPath); err != nil {
			return err
		}
		nodesPath, edgesPath, err := export.WriteCSVs(g, cfg.Paths.GraphsDir, prefix)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d nodes, %d edges -> %s, %s, %s\n", prefix, g.NumNodes(), g.NumEdges(), gexfPath, nodesPath, edgesPath)
	}
	return nil
}

func cmdMeasure() error {
	fs := flag.NewFlagSet("measure", flag.ExitOnError)
	cfgPath := fs.String("config", "./fedilens.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	g, err := export.ReadGEXF(filepath.Join(cfg.Paths.GraphsDir, "friendship.gexf"))
	if err != nil {
		return fmt.Errorf("load friendship graph (run build first): %w", err)
	}
	rep := measure.Compute(g)

	if err := measure.WriteNodeMetricsCSV(rep, filepath.Join(cfg.Paths.MeasureDir, "friendship_node_metrics.csv")); err != nil {
		return err
	}
	if err := measure.WriteSummary(rep, filepath.Join(cfg.Paths.MeasureDir, "friendship_summary.txt")); err != nil {
		return err
	}
	if err := measure.WriteHistograms(rep, cfg.Paths.MeasureDir); err != nil {
		return err
	}
	fmt.Printf("Measured %d nodes, %d edges; outputs in %s\n", rep.NodeCount, rep.EdgeCount, cfg.Paths.MeasureDir)
	return nil
}

func cmdAnalyze() error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	cfgPath := fs.String("config", "./fedilens.yaml", "config path")
	limit := fs.Int("limit", 500, "max posts to process")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.RequireLLM(); err != nil {
		return err
	}

	var posts []model.Post
	if err := loadJSON(filepath.Join(cfg.Paths.DataDir, "posts.json"), &posts); err != nil {
		return fmt.Errorf("load posts: %w", err)
	}
	if err := content.Analyze(context.Background(), cfg.LLM, posts, *limit, cfg.Paths.ContentDir); err != nil {
		return err
	}
	fmt.Println("Content outputs written to", cfg.Paths.ContentDir)
	return nil
}

func loadJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func saveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

