package content

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"fedilens/internal/config"
	"fedilens/internal/logging"
	"fedilens/internal/model"
	"fedilens/internal/normalize"
	"fedilens/internal/util"
)

// PostKeywords is one keyword-extraction record, one line of the JSONL
// output.
type PostKeywords struct {
	ID       string   `json:"id"`
	URL      string   `json:"url"`
	Keywords []string `json:"keywords"`
	Text     string   `json:"text"`
}

// Analyze extracts keywords for up to limit posts and writes the
// content outputs into dir: keywords.jsonl, keywords_by_post.csv,
// keywords_summary.csv, wordcloud.png, samples_table.csv.
func Analyze(ctx context.Context, cfg config.LLMConfig, posts []model.Post, limit int, dir string) error {
	if limit > 0 && limit < len(posts) {
		posts = posts[:limit]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	ex := NewExtractor(cfg)

	logging.Info("content_start", map[string]any{"posts": len(posts), "model": cfg.Model})
	rows := make([]PostKeywords, 0, len(posts))
	for _, p := range posts {
		text := normalize.StripHTML(p.ContentHTML)
		tags := lowerAll(p.Tags)
		kws, err := ex.Extract(ctx, text, tags)
		if err != nil {
			// exhausted retries are unrecoverable for the run
			return err
		}
		rows = append(rows, PostKeywords{ID: p.ID, URL: urlOf(p), Keywords: kws, Text: text})
		pacing(ctx)
	}

	if err := writeJSONL(rows, filepath.Join(dir, "keywords.jsonl")); err != nil {
		return err
	}
	if err := writeByPostCSV(rows, filepath.Join(dir, "keywords_by_post.csv")); err != nil {
		return err
	}
	counts := CountKeywords(rows)
	if err := writeSummaryCSV(counts, filepath.Join(dir, "keywords_summary.csv")); err != nil {
		return err
	}
	if err := RenderWordCloud(counts, filepath.Join(dir, "wordcloud.png")); err != nil {
		return err
	}
	if err := writeSamplesCSV(rows, filepath.Join(dir, "samples_table.csv")); err != nil {
		return err
	}
	logging.Info("content_done", map[string]any{"rows": len(rows), "keywords": len(counts)})
	return nil
}

// pacing sleeps 50–100ms between posts so the model endpoint is not
// hammered back-to-back.
func pacing(ctx context.Context) {
	d := 50*time.Millisecond + time.Duration(rand.Int63n(int64(50*time.Millisecond)))
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func urlOf(p model.Post) string {
	if p.URL == nil {
		return ""
	}
	return *p.URL
}

func writeJSONL(rows []PostKeywords, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func writeByPostCSV(rows []PostKeywords, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "keyword1", "keyword2", "keyword3", "url"}); err != nil {
		return err
	}
	for _, r := range rows {
		k := append(append([]string{}, r.Keywords...), "", "", "")
		if err := w.Write([]string{r.ID, k[0], k[1], k[2], r.URL}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// KeywordCount pairs a keyword with its corpus frequency.
type KeywordCount struct {
	Keyword string
	Count   int
}

// CountKeywords tallies keyword frequency across all rows, most common
// first; ties keep first-seen order.
func CountKeywords(rows []PostKeywords) []KeywordCount {
	counts := make(map[string]int)
	var order []string
	for _, r := range rows {
		for _, k := range r.Keywords {
			if k == "" {
				continue
			}
			if counts[k] == 0 {
				order = append(order, k)
			}
			counts[k]++
		}
	}
	out := make([]KeywordCount, 0, len(order))
	for _, k := range order {
		out = append(out, KeywordCount{Keyword: k, Count: counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func writeSummaryCSV(counts []KeywordCount, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"keyword", "count"}); err != nil {
		return err
	}
	for _, c := range counts {
		if err := w.Write([]string{c.Keyword, strconv.Itoa(c.Count)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeSamplesCSV(rows []PostKeywords, path string) error {
	if len(rows) > 10 {
		rows = rows[:10]
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"post_id", "keywords", "snippet"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.ID, strings.Join(r.Keywords, ", "), util.Snippet(r.Text, 140)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
