package reportstore

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgallion1/seolens/internal/sections"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when a report does not exist.
var ErrNotFound = errors.New("report not found")

const (
	keyRoot    = "seolens/users"
	kindReport = "report"
	nodeSource = "seolens"
)

// Summary is the meta node of a stored report.
type Summary struct {
	Kind      string                    `json:"kind"`
	ID        string                    `json:"id"`
	UserID    string                    `json:"user_id"`
	Title     string                    `json:"title"`
	Slug      string                    `json:"slug,omitempty"`
	URL       string                    `json:"url,omitempty"`
	Model     string                    `json:"model,omitempty"`
	Source    string                    `json:"source,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
	Counts    map[sections.Category]int `json:"counts"`
}

// Report is a stored report with its generated text. Sections are
// recomputed from Text on read.
type Report struct {
	Summary
	Text     string             `json:"text"`
	Document *sections.Document `json:"-"`
}

type textNode struct {
	Text string `json:"text"`
}

type sectionsNode struct {
	Category sections.Category  `json:"category"`
	Sections []sections.Section `json:"sections"`
}

// Store keeps reports in the key-value service, one subtree per report:
//
//	seolens/users/{user}/reports/{report}/meta
//	seolens/users/{user}/reports/{report}/text
//	seolens/users/{user}/reports/{report}/sections/{category}
type Store struct {
	kv    *Client
	limit int
}

// NewStore wraps kv. maxConcurrent bounds parallel writes per report.
func NewStore(kv *Client, maxConcurrent int) *Store {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Store{kv: kv, limit: maxConcurrent}
}

func userKey(userID string) string {
	return keyRoot + "/" + userID + "/reports"
}

func reportKey(userID, reportID string) string {
	return userKey(userID) + "/" + reportID
}

// SaveReport writes the meta, text and per-category nodes of r.
func (s *Store) SaveReport(ctx context.Context, r Report) error {
	if r.ID == "" || r.UserID == "" {
		return errors.New("save report: id and user_id are required")
	}
	doc := sections.Extract(r.Text)
	meta := r.Summary
	meta.Kind = kindReport
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	meta.Counts = Counts(doc)

	base := reportKey(r.UserID, r.ID)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	put := func(key string, v any) {
		g.Go(func() error {
			return s.kv.PutNode(gctx, key, NodeRequest{Value: v, Source: nodeSource})
		})
	}
	put(base+"/text", textNode{Text: r.Text})
	for _, c := range sections.Categories {
		if secs := doc.Sections(c); len(secs) > 0 {
			put(base+"/sections/"+string(c), sectionsNode{Category: c, Sections: secs})
		}
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("save report %s: %w", r.ID, err)
	}

	// Meta goes last so listings never show a report without its text.
	if err := s.kv.PutNode(ctx, base+"/meta", NodeRequest{Value: meta, Source: nodeSource}); err != nil {
		return fmt.Errorf("save report %s: %w", r.ID, err)
	}
	return nil
}

// GetReport loads a report and re-extracts its sections.
func (s *Store) GetReport(ctx context.Context, userID, reportID string) (*Report, error) {
	base := reportKey(userID, reportID)
	var meta, text *Node

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		meta, err = s.kv.GetNode(gctx, base+"/meta")
		return err
	})
	g.Go(func() (err error) {
		text, err = s.kv.GetNode(gctx, base+"/text")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("get report %s: %w", reportID, err)
	}
	if meta == nil || text == nil {
		return nil, ErrNotFound
	}

	r := &Report{}
	if err := json.Unmarshal(meta.Value, &r.Summary); err != nil {
		return nil, fmt.Errorf("decode report meta: %w", err)
	}
	var tn textNode
	if err := json.Unmarshal(text.Value, &tn); err != nil {
		return nil, fmt.Errorf("decode report text: %w", err)
	}
	r.Text = tn.Text
	doc := sections.Extract(r.Text)
	r.Document = &doc
	return r, nil
}

// ListReports returns the user's reports, newest first.
func (s *Store) ListReports(ctx context.Context, userID string) ([]Summary, error) {
	nodes, err := s.kv.ListChildren(ctx, userKey(userID), 0)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	out := []Summary{}
	for _, n := range nodes {
		var sum Summary
		if json.Unmarshal(n.Value, &sum) != nil || sum.Kind != kindReport || sum.ID == "" {
			continue
		}
		out = append(out, sum)
	}
	slices.SortFunc(out, func(a, b Summary) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// DeleteReport removes a report and all of its nodes.
func (s *Store) DeleteReport(ctx context.Context, userID, reportID string) error {
	base := reportKey(userID, reportID)
	meta, err := s.kv.GetNode(ctx, base+"/meta")
	if err != nil {
		return fmt.Errorf("delete report %s: %w", reportID, err)
	}
	if meta == nil {
		return ErrNotFound
	}
	if err := s.kv.DeleteNode(ctx, base, true); err != nil {
		return fmt.Errorf("delete report %s: %w", reportID, err)
	}
	return nil
}

// Counts returns the number of sections per category.
func Counts(doc sections.Document) map[sections.Category]int {
	m := make(map[sections.Category]int, len(sections.Categories))
	for _, c := range sections.Categories {
		m[c] = len(doc.Sections(c))
	}
	return m
}

// Close releases the underlying client.
func (s *Store) Close() {
	s.kv.Close()
}
