// Package search provides an in-memory fuzzy index over note titles,
// content previews, and tags, with weighted ranking and match highlights.
package search

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/starford/noteflow/internal/models"
)

// Field weights. Title matches dominate, tags outrank body text.
const (
	titleWeight   = 0.7
	contentWeight = 0.3
	tagWeight     = 0.5
)

// previewLimit caps the flattened text preview indexed per note.
const previewLimit = 200

// maxHighlights caps the matched substrings reported per result.
const maxHighlights = 3

// Result is one ranked search hit.
type Result struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	NotebookID string    `json:"notebook_id"`
	Tags       []string  `json:"tags"`
	UpdatedAt  time.Time `json:"updated_at"`
	Score      float64   `json:"score"`
	Highlights []string  `json:"highlights"`
}

// Index is an immutable fuzzy-match index over a note snapshot. Build a new
// one whenever the collection changes.
type Index struct {
	notes    []models.Note
	titles   []string
	previews []string

	// tags are flattened across notes; tagOwner maps a flattened tag back
	// to its note's position in notes.
	tags     []string
	tagOwner []int
}

// Build constructs the index from a note snapshot.
func Build(notes []models.Note) *Index {
	idx := &Index{
		notes:    notes,
		titles:   make([]string, len(notes)),
		previews: make([]string, len(notes)),
	}
	for i, n := range notes {
		idx.titles[i] = n.Title
		idx.previews[i] = ContentPreview(n.Content)
		for _, tag := range n.Tags {
			idx.tags = append(idx.tags, tag)
			idx.tagOwner = append(idx.tagOwner, i)
		}
	}
	return idx
}

// ContentPreview flattens the paragraph and heading blocks of a note into a
// single capped text preview. Other block kinds are not part of the indexed
// text.
func ContentPreview(blocks []models.Block) string {
	var parts []string
	for _, b := range blocks {
		switch b.Type {
		case models.BlockParagraph, models.BlockHeading1, models.BlockHeading2, models.BlockHeading3:
			parts = append(parts, b.Content)
		}
	}
	text := strings.Join(parts, " ")
	if len(text) > previewLimit {
		// Back off to a rune boundary so the cut never splits a
		// multi-byte character.
		cut := previewLimit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		return text[:cut] + "..."
	}
	return text
}

type scored struct {
	score      float64
	highlights []string
}

// Query runs a fuzzy search and returns results ranked best-first. An
// empty or whitespace-only query yields an empty result set.
func (idx *Index) Query(text string) []Result {
	term := strings.TrimSpace(text)
	if term == "" {
		return []Result{}
	}

	hits := make(map[int]*scored)
	accumulate := func(noteIdx int, weight float64, m fuzzy.Match) {
		h, ok := hits[noteIdx]
		if !ok {
			h = &scored{}
			hits[noteIdx] = h
		}
		h.score += weight * float64(m.Score)
		if m.Str != "" && len(h.highlights) < maxHighlights {
			h.highlights = append(h.highlights, m.Str)
		}
	}

	for _, m := range fuzzy.Find(term, idx.titles) {
		accumulate(m.Index, titleWeight, m)
	}
	for _, m := range fuzzy.Find(term, idx.previews) {
		accumulate(m.Index, contentWeight, m)
	}
	for _, m := range fuzzy.Find(term, idx.tags) {
		accumulate(idx.tagOwner[m.Index], tagWeight, m)
	}

	out := make([]Result, 0, len(hits))
	for i, h := range hits {
		n := idx.notes[i]
		out = append(out, Result{
			ID:         n.ID,
			Title:      n.Title,
			Content:    idx.previews[i],
			NotebookID: n.NotebookID,
			Tags:       n.Tags,
			UpdatedAt:  n.UpdatedAt,
			Score:      h.score,
			Highlights: h.highlights,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}
