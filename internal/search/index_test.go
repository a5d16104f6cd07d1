package search

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/starford/noteflow/internal/models"
)

func fixture() []models.Note {
	return []models.Note{
		{
			ID: "n1", Title: "Quarterly planning",
			Content: []models.Block{
				{Type: models.BlockParagraph, Content: "Budget review and headcount"},
			},
			Tags:      []string{"planning"},
			UpdatedAt: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "n2", Title: "Grocery list",
			Content: []models.Block{
				{Type: models.BlockBulletedList, Content: "milk"},
				{Type: models.BlockParagraph, Content: "quarter of a watermelon"},
			},
			UpdatedAt: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "n3", Title: "Reading notes",
			Tags:      []string{"books"},
			UpdatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestQueryEmptyReturnsNoResults(t *testing.T) {
	idx := Build(fixture())
	if got := idx.Query(""); len(got) != 0 {
		t.Errorf("empty query returned %d results", len(got))
	}
	if got := idx.Query("   "); len(got) != 0 {
		t.Errorf("whitespace query returned %d results", len(got))
	}
}

func TestQueryNoMatch(t *testing.T) {
	idx := Build(fixture())
	if got := idx.Query("xyzzy"); len(got) != 0 {
		t.Errorf("nonsense query returned %d results", len(got))
	}
}

func TestQueryTitleOutranksContent(t *testing.T) {
	idx := Build(fixture())

	got := idx.Query("quarter")
	if len(got) < 2 {
		t.Fatalf("results = %d, want at least 2", len(got))
	}
	// "Quarterly planning" matches in the title (weight 0.7); the grocery
	// note only matches in body text (weight 0.3).
	if got[0].ID != "n1" {
		t.Errorf("top result = %s, want n1", got[0].ID)
	}
}

func TestQueryMatchesTags(t *testing.T) {
	idx := Build(fixture())
	got := idx.Query("books")
	if len(got) == 0 {
		t.Fatal("tag query returned nothing")
	}
	if got[0].ID != "n3" {
		t.Errorf("top result = %s, want n3", got[0].ID)
	}
	found := false
	for _, h := range got[0].Highlights {
		if h == "books" {
			found = true
		}
	}
	if !found {
		t.Errorf("highlights = %v, want to include the matched tag", got[0].Highlights)
	}
}

func TestContentPreviewSkipsNonTextBlocks(t *testing.T) {
	blocks := []models.Block{
		{Type: models.BlockHeading1, Content: "Title"},
		{Type: models.BlockCode, Content: "fmt.Println()"},
		{Type: models.BlockParagraph, Content: "Body"},
		{Type: models.BlockDivider},
	}
	got := ContentPreview(blocks)
	if got != "Title Body" {
		t.Errorf("preview = %q, want %q", got, "Title Body")
	}
}

func TestContentPreviewCapped(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := ContentPreview([]models.Block{{Type: models.BlockParagraph, Content: long}})
	if len(got) != previewLimit+3 {
		t.Errorf("preview length = %d, want %d", len(got), previewLimit+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("capped preview missing ellipsis")
	}
}

func TestResultCarriesNoteFields(t *testing.T) {
	idx := Build(fixture())
	got := idx.Query("grocery")
	if len(got) == 0 {
		t.Fatal("no results")
	}
	r := got[0]
	if r.ID != "n2" || r.Title != "Grocery list" {
		t.Errorf("result = %+v", r)
	}
	if r.Content == "" {
		t.Error("result preview empty")
	}
	if r.Score <= 0 {
		t.Errorf("score = %f, want > 0", r.Score)
	}
}

func TestContentPreviewCutsOnRuneBoundary(t *testing.T) {
	// 150 two-byte runes put the byte cap mid-rune.
	blocks := []models.Block{{Type: models.BlockParagraph, Content: strings.Repeat("é", 150)}}
	got := ContentPreview(blocks)

	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("preview %q not truncated", got)
	}
	if len(got) > previewLimit+3 {
		t.Errorf("preview length = %d", len(got))
	}
}
