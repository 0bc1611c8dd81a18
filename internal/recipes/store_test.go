package recipes

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func openTestStore(t *testing.T, dedupe DedupeKey) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "recipes.db"), dedupe)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecipe() *Recipe {
	return &Recipe{
		Title:        "Vegan Test Curry",
		Ingredients:  "1 cup lentils, 1 onion",
		Instructions: "Cook lentils. Add onion.",
		Metadata:     map[string]string{"cuisine": "Indian", "difficulty": "Easy"},
	}
}

func Test_Store_AddAndList(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, DedupeTitle)
	ctx := context.Background()

	r := sampleRecipe()
	added, err := s.Add(ctx, r)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !added {
		t.Fatal("Add() = false, want true for new recipe")
	}
	if r.ID == 0 {
		t.Error("Add() did not set recipe ID")
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("All() returned %d recipes, want 1", len(all))
	}
	if all[0].Title != r.Title || all[0].Metadata["cuisine"] != "Indian" {
		t.Errorf("reloaded recipe = %+v", all[0])
	}
}

func Test_Store_DedupeByTitle(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, DedupeTitle)
	ctx := context.Background()

	if _, err := s.Add(ctx, sampleRecipe()); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Same title, different body: still a duplicate under title dedupe.
	dup := sampleRecipe()
	dup.Instructions = "Completely different steps."
	added, err := s.Add(ctx, dup)
	if err != nil {
		t.Fatalf("Add() duplicate error = %v", err)
	}
	if added {
		t.Error("Add() = true for duplicate title, want false")
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func Test_Store_DedupeByContent(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, DedupeContent)
	ctx := context.Background()

	if _, err := s.Add(ctx, sampleRecipe()); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Same body under a new title: duplicate under content dedupe.
	renamed := sampleRecipe()
	renamed.Title = "Renamed Curry"
	added, err := s.Add(ctx, renamed)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if added {
		t.Error("Add() = true for duplicate content, want false")
	}

	// Different body under the original title: not a duplicate.
	changed := sampleRecipe()
	changed.Instructions = "New steps entirely."
	added, err = s.Add(ctx, changed)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !added {
		t.Error("Add() = false for changed content, want true")
	}
}

func Test_Store_DedupeNone(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, DedupeNone)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		added, err := s.Add(ctx, sampleRecipe())
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if !added {
			t.Errorf("Add() call %d = false, want true under none dedupe", i)
		}
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func Test_Store_RejectsEmptyTitle(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, DedupeTitle)

	r := sampleRecipe()
	r.Title = "   "
	if _, err := s.Add(context.Background(), r); err == nil {
		t.Error("Add() with blank title succeeded, want error")
	}
}

func Test_ParseDedupeKey(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want DedupeKey
		ok   bool
	}{
		{"", DedupeTitle, true},
		{"title", DedupeTitle, true},
		{"content", DedupeContent, true},
		{"none", DedupeNone, true},
		{"fuzzy", "", false},
	} {
		got, err := ParseDedupeKey(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseDedupeKey(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseDedupeKey(%q) succeeded, want error", tc.in)
		}
	}
}

func Test_Recipe_Document(t *testing.T) {
	t.Parallel()

	r := sampleRecipe()
	doc := r.Document()

	for _, want := range []string{
		"RECIPE: Vegan Test Curry",
		"CUISINE: Indian",
		"DIFFICULTY: Easy",
		"PREP TIME: Unknown",
		"COOK TIME: Unknown",
		"INGREDIENTS:\n1 cup lentils, 1 onion",
		"INSTRUCTIONS:\nCook lentils. Add onion.",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Document() missing %q:\n%s", want, doc)
		}
	}
	if strings.HasPrefix(doc, "\n") || strings.HasSuffix(doc, "\n") {
		t.Error("Document() has leading or trailing newline")
	}
}

func Test_SeedStore_Idempotent(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, DedupeTitle)
	ctx := context.Background()

	added, err := SeedStore(ctx, s)
	if err != nil {
		t.Fatalf("SeedStore() error = %v", err)
	}
	if added != len(Seed) {
		t.Errorf("first SeedStore() added %d, want %d", added, len(Seed))
	}

	again, err := SeedStore(ctx, s)
	if err != nil {
		t.Fatalf("second SeedStore() error = %v", err)
	}
	if again != 0 {
		t.Errorf("second SeedStore() added %d, want 0", again)
	}
}
