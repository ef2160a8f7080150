package index

import (
	"testing"

	"github.com/spigell/assessment-recommender/internal/catalog"
)

func lexicalFixture() *catalog.Snapshot {
	return catalog.NewSnapshot("test", []*catalog.Item{
		{ID: "java-8", Name: "Java 8", Description: "Core Java programming knowledge for developers"},
		{ID: "python-basics", Name: "Python Basics", Description: "Entry level Python programming assessment"},
		{ID: "opq", Name: "OPQ Personality", Description: "Workplace personality questionnaire"},
		{ID: "sales-sjt", Name: "Sales Judgement", Description: "Situational judgement for sales roles"},
	})
}

func TestLexicalSearchRanksMatchingDocsFirst(t *testing.T) {
	idx := BuildLexical(lexicalFixture())

	hits := idx.Search("java programming", 10)
	if len(hits) == 0 {
		t.Fatalf("expected hits for a matching query")
	}

	if hits[0].ID != "java-8" {
		t.Fatalf("expected java-8 first, got %s", hits[0].ID)
	}

	for _, hit := range hits {
		if hit.Score <= 0 {
			t.Fatalf("zero-score doc %s must not be returned", hit.ID)
		}
	}
}

func TestLexicalSearchNoMatches(t *testing.T) {
	idx := BuildLexical(lexicalFixture())

	if hits := idx.Search("astrophysics", 10); len(hits) != 0 {
		t.Fatalf("expected no hits, got %v", hits)
	}
}

func TestLexicalSearchHonorsLimit(t *testing.T) {
	idx := BuildLexical(lexicalFixture())

	hits := idx.Search("assessment programming personality judgement", 2)
	if len(hits) > 2 {
		t.Fatalf("expected at most 2 hits, got %d", len(hits))
	}
}

func TestLexicalSearchIsDeterministic(t *testing.T) {
	idx := BuildLexical(lexicalFixture())

	first := idx.Search("programming assessment", 10)
	for i := 0; i < 5; i++ {
		again := idx.Search("programming assessment", 10)
		if len(again) != len(first) {
			t.Fatalf("hit count changed between runs")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("ordering changed between runs: %v vs %v", again, first)
			}
		}
	}
}

func TestLexicalSearchEmptyQuery(t *testing.T) {
	idx := BuildLexical(lexicalFixture())

	if hits := idx.Search("   ", 10); len(hits) != 0 {
		t.Fatalf("expected no hits for a blank query, got %v", hits)
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Senior Java/Go Developer (remote)")

	want := []string{"senior", "java", "go", "developer", "remote"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %v, got %v", want, tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tokens)
		}
	}
}
