package prompts

import (
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	RegisterAll()
	m.Run()
}

func TestBuildConceptExtraction(t *testing.T) {
	p, err := Build(PromptConceptExtraction, Input{SourceText: "Caches store hot data."})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.SchemaName != "concept_extraction" || p.Schema == nil {
		t.Fatalf("schema missing: name=%q", p.SchemaName)
	}
	if !strings.Contains(p.User, "Caches store hot data.") {
		t.Fatalf("user prompt missing source text:\n%s", p.User)
	}

	if _, err := Build(PromptConceptExtraction, Input{}); err == nil {
		t.Fatal("empty SourceText should fail validation")
	}
}

func TestBuildQuestionGeneration(t *testing.T) {
	p, err := Build(PromptQuestionGeneration, Input{
		SeedConceptsJSON: `[{"name":"Cache"}]`,
		QuestionCount:    3,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.User, "exactly 3 open-ended questions") {
		t.Fatalf("question count not rendered:\n%s", p.User)
	}

	if _, err := Build(PromptQuestionGeneration, Input{SeedConceptsJSON: "[]"}); err == nil {
		t.Fatal("zero QuestionCount should fail validation")
	}
}

func TestBuildAnswerPromptsAreTextOnly(t *testing.T) {
	for _, name := range []PromptName{PromptContextAnswer, PromptLearnerAnswer} {
		p, err := Build(name, Input{Question: "What is a cache?", ContextBlock: "- Cache: stores hot data"})
		if err != nil {
			t.Fatalf("Build(%s): %v", name, err)
		}
		if p.SchemaName != "" || p.Schema != nil {
			t.Fatalf("%s should not carry a schema", name)
		}
		if !strings.Contains(p.User, "What is a cache?") {
			t.Fatalf("%s user prompt missing question", name)
		}
	}

	// The learner persona must never see an empty knowledge block; that
	// case is handled upstream without a model call.
	if _, err := Build(PromptLearnerAnswer, Input{Question: "What is a cache?"}); err == nil {
		t.Fatal("learner answer with empty ContextBlock should fail validation")
	}
}

func TestBuildAnswerGrading(t *testing.T) {
	p, err := Build(PromptAnswerGrading, Input{
		Question:         "What is a cache?",
		FullAnswer:       "A cache stores hot data.",
		RestrictedAnswer: "I do not know.",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.SchemaName != "answer_grading" {
		t.Fatalf("schema name = %q", p.SchemaName)
	}
	for _, frag := range []string{"What is a cache?", "A cache stores hot data.", "I do not know."} {
		if !strings.Contains(p.User, frag) {
			t.Fatalf("user prompt missing %s:\n%s", frag, p.User)
		}
	}

	// The grader always sees both answers; a blank one means an upstream bug.
	if _, err := Build(PromptAnswerGrading, Input{Question: "q", FullAnswer: "a"}); err == nil {
		t.Fatal("empty RestrictedAnswer should fail validation")
	}
}

func TestFingerprintStableAcrossInputs(t *testing.T) {
	a, _ := Build(PromptContextAnswer, Input{Question: "q1", ContextBlock: "c"})
	b, _ := Build(PromptContextAnswer, Input{Question: "q2", ContextBlock: "c"})
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatal("different rendered prompts should fingerprint differently")
	}
	c1, _ := Build(PromptContextAnswer, Input{Question: "q1", ContextBlock: "c"})
	if a.Fingerprint() != c1.Fingerprint() {
		t.Fatal("identical prompts should fingerprint identically")
	}
}

func TestUnknownPrompt(t *testing.T) {
	if _, err := Build(PromptName("nope"), Input{}); err == nil {
		t.Fatal("unknown prompt should error")
	}
}
