package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/gapmap-backend/internal/data/repos/testutil"
	types "github.com/yungbote/gapmap-backend/internal/domain/knowledge"
	"github.com/yungbote/gapmap-backend/internal/pkg/dbctx"
)

func TestConceptRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewConceptRepo(db, testutil.Logger(t))

	cache := &types.Concept{NameKey: "cache", Name: "Cache", Description: "Stores hot data", VectorID: "concept:v-cache"}
	if err := repo.UpsertByNameKey(dbc, cache); err != nil {
		t.Fatalf("UpsertByNameKey(create): %v", err)
	}

	// Same key updates in place rather than creating a second row.
	again := &types.Concept{NameKey: "cache", Name: "Cache", Description: "Stores frequently accessed data", VectorID: "concept:v-cache"}
	if err := repo.UpsertByNameKey(dbc, again); err != nil {
		t.Fatalf("UpsertByNameKey(update): %v", err)
	}
	if n, err := repo.CountAll(dbc); err != nil || n != 1 {
		t.Fatalf("CountAll after re-upsert: n=%d err=%v", n, err)
	}
	got, err := repo.GetByNameKey(dbc, "cache")
	if err != nil || got == nil {
		t.Fatalf("GetByNameKey: got=%v err=%v", got, err)
	}
	if got.Description != "Stores frequently accessed data" {
		t.Fatalf("description not updated: %q", got.Description)
	}
	if got.ID != cache.ID {
		t.Fatalf("re-upsert changed identity: %s vs %s", got.ID, cache.ID)
	}

	if row, err := repo.GetByID(dbc, got.ID); err != nil || row == nil || row.NameKey != "cache" {
		t.Fatalf("GetByID: row=%v err=%v", row, err)
	}
	if rows, err := repo.GetByVectorIDs(dbc, []string{"concept:v-cache"}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByVectorIDs: len=%d err=%v", len(rows), err)
	}
	if row, err := repo.GetByNameKey(dbc, "nope"); err != nil || row != nil {
		t.Fatalf("GetByNameKey(miss) should be (nil, nil): row=%v err=%v", row, err)
	}

	// Learned flag round trip.
	now := time.Now().UTC()
	learned, err := repo.SetLearned(dbc, "cache", true, &now)
	if err != nil || learned == nil || !learned.IsLearned || learned.LearnedAt == nil {
		t.Fatalf("SetLearned(true): row=%v err=%v", learned, err)
	}
	if rows, err := repo.GetLearned(dbc); err != nil || len(rows) != 1 {
		t.Fatalf("GetLearned: len=%d err=%v", len(rows), err)
	}
	unlearned, err := repo.SetLearned(dbc, "cache", false, nil)
	if err != nil || unlearned == nil || unlearned.IsLearned || unlearned.LearnedAt != nil {
		t.Fatalf("SetLearned(false): row=%v err=%v", unlearned, err)
	}
	if row, err := repo.SetLearned(dbc, "missing", true, &now); err != nil || row != nil {
		t.Fatalf("SetLearned(missing) should be (nil, nil): row=%v err=%v", row, err)
	}
}

func TestConceptRepoTopByDegree(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	concepts := NewConceptRepo(db, testutil.Logger(t))
	relations := NewRelationRepo(db, testutil.Logger(t))

	a := &types.Concept{NameKey: "alpha", Name: "Alpha"}
	b := &types.Concept{NameKey: "beta", Name: "Beta"}
	c := &types.Concept{NameKey: "gamma", Name: "Gamma"}
	for _, row := range []*types.Concept{a, b, c} {
		if err := concepts.UpsertByNameKey(dbc, row); err != nil {
			t.Fatalf("UpsertByNameKey(%s): %v", row.NameKey, err)
		}
	}

	// beta sits on two edges, alpha and gamma on one each.
	edges := []*types.ConceptRelation{
		{FromConceptID: a.ID, ToConceptID: b.ID, RelationType: types.RelationPrerequisite},
		{FromConceptID: b.ID, ToConceptID: c.ID, RelationType: types.RelationUses},
	}
	for _, e := range edges {
		if err := relations.Upsert(dbc, e); err != nil {
			t.Fatalf("relation Upsert: %v", err)
		}
	}

	ranked, err := concepts.TopByDegree(dbc, 0)
	if err != nil {
		t.Fatalf("TopByDegree: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("TopByDegree returned %d rows, want 3", len(ranked))
	}
	if ranked[0].NameKey != "beta" || ranked[0].Degree != 2 {
		t.Fatalf("top concept = %s (degree %d), want beta (2)", ranked[0].NameKey, ranked[0].Degree)
	}
	// alpha and gamma tie at degree 1; name_key ascending breaks the tie.
	if ranked[1].NameKey != "alpha" || ranked[2].NameKey != "gamma" {
		t.Fatalf("tie-break order wrong: %s, %s", ranked[1].NameKey, ranked[2].NameKey)
	}

	top1, err := concepts.TopByDegree(dbc, 1)
	if err != nil || len(top1) != 1 || top1[0].NameKey != "beta" {
		t.Fatalf("TopByDegree(1): rows=%v err=%v", top1, err)
	}
}
