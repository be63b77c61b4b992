// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package baseline

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/facultypulse/internal/review"
)

func ptr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }

func TestBuild_Global(t *testing.T) {
	t.Parallel()

	corpus := [][]review.Row{
		{
			{Quality: ptr(8), Difficulty: ptr(2), Recommends: boolPtr(true), Category: "CALCULO"},
			{Quality: ptr(6), Recommends: boolPtr(false), Category: "CALCULO"},
		},
		{
			{Quality: ptr(10), Difficulty: ptr(4), Category: "CALCULO"},
			{},
		},
	}

	base := Build(corpus)
	g := base.Global()

	if g.MuQuality == nil || *g.MuQuality != 8 {
		t.Errorf("expected mu_quality 8, got %v", g.MuQuality)
	}
	if g.MuDifficulty == nil || *g.MuDifficulty != 3 {
		t.Errorf("expected mu_difficulty 3, got %v", g.MuDifficulty)
	}
	if g.RecommendationRate == nil || *g.RecommendationRate != 0.5 {
		t.Errorf("expected recommendation_rate 0.5, got %v", g.RecommendationRate)
	}
	if g.TotalReviews != 4 {
		t.Errorf("expected total_reviews 4, got %d", g.TotalReviews)
	}

	cat, ok := base.Category("CALCULO")
	if !ok {
		t.Fatal("expected CALCULO baseline")
	}
	if cat.MuQuality != 8 || cat.NReviews != 3 {
		t.Errorf("unexpected category %+v", cat)
	}
	if math.Abs(cat.SigmaQuality-2) > 1e-9 {
		t.Errorf("expected sigma_quality 2, got %v", cat.SigmaQuality)
	}
	if cat.MuDifficulty != 3 {
		t.Errorf("expected mu_difficulty 3, got %v", cat.MuDifficulty)
	}
}

func TestBuild_Empty(t *testing.T) {
	t.Parallel()

	g := Build(nil).Global()
	if g.MuQuality != nil || g.MuDifficulty != nil || g.RecommendationRate != nil {
		t.Errorf("expected nil means, got %+v", g)
	}
	if g.TotalReviews != 0 {
		t.Errorf("expected 0 reviews, got %d", g.TotalReviews)
	}
}

func TestBuild_CategoryThreshold(t *testing.T) {
	t.Parallel()

	base := Build([][]review.Row{{
		{Quality: ptr(7), Category: "FISICA"},
		{Quality: ptr(9), Category: "FISICA"},
		{Difficulty: ptr(3), Category: "FISICA"},
		{Quality: ptr(5), Category: ""},
		{Quality: ptr(5), Category: "QUIMICA"},
		{Quality: ptr(6), Category: "QUIMICA"},
		{Quality: ptr(7), Category: "QUIMICA"},
	}})

	if _, ok := base.Category("FISICA"); ok {
		t.Error("expected FISICA to be dropped with 2 quality observations")
	}
	if _, ok := base.Category(""); ok {
		t.Error("expected empty category to be ignored")
	}
	cat, ok := base.Category("QUIMICA")
	if !ok {
		t.Fatal("expected QUIMICA baseline")
	}
	if cat.MuDifficulty != 0 || cat.SigmaDifficulty != 1 {
		t.Errorf("expected difficulty defaults 0/1, got %v/%v", cat.MuDifficulty, cat.SigmaDifficulty)
	}
	if got := base.Categories(); !reflect.DeepEqual(got, []string{"QUIMICA"}) {
		t.Errorf("expected [QUIMICA], got %v", got)
	}
}

func TestBuilder_Frozen(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	if err := b.Add([]review.Row{{Quality: ptr(5)}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := b.Freeze()

	if err := b.Add([]review.Row{{Quality: ptr(1)}}); !errors.Is(err, ErrFrozen) {
		t.Errorf("expected ErrFrozen, got %v", err)
	}
	if second := b.Freeze(); !reflect.DeepEqual(first, second) {
		t.Error("expected repeated Freeze to be stable")
	}
}

func TestBuilder_ConcurrentAdd(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Add([]review.Row{{Quality: ptr(4), Category: "ALGEBRA"}})
		}()
	}
	wg.Wait()

	base := b.Freeze()
	if base.Global().TotalReviews != 50 {
		t.Errorf("expected 50 reviews, got %d", base.Global().TotalReviews)
	}
	if cat, _ := base.Category("ALGEBRA"); cat.NReviews != 50 {
		t.Errorf("expected 50 category observations, got %d", cat.NReviews)
	}
}

func TestBaseline_CategoryMapIsCopy(t *testing.T) {
	t.Parallel()

	base := Build([][]review.Row{{
		{Quality: ptr(5), Category: "A"},
		{Quality: ptr(6), Category: "A"},
		{Quality: ptr(7), Category: "A"},
	}})
	m := base.CategoryMap()
	delete(m, "A")
	if _, ok := base.Category("A"); !ok {
		t.Error("expected baseline to be unaffected by map mutation")
	}
}

func TestBaseline_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	base := Build([][]review.Row{{
		{Quality: ptr(6), Difficulty: ptr(2), Category: "CALCULO"},
		{Quality: ptr(8), Difficulty: ptr(3), Category: "CALCULO"},
		{Quality: ptr(10), Difficulty: ptr(4), Category: "CALCULO"},
	}})

	data, err := json.Marshal(base)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored Baseline
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	cat, ok := restored.Category("CALCULO")
	if !ok || cat.MuQuality != 8 || cat.NReviews != 3 {
		t.Errorf("unexpected restored category %+v (%v)", cat, ok)
	}
	if g := restored.Global(); g.TotalReviews != 3 || *g.MuQuality != 8 {
		t.Errorf("unexpected restored global %+v", g)
	}

	var empty Baseline
	if err := json.Unmarshal([]byte(`{"global":{"total_reviews":0}}`), &empty); err != nil {
		t.Fatal(err)
	}
	if empty.CategoryMap() == nil || len(empty.Categories()) != 0 {
		t.Error("expected empty category map")
	}
}
