// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package recommend

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recommerce/internal/dataset"
	"github.com/tomtom215/recommerce/internal/embedding"
	"github.com/tomtom215/recommerce/internal/logging"
)

func testTables() dataset.Tables {
	return dataset.Tables{
		Users: []dataset.UserProfile{
			{UserID: "u1", Age: 22, Gender: "F", Location: "Oslo", Interests: "Outdoors,Fashion"},
			{UserID: "u2", Age: 24, Gender: "F", Location: "Oslo", Interests: "Outdoors"},
			{UserID: "u3", Age: 58, Gender: "M", Location: "Lisbon", Interests: "Cooking"},
			{UserID: "u4", Age: 35, Gender: "M", Location: "Madrid", Interests: "Tech, Gaming"},
			{UserID: "u5", Age: 41, Gender: "", Location: "Lisbon", Interests: ""},
			{UserID: "u6", Age: 30, Gender: "F", Location: "Madrid", Interests: "Fashion"},
		},
		Products: []dataset.Product{
			{ID: "p1", Name: "Winter Jacket", Category: "Outerwear", Price: 129.99},
			{ID: "p2", Name: "Red Shoes", Category: "Footwear", Price: 59.99},
			{ID: "p3", Name: "Blue Shoes", Category: "Footwear", Price: 49.99},
			{ID: "p4", Name: "Red Hat", Category: "Accessories", Price: 19.99},
			{ID: "p5", Name: "Chef Knife", Category: "Kitchen", Price: 89},
			{ID: "p6", Name: "Gaming Mouse", Category: "Electronics", Price: 39.5},
			{ID: "p7", Name: "Rain Jacket", Category: "Outerwear", Price: 99},
		},
		Ratings: []dataset.Rating{
			{UserID: "u1", ProductID: "p1", Rating: 5},
			{UserID: "u1", ProductID: "p2", Rating: 4},
			{UserID: "u2", ProductID: "p7", Rating: 5},
			{UserID: "u2", ProductID: "p1", Rating: 3},
			{UserID: "u3", ProductID: "p5", Rating: 5},
			{UserID: "u4", ProductID: "p6", Rating: 4},
			{UserID: "u5", ProductID: "p5", Rating: 2},
			{UserID: "u6", ProductID: "p4", Rating: 4},
			{UserID: "u6", ProductID: "p3", Rating: 3},
			{UserID: "u6", ProductID: "p404", Rating: 5},
		},
	}
}

// countingSource counts Load calls and optionally fails or stalls.
type countingSource struct {
	inner dataset.Source
	err   error
	delay time.Duration
	loads atomic.Int32
}

func (s *countingSource) Load(ctx context.Context) (*dataset.Tables, error) {
	s.loads.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.inner.Load(ctx)
}

func (s *countingSource) Name() string { return "counting" }

func newTestEncoder(t *testing.T) embedding.Encoder {
	t.Helper()
	enc, err := embedding.NewHashingEncoder(embedding.DefaultHashingConfig())
	if err != nil {
		t.Fatalf("NewHashingEncoder() error = %v", err)
	}
	return enc
}

func newTestEngine(t *testing.T, source dataset.Source) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), source, newTestEncoder(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func names(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

func TestNewEngine(t *testing.T) {
	enc := newTestEncoder(t)
	src := dataset.NewStaticSource(testTables())

	tests := []struct {
		name    string
		cfg     *Config
		source  dataset.Source
		encoder embedding.Encoder
		wantErr bool
	}{
		{"nil config uses defaults", nil, src, enc, false},
		{"valid config", DefaultConfig(), src, enc, false},
		{"invalid config", &Config{Neighbors: 0}, src, enc, true},
		{"missing source", DefaultConfig(), nil, enc, true},
		{"missing encoder", DefaultConfig(), src, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(tt.cfg, tt.source, tt.encoder, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && engine.Status().Initialized {
				t.Error("NewEngine() should not initialize eagerly")
			}
		})
	}
}

func TestEngine_LazyExactlyOnceInit(t *testing.T) {
	src := &countingSource{inner: dataset.NewStaticSource(testTables()), delay: 20 * time.Millisecond}
	engine := newTestEngine(t, src)

	if got := src.loads.Load(); got != 0 {
		t.Fatalf("loads before first call = %d, want 0", got)
	}

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = engine.GetRecommendations(context.Background(), "u1", "jacket")
			} else {
				_, err = engine.Search(context.Background(), "jacket", 3)
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent call error = %v", err)
		}
	}
	if got := src.loads.Load(); got != 1 {
		t.Errorf("loads = %d, want exactly 1", got)
	}

	if err := engine.EnsureReady(context.Background()); err != nil {
		t.Errorf("EnsureReady() error = %v", err)
	}
	if got := src.loads.Load(); got != 1 {
		t.Errorf("loads after EnsureReady = %d, want 1", got)
	}
}

func TestEngine_InitFailure(t *testing.T) {
	cause := &dataset.DataError{Dataset: dataset.DatasetRatings, Column: dataset.ColRating, Err: dataset.ErrMissingColumn}
	src := &countingSource{err: cause}
	engine := newTestEngine(t, src)
	ctx := context.Background()

	calls := []struct {
		name string
		call func() error
	}{
		{"Recommend", func() error { _, err := engine.Recommend(ctx, "u1", "x", 5); return err }},
		{"Search", func() error { _, err := engine.Search(ctx, "x", 5); return err }},
		{"GetRecommendations", func() error { _, err := engine.GetRecommendations(ctx, "u1", "x"); return err }},
		{"EnsureReady", func() error { return engine.EnsureReady(ctx) }},
		{"zero top_n still fails", func() error { _, err := engine.Recommend(ctx, "u1", "x", 0); return err }},
	}

	for _, c := range calls {
		t.Run(c.name, func(t *testing.T) {
			err := c.call()
			if !errors.Is(err, ErrDataUnavailable) {
				t.Errorf("error = %v, want ErrDataUnavailable", err)
			}
			if !errors.Is(err, dataset.ErrMissingColumn) || !errors.Is(err, dataset.ErrMalformedData) {
				t.Errorf("error = %v, want wrapped DataError cause", err)
			}
		})
	}

	if got := src.loads.Load(); got != 1 {
		t.Errorf("loads = %d, want 1 (no retry)", got)
	}

	status := engine.Status()
	if status.Ready || !status.Initialized || status.LastError == "" {
		t.Errorf("Status() = %+v, want initialized, not ready, with error", status)
	}
}

func TestEngine_InitFailureFromInvalidData(t *testing.T) {
	tables := testTables()
	tables.Users = nil
	engine := newTestEngine(t, dataset.NewStaticSource(tables))

	_, err := engine.Search(context.Background(), "jacket", 3)
	if !errors.Is(err, ErrDataUnavailable) || !errors.Is(err, dataset.ErrEmptyDataset) {
		t.Errorf("Search() error = %v, want DataUnavailable wrapping ErrEmptyDataset", err)
	}
}

func TestEngine_DuplicateIDsRejectedAtLoad(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*dataset.Tables)
		dataset string
		row     int
	}{
		{
			name:    "duplicate user",
			mutate:  func(tb *dataset.Tables) { tb.Users[2].UserID = tb.Users[0].UserID },
			dataset: dataset.DatasetUsers,
			row:     3,
		},
		{
			name:    "duplicate product",
			mutate:  func(tb *dataset.Tables) { tb.Products[4].ID = tb.Products[1].ID },
			dataset: dataset.DatasetProducts,
			row:     5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := testTables()
			tables.Users = append([]dataset.UserProfile(nil), tables.Users...)
			tables.Products = append([]dataset.Product(nil), tables.Products...)
			tt.mutate(&tables)

			engine := newTestEngine(t, dataset.NewStaticSource(tables))
			_, err := engine.Recommend(context.Background(), "u1", "", 3)
			if !errors.Is(err, ErrDataUnavailable) || !errors.Is(err, dataset.ErrDuplicateID) {
				t.Fatalf("Recommend() error = %v, want DataUnavailable wrapping ErrDuplicateID", err)
			}

			var de *dataset.DataError
			if !errors.As(err, &de) {
				t.Fatalf("error %v does not carry a *DataError", err)
			}
			if de.Dataset != tt.dataset || de.Row != tt.row {
				t.Errorf("DataError dataset/row = %s/%d, want %s/%d", de.Dataset, de.Row, tt.dataset, tt.row)
			}
			if st := engine.Status(); st.Ready || st.UserCount != 0 {
				t.Errorf("Status() = %+v, want not ready and no stores built", st)
			}
		})
	}
}

func TestEngine_UnknownUserEqualsSearch(t *testing.T) {
	engine := newTestEngine(t, dataset.NewStaticSource(testTables()))
	ctx := context.Background()

	tests := []struct {
		userID string
		query  string
		topN   int
	}{
		{"new-user", "winter jacket", 5},
		{"", "red shoes", 3},
		{"u999", "", 4},
		{"ghost", "kitchen knife", 50},
	}

	for _, tt := range tests {
		t.Run(tt.userID+"/"+tt.query, func(t *testing.T) {
			recs, err := engine.Recommend(ctx, tt.userID, tt.query, tt.topN)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			want, err := engine.Search(ctx, tt.query, tt.topN)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if !reflect.DeepEqual(recs, want) {
				t.Errorf("Recommend() = %v, Search() = %v", names(recs), names(want))
			}
		})
	}
}

func TestEngine_WinterJacketForNewUser(t *testing.T) {
	engine := newTestEngine(t, dataset.NewStaticSource(testTables()))

	recs, err := engine.GetRecommendations(context.Background(), "brand-new", "winter jacket")
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("len = %d, want default top_n 5", len(recs))
	}
	want := Recommendation{Name: "Winter Jacket", Category: "Outerwear", Price: 129.99}
	if recs[0] != want {
		t.Errorf("recs[0] = %+v, want %+v", recs[0], want)
	}
}

func TestEngine_SearchExactName(t *testing.T) {
	engine := newTestEngine(t, dataset.NewStaticSource(testTables()))

	recs, err := engine.Search(context.Background(), "red shoes", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "Red Shoes" {
		t.Errorf("Search(red shoes) = %v, want [Red Shoes]", names(recs))
	}
}

func TestEngine_KnownUserProperties(t *testing.T) {
	engine := newTestEngine(t, dataset.NewStaticSource(testTables()))
	ctx := context.Background()

	for _, userID := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		for _, topN := range []int{1, 2, 5, 20} {
			recs, err := engine.Recommend(ctx, userID, "ignored", topN)
			if err != nil {
				t.Fatalf("Recommend(%s, %d) error = %v", userID, topN, err)
			}
			if len(recs) > topN {
				t.Errorf("Recommend(%s, %d) len = %d", userID, topN, len(recs))
			}

			seen := make(map[string]bool)
			for _, r := range recs {
				if seen[r.Name] {
					t.Errorf("Recommend(%s, %d) duplicate %s", userID, topN, r.Name)
				}
				seen[r.Name] = true
			}

			again, _ := engine.Recommend(ctx, userID, "ignored", topN)
			if !reflect.DeepEqual(recs, again) {
				t.Errorf("Recommend(%s, %d) not deterministic", userID, topN)
			}
		}
	}
}

func TestEngine_KnownUserIgnoresQuery(t *testing.T) {
	engine := newTestEngine(t, dataset.NewStaticSource(testTables()))
	ctx := context.Background()

	a, _ := engine.Recommend(ctx, "u1", "winter jacket", 3)
	b, _ := engine.Recommend(ctx, "u1", "gaming mouse", 3)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("known user results depend on query: %v vs %v", names(a), names(b))
	}
	if len(a) == 0 {
		t.Fatal("Recommend(u1) returned no products")
	}
}

func TestEngine_ZeroAndNegativeCounts(t *testing.T) {
	engine := newTestEngine(t, dataset.NewStaticSource(testTables()))
	ctx := context.Background()

	tests := []struct {
		name string
		call func() ([]Recommendation, error)
	}{
		{"recommend known zero", func() ([]Recommendation, error) { return engine.Recommend(ctx, "u1", "", 0) }},
		{"recommend unknown zero", func() ([]Recommendation, error) { return engine.Recommend(ctx, "nobody", "jacket", 0) }},
		{"recommend negative", func() ([]Recommendation, error) { return engine.Recommend(ctx, "u1", "", -3) }},
		{"search zero", func() ([]Recommendation, error) { return engine.Search(ctx, "jacket", 0) }},
		{"search negative", func() ([]Recommendation, error) { return engine.Search(ctx, "jacket", -1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := tt.call()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if recs == nil || len(recs) != 0 {
				t.Errorf("got %v, want empty non-nil list", recs)
			}
		})
	}
}

func TestEngine_SearchLargerThanCatalog(t *testing.T) {
	engine := newTestEngine(t, dataset.NewStaticSource(testTables()))

	recs, err := engine.Search(context.Background(), "shoes", 100)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(recs) != 7 {
		t.Errorf("len = %d, want catalog size 7", len(recs))
	}
}

func TestEngine_Status(t *testing.T) {
	engine := newTestEngine(t, dataset.NewStaticSource(testTables()))

	before := engine.Status()
	if before.Ready || before.Initialized {
		t.Errorf("Status() before init = %+v", before)
	}
	if before.Source != "static" || before.ModelVersion != "hashing-v1" {
		t.Errorf("Status() source/model = %q/%q", before.Source, before.ModelVersion)
	}

	if err := engine.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}

	s := engine.Status()
	if !s.Ready || !s.Initialized || s.LastError != "" {
		t.Errorf("Status() = %+v, want ready", s)
	}
	if s.UserCount != 6 || s.ProductCount != 7 || s.RatingCount != 10 {
		t.Errorf("counts = %d/%d/%d, want 6/7/10", s.UserCount, s.ProductCount, s.RatingCount)
	}
	// location, age, F, M, Cooking, Fashion, Gaming, Outdoors, Tech
	if s.FeatureDimension != 9 {
		t.Errorf("FeatureDimension = %d, want 9", s.FeatureDimension)
	}
	if len(s.FeatureColumns) != 10 || s.FeatureColumns[0] != "user_id" {
		t.Errorf("FeatureColumns = %v", s.FeatureColumns)
	}
	if s.EmbeddingDimension != embedding.DefaultHashingConfig().Dimension {
		t.Errorf("EmbeddingDimension = %d", s.EmbeddingDimension)
	}
	if s.InitializedAt.IsZero() {
		t.Error("InitializedAt not set")
	}

	s.FeatureColumns[0] = "mutated"
	if engine.Status().FeatureColumns[0] != "user_id" {
		t.Error("Status() exposes internal slice")
	}
}

func TestEngine_Config(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultTopN = 2
	engine, err := NewEngine(cfg, dataset.NewStaticSource(testTables()), newTestEncoder(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	cfg.DefaultTopN = 7
	if engine.Config().DefaultTopN != 2 {
		t.Errorf("engine config changed through caller's pointer")
	}

	recs, err := engine.GetRecommendations(context.Background(), "nobody", "shoes")
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("len = %d, want 2", len(recs))
	}
}

func TestEngine_RequestLogging(t *testing.T) {
	previous := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(previous) })

	var buf bytes.Buffer
	logger := logging.NewTestLogger(&buf).Level(zerolog.DebugLevel)

	engine, err := NewEngine(DefaultConfig(), dataset.NewStaticSource(testTables()), newTestEncoder(t), logger)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	ctx := logging.ContextWithRequestID(context.Background(), "req-123")
	if _, err := engine.Recommend(ctx, "nobody", "jacket", 2); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"component":"recommend"`, `"request_id":"req-123"`, "recommendation engine ready", "falling back"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s", want)
		}
	}

	buf.Reset()
	if _, err := engine.Search(ctx, "shoes", 3); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	out = buf.String()
	for _, want := range []string{"semantic search complete", `"request_id":"req-123"`, `"top_k":3`, `"returned":3`} {
		if !strings.Contains(out, want) {
			t.Errorf("search log output missing %s: %s", want, out)
		}
	}
}

func TestEngine_CancelledRequestContextDoesNotPoisonInit(t *testing.T) {
	engine := newTestEngine(t, dataset.NewStaticSource(testTables()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = engine.EnsureReady(ctx)

	if _, err := engine.Search(context.Background(), "jacket", 2); err != nil {
		t.Errorf("Search() after cancelled first call error = %v", err)
	}
}
