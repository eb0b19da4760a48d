package kdtree

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestBuildEmpty(t *testing.T) {
	_, err := Build[float64](nil)
	if !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("Build(nil) err = %v, want ErrEmptyIndex", err)
	}
	_, err = Build([]Point[float64]{})
	if !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("Build(empty) err = %v, want ErrEmptyIndex", err)
	}
}

func TestBuildDimensionMismatch(t *testing.T) {
	_, err := Build([]Point[float64]{{1, 2}, {3, 4, 5}})
	if err == nil {
		t.Fatal("Build with mixed dimensions: want error, got nil")
	}
}

func TestNearestKnownPoints(t *testing.T) {
	pts := []Point[int]{{2, 3}, {5, 4}, {9, 6}, {4, 7}, {8, 1}, {7, 2}}
	tr, err := Build(pts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tr.Len() != 6 || tr.K() != 2 {
		t.Fatalf("Len/K = %d/%d, want 6/2", tr.Len(), tr.K())
	}

	tests := []struct {
		name  string
		query Point[int]
		want  Point[int]
	}{
		{"off grid", Point[int]{9, 2}, Point[int]{8, 1}},
		{"exact member", Point[int]{5, 4}, Point[int]{5, 4}},
		{"near corner", Point[int]{2, 2}, Point[int]{2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Nearest(tt.query)
			if got[0] != tt.want[0] || got[1] != tt.want[1] {
				t.Errorf("Nearest(%v) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestNearestSinglePoint(t *testing.T) {
	tr, err := Build([]Point[float64]{{9.25, 47.25}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	queries := []Point[float64]{{9.25, 47.25}, {0, 0}, {-180, 90}, {123, 80}}
	for _, q := range queries {
		got := tr.Nearest(q)
		if got[0] != 9.25 || got[1] != 47.25 {
			t.Errorf("Nearest(%v) = %v, want the only stored point", q, got)
		}
	}
}

func TestNearestNonFiniteQuery(t *testing.T) {
	pts := []Point[float64]{{2, 3}, {5, 4}, {9, 6}, {4, 7}, {8, 1}, {7, 2}}
	tr, err := Build(pts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	stored := map[[2]float64]bool{}
	for _, p := range pts {
		stored[[2]float64{p[0], p[1]}] = true
	}
	queries := []Point[float64]{
		{math.NaN(), math.NaN()},
		{math.NaN(), 2},
		{5, math.NaN()},
		{math.Inf(1), 0},
		{math.Inf(-1), math.Inf(1)},
	}
	for _, q := range queries {
		got := tr.Nearest(q)
		if !stored[[2]float64{got[0], got[1]}] {
			t.Errorf("Nearest(%v) = %v, not a stored point", q, got)
		}
	}
}

func TestNearestDuplicates(t *testing.T) {
	pts := []Point[float64]{{1, 1}, {1, 1}, {1, 1}, {4, 4}}
	tr, err := Build(pts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := tr.Nearest(Point[float64]{1.1, 0.9})
	if got[0] != 1 || got[1] != 1 {
		t.Errorf("Nearest = %v, want (1,1)", got)
	}
}

func TestBuildCopiesPoints(t *testing.T) {
	pts := []Point[float64]{{1, 2}, {3, 4}}
	tr, err := Build(pts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	pts[0][0] = 100
	pts[1] = Point[float64]{100, 100}
	got := tr.Nearest(Point[float64]{1, 2})
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("mutating input after Build changed the index: got %v", got)
	}
}

func bruteNearestSq(pts []Point[float64], q Point[float64]) float64 {
	best := -1.0
	for _, p := range pts {
		d := sqDist(p, q)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

func TestNearestMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	sizes := []int{1, 2, 3, 17, 64, 200}
	for _, k := range []int{2, 3, 4} {
		for _, n := range sizes {
			pts := make([]Point[float64], n)
			for i := range pts {
				p := make(Point[float64], k)
				for d := 0; d < k; d++ {
					p[d] = rng.Float64()*360 - 180
				}
				pts[i] = p
			}
			tr, err := Build(pts)
			if err != nil {
				t.Fatalf("Build(k=%d n=%d): %v", k, n, err)
			}
			for trial := 0; trial < 50; trial++ {
				q := make(Point[float64], k)
				for d := 0; d < k; d++ {
					q[d] = rng.Float64()*360 - 180
				}
				got := tr.Nearest(q)
				gotD := sqDist(got, q)
				wantD := bruteNearestSq(pts, q)
				if gotD != wantD {
					t.Fatalf("k=%d n=%d query %v: tree distance^2 %v, brute force %v", k, n, q, gotD, wantD)
				}
			}
		}
	}
}

func TestNearestConcurrent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pts := make([]Point[float64], 500)
	for i := range pts {
		pts[i] = Point[float64]{rng.Float64() * 100, rng.Float64() * 100}
	}
	tr, err := Build(pts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	done := make(chan struct{})
	for w := 0; w < 8; w++ {
		go func(seed int64) {
			defer func() { done <- struct{}{} }()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				q := Point[float64]{r.Float64() * 100, r.Float64() * 100}
				got := tr.Nearest(q)
				if gotD, wantD := sqDist(got, q), bruteNearestSq(pts, q); gotD != wantD {
					t.Errorf("concurrent query %v: distance^2 %v, want %v", q, gotD, wantD)
					return
				}
			}
		}(int64(w))
	}
	for w := 0; w < 8; w++ {
		<-done
	}
}
