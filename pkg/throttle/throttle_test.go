package throttle

import (
	"context"
	"math"
	"testing"
	"time"

	"mercator-hq/saturn/pkg/throttle/storage"
)

func newTestThrottle(t *testing.T) *Throttle {
	t.Helper()
	thr, err := New(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { thr.Close() })
	return thr
}

func observe(t *testing.T, thr *Throttle, origin, dest string, amount float64, gap bool) {
	t.Helper()
	thr.Observe(context.Background(), Observation{
		Origin:      origin,
		Destination: dest,
		Amount:      amount,
		DataGap:     gap,
		SettledAt:   time.Now(),
	})
}

func TestNew_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: DefaultConfig()},
		{name: "zero values filled in", cfg: Config{}},
		{name: "bad weights", cfg: Config{Weights: AdjustmentWeights{Stress: 2}}, wantErr: true},
		{name: "negative capacity", cfg: Config{FlowCapacity: -1}, wantErr: true},
		{name: "smoothing above one", cfg: Config{Smoothing: 1.5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thr, err := New(tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if thr != nil {
				thr.Close()
			}
		})
	}
}

func TestSnapshot_UnknownNodeIsWorstCase(t *testing.T) {
	thr := newTestThrottle(t)

	sv := thr.Snapshot("never-seen")
	if sv != WorstCase() {
		t.Errorf("Snapshot(unknown) = %+v, want worst case", sv)
	}
	if sv.Observed {
		t.Error("unknown node must not claim observed history")
	}
}

func TestObserve_UpdatesBothEndpoints(t *testing.T) {
	thr := newTestThrottle(t)

	observe(t, thr, "node-a", "node-b", 100000, false)

	for _, node := range []string{"node-a", "node-b"} {
		sv := thr.Snapshot(node)
		if !sv.Observed {
			t.Errorf("Snapshot(%s).Observed = false, want true after observation", node)
		}
		if sv.Stress <= 0 {
			t.Errorf("Snapshot(%s).Stress = %v, want positive", node, sv.Stress)
		}
	}

	if got := thr.NodeCount(); got != 2 {
		t.Errorf("NodeCount() = %d, want 2", got)
	}
}

func TestObserve_NegativeAmountIgnored(t *testing.T) {
	thr := newTestThrottle(t)

	observe(t, thr, "node-a", "node-b", -100, false)

	if got := thr.NodeCount(); got != 0 {
		t.Errorf("NodeCount() = %d, want 0 after ignored observation", got)
	}
}

func TestObserve_StressEWMA(t *testing.T) {
	thr := newTestThrottle(t)

	// One observation at full capacity: stress = smoothing * 1.0.
	observe(t, thr, "node-a", "node-b", 1_000_000, false)
	sv := thr.Snapshot("node-a")
	if math.Abs(sv.Stress-0.2) > 1e-12 {
		t.Errorf("Stress after one full-capacity observation = %v, want 0.2", sv.Stress)
	}

	// A second full-capacity observation compounds the EWMA.
	observe(t, thr, "node-a", "node-b", 1_000_000, false)
	sv = thr.Snapshot("node-a")
	want := 0.8*0.2 + 0.2*1.0
	if math.Abs(sv.Stress-want) > 1e-12 {
		t.Errorf("Stress after two observations = %v, want %v", sv.Stress, want)
	}
}

func TestObserve_FrictionTracksDataGaps(t *testing.T) {
	thr := newTestThrottle(t)

	observe(t, thr, "node-a", "node-b", 100, true)
	withGap := thr.Snapshot("node-a").Friction
	if math.Abs(withGap-0.2) > 1e-12 {
		t.Errorf("Friction after gap observation = %v, want 0.2", withGap)
	}

	observe(t, thr, "node-a", "node-b", 100, false)
	after := thr.Snapshot("node-a").Friction
	if after >= withGap {
		t.Errorf("Friction should decay after a clean observation, got %v then %v", withGap, after)
	}
}

func TestCentrality_NormalizedFlowShare(t *testing.T) {
	thr := newTestThrottle(t)

	// hub participates in both corridors; spokes in one each.
	observe(t, thr, "hub", "spoke-1", 1000, false)
	observe(t, thr, "spoke-2", "hub", 1000, false)

	hub := thr.Snapshot("hub").Centrality
	spoke := thr.Snapshot("spoke-1").Centrality

	// hub flow = 2000 of total 2000*2 corridor-endpoint flow.
	if math.Abs(hub-0.5) > 1e-12 {
		t.Errorf("hub centrality = %v, want 0.5", hub)
	}
	if math.Abs(spoke-0.25) > 1e-12 {
		t.Errorf("spoke centrality = %v, want 0.25", spoke)
	}
	if hub <= spoke {
		t.Error("hub must be more central than a spoke")
	}
}

func TestComputeLimit_TightensUnderStress(t *testing.T) {
	thr := newTestThrottle(t)

	unknown := thr.ComputeLimit("never-seen", 10000)
	if unknown >= 10000 {
		t.Errorf("ComputeLimit(unknown) = %v, want tightened below base", unknown)
	}

	observe(t, thr, "calm-node", "other", 1, false)
	calm := thr.ComputeLimit("calm-node", 10000)
	if calm <= unknown {
		t.Errorf("calm node limit %v should exceed worst-case limit %v", calm, unknown)
	}
}

func TestAdjust_MatchesSnapshotFactor(t *testing.T) {
	thr := newTestThrottle(t)

	observe(t, thr, "node-a", "node-b", 500000, true)

	sv := thr.Snapshot("node-a")
	adjusted := thr.Adjust(10000, sv)
	computed := thr.ComputeLimit("node-a", 10000)

	if math.Abs(adjusted-computed) > 1e-9 {
		t.Errorf("Adjust via snapshot = %v, ComputeLimit = %v, want equal", adjusted, computed)
	}
}

func TestDecay_RelaxesStressAndFriction(t *testing.T) {
	thr := newTestThrottle(t)

	observe(t, thr, "node-a", "node-b", 1_000_000, true)
	before := thr.Snapshot("node-a")

	thr.Decay(0.5)
	after := thr.Snapshot("node-a")

	if math.Abs(after.Stress-before.Stress*0.5) > 1e-12 {
		t.Errorf("Stress after decay = %v, want %v", after.Stress, before.Stress*0.5)
	}
	if math.Abs(after.Friction-before.Friction*0.5) > 1e-12 {
		t.Errorf("Friction after decay = %v, want %v", after.Friction, before.Friction*0.5)
	}
	if after.Centrality != before.Centrality {
		t.Error("Decay must not touch centrality")
	}
}

func TestDecay_OutOfRangeFactorIgnored(t *testing.T) {
	thr := newTestThrottle(t)

	observe(t, thr, "node-a", "node-b", 1_000_000, false)
	before := thr.Snapshot("node-a")

	thr.Decay(1.0)
	thr.Decay(-0.5)

	if got := thr.Snapshot("node-a"); got != before {
		t.Errorf("state changed after invalid decay: %+v vs %+v", got, before)
	}
}

func TestRestore_RebuildsState(t *testing.T) {
	backend := storage.NewMemoryBackend()

	first, err := New(Config{Storage: backend}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	observe(t, first, "node-a", "node-b", 250000, true)
	want := first.Snapshot("node-a")

	// A fresh throttle over the same backend restores the persisted state.
	second, err := New(Config{Storage: backend}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer second.Close()

	if err := second.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	got := second.Snapshot("node-a")
	if math.Abs(got.Stress-want.Stress) > 1e-12 {
		t.Errorf("restored Stress = %v, want %v", got.Stress, want.Stress)
	}
	if math.Abs(got.Friction-want.Friction) > 1e-12 {
		t.Errorf("restored Friction = %v, want %v", got.Friction, want.Friction)
	}
	if math.Abs(got.Centrality-want.Centrality) > 1e-12 {
		t.Errorf("restored Centrality = %v, want %v", got.Centrality, want.Centrality)
	}
	if second.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", second.NodeCount())
	}
}
