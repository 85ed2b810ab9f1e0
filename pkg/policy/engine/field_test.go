package engine

import (
	"testing"
)

func testTransaction() *Transaction {
	return &Transaction{
		ID:          "tx-001",
		Amount:      15000,
		Currency:    "EUR",
		Origin:      "node-a",
		Destination: "node-b",
		Context:     "virtual_asset_transfer",
		Metadata: map[string]interface{}{
			"kyc_tier": "enhanced",
			"sanctions": map[string]interface{}{
				"screened": true,
				"provider": "acme",
			},
		},
	}
}

func testState() StateSnapshot {
	return StateSnapshot{
		Node:       "node-a",
		Stress:     0.4,
		Centrality: 0.2,
		Friction:   0.1,
		Observed:   true,
	}
}

func TestExtractField(t *testing.T) {
	tx := testTransaction()
	state := testState()

	tests := []struct {
		name      string
		path      string
		want      interface{}
		wantFound bool
	}{
		{name: "id", path: "id", want: "tx-001", wantFound: true},
		{name: "amount", path: "amount", want: float64(15000), wantFound: true},
		{name: "currency", path: "currency", want: "EUR", wantFound: true},
		{name: "origin", path: "origin", want: "node-a", wantFound: true},
		{name: "destination", path: "destination", want: "node-b", wantFound: true},
		{name: "context", path: "context", want: "virtual_asset_transfer", wantFound: true},
		{name: "metadata key", path: "metadata.kyc_tier", want: "enhanced", wantFound: true},
		{name: "nested metadata key", path: "metadata.sanctions.screened", want: true, wantFound: true},
		{name: "missing metadata key", path: "metadata.purpose", wantFound: false},
		{name: "missing nested key", path: "metadata.sanctions.expiry", wantFound: false},
		{name: "traversal through scalar", path: "metadata.kyc_tier.sub", wantFound: false},
		{name: "state stress", path: "state.network_stress", want: 0.4, wantFound: true},
		{name: "state centrality", path: "state.node_centrality", want: 0.2, wantFound: true},
		{name: "state friction", path: "state.friction_score", want: 0.1, wantFound: true},
		{name: "unknown state signal", path: "state.liquidity", wantFound: false},
		{name: "unknown root", path: "sender", wantFound: false},
		{name: "bare metadata", path: "metadata", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := extractField(tt.path, tx, state)
			if found != tt.wantFound {
				t.Fatalf("extractField(%q) found = %v, want %v", tt.path, found, tt.wantFound)
			}
			if found && got != tt.want {
				t.Errorf("extractField(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestExtractField_EmptyContext(t *testing.T) {
	tx := testTransaction()
	tx.Context = ""

	_, found := extractField("context", tx, testState())
	if found {
		t.Error("empty context should report the field as absent")
	}
}

func TestExtractField_NilMetadata(t *testing.T) {
	tx := testTransaction()
	tx.Metadata = nil

	_, found := extractField("metadata.kyc_tier", tx, testState())
	if found {
		t.Error("nil metadata should report every key as absent")
	}
}

func TestValidFieldPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"id", true},
		{"amount", true},
		{"currency", true},
		{"origin", true},
		{"destination", true},
		{"context", true},
		{"metadata.kyc_tier", true},
		{"metadata.a.b.c", true},
		{"state.network_stress", true},
		{"state.node_centrality", true},
		{"state.friction_score", true},
		{"", false},
		{"amount.cents", false},
		{"context.purpose", false},
		{"metadata", false},
		{"metadata.", false},
		{"state", false},
		{"state.liquidity", false},
		{"state.network_stress.extra", false},
		{"sender.account", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := validFieldPath(tt.path); got != tt.want {
				t.Errorf("validFieldPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
