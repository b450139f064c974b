package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockSearchDB struct {
	mockDBPinger
	text bool
}

func (m *mockSearchDB) SupportsTextSearch(_ context.Context) bool { return m.text }

type mockIndexChecker struct {
	exists bool
	err    error
	asked  string
}

func (m *mockIndexChecker) IndexExists(_ context.Context, index string) (bool, error) {
	m.asked = index
	return m.exists, m.err
}

// --- Tests ---

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		index      *mockIndexChecker
		wantStatus Status
		wantIndex  CheckResult
	}{
		{"all healthy", nil, &mockIndexChecker{exists: true}, Healthy, CheckOK},
		{"index missing", nil, &mockIndexChecker{}, Degraded, CheckMissing},
		{"index error", nil, &mockIndexChecker{err: errors.New("timeout")}, Degraded, CheckError},
		{"database down", errors.New("refused"), &mockIndexChecker{exists: true}, Unhealthy, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockDBPinger{err: tt.dbErr}, tt.index, "local-datashare")
			r := svc.Check(context.Background())
			if r.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", r.Status, tt.wantStatus)
			}
			if r.Checks["index"] != tt.wantIndex {
				t.Errorf("index = %q, want %q", r.Checks["index"], tt.wantIndex)
			}
		})
	}
}

func TestCheck_ChecksConfiguredIndex(t *testing.T) {
	idx := &mockIndexChecker{exists: true}
	New(&mockDBPinger{}, idx, "notes").Check(context.Background())
	if idx.asked != "notes" {
		t.Errorf("asked %q", idx.asked)
	}
}

func TestCheck_NoIndexChecker(t *testing.T) {
	r := New(&mockDBPinger{}, nil, "").Check(context.Background())
	if r.Status != Healthy || len(r.Checks) != 1 {
		t.Errorf("report = %+v", r)
	}
}

func TestCheck_SearchModule(t *testing.T) {
	tests := []struct {
		name       string
		text       bool
		wantStatus Status
		wantSearch CheckResult
	}{
		{"module loaded", true, Healthy, CheckOK},
		{"module missing", false, Degraded, CheckMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&mockSearchDB{text: tt.text}, &mockIndexChecker{exists: true}, "notes").Check(context.Background())
			if r.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", r.Status, tt.wantStatus)
			}
			if r.Checks["search"] != tt.wantSearch {
				t.Errorf("search = %q, want %q", r.Checks["search"], tt.wantSearch)
			}
		})
	}
}
