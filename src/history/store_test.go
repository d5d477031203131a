package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/mosaicnetworks/reflector/src/common"
)

func testRecords(n int) []Record {
	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	res := []Record{}
	for i := 0; i < n; i++ {
		res = append(res, Record{
			SessionID:   fmt.Sprintf("s-%d", i),
			MatchID:     fmt.Sprintf("m-%d", i),
			MyUID:       "alice",
			PeerUID:     "bob",
			Peer:        "203.0.113.5:40000",
			Framing:     "legacy",
			Reason:      "proxy-stop",
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
			EndedAt:     base.Add(time.Duration(i)*time.Minute + 30*time.Second),
			BytesToPeer: uint64(100 * i),
		})
	}
	return res
}

func checkRecords(t *testing.T, got, want []Record) {
	if len(got) != len(want) {
		t.Fatalf("should have %d records, not %d", len(want), len(got))
	}
	for i := range want {
		if got[i].SessionID != want[i].SessionID ||
			got[i].Reason != want[i].Reason ||
			got[i].BytesToPeer != want[i].BytesToPeer ||
			!got[i].StartedAt.Equal(want[i].StartedAt) ||
			!got[i].EndedAt.Equal(want[i].EndedAt) {
			t.Fatalf("record %d should be %#v, not %#v", i, want[i], got[i])
		}
	}
}

func TestRecordMarshal(t *testing.T) {
	r := testRecords(1)[0]

	data, err := r.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	var back Record
	if err := back.Unmarshal(data); err != nil {
		t.Fatal(err)
	}

	checkRecords(t, []Record{back}, []Record{r})
}

func TestInmemStore(t *testing.T) {
	s := NewInmemStore(3)
	records := testRecords(5)

	for _, r := range records {
		if err := s.Add(r); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.List()
	if err != nil {
		t.Fatal(err)
	}

	checkRecords(t, list, records[2:])
}

func TestBadgerStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badger_db")
	logger := common.NewTestEntry(t, common.TestLogLevel)

	s, err := NewBadgerStore(path, logger)
	if err != nil {
		t.Fatal(err)
	}

	records := testRecords(4)
	// insert out of order, listing follows start time
	for _, i := range []int{2, 0, 3, 1} {
		if err := s.Add(records[i]); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	checkRecords(t, list, records)

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// reopen
	s, err = NewBadgerStore(path, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	r, err := s.Get("s-2")
	if err != nil {
		t.Fatal(err)
	}
	checkRecords(t, []Record{r}, records[2:3])

	if _, err := s.Get("nope"); err == nil {
		t.Fatalf("unknown session should not be found")
	}
}
