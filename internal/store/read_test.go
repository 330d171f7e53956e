package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roach88/bountylist/internal/address"
)

func TestLastSeq_Empty(t *testing.T) {
	s := createTestStore(t)
	seq, err := s.LastSeq(context.Background())
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("LastSeq() = %d, want 0", seq)
	}
}

func TestLastSeq_IncludesFailed(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Commit(ctx, createTestRecord("a", 1, "ok"), nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(ctx, createTestRecord("b", 2, "failed"), nil, nil); err != nil {
		t.Fatal(err)
	}

	seq, err := s.LastSeq(ctx)
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if seq != 2 {
		t.Errorf("LastSeq() = %d, want 2", seq)
	}

	ids, err := s.CommittedIDs(ctx)
	if err != nil {
		t.Fatalf("CommittedIDs() failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a" {
		t.Errorf("CommittedIDs() = %v, want [a]", ids)
	}
}

func TestReadAccount_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadAccount(context.Background(), address.Address{9})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadAccount() err = %v, want ErrNotFound", err)
	}
}

func TestReadTransactions_Paging(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for seq := int64(1); seq <= 5; seq++ {
		if err := s.Commit(ctx, createTestRecord(string(rune('a'+seq)), seq, "ok"), nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	page, err := s.ReadTransactions(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ReadTransactions() failed: %v", err)
	}
	if len(page) != 2 || page[0].Seq != 3 || page[1].Seq != 4 {
		t.Errorf("page = %+v, want seqs 3 and 4", page)
	}

	all, err := s.ReadTransactions(ctx, 0, 0)
	if err != nil {
		t.Fatalf("ReadTransactions() failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("len(all) = %d, want 5", len(all))
	}
	if all[0].Signer != (address.Address{1}) || all[0].Program != (address.Address{2}) {
		t.Errorf("addresses not round-tripped: %+v", all[0])
	}
	if all[0].Logs != nil {
		t.Errorf("empty logs = %v, want nil", all[0].Logs)
	}
}

func TestLoadAccounts_Empty(t *testing.T) {
	s := createTestStore(t)
	accounts, err := s.LoadAccounts(context.Background())
	if err != nil {
		t.Fatalf("LoadAccounts() failed: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("len(accounts) = %d, want 0", len(accounts))
	}
}

func TestAirdropsSince(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	records := []struct {
		instruction string
		status      string
		at          time.Time
	}{
		{"airdrop", "ok", base.Add(-time.Hour)},
		{"airdrop", "ok", base},
		{"add", "ok", base.Add(time.Second)},
		{"airdrop", "failed", base.Add(2 * time.Second)},
		{"airdrop", "ok", base.Add(3 * time.Second)},
	}
	for i, r := range records {
		rec := createTestRecord(string(rune('a'+i)), int64(i+1), r.status)
		rec.Instruction = r.instruction
		rec.RecordedAt = r.at
		if err := s.Commit(ctx, rec, nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.AirdropsSince(ctx, base)
	if err != nil {
		t.Fatalf("AirdropsSince() failed: %v", err)
	}
	if len(got) != 2 || got[0].Seq != 2 || got[1].Seq != 5 {
		t.Fatalf("AirdropsSince() = %+v, want seqs 2 and 5", got)
	}
	if !got[0].RecordedAt.Equal(base) {
		t.Errorf("RecordedAt = %v, want %v", got[0].RecordedAt, base)
	}
}
