package statuses

import (
	"context"
	"sort"
	"sync"

	"Murmur/internal/core/interactions"
)

type fakeVote struct {
	pollID    string
	accountID string
	choice    int
}

type fakeInteraction struct {
	state   interactions.State
	deleted bool
}

// fakeStore is an in-memory Store and ViewerStateProvider for hydrator tests
type fakeStore struct {
	statuses     map[string]*Status
	accounts     map[string]*Account
	media        map[string]*Media
	interactions map[[2]string]*fakeInteraction
	errs         map[string]error
	calls        []string
	votes        []fakeVote
	mu           sync.Mutex
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		statuses:     make(map[string]*Status),
		accounts:     make(map[string]*Account),
		media:        make(map[string]*Media),
		interactions: make(map[[2]string]*fakeInteraction),
		errs:         make(map[string]error),
	}
}

func (f *fakeStore) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.errs[call]
}

func (f *fakeStore) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeStore) GetStatus(ctx context.Context, id string) (*Status, error) {
	if err := f.record("GetStatus"); err != nil {
		return nil, err
	}
	s, ok := f.statuses[id]
	if !ok || s.Deleted {
		return nil, ErrStatusNotFound
	}
	return s, nil
}

func (f *fakeStore) GetAccount(ctx context.Context, id string) (*Account, error) {
	if err := f.record("GetAccount"); err != nil {
		return nil, err
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeStore) GetMedia(ctx context.Context, id string) (*Media, error) {
	if err := f.record("GetMedia"); err != nil {
		return nil, err
	}
	m, ok := f.media[id]
	if !ok {
		return nil, ErrMediaNotFound
	}
	return m, nil
}

func (f *fakeStore) CountStatuses(ctx context.Context, filter StatusFilter) (int64, error) {
	if err := f.record("CountStatuses"); err != nil {
		return 0, err
	}
	var n int64
	for _, s := range f.statuses {
		if s.Deleted {
			continue
		}
		if filter.InReplyToID != "" && (s.InReplyToID == nil || *s.InReplyToID != filter.InReplyToID) {
			continue
		}
		if filter.ReblogOfID != "" && (s.ReblogOfID == nil || *s.ReblogOfID != filter.ReblogOfID) {
			continue
		}
		if filter.AccountID != "" && s.AccountID != filter.AccountID {
			continue
		}
		n++
	}
	return n, nil
}

func (f *fakeStore) CountInteractions(ctx context.Context, filter InteractionFilter) (int64, error) {
	if err := f.record("CountInteractions"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key, rec := range f.interactions {
		if rec.deleted || key[0] != filter.StatusID {
			continue
		}
		if filter.AccountID != "" && key[1] != filter.AccountID {
			continue
		}
		if rec.state.Flag(filter.Kind) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountVotes(ctx context.Context, pollID string) ([]VoteCount, error) {
	if err := f.record("CountVotes"); err != nil {
		return nil, err
	}
	byChoice := make(map[int]int64)
	for _, v := range f.votes {
		if v.pollID == pollID {
			byChoice[v.choice]++
		}
	}
	counts := make([]VoteCount, 0, len(byChoice))
	for choice, n := range byChoice {
		counts = append(counts, VoteCount{Choice: choice, Count: n})
	}
	return counts, nil
}

func (f *fakeStore) CountVoters(ctx context.Context, pollID string) (int64, error) {
	if err := f.record("CountVoters"); err != nil {
		return 0, err
	}
	voters := make(map[string]struct{})
	for _, v := range f.votes {
		if v.pollID == pollID {
			voters[v.accountID] = struct{}{}
		}
	}
	return int64(len(voters)), nil
}

func (f *fakeStore) ListAccountVotes(ctx context.Context, pollID, accountID string) ([]int, error) {
	if err := f.record("ListAccountVotes"); err != nil {
		return nil, err
	}
	var choices []int
	for _, v := range f.votes {
		if v.pollID == pollID && v.accountID == accountID {
			choices = append(choices, v.choice)
		}
	}
	sort.Ints(choices)
	return choices, nil
}

func (f *fakeStore) GetOrCreate(ctx context.Context, statusID, accountID string) (*interactions.State, error) {
	if err := f.record("GetOrCreate"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]string{statusID, accountID}
	rec, ok := f.interactions[key]
	if !ok || rec.deleted {
		rec = &fakeInteraction{state: *interactions.NewState(statusID, accountID)}
		f.interactions[key] = rec
	}
	state := rec.state
	return &state, nil
}

func (f *fakeStore) setFlags(statusID, accountID string, patch interactions.FlagPatch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]string{statusID, accountID}
	rec, ok := f.interactions[key]
	if !ok || rec.deleted {
		rec = &fakeInteraction{state: *interactions.NewState(statusID, accountID)}
		f.interactions[key] = rec
	}
	rec.state = patch.Apply(rec.state)
}
