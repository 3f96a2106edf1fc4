// Package simulation runs a complete key generation among in-process
// participants, optionally injecting faults, and cross-checks the outputs.
package simulation

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/f3rmion/fydkg/dkg"
	"github.com/f3rmion/fydkg/group"
	"github.com/f3rmion/fydkg/logging"
	"github.com/f3rmion/fydkg/session"
	"github.com/f3rmion/fydkg/transport/memory"
)

// ErrInconsistent reports finished participants whose outcomes do not
// describe one and the same key generation.
var ErrInconsistent = errors.New("simulation: inconsistent outcome")

// Config describes one simulated run.
type Config struct {
	Group     group.Group
	Threshold uint32
	Total     uint32

	// Timeout bounds every barrier; zero selects session.DefaultTimeout.
	Timeout time.Duration
	// Hasher defaults to dkg.SHA256Hasher.
	Hasher dkg.Hasher
	Faults []Fault
}

// Report collects what every participant produced.
type Report struct {
	Results map[uint32]*session.Result
	Errors  map[uint32]error

	// GroupKey is the key agreed by the finished participants. It is nil
	// when none finished or their outcomes disagree.
	GroupKey *dkg.GroupKey

	// Excluded is the union of the excluded sets of the finished
	// participants.
	Excluded []uint32
	// Silent lists participants that were never started.
	Silent []uint32
}

// Finished returns the indices of participants that produced key
// material, in ascending order.
func (r *Report) Finished() []uint32 {
	out := make([]uint32, 0, len(r.Results))
	for i := range r.Results {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Run executes the protocol for cfg.Total participants concurrently. The
// returned error reports a configuration problem, a run in which nobody
// finished, or finished participants disagreeing on the group key or the
// qualified set. Every qualified participant must have finished. Errors
// of individual participants are in Report.Errors.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if cfg.Group == nil {
		return nil, errors.New("simulation: no group")
	}
	params := dkg.Parameters{Threshold: cfg.Threshold, Total: cfg.Total}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	pl, err := newPlan(cfg.Total, cfg.Faults)
	if err != nil {
		return nil, err
	}

	net := memory.NewNetwork(0)
	defer net.Close()

	sessions := make(map[uint32]*session.Participant)
	for i := uint32(1); i <= cfg.Total; i++ {
		ep, err := net.Join(i)
		if err != nil {
			return nil, err
		}
		if pl.silent[i] {
			continue
		}
		opts := []session.Option{
			session.WithLogger(logging.ForParticipant(i)),
			session.WithTamper(pl.tamper(cfg.Group, i)),
		}
		if cfg.Hasher != nil {
			opts = append(opts, session.WithHasher(cfg.Hasher))
		}
		p, err := session.NewParticipant(cfg.Group, session.Config{
			Threshold: cfg.Threshold,
			Total:     cfg.Total,
			Index:     i,
			Timeout:   cfg.Timeout,
		}, ep, opts...)
		if err != nil {
			return nil, err
		}
		sessions[i] = p
	}

	report := &Report{
		Results: make(map[uint32]*session.Result),
		Errors:  make(map[uint32]error),
		Silent:  pl.silentIndices(),
	}
	var mu sync.Mutex
	var eg errgroup.Group
	for i, p := range sessions {
		i, p := i, p
		eg.Go(func() error {
			res, err := p.Run(ctx, rand.Reader)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Errors[i] = err
				return nil
			}
			report.Results[i] = res
			return nil
		})
	}
	_ = eg.Wait()

	log := logging.Logger()
	for _, i := range sortedKeys(report.Errors) {
		log.Warn().Uint32("participant", i).Err(report.Errors[i]).Msg("participant failed")
	}

	if len(report.Results) == 0 {
		errs := make([]error, 0, len(report.Errors))
		for _, i := range sortedKeys(report.Errors) {
			errs = append(errs, report.Errors[i])
		}
		return report, fmt.Errorf("simulation: no participant finished: %w", errors.Join(errs...))
	}

	keys := make(map[uint32]*dkg.GroupKey, len(report.Results))
	excluded := make(map[uint32]bool)
	for i, res := range report.Results {
		keys[i] = res.GroupKey
		for _, j := range res.Excluded {
			excluded[j] = true
		}
	}
	report.Excluded = sortedKeys(excluded)
	if err := dkg.CheckGroupKeys(keys); err != nil {
		return report, fmt.Errorf("simulation: %w", err)
	}
	if err := report.checkQualified(); err != nil {
		return report, err
	}
	report.GroupKey = report.Results[report.Finished()[0]].GroupKey
	return report, nil
}

// checkQualified requires every finished participant to report the same
// qualified set and every member of that set to have finished.
func (r *Report) checkQualified() error {
	finished := r.Finished()
	want := r.Results[finished[0]].Qualified
	for _, i := range finished[1:] {
		if got := r.Results[i].Qualified; !equalIndices(got, want) {
			return fmt.Errorf("%w: participant %d qualified %v, participant %d qualified %v",
				ErrInconsistent, finished[0], want, i, got)
		}
	}
	for _, j := range want {
		if _, ok := r.Results[j]; !ok {
			return fmt.Errorf("%w: qualified participant %d did not finish: %v", ErrInconsistent, j, r.Errors[j])
		}
	}
	return nil
}

func equalIndices(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[uint32]V) []uint32 {
	out := make([]uint32, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}
