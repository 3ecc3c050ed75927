package workload

import (
	"context"
	"errors"
	"fmt"
	randv2 "math/rand/v2"
	"slices"
	"sync"
	"time"

	antsv2 "github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/treex/lib/infra"
	"github.com/benz9527/treex/lib/tree"
	"github.com/benz9527/treex/observability"
	"github.com/benz9527/treex/xlog"
)

var (
	ErrTrialMismatch = errors.New("[workload] trial content mismatch")
	ErrTrialPanic    = errors.New("[workload] trial panic")
)

type TrialResult struct {
	Index    int
	Inserted int
	Removed  int
	Height   int
	Elapsed  time.Duration
	Err      error
}

type Report struct {
	Seed      uint64
	Trials    int
	Failed    int
	Inserted  int
	Removed   int
	MaxHeight int
	Elapsed   time.Duration
	// RSS of the process after all trials, 0 if it is unavailable.
	RSS     uint64
	Results []TrialResult
}

type trial struct {
	index int
	cfg   Config
	rng   *randv2.Rand
	opts  []tree.TreeOption[int]
}

func newTrial(cfg Config, seed uint64, index int) *trial {
	t := &trial{
		index: index,
		cfg:   cfg,
		rng:   randv2.New(randv2.NewPCG(seed, uint64(index))),
	}
	if cfg.StatsName != "" {
		t.opts = append(t.opts, tree.WithTreeStats[int](cfg.StatsName))
	}
	return t
}

func (t *trial) check(ctx context.Context, rbtree tree.Tree[int], step int, phase string) error {
	if (step+1)%t.cfg.CheckEvery != 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tree.ValidateRBTree(rbtree); err != nil {
		return infra.WrapErrorStackWithMessage(err, fmt.Sprintf("trial %d %s step %d", t.index, phase, step))
	}
	return nil
}

func (t *trial) expectInorder(rbtree tree.Tree[int], expected []int, phase string) error {
	actual := make([]int, 0, rbtree.Len())
	rbtree.Foreach(func(idx int64, node *tree.Node[int]) bool {
		actual = append(actual, node.Key())
		return true
	})
	if !slices.Equal(expected, actual) {
		return infra.WrapErrorStackWithMessage(ErrTrialMismatch,
			fmt.Sprintf("trial %d %s: expected %d keys, got %d", t.index, phase, len(expected), len(actual)),
		)
	}
	return nil
}

// run inserts random keys, removes a shuffled share of the nodes, then
// deletes the rest by key. The tree is validated all along.
func (t *trial) run(ctx context.Context) (res TrialResult) {
	start := time.Now()
	res.Index = t.index
	defer func() {
		if r := recover(); r != nil {
			res.Err = infra.WrapErrorStackWithMessage(ErrTrialPanic, fmt.Sprintf("trial %d: %v", t.index, r))
		}
		res.Elapsed = time.Since(start)
	}()
	if res.Err = ctx.Err(); res.Err != nil {
		return res
	}

	rbtree := tree.NewRBTree[int](t.opts...)
	defer rbtree.Release()

	keyRange := max(t.cfg.Size*10, 1)
	keys := lo.Times(t.cfg.Size, func(int) int {
		return t.rng.IntN(keyRange)
	})
	nodes := make([]*tree.Node[int], 0, len(keys))
	for i, key := range keys {
		nodes = append(nodes, rbtree.InsertKey(key))
		res.Inserted++
		if res.Err = t.check(ctx, rbtree, i, "insert"); res.Err != nil {
			return res
		}
	}
	res.Height = rbtree.Height()

	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	if res.Err = t.expectInorder(rbtree, sorted, "after insert"); res.Err != nil {
		return res
	}

	t.rng.Shuffle(len(nodes), func(i, j int) {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	})
	removes := nodes[:int(float64(len(nodes))*t.cfg.RemoveRatio)]
	for i, node := range removes {
		rbtree.Remove(node)
		res.Removed++
		if res.Err = t.check(ctx, rbtree, i, "remove"); res.Err != nil {
			return res
		}
	}

	remains := lo.Map(nodes[len(removes):], func(node *tree.Node[int], _ int) int {
		return node.Key()
	})
	slices.Sort(remains)
	if res.Err = t.expectInorder(rbtree, remains, "after remove"); res.Err != nil {
		return res
	}

	for i, key := range remains {
		if _, err := rbtree.Delete(key); err != nil {
			res.Err = infra.WrapErrorStackWithMessage(err, fmt.Sprintf("trial %d delete", t.index))
			return res
		}
		res.Removed++
		if res.Err = t.check(ctx, rbtree, i, "delete"); res.Err != nil {
			return res
		}
	}
	if rbtree.Len() != 0 || !rbtree.Root().IsNil() {
		res.Err = infra.WrapErrorStackWithMessage(ErrTrialMismatch,
			fmt.Sprintf("trial %d: %d nodes left after deleting all", t.index, rbtree.Len()),
		)
	}
	return res
}

// RunTrials runs the trials on a worker pool. Each tree is only touched
// by the worker running its trial. The errors of all failed trials are
// combined.
func RunTrials(ctx context.Context, cfg Config, logger xlog.XLogger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = randv2.Uint64()
	}
	if logger == nil {
		logger = xlog.NewXLogger()
	}
	logger = logger.Named("workload")

	pool, err := antsv2.NewPool(cfg.Workers, antsv2.WithLogger(xlog.NewAntsXLogger(logger)))
	if err != nil {
		return Report{}, infra.WrapErrorStackWithMessage(err, "new worker pool")
	}
	defer pool.Release()

	start := time.Now()
	results := make([]TrialResult, cfg.Trials)
	wg := sync.WaitGroup{}
	for i := 0; i < cfg.Trials; i++ {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = newTrial(cfg, cfg.Seed, i).run(ctx)
			logger.Debug("trial done",
				zap.Int("trial", i),
				zap.Int("height", results[i].Height),
				zap.Duration("elapsed", results[i].Elapsed),
				zap.Bool("ok", results[i].Err == nil),
			)
		}); err != nil {
			wg.Done()
			results[i] = TrialResult{Index: i, Err: infra.WrapErrorStackWithMessage(err, "submit trial")}
		}
	}
	wg.Wait()

	report := Report{
		Seed:    cfg.Seed,
		Trials:  cfg.Trials,
		Elapsed: time.Since(start),
		Results: results,
		Failed: lo.CountBy(results, func(res TrialResult) bool {
			return res.Err != nil
		}),
		Inserted: lo.SumBy(results, func(res TrialResult) int {
			return res.Inserted
		}),
		Removed: lo.SumBy(results, func(res TrialResult) int {
			return res.Removed
		}),
		MaxHeight: lo.Max(lo.Map(results, func(res TrialResult, _ int) int {
			return res.Height
		})),
	}
	if rss, err := observability.ProcessRSS(ctx); err != nil {
		logger.Warn("process rss unavailable", zap.Error(err))
	} else {
		report.RSS = rss
	}

	err = multierr.Combine(lo.FilterMap(results, func(res TrialResult, _ int) (error, bool) {
		return res.Err, res.Err != nil
	})...)
	if err != nil {
		logger.ErrorStack(err, "trials failed", zap.Int("failed", report.Failed), zap.Uint64("seed", report.Seed))
		return report, err
	}
	logger.Info("trials passed",
		zap.Int("trials", report.Trials),
		zap.Int("inserted", report.Inserted),
		zap.Int("removed", report.Removed),
		zap.Int("maxHeight", report.MaxHeight),
		zap.Uint64("seed", report.Seed),
		zap.Duration("elapsed", report.Elapsed),
		zap.Uint64("rss", report.RSS),
	)
	return report, nil
}
