package plagiarism

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/braindler/braindler-multimodal/internal/models"
)

// BlockMatcher compares every block of one text with every block of the
// other using the fast sequence ratio.
type BlockMatcher struct {
	opts   Options
	scorer *Scorer
	pool   *WorkerPool
}

// NewBlockMatcher builds a matcher. A nil pool evaluates pairs on the
// calling goroutine.
func NewBlockMatcher(opts Options, pool *WorkerPool) *BlockMatcher {
	return &BlockMatcher{
		opts:   opts,
		scorer: NewScorer(opts),
		pool:   pool,
	}
}

// Match returns one classified pair per cell of the blocksA x blocksB
// cross-product, in A-major, then B order.
func (m *BlockMatcher) Match(ctx context.Context, blocksA, blocksB []models.TextBlock) ([]models.BlockPair, error) {
	if len(blocksA) == 0 || len(blocksB) == 0 {
		return nil, nil
	}

	total := int64(len(blocksA)) * int64(len(blocksB))
	if m.opts.MaxBlockPairs > 0 && total > int64(m.opts.MaxBlockPairs) {
		return nil, fmt.Errorf("%w: %d x %d blocks exceeds %d pairs",
			ErrResourceExhausted, len(blocksA), len(blocksB), m.opts.MaxBlockPairs)
	}

	scores := make([]float64, total)
	if err := m.scoreAll(ctx, blocksA, blocksB, scores); err != nil {
		return nil, err
	}

	pairs := make([]models.BlockPair, 0, total)
	width := len(blocksB)
	for i, a := range blocksA {
		for j, b := range blocksB {
			score := scores[i*width+j]
			pairs = append(pairs, models.BlockPair{
				BlockA:         a,
				BlockB:         b,
				Score:          score,
				Classification: m.opts.Classify(score),
			})
		}
	}
	return pairs, nil
}

func (m *BlockMatcher) scoreAll(ctx context.Context, blocksA, blocksB []models.TextBlock, scores []float64) error {
	state := newMatchState(len(blocksA))
	width := len(blocksB)

	jobs := make([]*rowJob, len(blocksA))
	for i, a := range blocksA {
		jobs[i] = &rowJob{
			ctx:    ctx,
			row:    i,
			text:   a.Text,
			blocks: blocksB,
			out:    scores[i*width : (i+1)*width],
			scorer: m.scorer,
			state:  state,
		}
	}

	if m.pool == nil {
		for _, job := range jobs {
			_ = job.Execute(ctx)
			if err := state.failure(); err != nil {
				return err
			}
		}
		return ctx.Err()
	}

	for _, job := range jobs {
		if err := m.pool.Submit(ctx, job); err != nil {
			return err
		}
	}

	// Jobs still queued when the pool closes never run, so nothing may
	// block on their completion.
	select {
	case <-state.done:
	case <-ctx.Done():
		return ctx.Err()
	case <-m.pool.Done():
		return ErrPoolClosed
	}

	if err := state.failure(); err != nil {
		return err
	}
	return ctx.Err()
}

// matchState tracks the row jobs of one Match call. done is closed when
// the last row finishes.
type matchState struct {
	remaining atomic.Int64
	done      chan struct{}
	mu        sync.Mutex
	err       error
}

func newMatchState(rows int) *matchState {
	s := &matchState{done: make(chan struct{})}
	s.remaining.Store(int64(rows))
	if rows == 0 {
		close(s.done)
	}
	return s
}

func (s *matchState) finish() {
	if s.remaining.Add(-1) == 0 {
		close(s.done)
	}
}

func (s *matchState) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *matchState) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// rowJob scores one block of A against every block of B.
type rowJob struct {
	ctx    context.Context
	row    int
	text   string
	blocks []models.TextBlock
	out    []float64
	scorer *Scorer
	state  *matchState
}

func (j *rowJob) Execute(_ context.Context) (err error) {
	defer j.state.finish()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: block %d: %v", ErrComputationFailed, j.row, r)
			j.state.fail(err)
		}
	}()

	for k, b := range j.blocks {
		if j.ctx.Err() != nil || j.state.failure() != nil {
			return nil
		}
		j.out[k] = j.scorer.BlockRatio(j.text, b.Text)
	}
	return nil
}

// Summarize splits matched pairs into the identical block texts of A (each
// recorded once, first match wins, unique by text) and every suspicious pair.
func Summarize(pairs []models.BlockPair) (identical []string, suspicious []models.BlockPair, identicalPairs int) {
	identical = []string{}
	suspicious = []models.BlockPair{}
	seen := make(map[string]struct{})

	for _, pair := range pairs {
		switch pair.Classification {
		case models.ClassIdentical:
			identicalPairs++
			if _, ok := seen[pair.BlockA.Text]; ok {
				continue
			}
			seen[pair.BlockA.Text] = struct{}{}
			identical = append(identical, pair.BlockA.Text)
		case models.ClassSuspicious:
			suspicious = append(suspicious, pair)
		}
	}
	return identical, suspicious, identicalPairs
}
