package preview

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/sangkips/ecs-receipts/internal/receipt"
)

// DefaultDelay is the debounce applied to record changes.
const DefaultDelay = 150 * time.Millisecond

const renderTimeout = 30 * time.Second

var (
	ErrNoRecord     = errors.New("no receipt to preview")
	ErrNotAvailable = errors.New("PDF not available")
	ErrClosed       = errors.New("preview closed")
)

type Status string

const (
	StatusIdle         Status = "idle"
	StatusPending      Status = "pending"
	StatusReady        Status = "ready"
	StatusNotAvailable Status = "not_available"
)

// RenderFunc produces the artifact bytes for a record.
type RenderFunc func(ctx context.Context, rec receipt.Record) ([]byte, error)

// Artifact describes the current rendered preview.
type Artifact struct {
	Key        string    `json:"key"`
	Generation uint64    `json:"generation"`
	Hash       string    `json:"hash"`
	Size       int       `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}

// Snapshot is the externally visible regenerator state.
type Snapshot struct {
	Status     Status    `json:"status"`
	Generation uint64    `json:"generation"`
	Hash       string    `json:"hash,omitempty"`
	Error      string    `json:"error,omitempty"`
	Artifact   *Artifact `json:"artifact,omitempty"`
}

// Regenerator keeps one rendered artifact in step with the latest record.
// Changes are debounced, identical content is not re-rendered, each run is
// tagged with a generation and results from superseded generations are
// released instead of installed.
type Regenerator struct {
	render RenderFunc
	store  Store
	delay  time.Duration
	ready  func() error
	now    func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	version uint64
	hash    string
	current *Artifact
	status  Status
	lastErr string
	closed  bool
	changed chan struct{}
}

type RegenOption func(*Regenerator)

func WithDelay(d time.Duration) RegenOption {
	return func(r *Regenerator) {
		if d >= 0 {
			r.delay = d
		}
	}
}

// WithAssets makes every run wait for ready before rendering.
func WithAssets(ready func() error) RegenOption {
	return func(r *Regenerator) { r.ready = ready }
}

func NewRegenerator(render RenderFunc, store Store, opts ...RegenOption) *Regenerator {
	r := &Regenerator{
		render:  render,
		store:   store,
		delay:   DefaultDelay,
		now:     time.Now,
		status:  StatusIdle,
		changed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PDFRenderFunc adapts a PDFRenderer to a RenderFunc.
func PDFRenderFunc(pr *PDFRenderer) RenderFunc {
	return func(_ context.Context, rec receipt.Record) ([]byte, error) {
		return pr.PDF(Layout(rec))
	}
}

// Hash is the content hash used for change detection.
func Hash(rec receipt.Record) string {
	data, _ := json.Marshal(rec)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Update schedules a regeneration for rec after the debounce delay. A nil
// record clears the preview and releases the current artifact.
func (r *Regenerator) Update(rec *receipt.Record) {
	r.mu.Lock()
	old := r.scheduleLocked(rec)
	r.mu.Unlock()
	r.release(old)
}

// Apply is Update for producers that number their changes. A change whose
// version is not newer than the last applied one is dropped, so a late
// delivery cannot bring back a record that was already replaced.
func (r *Regenerator) Apply(version uint64, rec *receipt.Record) {
	r.mu.Lock()
	var old *Artifact
	if version > r.version {
		r.version = version
		old = r.scheduleLocked(rec)
	}
	r.mu.Unlock()
	r.release(old)
}

func (r *Regenerator) scheduleLocked(rec *receipt.Record) *Artifact {
	if r.closed {
		return nil
	}
	if rec == nil {
		return r.clearLocked()
	}

	h := Hash(*rec)
	if h == r.hash && (r.status == StatusPending || r.status == StatusReady) {
		return nil
	}
	r.hash = h
	r.gen++
	gen := r.gen
	r.setStatusLocked(StatusPending, "")
	r.stopTimerLocked()

	cp := *rec
	r.timer = time.AfterFunc(r.delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
		defer cancel()
		_ = r.run(ctx, gen, h, cp)
	})
	return nil
}

// Regenerate renders rec immediately, bypassing the debounce and the
// unchanged-content check.
func (r *Regenerator) Regenerate(ctx context.Context, rec receipt.Record) (*Artifact, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	r.stopTimerLocked()
	h := Hash(rec)
	r.hash = h
	r.gen++
	gen := r.gen
	r.setStatusLocked(StatusPending, "")
	r.mu.Unlock()

	if err := r.run(ctx, gen, h, rec); err != nil {
		return nil, err
	}
	return r.Await(ctx)
}

func (r *Regenerator) run(ctx context.Context, gen uint64, h string, rec receipt.Record) error {
	var data []byte
	err := func() error {
		if r.ready != nil {
			if err := r.ready(); err != nil {
				return fmt.Errorf("preview assets not ready: %w", err)
			}
		}
		v, err, _ := r.group.Do(h, func() (interface{}, error) {
			return r.render(ctx, rec)
		})
		if err != nil {
			return err
		}
		data = v.([]byte)
		return nil
	}()
	if err != nil {
		r.fail(gen, err)
		return err
	}

	key, err := r.store.Put(ctx, fmt.Sprintf("%s-%s-g%d.pdf", safeName(rec.ReceiptNo), h[:12], gen), data)
	if err != nil {
		r.fail(gen, err)
		return err
	}

	r.mu.Lock()
	if r.closed || gen != r.gen {
		r.mu.Unlock()
		r.release(&Artifact{Key: key})
		return nil
	}
	old := r.current
	r.current = &Artifact{Key: key, Generation: gen, Hash: h, Size: len(data), CreatedAt: r.now()}
	r.setStatusLocked(StatusReady, "")
	r.mu.Unlock()

	r.release(old)
	return nil
}

func (r *Regenerator) fail(gen uint64, err error) {
	log.Error().Err(err).Uint64("generation", gen).Msg("preview render failed")
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen == r.gen && !r.closed {
		r.setStatusLocked(StatusNotAvailable, err.Error())
	}
}

// Snapshot reports the current state.
func (r *Regenerator) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{Status: r.status, Generation: r.gen, Hash: r.hash, Error: r.lastErr}
	if r.current != nil && r.status == StatusReady {
		a := *r.current
		s.Artifact = &a
	}
	return s
}

// Await blocks until the pending generation settles and returns the ready
// artifact.
func (r *Regenerator) Await(ctx context.Context) (*Artifact, error) {
	for {
		r.mu.Lock()
		switch r.status {
		case StatusReady:
			a := *r.current
			r.mu.Unlock()
			return &a, nil
		case StatusNotAvailable:
			r.mu.Unlock()
			return nil, ErrNotAvailable
		case StatusIdle:
			closed := r.closed
			r.mu.Unlock()
			if closed {
				return nil, ErrClosed
			}
			return nil, ErrNoRecord
		}
		ch := r.changed
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ch:
		}
	}
}

// Open waits for the current artifact and opens it for reading.
func (r *Regenerator) Open(ctx context.Context) (io.ReadCloser, *Artifact, error) {
	a, err := r.Await(ctx)
	if err != nil {
		return nil, nil, err
	}
	rc, err := r.store.Open(a.Key)
	if err != nil {
		return nil, nil, err
	}
	return rc, a, nil
}

// Close stops pending work and releases the current artifact.
func (r *Regenerator) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	old := r.clearLocked()
	r.closed = true
	r.mu.Unlock()
	r.release(old)
	return nil
}

func (r *Regenerator) clearLocked() *Artifact {
	r.stopTimerLocked()
	r.gen++
	r.hash = ""
	old := r.current
	r.current = nil
	r.setStatusLocked(StatusIdle, "")
	return old
}

func (r *Regenerator) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Regenerator) setStatusLocked(s Status, errMsg string) {
	r.status = s
	r.lastErr = errMsg
	close(r.changed)
	r.changed = make(chan struct{})
}

func (r *Regenerator) release(a *Artifact) {
	if a == nil {
		return
	}
	if err := r.store.Release(a.Key); err != nil {
		log.Warn().Err(err).Str("key", a.Key).Msg("failed to release preview")
	}
}

func safeName(s string) string {
	if s == "" {
		return "receipt"
	}
	out := []rune(s)
	for i, c := range out {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-') {
			out[i] = '_'
		}
	}
	return string(out)
}
