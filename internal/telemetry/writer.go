package telemetry

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sys/unix"

	"github.com/lox/pokerequity/internal/cardcode"
)

// Writer owns the single mmap'd region backing one job's telemetry. It is
// not safe for concurrent use by multiple goroutines without external
// synchronisation — the orchestrator serialises every call it makes, even
// when hero-hand trials themselves run in parallel.
type Writer struct {
	path string
	fd   int
	buf  []byte
	r    *region

	clock quartz.Clock
	log   *log.Logger
}

// Create opens a new shared-memory region at <shmRoot>/poker_telemetry_<jobID>,
// failing if one already exists (O_EXCL — a stale region from a previous
// run must be cleaned up by its reader, never silently reused). On any
// failure it returns a TelemetryUnavailable error; callers should log and
// continue without a Writer rather than abort the simulation.
func Create(shmRoot, jobID string, clock quartz.Clock, logger *log.Logger) (*Writer, error) {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.Default()
	}

	path := filepath.Join(shmRoot, "poker_telemetry_"+jobID)

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_EXCL|unix.O_RDWR, 0o600)
	if err != nil {
		return nil, cardcode.NewError(cardcode.TelemetryUnavailable, "open %s: %w", path, err)
	}

	if err := unix.Ftruncate(fd, int64(RegionSize)); err != nil {
		unix.Close(fd)
		return nil, cardcode.NewError(cardcode.TelemetryUnavailable, "truncate %s: %w", path, err)
	}

	buf, err := unix.Mmap(fd, 0, RegionSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, cardcode.NewError(cardcode.TelemetryUnavailable, "mmap %s: %w", path, err)
	}

	w := &Writer{path: path, fd: fd, buf: buf, r: regionOf(buf), clock: clock, log: logger}
	w.initialize()
	return w, nil
}

func (w *Writer) initialize() {
	now := uint64(w.clock.Now().UnixNano())
	w.r.Progress.Seq = 1
	w.r.Progress.JobStartNS = now
	w.r.Progress.HandsProcessed = 0
	w.r.Progress.LastUpdateNS = now
	w.r.Progress.Status = StatusPending
	atomic.StoreUint32(&w.r.Progress.Seq, 2)

	atomic.StoreUint32(&w.r.Results.Seq, 1)
	w.r.Results.ResultsCount = 0
	atomic.StoreUint32(&w.r.Results.Seq, 2)
}

// UpdateProgress records how many hero hands have completed so far.
func (w *Writer) UpdateProgress(handsProcessed uint64) {
	atomic.AddUint32(&w.r.Progress.Seq, 1)
	w.r.Progress.HandsProcessed = handsProcessed
	w.r.Progress.LastUpdateNS = uint64(w.clock.Now().UnixNano())
	atomic.AddUint32(&w.r.Progress.Seq, 1)
}

// Heartbeat bumps LastUpdateNS without touching HandsProcessed, for
// intra-hand progress (trial batches within a single hero hand) that
// should keep the region visibly alive without claiming a hand finished.
func (w *Writer) Heartbeat() {
	atomic.AddUint32(&w.r.Progress.Seq, 1)
	w.r.Progress.LastUpdateNS = uint64(w.clock.Now().UnixNano())
	atomic.AddUint32(&w.r.Progress.Seq, 1)
}

// SetStatus records the job's lifecycle status.
func (w *Writer) SetStatus(status uint8) {
	atomic.AddUint32(&w.r.Progress.Seq, 1)
	w.r.Progress.Status = status
	atomic.AddUint32(&w.r.Progress.Seq, 1)
}

// UpdateResult writes or overwrites the named hand's slot. slot must be
// in [0, MaxHands); callers own slot assignment (typically the hero
// hand's position in sorted range order).
func (w *Writer) UpdateResult(slot int, name string, equity float64, wins, ties, losses, simulations uint32, winMethod [10][10]int) error {
	if slot < 0 || slot >= MaxHands {
		return fmt.Errorf("telemetry: slot %d out of range [0,%d)", slot, MaxHands)
	}

	atomic.AddUint32(&w.r.Results.Seq, 1)

	w.r.Results.HandNames[slot] = encodeHandName(name)
	rec := &w.r.Results.Results[slot]
	rec.Equity = equity
	rec.Wins = wins
	rec.Ties = ties
	rec.Losses = losses
	rec.Simulations = simulations
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			rec.WinMethod[i][j] = uint32(winMethod[i][j])
		}
	}
	if slot+1 > int(w.r.Results.ResultsCount) {
		w.r.Results.ResultsCount = uint32(slot + 1)
	}

	atomic.AddUint32(&w.r.Results.Seq, 1)
	return nil
}

// Close unmaps the region and closes the file descriptor. It does not
// remove the backing file: ownership of removal belongs to whatever reads
// the final state after the writer exits, matching the source engine's
// "collector handles cleanup" contract.
func (w *Writer) Close() error {
	if err := unix.Munmap(w.buf); err != nil {
		unix.Close(w.fd)
		return err
	}
	return unix.Close(w.fd)
}

// Path returns the filesystem path backing this writer's region.
func (w *Writer) Path() string { return w.path }
