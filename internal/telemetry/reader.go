package telemetry

import (
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// Reader maps an existing telemetry region read-only and retries reads
// that race a concurrent writer, per the sequence-lock protocol: a read
// is only trusted if the sequence number is the same, and even, before
// and after copying the data out.
type Reader struct {
	fd  int
	buf []byte
	r   *region
}

// Open maps the region backing an already-created job's telemetry file.
// It does not create or truncate the file — Create is the writer's job.
func Open(path string) (*Reader, error) {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}

	buf, err := unix.Mmap(fd, 0, RegionSize, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("telemetry: mmap %s: %w", path, err)
	}

	return &Reader{fd: fd, buf: buf, r: regionOf(buf)}, nil
}

// ProgressSnapshot is a consistent point-in-time copy of the Progress
// header.
type ProgressSnapshot struct {
	JobStartNS     uint64
	HandsProcessed uint64
	LastUpdateNS   uint64
	Status         uint8
}

// ReadProgress retries until it observes a stable (even, unchanged)
// sequence number bracketing the read.
func (r *Reader) ReadProgress() ProgressSnapshot {
	for {
		seq0 := atomic.LoadUint32(&r.r.Progress.Seq)
		if seq0%2 != 0 {
			continue
		}
		snap := ProgressSnapshot{
			JobStartNS:     r.r.Progress.JobStartNS,
			HandsProcessed: r.r.Progress.HandsProcessed,
			LastUpdateNS:   r.r.Progress.LastUpdateNS,
			Status:         r.r.Progress.Status,
		}
		seq1 := atomic.LoadUint32(&r.r.Progress.Seq)
		if seq0 == seq1 {
			return snap
		}
	}
}

// ResultSnapshot is a consistent point-in-time copy of one hand's result
// record.
type ResultSnapshot struct {
	Name        string
	Equity      float64
	Wins        uint32
	Ties        uint32
	Losses      uint32
	Simulations uint32
	WinMethod   [10][10]uint32
}

// ReadResults retries until a stable snapshot of every populated result
// slot is obtained.
func (r *Reader) ReadResults() []ResultSnapshot {
	for {
		seq0 := atomic.LoadUint32(&r.r.Results.Seq)
		if seq0%2 != 0 {
			continue
		}

		count := int(r.r.Results.ResultsCount)
		if count > MaxHands {
			count = MaxHands
		}
		out := make([]ResultSnapshot, count)
		for i := 0; i < count; i++ {
			rec := r.r.Results.Results[i]
			out[i] = ResultSnapshot{
				Name:        decodeHandName(r.r.Results.HandNames[i]),
				Equity:      rec.Equity,
				Wins:        rec.Wins,
				Ties:        rec.Ties,
				Losses:      rec.Losses,
				Simulations: rec.Simulations,
				WinMethod:   rec.WinMethod,
			}
		}

		seq1 := atomic.LoadUint32(&r.r.Results.Seq)
		if seq0 == seq1 {
			return out
		}
	}
}

// WaitForStatus polls ReadProgress until Status equals want or the
// deadline elapses.
func (r *Reader) WaitForStatus(want uint8, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if r.ReadProgress().Status == want {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// Close unmaps the region. It does not remove the backing file —
// removal is the reader's prerogative, never the writer's, but Close
// itself only releases this process's mapping.
func (r *Reader) Close() error {
	if err := unix.Munmap(r.buf); err != nil {
		unix.Close(r.fd)
		return err
	}
	return unix.Close(r.fd)
}
