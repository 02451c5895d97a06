// Package telemetry publishes simulation progress and per-hand results to
// a shared-memory region that survives the writing process, so an
// external observer (a separate monitoring process, or the websocket
// Server in stream.go) can poll progress without an RPC round trip. The memory layout mirrors
// a ctypes shared-memory segment byte for byte: fixed-width fields, no
// pointers, sequence-locked for single-writer/multi-reader access.
package telemetry

import "unsafe"

// Status values written into Progress.Status.
const (
	StatusPending = iota
	StatusRunning
	StatusCompleted
	StatusFailed
)

// MaxHands bounds how many distinct hero hands a single job can publish
// results for — the 13x13 starting-hand grid, 169 cells.
const MaxHands = 169

// ProgressSize and ResultRecordSize are asserted against
// unsafe.Sizeof(Progress{})/unsafe.Sizeof(ResultRecord{}) in init() so any
// accidental field drift fails fast instead of silently corrupting the
// region layout.
const (
	ProgressSize     = 64
	ResultRecordSize = 448
)

// Progress is the fixed-size telemetry header, always at offset 0 of the
// region. Seq is a sequence lock: a writer increments it to an odd value
// before mutating the struct and to the next even value after, so readers
// can detect (and retry past) a torn read.
type Progress struct {
	Seq            uint32
	_              uint32
	JobStartNS     uint64
	HandsProcessed uint64
	LastUpdateNS   uint64
	Status         uint8
	_              [31]byte
}

// ResultRecord is one hero hand's accumulated outcome, including the
// win-method matrix (hero category x opponent category). Each record is
// exactly ResultRecordSize bytes so the results array can be indexed
// directly without per-record bounds bookkeeping.
type ResultRecord struct {
	Equity      float64
	Wins        uint32
	Ties        uint32
	Losses      uint32
	Simulations uint32
	WinMethod   [10][10]uint32
	_           [24]byte
}

// resultsSegment holds up to MaxHands named results behind its own
// sequence lock, independent of Progress's.
type resultsSegment struct {
	Seq          uint32
	ResultsCount uint32
	HandNames    [MaxHands][8]byte
	Results      [MaxHands]ResultRecord
}

// region is the complete shared-memory layout: telemetry header followed
// by the results segment, overlaid directly onto the mmap'd bytes via
// unsafe.Pointer.
type region struct {
	Progress Progress
	Results  resultsSegment
}

// RegionSize is the total byte length a Writer must ftruncate its backing
// file to before mapping it.
const RegionSize = int(unsafe.Sizeof(region{}))

func init() {
	if unsafe.Sizeof(Progress{}) != ProgressSize {
		panic("telemetry: Progress layout drifted from the documented 64-byte size")
	}
	if unsafe.Sizeof(ResultRecord{}) != ResultRecordSize {
		panic("telemetry: ResultRecord layout drifted from the documented 448-byte size")
	}
}

func regionOf(buf []byte) *region {
	return (*region)(unsafe.Pointer(&buf[0]))
}

func encodeHandName(name string) [8]byte {
	var out [8]byte
	b := []byte(name)
	if len(b) > 7 {
		b = b[:7]
	}
	copy(out[:], b)
	return out
}

func decodeHandName(b [8]byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
