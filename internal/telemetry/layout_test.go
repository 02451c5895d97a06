package telemetry

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestStructSizesMatchDocumentedConstants(t *testing.T) {
	assert.EqualValues(t, ProgressSize, unsafe.Sizeof(Progress{}))
	assert.EqualValues(t, ResultRecordSize, unsafe.Sizeof(ResultRecord{}))
}

func TestHandNameRoundTrip(t *testing.T) {
	cases := []string{"AA", "AKs", "72o", "TT"}
	for _, name := range cases {
		enc := encodeHandName(name)
		assert.Equal(t, name, decodeHandName(enc))
	}
}

func TestHandNameTruncatesOverlongNames(t *testing.T) {
	enc := encodeHandName("ABCDEFGHIJ")
	decoded := decodeHandName(enc)
	assert.LessOrEqual(t, len(decoded), 7)
	assert.Equal(t, "ABCDEFG", decoded)
}

func TestRegionSizeIsHeaderPlusResults(t *testing.T) {
	assert.Equal(t, int(unsafe.Sizeof(Progress{}))+int(unsafe.Sizeof(resultsSegment{})), RegionSize)
}
