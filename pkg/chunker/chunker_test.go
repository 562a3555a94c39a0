package chunker

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/sleepymurph/dmv/pkg/constants"
	"github.com/sleepymurph/dmv/pkg/dag"
)

// varianceCalc is a small Welford-style online mean/variance accumulator,
// translated from the reference implementation's variance calculator.
type varianceCalc struct {
	k, n       float64
	sum, sumSq float64
}

func (v *varianceCalc) item(x float64) {
	if v.n == 0 {
		v.k = x
	}
	v.n++
	v.sum += x - v.k
	v.sumSq += (x - v.k) * (x - v.k)
}

func (v *varianceCalc) count() float64 { return v.n }

func (v *varianceCalc) mean() float64 {
	return v.k + v.sum/v.n
}

func (v *varianceCalc) variance() float64 {
	return (v.sumSq - (v.sum*v.sum)/v.n) / (v.n - 1)
}

func (v *varianceCalc) std() float64 {
	s := v.variance()
	if s < 0 {
		s = 0
	}
	return sqrt(s)
}

// sqrt avoids pulling in math.Sqrt's edge-case handling concerns; plain
// Newton's method is plenty for a test-only statistic.
func sqrt(x float64) float64 {
	if x == 0 {
		return 0
	}
	z := x
	for i := 0; i < 40; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

func TestVarianceCalcAccuracy(t *testing.T) {
	vc := &varianceCalc{}
	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		vc.item(x)
	}
	if vc.mean() != 5 {
		t.Errorf("mean = %v, want 5", vc.mean())
	}
	if v := vc.variance(); v < 4.56 || v > 4.58 {
		t.Errorf("variance = %v, want ~4.571", v)
	}
}

func TestChunkTargetSize(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	data := make([]byte, constants.TargetChunkSize*20)
	rng.Read(data)

	cr := NewChunkReader(bytes.NewReader(data))
	vc := &varianceCalc{}
	total := 0
	for {
		chunk, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		vc.item(float64(len(chunk)))
		total += len(chunk)
	}
	if total != len(data) {
		t.Fatalf("chunked total = %d, want %d", total, len(data))
	}
	if vc.count() <= 1 {
		t.Fatalf("expected more than one chunk, got %v", vc.count())
	}
	mean := vc.mean()
	if mean < 10*1024 || mean > 25*1024 {
		t.Errorf("mean chunk size = %v, want in [10KiB, 25KiB]", mean)
	}
	if std := vc.std(); std > 25*1024 {
		t.Errorf("chunk size std = %v, want < 25KiB", std)
	}
}

func TestChunkReaderRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	data := make([]byte, constants.TargetChunkSize*8)
	rng.Read(data)

	cr := NewChunkReader(bytes.NewReader(data))
	var reassembled bytes.Buffer
	count := 0
	for {
		chunk, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		reassembled.Write(chunk)
		count++
	}
	if count <= 1 {
		t.Errorf("expected multiple chunks for large input, got %d", count)
	}
	if !bytes.Equal(reassembled.Bytes(), data) {
		t.Errorf("reassembled bytes do not match original input")
	}
}

func TestChunkReaderEmptyInput(t *testing.T) {
	cr := NewChunkReader(bytes.NewReader(nil))
	_, err := cr.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF for empty input, got %v", err)
	}
}

func TestObjectReaderEmptyInput(t *testing.T) {
	or := ReadFileObjects(bytes.NewReader(nil))

	obj, key, err := or.Next()
	if err != nil {
		t.Fatalf("expected one empty blob, got error: %v", err)
	}
	blob, ok := obj.(*dag.Blob)
	if !ok || len(blob.Content) != 0 {
		t.Fatalf("expected empty blob, got %+v", obj)
	}
	if key.IsZero() {
		t.Errorf("expected non-zero key for empty blob")
	}

	if _, _, err := or.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after the empty blob, got %v", err)
	}
}

func TestObjectReaderOneChunk(t *testing.T) {
	content := []byte("a single small chunk of content")
	or := ReadFileObjects(bytes.NewReader(content))

	obj, _, err := or.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blob, ok := obj.(*dag.Blob)
	if !ok || !bytes.Equal(blob.Content, content) {
		t.Fatalf("expected single blob with full content, got %+v", obj)
	}

	if _, _, err := or.Next(); err != io.EOF {
		t.Errorf("expected io.EOF with no chunked-blob index for single-chunk input, got %v", err)
	}
}

func TestObjectReaderManyChunks(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	data := make([]byte, constants.TargetChunkSize*10)
	rng.Read(data)

	store := map[string]dag.Object{}
	var lastObj dag.Object
	var lastKey string

	or := ReadFileObjects(bytes.NewReader(data))
	blobCount := 0
	chunkedBlobCount := 0
	for {
		obj, key, err := or.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		store[key.String()] = obj
		lastObj, lastKey = obj, key.String()
		switch obj.(type) {
		case *dag.Blob:
			blobCount++
		case *dag.ChunkedBlob:
			chunkedBlobCount++
		}
	}

	if chunkedBlobCount != 1 {
		t.Fatalf("expected exactly one chunked-blob index, got %d", chunkedBlobCount)
	}
	if blobCount <= 1 {
		t.Fatalf("expected multiple chunk blobs, got %d", blobCount)
	}

	cb, ok := store[lastKey].(*dag.ChunkedBlob)
	if !ok || lastObj != cb {
		t.Fatalf("expected the last emitted object to be the chunked-blob index")
	}
	if len(cb.Chunks) != blobCount {
		t.Errorf("chunked-blob lists %d chunks, want %d", len(cb.Chunks), blobCount)
	}

	var reassembled bytes.Buffer
	for _, entry := range cb.Chunks {
		chunkObj, ok := store[entry.Hash.String()]
		if !ok {
			t.Fatalf("missing stored blob for chunk hash %s", entry.Hash)
		}
		blob := chunkObj.(*dag.Blob)
		if uint64(len(blob.Content)) != entry.Size {
			t.Errorf("chunk %s size mismatch: entry says %d, blob has %d", entry.Hash, entry.Size, len(blob.Content))
		}
		reassembled.Write(blob.Content)
	}
	if !bytes.Equal(reassembled.Bytes(), data) {
		t.Errorf("reassembled content from chunked-blob index does not match original")
	}
	if cb.TotalSize != uint64(len(data)) {
		t.Errorf("chunked-blob total size = %d, want %d", cb.TotalSize, len(data))
	}
}
