// Package persist reads and writes survivor files.
//
// A file is a header followed by a sequence of length-prefixed records, one
// per survivor. All integers and floats are little-endian.
//
//	header: [Magic:4][Version:2][Count:4]
//	record: [Len:4][Kind:1][Hunger:8][Timeout:8][Life:8][Memory:1]
//	        [NumLayers:4][Layer:4 ...][Weights:8 ...][Biases:8 ...]
//
// Weights and biases follow layer order; their counts derive from the layer sizes.
package persist

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/neural"
)

// Magic identifies a survivor file.
var Magic = [4]byte{'C', 'R', 'T', 'R'}

// Version is the current format version.
const Version uint16 = 1

const (
	headerSize = 10
	maxRecords = 1 << 16
	maxRecord  = 1 << 26 // bytes
	maxLayers  = 64
	maxLayer   = 1 << 12 // neurons
)

var (
	// ErrBadMagic is returned when the input is not a survivor file.
	ErrBadMagic = errors.New("persist: not a survivor file")
	// ErrVersion is returned for files written by an unknown format version.
	ErrVersion = errors.New("persist: unsupported version")
)

// Save writes survivors to w.
func Save(w io.Writer, survivors []game.Survivor) error {
	if len(survivors) > maxRecords {
		return fmt.Errorf("persist: %d survivors exceeds limit %d", len(survivors), maxRecords)
	}

	header := make([]byte, headerSize)
	copy(header[0:4], Magic[:])
	binary.LittleEndian.PutUint16(header[4:6], Version)
	binary.LittleEndian.PutUint32(header[6:10], uint32(len(survivors)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	var buf bytes.Buffer
	for i, sv := range survivors {
		buf.Reset()
		if err := encodeRecord(&buf, sv); err != nil {
			return fmt.Errorf("encoding survivor %d: %w", i, err)
		}
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(buf.Len()))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return fmt.Errorf("writing survivor %d: %w", i, err)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("writing survivor %d: %w", i, err)
		}
	}
	return nil
}

// Load reads survivors from r.
func Load(r io.Reader) ([]game.Survivor, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(header[0:4], Magic[:]) {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(header[4:6]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}
	count := binary.LittleEndian.Uint32(header[6:10])
	if count > maxRecords {
		return nil, fmt.Errorf("persist: record count %d exceeds limit %d", count, maxRecords)
	}

	survivors := make([]game.Survivor, 0, count)
	for i := uint32(0); i < count; i++ {
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return nil, fmt.Errorf("reading survivor %d: %w", i, err)
		}
		n := binary.LittleEndian.Uint32(lenBuf[:])
		if n > maxRecord {
			return nil, fmt.Errorf("persist: survivor %d record of %d bytes exceeds limit", i, n)
		}
		rec := make([]byte, n)
		if _, err := io.ReadFull(r, rec); err != nil {
			return nil, fmt.Errorf("reading survivor %d: %w", i, err)
		}
		sv, err := decodeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("decoding survivor %d: %w", i, err)
		}
		survivors = append(survivors, sv)
	}
	return survivors, nil
}

// SaveFile writes survivors to the file at path, replacing it.
func SaveFile(path string, survivors []game.Survivor) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating survivor file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := Save(w, survivors); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing survivor file: %w", err)
	}
	return f.Close()
}

// LoadFile reads survivors from the file at path.
func LoadFile(path string) ([]game.Survivor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening survivor file: %w", err)
	}
	defer f.Close()
	return Load(bufio.NewReader(f))
}

func encodeRecord(buf *bytes.Buffer, sv game.Survivor) error {
	ws := sv.Weights
	if len(ws.Layers) < 2 || len(ws.Layers) > maxLayers {
		return fmt.Errorf("network has %d layers", len(ws.Layers))
	}
	if len(ws.W) != len(ws.Layers)-1 || len(ws.B) != len(ws.Layers)-1 {
		return fmt.Errorf("network has %d weight and %d bias layers for %d layers", len(ws.W), len(ws.B), len(ws.Layers))
	}

	c := sv.Creature
	buf.WriteByte(byte(c.Kind))
	putFloat(buf, c.Hunger)
	putFloat(buf, c.Timeout)
	putFloat(buf, c.Life)
	if ws.Memory {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	putUint32(buf, uint32(len(ws.Layers)))
	for _, l := range ws.Layers {
		putUint32(buf, uint32(l))
	}
	for i := range ws.W {
		rows, cols := layerShape(ws.Layers, ws.Memory, i)
		if len(ws.W[i]) != rows*cols || len(ws.B[i]) != rows {
			return fmt.Errorf("layer %d has %d weights and %d biases, want %d and %d", i, len(ws.W[i]), len(ws.B[i]), rows*cols, rows)
		}
		for _, v := range ws.W[i] {
			putFloat(buf, v)
		}
		for _, v := range ws.B[i] {
			putFloat(buf, v)
		}
	}
	return nil
}

func decodeRecord(rec []byte) (game.Survivor, error) {
	d := decoder{buf: rec}
	var sv game.Survivor

	kind := components.Kind(d.readByte())
	if kind != components.Vegan && kind != components.Carnivorous {
		return sv, fmt.Errorf("unknown kind %d", kind)
	}
	sv.Creature = components.Creature{
		Kind:    kind,
		Hunger:  d.readFloat(),
		Timeout: d.readFloat(),
		Life:    d.readFloat(),
	}
	sv.Weights.Memory = d.readByte() != 0

	nLayers := d.readUint32()
	if d.err == nil && (nLayers < 2 || nLayers > maxLayers) {
		return sv, fmt.Errorf("invalid layer count %d", nLayers)
	}
	for i := uint32(0); i < nLayers && d.err == nil; i++ {
		l := d.readUint32()
		if d.err != nil {
			break
		}
		if l < 1 || l > maxLayer {
			return sv, fmt.Errorf("invalid layer size %d", l)
		}
		sv.Weights.Layers = append(sv.Weights.Layers, int(l))
	}
	for i := 0; i+1 < len(sv.Weights.Layers) && d.err == nil; i++ {
		rows, cols := layerShape(sv.Weights.Layers, sv.Weights.Memory, i)
		sv.Weights.W = append(sv.Weights.W, d.readFloats(rows*cols))
		sv.Weights.B = append(sv.Weights.B, d.readFloats(rows))
	}
	if d.err != nil {
		return sv, d.err
	}
	if len(d.buf) != 0 {
		return sv, fmt.Errorf("%d trailing bytes", len(d.buf))
	}

	if _, err := neural.FromWeights(sv.Weights); err != nil {
		return sv, err
	}
	return sv, nil
}

// layerShape returns the weight matrix shape between layer i and i+1.
// With memory the first layer also receives the previous output.
func layerShape(layers []int, memory bool, i int) (rows, cols int) {
	rows, cols = layers[i+1], layers[i]
	if memory && i == 0 {
		cols += layers[len(layers)-1]
	}
	return rows, cols
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putFloat(buf *bytes.Buffer, v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	buf.Write(b[:])
}

// decoder reads fields from a record, remembering the first error.
type decoder struct {
	buf []byte
	err error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.buf) < n {
		d.err = io.ErrUnexpectedEOF
		return nil
	}
	b := d.buf[:n]
	d.buf = d.buf[n:]
	return b
}

func (d *decoder) readByte() byte {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) readUint32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) readFloat() float64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func (d *decoder) readFloats(n int) []float64 {
	b := d.take(n * 8)
	if b == nil {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out
}
