package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/spaolacci/murmur3"
)

const (
	headerSize = 12

	// MaxFrameSize bounds the compressed payload a reader will accept.
	MaxFrameSize = 1 << 30
)

var frameMagic = [4]byte{'P', 'B', 'W', '1'}

var (
	// ErrBadMagic is returned when a frame does not start with the magic bytes.
	ErrBadMagic = errors.New("wire: bad frame magic")

	// ErrChecksum is returned when a payload fails its murmur3 check.
	ErrChecksum = errors.New("wire: checksum mismatch")

	// ErrFrameTooLarge is returned for frames above MaxFrameSize.
	ErrFrameTooLarge = errors.New("wire: frame too large")
)

// Writer writes framed messages to an underlying stream.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w in a buffered frame writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 64*1024)}
}

// WriteFrame compresses payload, frames it and flushes it.
func (fw *Writer) WriteFrame(payload []byte) error {
	compressed := snappy.Encode(nil, payload)
	if len(compressed) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(compressed))
	}

	var header [headerSize]byte
	copy(header[0:4], frameMagic[:])
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(compressed)))
	binary.LittleEndian.PutUint32(header[8:12], murmur3.Sum32(compressed))

	if _, err := fw.w.Write(header[:]); err != nil {
		return err
	}
	if _, err := fw.w.Write(compressed); err != nil {
		return err
	}
	return fw.w.Flush()
}

// WriteTask encodes and writes a task frame.
func (fw *Writer) WriteTask(t Task) error {
	payload, err := MarshalTask(t)
	if err != nil {
		return err
	}
	return fw.WriteFrame(payload)
}

// WriteResult encodes and writes a result frame.
func (fw *Writer) WriteResult(r Result) error {
	return fw.WriteFrame(MarshalResult(r))
}

// Reader reads framed messages from an underlying stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r in a buffered frame reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 64*1024)}
}

// ReadFrame reads one frame and returns its decompressed payload. It returns
// io.EOF only when the stream ends cleanly between frames.
func (fr *Reader) ReadFrame() ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(fr.r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("wire: read header: %w", err)
	}

	if [4]byte(header[0:4]) != frameMagic {
		return nil, ErrBadMagic
	}

	size := binary.LittleEndian.Uint32(header[4:8])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}
	sum := binary.LittleEndian.Uint32(header[8:12])

	compressed := make([]byte, size)
	if _, err := io.ReadFull(fr.r, compressed); err != nil {
		return nil, fmt.Errorf("wire: read payload: %w", err)
	}
	if murmur3.Sum32(compressed) != sum {
		return nil, ErrChecksum
	}

	payload, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("wire: snappy decompress failed: %w", err)
	}
	return payload, nil
}

// ReadTask reads and decodes a task frame.
func (fr *Reader) ReadTask() (Task, error) {
	payload, err := fr.ReadFrame()
	if err != nil {
		return Task{}, err
	}
	return UnmarshalTask(payload)
}

// ReadResult reads and decodes a result frame.
func (fr *Reader) ReadResult() (Result, error) {
	payload, err := fr.ReadFrame()
	if err != nil {
		return Result{}, err
	}
	return UnmarshalResult(payload)
}
