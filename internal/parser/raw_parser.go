package parser

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("frame dimensions must be positive")
	// ErrSizeMismatch is returned when the file does not hold exactly width*height samples.
	ErrSizeMismatch = errors.New("raw frame size does not match dimensions")
)

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Wrapf(ErrInvalidDimensions, "got %dx%d", width, height)
	}
	return nil
}

// ParseDepthFrame reads a headerless raw depth frame of little-endian int16
// samples and reshapes it row-major into a width x height grid.
func ParseDepthFrame(filepath string, width, height int) (*DepthGrid, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}

	file, err := os.Open(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open raw depth file")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat raw depth file")
	}
	expected := int64(width) * int64(height) * BytesPerSample
	if info.Size() != expected {
		return nil, errors.Wrapf(ErrSizeMismatch, "%s is %d bytes, expected %d (%dx%d int16)",
			filepath, info.Size(), expected, width, height)
	}

	return DecodeDepthFrame(bufio.NewReader(file), width, height)
}

// DecodeDepthFrame reads exactly width*height samples from r. Trailing data
// after the frame is reported as a size mismatch.
func DecodeDepthFrame(r io.Reader, width, height int) (*DepthGrid, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}

	grid := NewDepthGrid(width, height)
	if err := binary.Read(r, binary.LittleEndian, grid.Data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.Wrapf(ErrSizeMismatch, "short frame, expected %d samples", width*height)
		}
		return nil, errors.Wrap(err, "failed to decode raw depth frame")
	}

	var extra [1]byte
	if n, _ := r.Read(extra[:]); n > 0 {
		return nil, errors.Wrapf(ErrSizeMismatch, "trailing data after %d samples", width*height)
	}
	return grid, nil
}

// EncodeDepthFrame writes grid in the same headerless little-endian layout
// that DecodeDepthFrame reads.
func EncodeDepthFrame(w io.Writer, grid *DepthGrid) error {
	if err := binary.Write(w, binary.LittleEndian, grid.Data); err != nil {
		return errors.Wrap(err, "failed to encode raw depth frame")
	}
	return nil
}

// WriteDepthFrame writes grid to filepath, creating or truncating it.
func WriteDepthFrame(filepath string, grid *DepthGrid) error {
	file, err := os.Create(filepath)
	if err != nil {
		return errors.Wrap(err, "failed to create raw depth file")
	}
	bw := bufio.NewWriter(file)
	if err := EncodeDepthFrame(bw, grid); err != nil {
		file.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		return errors.Wrap(err, "failed to flush raw depth file")
	}
	return file.Close()
}
