package export

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"

	"terragen/internal/field"
)

// RawVersion is the current raw heightfield layout.
const RawVersion = 1

// RawHeader is the JSON line that precedes the samples.
type RawHeader struct {
	Version int     `json:"version"`
	RunID   string  `json:"run_id"`
	Seed    int64   `json:"seed"`
	Width   int     `json:"width"`
	Length  int     `json:"length"`
	RawMin  float64 `json:"raw_min"`
	RawMax  float64 `json:"raw_max"`
}

// WriteRaw writes a zstd stream holding a JSON header line followed by the
// heightfield as little-endian float32 samples in row-major order.
func WriteRaw(w io.Writer, header RawHeader, hf *field.Snapshot) error {
	header.Version = RawVersion
	header.Width, header.Length = hf.Width(), hf.Length()

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(header)
	if err != nil {
		enc.Close()
		return fmt.Errorf("encode raw header: %w", err)
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return fmt.Errorf("write raw header: %w", err)
	}

	var buf [4]byte
	for i := 0; i < hf.Len(); i++ {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(hf.AtIndex(i))))
		if _, err := bw.Write(buf[:]); err != nil {
			enc.Close()
			return fmt.Errorf("write raw samples: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return fmt.Errorf("flush raw samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close zstd writer: %w", err)
	}
	return nil
}

// ReadRaw decodes a stream produced by WriteRaw.
func ReadRaw(r io.Reader) (RawHeader, *field.Snapshot, error) {
	var header RawHeader
	dec, err := zstd.NewReader(r)
	if err != nil {
		return header, nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()
	br := bufio.NewReaderSize(dec, 256*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return header, nil, fmt.Errorf("read raw header: %w", err)
	}
	if err := json.Unmarshal(line, &header); err != nil {
		return header, nil, fmt.Errorf("parse raw header: %w", err)
	}
	if header.Version != RawVersion {
		return header, nil, fmt.Errorf("unsupported raw version %d", header.Version)
	}
	if header.Width <= 0 || header.Length <= 0 {
		return header, nil, fmt.Errorf("invalid raw dimensions %dx%d", header.Width, header.Length)
	}

	values := make([]float64, header.Width*header.Length)
	var buf [4]byte
	for i := range values {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return header, nil, fmt.Errorf("read raw samples: %w", err)
		}
		values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[:])))
	}
	hf, err := field.NewSnapshot(header.Width, header.Length, values)
	if err != nil {
		return header, nil, err
	}
	return header, hf, nil
}
