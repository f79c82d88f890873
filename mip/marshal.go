package mip

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/sync/errgroup"

	"github.com/go-opt/milo"
	"github.com/go-opt/milo/engine"
	"github.com/go-opt/milo/logger"
)

// modelMeta heads the serialized model.
type modelMeta struct {
	Version string
	Name    string
}

type columnRecord struct {
	Name     string
	Type     uint8
	Coef     float64
	Lower    float64
	Upper    float64
	Priority int
}

type rowRecord struct {
	Name  string
	Cols  []int
	Coefs []float64
	Lower float64
	Upper float64
}

const headerLen = 3 * 8

// header carries the byte length of each section.
type header struct {
	metaLen uint64
	colsLen uint64
	rowsLen uint64
}

func (h *header) toBytes() []byte {
	buf := make([]byte, 0, headerLen)
	buf = binary.LittleEndian.AppendUint64(buf, h.metaLen)
	buf = binary.LittleEndian.AppendUint64(buf, h.colsLen)
	buf = binary.LittleEndian.AppendUint64(buf, h.rowsLen)
	return buf
}

func (h *header) fromBytes(buf []byte) {
	h.metaLen = binary.LittleEndian.Uint64(buf[:8])
	h.colsLen = binary.LittleEndian.Uint64(buf[8:16])
	h.rowsLen = binary.LittleEndian.Uint64(buf[16:24])
}

func encodeSection(v any) ([]byte, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := enc.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSection(data []byte, v any) error {
	dm, err := cbor.DecOptions{
		MaxArrayElements: 2147483647,
		MaxMapPairs:      2147483647,
	}.DecMode()
	if err != nil {
		return err
	}
	return dm.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// WriteModel serializes the model to w: variables, live constraints
// and names. Solve state, the sense and per-solve options are not part
// of the stream.
func (s *Session) WriteModel(w io.Writer) (int64, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}
	data, err := s.modelToBytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

func (s *Session) modelToBytes() ([]byte, error) {
	// the sections serialize independently; only the column section
	// talks to the engine (live priorities)
	var cols, rows []byte
	var g errgroup.Group
	g.Go(func() error {
		var err error
		cols, err = s.columnsToBytes()
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.rowsToBytes()
		return err
	})
	meta, err := encodeSection(modelMeta{Version: milo.Version.String(), Name: s.name})
	if err != nil {
		return nil, err
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	h := header{
		metaLen: uint64(len(meta)),
		colsLen: uint64(len(cols)),
		rowsLen: uint64(len(rows)),
	}
	buf := h.toBytes()
	buf = append(buf, meta...)
	buf = append(buf, cols...)
	buf = append(buf, rows...)
	return buf, nil
}

func (s *Session) columnsToBytes() ([]byte, error) {
	recs := make([]columnRecord, len(s.vars))
	for i, v := range s.vars {
		prio, err := v.Priority()
		if err != nil {
			return nil, err
		}
		recs[i] = columnRecord{
			Name:     v.name,
			Type:     uint8(v.typ),
			Coef:     v.coef,
			Lower:    v.lower,
			Upper:    v.upper,
			Priority: prio,
		}
	}
	return encodeSection(recs)
}

func (s *Session) rowsToBytes() ([]byte, error) {
	index := make(map[*Var]int, len(s.vars))
	for i, v := range s.vars {
		index[v] = i
	}
	recs := []rowRecord{}
	for _, c := range s.cons {
		if c.deleted {
			continue
		}
		rec := rowRecord{
			Name:  c.name,
			Cols:  make([]int, len(c.vars)),
			Coefs: append([]float64(nil), c.coefs...),
			Lower: c.lower,
			Upper: c.upper,
		}
		for k, v := range c.vars {
			idx, ok := index[v]
			if !ok {
				return nil, wrap(ErrInvalidConstraint, "%s references an unknown variable", c.name)
			}
			rec.Cols[k] = idx
		}
		recs = append(recs, rec)
	}
	return encodeSection(recs)
}

// ReadModel rebuilds a session from a stream produced by WriteModel.
// The engine and logging choices come from opts, not from the stream;
// an explicit WithName overrides the serialized model name.
func ReadModel(r io.Reader, opts ...Option) (*Session, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < headerLen {
		return nil, errors.New("invalid data length")
	}
	h := new(header)
	h.fromBytes(data)
	if uint64(len(data)) < headerLen+h.metaLen+h.colsLen+h.rowsLen {
		return nil, errors.New("invalid data length")
	}

	var meta modelMeta
	var colRecs []columnRecord
	var rowRecs []rowRecord

	var g errgroup.Group
	g.Go(func() error {
		return decodeSection(data[headerLen:headerLen+h.metaLen], &meta)
	})
	g.Go(func() error {
		return decodeSection(data[headerLen+h.metaLen:headerLen+h.metaLen+h.colsLen], &colRecs)
	})
	g.Go(func() error {
		return decodeSection(data[headerLen+h.metaLen+h.colsLen:headerLen+h.metaLen+h.colsLen+h.rowsLen], &rowRecs)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	objectVersion, err := semver.Parse(meta.Version)
	if err != nil {
		return nil, fmt.Errorf("when parsing model version: %w", err)
	}
	if milo.Version.Compare(objectVersion) != 0 {
		log := logger.Logger()
		log.Warn().Str("binary", milo.Version.String()).Str("model", objectVersion.String()).Msg("milo version (binary) mismatch with model. there are no guarantees on compatibility")
	}

	if meta.Name != "" {
		opts = append([]Option{WithName(meta.Name)}, opts...)
	}
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}

	vars := make([]*Var, len(colRecs))
	for i, rec := range colRecs {
		varOpts := []VarOption{
			WithVarName(rec.Name),
			WithType(engine.VarType(rec.Type)),
			WithCoefficient(rec.Coef),
			WithLower(rec.Lower),
			WithUpper(rec.Upper),
		}
		if rec.Priority != 0 {
			varOpts = append(varOpts, WithPriority(rec.Priority))
		}
		v, err := s.Var(varOpts...)
		if err != nil {
			s.Close()
			return nil, err
		}
		vars[i] = v
	}

	for _, rec := range rowRecs {
		if len(rec.Cols) != len(rec.Coefs) {
			s.Close()
			return nil, wrap(ErrDimensionMismatch, "row %s", rec.Name)
		}
		rowVars := make([]*Var, len(rec.Cols))
		for k, idx := range rec.Cols {
			if idx < 0 || idx >= len(vars) {
				s.Close()
				return nil, wrap(ErrInvalidConstraint, "row %s references column %d", rec.Name, idx)
			}
			rowVars[k] = vars[idx]
		}
		if _, err := s.Constrain(rec.Lower, rec.Upper, rowVars, rec.Coefs); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}
