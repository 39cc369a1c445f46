package wire

import (
	"math"

	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/schema"
)

const initialCap = 256

// Ref is the buffer position of a constructed object's header. It is the
// value pointer slots store.
type Ref int

// Writer is an append-only arena. Allocations only move the frontier
// forward; earlier bytes are touched again only to fill parent slots and
// presence bits. A Writer is not safe for concurrent use.
type Writer struct {
	buf  []byte
	used int
}

// NewWriter returns a writer with the message header reserved.
func NewWriter() *Writer {
	w := &Writer{buf: make([]byte, initialCap)}
	w.used = MessageHeaderSize
	return w
}

// Reset discards everything written, keeping the buffer.
func (w *Writer) Reset() {
	clear(w.buf[:w.used])
	w.used = MessageHeaderSize
}

// Len is the current frontier.
func (w *Writer) Len() int { return w.used }

// alloc reserves n zeroed bytes at the frontier and returns their offset.
func (w *Writer) alloc(n int) int {
	if n < 0 || n > maxU48-w.used {
		panic(errors.Overflow(errors.PhaseEncode, nil, n, "48-bit offset"))
	}
	off := w.used
	if need := off + n; need > len(w.buf) {
		size := len(w.buf) * 2
		for size < need {
			size *= 2
		}
		buf := make([]byte, size)
		copy(buf, w.buf[:w.used])
		w.buf = buf
	}
	w.used += n
	return off
}

func (w *Writer) header(magic uint32, n int) int {
	if uint64(n) > math.MaxUint32 {
		panic(errors.Overflow(errors.PhaseEncode, nil, n, "u32 size"))
	}
	hdr := w.alloc(HeaderSize)
	le.PutUint32(w.buf[hdr:], magic)
	le.PutUint32(w.buf[hdr+4:], uint32(n))
	return hdr
}

// Construct appends a table header and the table's default blob.
func (w *Writer) Construct(t *schema.Table) *TableOut {
	hdr := w.header(t.Magic, t.Bytes)
	off := w.alloc(t.Bytes)
	copy(w.buf[off:], t.Default)
	return &TableOut{w: w, t: t, hdr: hdr, off: off}
}

// ConstructText appends a NUL-terminated text object.
func (w *Writer) ConstructText(s string) Ref {
	hdr := w.header(TextMagic, len(s))
	off := w.alloc(len(s) + 1)
	copy(w.buf[off:], s)
	return Ref(hdr)
}

func (w *Writer) ConstructBytes(b []byte) Ref {
	hdr := w.header(BytesMagic, len(b))
	off := w.alloc(len(b))
	copy(w.buf[off:], b)
	return Ref(hdr)
}

// ConstructList appends an n element list for the list member m, with every
// element at its default: zero, enum absent or the table default blob for
// direct lists.
func (w *Writer) ConstructList(m *schema.Member, n int) *ListOut {
	if !m.IsList() {
		panic(errors.Misuse([]string{m.Name}, "member is not a list"))
	}
	magic := ListMagic
	if m.Direct() {
		magic = DirectListMagic
	}
	hdr := w.header(magic, n)
	l := w.listPayload(m, n)
	l.hdr = hdr
	return l
}

// listPayload allocates and initialises the elements of a list, preceded by
// the item prefix for direct lists.
func (w *Writer) listPayload(m *schema.Member, n int) *ListOut {
	if n < 0 || (m.ElemBytes() > 0 && n > maxU48/m.ElemBytes()) {
		panic(errors.Overflow(errors.PhaseEncode, []string{m.Name}, n, "list length"))
	}
	l := &ListOut{w: w, m: m, n: n, item: m.ElemBytes(), hdr: -1}
	if m.Direct() {
		t := m.Type.Table
		p := w.alloc(DirectPrefixSize)
		le.PutUint32(w.buf[p:], t.Magic)
		le.PutUint32(w.buf[p+4:], uint32(t.Bytes))
		l.off = w.alloc(n * t.Bytes)
		for i := 0; i < n; i++ {
			copy(w.buf[l.off+i*t.Bytes:], t.Default)
		}
		return l
	}
	l.off = w.alloc(listPayload(m, n))
	switch m.Type.Kind {
	case schema.KindEnum:
		for i := 0; i < n; i++ {
			w.buf[l.off+i] = enumAbsent
		}
	case schema.KindStruct:
		for i := 0; i < n; i++ {
			copy(w.buf[l.off+i*l.item:], m.Type.Struct.Default)
		}
	}
	return l
}

// Finalize writes the message header pointing at root and returns the
// message. The returned slice aliases the writer's buffer until the next
// Reset.
func (w *Writer) Finalize(root *TableOut) []byte {
	if root.w != w || root.hdr < 0 {
		panic(errors.Misuse([]string{root.t.Name}, "root must be a table constructed by this writer"))
	}
	le.PutUint32(w.buf, MessageMagic)
	putU48(w.buf[4:], uint64(root.hdr))
	Logger().Debug("message finalized")
	return w.buf[:w.used]
}

// inplace panics unless the frontier is exactly at end, the end of the
// container the inplace payload must follow. It runs before any byte of the
// payload or its slot is written.
func (w *Writer) inplace(end int, path []string) {
	if w.used != end {
		misuse(path, "inplace payload must directly follow its container (frontier %d, container end %d)", w.used, end)
	}
}

// link stores ref in slot after checking the referenced header carries magic.
func (w *Writer) link(slot int, ref Ref, magic uint32, path []string) {
	h := int(ref)
	if h < MessageHeaderSize || h+HeaderSize > w.used {
		panic(errors.Misuse(path, "reference does not belong to this writer"))
	}
	if got := le.Uint32(w.buf[h:]); got != magic {
		misuse(path, "reference has magic 0x%08X, want 0x%08X", got, magic)
	}
	putU48(w.buf[slot:], uint64(h))
}

// inplaceText writes s at the frontier for an inplace slot and stores its
// length. Inplace text carries no NUL terminator in its length.
func (w *Writer) inplaceText(slot, end int, s string, path []string) {
	w.inplace(end, path)
	off := w.alloc(len(s) + 1)
	copy(w.buf[off:], s)
	putU48(w.buf[slot:], uint64(len(s)))
}

func (w *Writer) inplaceBytes(slot, end int, b []byte, path []string) {
	w.inplace(end, path)
	off := w.alloc(len(b))
	copy(w.buf[off:], b)
	putU48(w.buf[slot:], uint64(len(b)))
}

func (w *Writer) inplaceTable(slot, end int, t *schema.Table, path []string) *TableOut {
	w.inplace(end, path)
	off := w.alloc(t.Bytes)
	copy(w.buf[off:], t.Default)
	putU48(w.buf[slot:], uint64(t.Bytes))
	return &TableOut{w: w, t: t, hdr: -1, off: off}
}

func (w *Writer) inplaceList(slot, end int, m *schema.Member, n int, path []string) *ListOut {
	w.inplace(end, path)
	l := w.listPayload(m, n)
	putU48(w.buf[slot:], uint64(n))
	return l
}

func misuse(path []string, format string, args ...any) {
	panic(errors.New(errors.PhaseEncode, errors.KindMisuse).
		Path(path...).
		Detail(format, args...).
		Build())
}

// checkInt panics if v does not fit s.
func checkInt(v int64, s schema.Scalar, path []string) {
	lo, hi, _ := s.IntRange()
	if v < lo || v > hi {
		panic(errors.Overflow(errors.PhaseEncode, path, v, s.String()))
	}
}

func checkUint(v uint64, s schema.Scalar, path []string) {
	if _, _, umax := s.IntRange(); v > umax {
		panic(errors.Overflow(errors.PhaseEncode, path, v, s.String()))
	}
}
