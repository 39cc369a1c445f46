package wire

import (
	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/schema"
)

// Reader decodes messages from an immutable buffer. It keeps no state besides
// the buffer, never takes ownership of it, and is safe for concurrent use.
type Reader struct {
	data []byte
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Bytes returns the underlying buffer.
func (r *Reader) Bytes() []byte {
	return r.data
}

// Window locates the payload of a resolved object. Size is in bytes for
// tables, text and bytes, and in elements for lists. The zero Window means
// the object is absent.
type Window struct {
	Offset int
	Size   int
}

func (w Window) Present() bool {
	return w.Offset != 0
}

// Root checks the message header and returns the root table.
func (r *Reader) Root(t *schema.Table) (TableIn, error) {
	path := []string{t.Name}
	if len(r.data) < MessageHeaderSize {
		return TableIn{}, errors.OutOfBounds(errors.PhaseDecode, path, MessageHeaderSize, len(r.data))
	}
	if got := le.Uint32(r.data); got != MessageMagic {
		return TableIn{}, errors.BadMagic(path, got, MessageMagic)
	}
	w, err := r.ResolvePointer(4, t.Magic)
	if err != nil {
		return TableIn{}, err
	}
	if !w.Present() {
		return TableIn{}, errors.InvalidData(errors.PhaseDecode, path, "message has no root")
	}
	return r.table(t, w, path)
}

// RootMagic returns the magic of the root table without decoding it, so a
// tool can pick the root type with Schema.TableByMagic.
func (r *Reader) RootMagic() (uint32, error) {
	if len(r.data) < MessageHeaderSize {
		return 0, errors.OutOfBounds(errors.PhaseDecode, nil, MessageHeaderSize, len(r.data))
	}
	if got := le.Uint32(r.data); got != MessageMagic {
		return 0, errors.BadMagic(nil, got, MessageMagic)
	}
	hdr := int(getU48(r.data[4:]))
	if hdr == 0 {
		return 0, errors.InvalidData(errors.PhaseDecode, nil, "message has no root")
	}
	if err := r.span(hdr, HeaderSize, nil); err != nil {
		return 0, err
	}
	return le.Uint32(r.data[hdr:]), nil
}

// ResolvePointer follows the 48-bit pointer stored at slot. A zero pointer
// yields the zero Window. Otherwise the object header must lie inside the
// buffer and carry the expected magic. The payload span is not checked since
// its unit depends on the object kind.
func (r *Reader) ResolvePointer(slot int, magic uint32) (Window, error) {
	return r.resolvePointer(slot, magic, nil)
}

func (r *Reader) resolvePointer(slot int, magic uint32, path []string) (Window, error) {
	if slot < 0 || slot+PointerSize > len(r.data) {
		return Window{}, errors.OutOfBounds(errors.PhaseDecode, path, slot, len(r.data))
	}
	ptr := getU48(r.data[slot:])
	if ptr == 0 {
		return Window{}, nil
	}
	if ptr > uint64(len(r.data)) || int(ptr)+HeaderSize > len(r.data) {
		return Window{}, errors.OutOfBounds(errors.PhaseDecode, path, int(min(ptr, maxU48)), len(r.data))
	}
	off := int(ptr)
	if got := le.Uint32(r.data[off:]); got != magic {
		return Window{}, errors.BadMagic(path, got, magic)
	}
	return Window{Offset: off + HeaderSize, Size: int(le.Uint32(r.data[off+4:]))}, nil
}

// ResolveInplace reads the length stored at slot for a payload that starts
// at end, the end of the containing object.
func (r *Reader) ResolveInplace(slot, end int) (Window, error) {
	return r.resolveInplace(slot, end, nil)
}

func (r *Reader) resolveInplace(slot, end int, path []string) (Window, error) {
	if slot < 0 || slot+PointerSize > len(r.data) {
		return Window{}, errors.OutOfBounds(errors.PhaseDecode, path, slot, len(r.data))
	}
	n := getU48(r.data[slot:])
	if n == 0 {
		return Window{}, nil
	}
	if n > uint64(len(r.data)) {
		return Window{}, errors.OutOfBounds(errors.PhaseDecode, path, int(min(n, maxU48)), len(r.data))
	}
	return Window{Offset: end, Size: int(n)}, nil
}

// span checks that n bytes starting at off lie inside the buffer.
func (r *Reader) span(off, n int, path []string) error {
	if off < 0 || n < 0 || off > len(r.data) || n > len(r.data)-off {
		return errors.OutOfBounds(errors.PhaseDecode, path, off+n, len(r.data))
	}
	return nil
}

func (r *Reader) table(t *schema.Table, w Window, path []string) (TableIn, error) {
	if err := r.span(w.Offset, w.Size, path); err != nil {
		return TableIn{}, err
	}
	return TableIn{r: r, t: t, off: w.Offset, size: w.Size}, nil
}

func (r *Reader) text(w Window, path []string) (string, error) {
	if err := r.span(w.Offset, w.Size, path); err != nil {
		return "", err
	}
	return string(r.data[w.Offset : w.Offset+w.Size]), nil
}

func (r *Reader) blob(w Window, path []string) ([]byte, error) {
	if err := r.span(w.Offset, w.Size, path); err != nil {
		return nil, err
	}
	return r.data[w.Offset : w.Offset+w.Size : w.Offset+w.Size], nil
}

// list builds a ListIn over w for elements of m's type. Direct table lists
// start with their item prefix, which is validated against the schema.
func (r *Reader) list(m *schema.Member, w Window, path []string) (ListIn, error) {
	l := ListIn{r: r, m: m, off: w.Offset, n: w.Size}
	if m.Direct() {
		if err := r.span(w.Offset, DirectPrefixSize, path); err != nil {
			return ListIn{}, err
		}
		if got := le.Uint32(r.data[w.Offset:]); got != m.Type.Table.Magic {
			return ListIn{}, errors.BadMagic(path, got, m.Type.Table.Magic)
		}
		l.item = int(le.Uint32(r.data[w.Offset+4:]))
		l.off += DirectPrefixSize
		if l.n > 0 && l.item > len(r.data)/l.n {
			return ListIn{}, errors.OutOfBounds(errors.PhaseDecode, path, l.off, len(r.data))
		}
		if err := r.span(l.off, l.n*l.item, path); err != nil {
			return ListIn{}, err
		}
		return l, nil
	}
	l.item = m.ElemBytes()
	if m.Type.Kind != schema.KindBool && l.item > 0 && l.n > len(r.data)/l.item {
		return ListIn{}, errors.OutOfBounds(errors.PhaseDecode, path, l.off, len(r.data))
	}
	if err := r.span(l.off, listPayload(m, l.n), path); err != nil {
		return ListIn{}, err
	}
	return l, nil
}

// precondition panics with a KindPrecondition error. Accessors call it for
// caller bugs: reading absent values, wrong kinds, unknown names, bad indexes.
func precondition(path []string, format string, args ...any) {
	panic(errors.New(errors.PhaseDecode, errors.KindPrecondition).
		Path(path...).
		Detail(format, args...).
		Build())
}
