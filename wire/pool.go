package wire

import "sync"

// poolMaxCap is the largest arena a released writer may keep. Writers that
// grew past it for one big message are left to the garbage collector.
const poolMaxCap = 1 << 20

var writerPool = sync.Pool{
	New: func() any {
		return NewWriter()
	},
}

// AcquireWriter returns an empty writer from the pool.
func AcquireWriter() *Writer {
	return writerPool.Get().(*Writer)
}

// ReleaseWriter returns w to the pool. Messages returned by Finalize alias
// the writer's buffer and must not be used afterwards.
func ReleaseWriter(w *Writer) {
	if w == nil || cap(w.buf) > poolMaxCap {
		return
	}
	w.Reset()
	writerPool.Put(w)
}
