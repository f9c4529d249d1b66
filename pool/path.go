// Package pool provides sync.Pool wrappers for reducing GC pressure.
package pool

import (
	"strconv"
	"sync"
)

// LocatorBuilder builds HL7 locator strings ("PID-5.1.2") without
// intermediate allocations. Instances are reused via sync.Pool; the walker
// acquires one per segment visit.
type LocatorBuilder struct {
	buf []byte
}

var locatorPool = sync.Pool{
	New: func() any {
		return &LocatorBuilder{
			buf: make([]byte, 0, 64),
		}
	},
}

// AcquireLocatorBuilder gets a LocatorBuilder from the pool.
// Call Release() when done to return it to the pool.
func AcquireLocatorBuilder() *LocatorBuilder {
	b := locatorPool.Get().(*LocatorBuilder)
	b.Reset()
	return b
}

// Release returns the LocatorBuilder to the pool.
func (b *LocatorBuilder) Release() {
	if b == nil {
		return
	}
	if cap(b.buf) <= 1024 {
		locatorPool.Put(b)
	}
}

// Reset clears the buffer without deallocating.
func (b *LocatorBuilder) Reset() {
	b.buf = b.buf[:0]
}

// Len returns the current length of the locator.
func (b *LocatorBuilder) Len() int {
	return len(b.buf)
}

// Truncate shortens the locator to n bytes, allowing a caller to pop back to
// a previously marked position.
func (b *LocatorBuilder) Truncate(n int) {
	if n >= 0 && n <= len(b.buf) {
		b.buf = b.buf[:n]
	}
}

// Segment starts the locator over with a segment name.
func (b *LocatorBuilder) Segment(name string) *LocatorBuilder {
	b.buf = b.buf[:0]
	b.buf = append(b.buf, name...)
	return b
}

// Field appends a field number: "-5".
func (b *LocatorBuilder) Field(n int) *LocatorBuilder {
	b.buf = append(b.buf, '-')
	b.buf = strconv.AppendInt(b.buf, int64(n), 10)
	return b
}

// Component appends a component number: ".1".
func (b *LocatorBuilder) Component(n int) *LocatorBuilder {
	b.buf = append(b.buf, '.')
	b.buf = strconv.AppendInt(b.buf, int64(n), 10)
	return b
}

// Subcomponent appends a subcomponent number: ".2".
func (b *LocatorBuilder) Subcomponent(n int) *LocatorBuilder {
	return b.Component(n)
}

// String returns the built locator. The result is a copy and stays valid
// after Release.
func (b *LocatorBuilder) String() string {
	return string(b.buf)
}
