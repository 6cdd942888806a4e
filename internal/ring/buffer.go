package ring

// Buffer is a fixed-size ring of elements. Taken elements stay in the ring until they're overwritten
// so that Backup can hand them out again.
type Buffer[E any] struct {
	elems      []E
	head, tail int
}

// NewBuffer returns a Buffer which holds up to size-1 elements.
func NewBuffer[E any](size int) *Buffer[E] {
	return &Buffer[E]{elems: make([]E, size)}
}

func (b *Buffer[E]) next(i int) int {
	return (i + 1) % len(b.elems)
}

func (b *Buffer[E]) prev(i int) int {
	return (i + len(b.elems) - 1) % len(b.elems)
}

// Put appends elem.
func (b *Buffer[E]) Put(elem E) {
	b.elems[b.tail] = elem
	b.tail = b.next(b.tail)
}

// Get takes the oldest element.
func (b *Buffer[E]) Get() E {
	e := b.elems[b.head]
	b.head = b.next(b.head)
	return e
}

// Current returns the element Get would take without taking it.
func (b *Buffer[E]) Current() E {
	return b.elems[b.head]
}

// Len returns the number of elements Get can take.
func (b *Buffer[E]) Len() int {
	if len(b.elems) == 0 {
		return 0
	}
	return (b.tail - b.head + len(b.elems)) % len(b.elems)
}

// Empty reports whether there's nothing to take.
func (b *Buffer[E]) Empty() bool {
	return b.head == b.tail
}

// Backup gives back the last taken element.
func (b *Buffer[E]) Backup() {
	b.head = b.prev(b.head)
}
