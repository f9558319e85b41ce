package memalloc

// poolNode is one node of the left-leaning red-black tree that
// orders pools by capacity. Keys are composite: (size, id), with id
// the pool's stable identifier rather than its address, so equal-size
// pools still have a total order without ever comparing pointers.
type poolNode struct {
	size        int64
	id          uint64
	pool        *Pool
	left, right *poolNode
	red         bool
}

// poolIndex is a size-keyed LLRB tree used to find, in O(log n), the
// smallest registered pool whose capacity can satisfy a request.
type poolIndex struct {
	root *poolNode
}

func less(size1 int64, id1 uint64, size2 int64, id2 uint64) bool {
	if size1 != size2 {
		return size1 < size2
	}
	return id1 < id2
}

func isRed(h *poolNode) bool {
	return h != nil && h.red
}

func rotateLeft(h *poolNode) *poolNode {
	x := h.right
	h.right = x.left
	x.left = h
	x.red = h.red
	h.red = true
	return x
}

func rotateRight(h *poolNode) *poolNode {
	x := h.left
	h.left = x.right
	x.right = h
	x.red = h.red
	h.red = true
	return x
}

func flipColors(h *poolNode) {
	h.red = !h.red
	h.left.red = !h.left.red
	h.right.red = !h.right.red
}

func fixUp(h *poolNode) *poolNode {
	if isRed(h.right) && !isRed(h.left) {
		h = rotateLeft(h)
	}
	if isRed(h.left) && isRed(h.left.left) {
		h = rotateRight(h)
	}
	if isRed(h.left) && isRed(h.right) {
		flipColors(h)
	}
	return h
}

// insert adds p into the tree. Ties on size are broken by p's stable
// id, so distinct pools of equal capacity both get a node.
func (t *poolIndex) insert(p *Pool) {
	t.root = insertNode(t.root, p)
	t.root.red = false
}

func insertNode(h *poolNode, p *Pool) *poolNode {
	if h == nil {
		return &poolNode{size: p.totalSize, id: p.id, pool: p, red: true}
	}
	if less(p.totalSize, p.id, h.size, h.id) {
		h.left = insertNode(h.left, p)
	} else {
		h.right = insertNode(h.right, p)
	}
	return fixUp(h)
}

func moveRedLeft(h *poolNode) *poolNode {
	flipColors(h)
	if isRed(h.right.left) {
		h.right = rotateRight(h.right)
		h = rotateLeft(h)
		flipColors(h)
	}
	return h
}

func moveRedRight(h *poolNode) *poolNode {
	flipColors(h)
	if isRed(h.left.left) {
		h = rotateRight(h)
		flipColors(h)
	}
	return h
}

func minNode(h *poolNode) *poolNode {
	for h.left != nil {
		h = h.left
	}
	return h
}

func deleteMinNode(h *poolNode) *poolNode {
	if h.left == nil {
		return nil
	}
	if !isRed(h.left) && !isRed(h.left.left) {
		h = moveRedLeft(h)
	}
	h.left = deleteMinNode(h.left)
	return fixUp(h)
}

// remove drops p's node from the tree, identified by its (size, id)
// key. It is a no-op if p was never inserted.
func (t *poolIndex) remove(p *Pool) {
	if t.root == nil {
		return
	}
	t.root = removeNode(t.root, p.totalSize, p.id)
	if t.root != nil {
		t.root.red = false
	}
}

func removeNode(h *poolNode, size int64, id uint64) *poolNode {
	if less(size, id, h.size, h.id) {
		if h.left == nil {
			return h // key not present under h
		}
		if !isRed(h.left) && !isRed(h.left.left) {
			h = moveRedLeft(h)
		}
		h.left = removeNode(h.left, size, id)
	} else {
		if isRed(h.left) {
			h = rotateRight(h)
		}
		if !less(size, id, h.size, h.id) && !less(h.size, h.id, size, id) && h.right == nil {
			return nil
		}
		if h.right == nil {
			return h // key not present
		}
		if !isRed(h.right) && !isRed(h.right.left) {
			h = moveRedRight(h)
		}
		if !less(size, id, h.size, h.id) && !less(h.size, h.id, size, id) {
			x := minNode(h.right)
			h.size, h.id, h.pool = x.size, x.id, x.pool
			h.right = deleteMinNode(h.right)
		} else {
			h.right = removeNode(h.right, size, id)
		}
	}
	return fixUp(h)
}

// findBestFit returns the registered pool with the smallest capacity
// still large enough to satisfy size, or nil if none qualifies.
func (t *poolIndex) findBestFit(size int64) *Pool {
	var best *Pool
	h := t.root
	for h != nil {
		if h.size >= size {
			best = h.pool
			h = h.left
		} else {
			h = h.right
		}
	}
	return best
}

// walk calls fn for every pool registered in the tree, in ascending
// size order.
func (t *poolIndex) walk(fn func(*Pool)) {
	walkNode(t.root, fn)
}

func walkNode(h *poolNode, fn func(*Pool)) {
	if h == nil {
		return
	}
	walkNode(h.left, fn)
	fn(h.pool)
	walkNode(h.right, fn)
}
