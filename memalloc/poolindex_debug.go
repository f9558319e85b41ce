//go:build memdebug

package memalloc

import "fmt"

// validateRedBlack walks idx once and reports every left-leaning
// red-black violation it finds: a right-leaning red link, two
// consecutive red links, or an unequal black-link count between two
// paths to the same leaf. An empty result means the tree is a valid
// LLRB. Only compiled in under the memdebug build tag, alongside the
// leak-tracking ledger in debug.go.
func validateRedBlack(idx *poolIndex) []string {
	var violations []string
	checkRightLeaningRed(idx.root, &violations)
	checkConsecutiveReds(idx.root, &violations)
	checkOrder(idx.root, &violations)
	blackHeight(idx.root, &violations)
	return violations
}

func checkRightLeaningRed(h *poolNode, out *[]string) {
	if h == nil {
		return
	}
	if isRed(h.right) && !isRed(h.left) {
		*out = append(*out, fmt.Sprintf("right-leaning red link at node size=%d id=%d", h.size, h.id))
	}
	checkRightLeaningRed(h.left, out)
	checkRightLeaningRed(h.right, out)
}

func checkConsecutiveReds(h *poolNode, out *[]string) {
	if h == nil {
		return
	}
	if isRed(h) && isRed(h.left) {
		*out = append(*out, fmt.Sprintf("two consecutive red links at node size=%d id=%d", h.size, h.id))
	}
	checkConsecutiveReds(h.left, out)
	checkConsecutiveReds(h.right, out)
}

func checkOrder(h *poolNode, out *[]string) {
	if h == nil {
		return
	}
	if h.left != nil && !less(h.left.size, h.left.id, h.size, h.id) {
		*out = append(*out, fmt.Sprintf("left child size=%d id=%d is not less than parent size=%d id=%d", h.left.size, h.left.id, h.size, h.id))
	}
	if h.right != nil && !less(h.size, h.id, h.right.size, h.right.id) {
		*out = append(*out, fmt.Sprintf("right child size=%d id=%d is not greater than parent size=%d id=%d", h.right.size, h.right.id, h.size, h.id))
	}
	checkOrder(h.left, out)
	checkOrder(h.right, out)
}

// blackHeight returns the number of black links from h down to a nil
// leaf, recording a violation whenever the left and right subtrees
// disagree on that count.
func blackHeight(h *poolNode, out *[]string) int {
	if h == nil {
		return 0
	}
	left := blackHeight(h.left, out)
	right := blackHeight(h.right, out)
	if left != right {
		*out = append(*out, fmt.Sprintf("unequal black height at node size=%d id=%d: left=%d right=%d", h.size, h.id, left, right))
	}
	if !isRed(h) {
		left++
	}
	return left
}
