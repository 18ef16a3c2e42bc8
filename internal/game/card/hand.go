package card

// Hand 手牌，顺序即发牌/出牌顺序
type Hand []Card

// Len 手牌数量
func (h Hand) Len() int {
	return len(h)
}

// IsEmpty 手牌是否已出完
func (h Hand) IsEmpty() bool {
	return len(h) == 0
}

// Front 返回下一张要出的牌
func (h Hand) Front() (Card, bool) {
	if len(h) == 0 {
		return 0, false
	}
	return h[0], true
}

// PopFront 移除并返回最前面的一张牌
func (h *Hand) PopFront() (Card, bool) {
	c, ok := h.Front()
	if !ok {
		return 0, false
	}
	*h = (*h)[1:]
	return c, true
}

// Take 把一整叠牌追加到手牌末尾
func (h *Hand) Take(pile []Card) {
	*h = append(*h, pile...)
}

// Counts 统计各图案数量
func (h Hand) Counts() [NumSymbols]int {
	var counts [NumSymbols]int
	for _, c := range h {
		if c.Valid() {
			counts[c]++
		}
	}
	return counts
}
