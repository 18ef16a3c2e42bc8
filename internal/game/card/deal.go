package card

import "math/rand/v2"

// dealCounts 每人发牌张数（按人数）
var dealCounts = map[int]int{
	2: 12,
	3: 12,
	4: 12,
	5: 12,
	6: 10,
	7: 9,
	8: 8,
}

// DealCount 返回 n 人局每人发牌张数，超出 2..8 返回 0
func DealCount(players int) int {
	return dealCounts[players]
}

// Deal 重新生成并洗一副牌，按座位顺序给每人切一段连续的牌。
// 发不完的余牌直接丢弃。
func Deal(players int, r *rand.Rand) []Hand {
	deck := NewDeck()
	deck.Shuffle(r)

	n := DealCount(players)
	hands := make([]Hand, players)
	for i := range hands {
		hand := make(Hand, n)
		copy(hand, deck[i*n:(i+1)*n])
		hands[i] = hand
	}
	return hands
}
