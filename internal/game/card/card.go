package card

import (
	"math/rand/v2"
	"strconv"
)

// Card 一张牌，取值为 5 种图案之一
type Card int

const (
	Taco Card = iota
	Cat
	Goat
	Cheese
	Pizza
)

const (
	NumSymbols      = 5                            // 图案数量
	CopiesPerSymbol = 13                           // 每种图案张数
	DeckSize        = NumSymbols * CopiesPerSymbol // 整副牌张数
)

// symbolNames 图案名称映射表
var symbolNames = map[Card]string{
	Taco:   "Taco",
	Cat:    "Cat",
	Goat:   "Goat",
	Cheese: "Cheese",
	Pizza:  "Pizza",
}

func (c Card) String() string {
	if name, ok := symbolNames[c]; ok {
		return name
	}
	return strconv.Itoa(int(c))
}

// Valid 是否为合法图案
func (c Card) Valid() bool {
	return c >= 0 && c < NumSymbols
}

// Next 循环到下一个图案
func (c Card) Next() Card {
	return (c + 1) % NumSymbols
}

// Deck 定义一副牌
type Deck []Card

// NewDeck 生成 65 张牌（每种图案 13 张），按图案顺序排列
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for s := Card(0); s < NumSymbols; s++ {
		for range CopiesPerSymbol {
			deck = append(deck, s)
		}
	}
	return deck
}

// Shuffle Fisher–Yates 原地洗牌，r 为 nil 时使用全局随机源
func (d Deck) Shuffle(r *rand.Rand) {
	intN := rand.IntN
	if r != nil {
		intN = r.IntN
	}
	for i := len(d) - 1; i > 0; i-- {
		j := intN(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}
