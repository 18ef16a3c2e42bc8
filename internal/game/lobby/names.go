package lobby

import (
	"fmt"
	"math/rand/v2"
)

var idAdjectives = []string{
	"Brave", "Calm", "Clever", "Cosmic", "Crispy", "Curious", "Dizzy", "Eager",
	"Fancy", "Fluffy", "Gentle", "Giant", "Golden", "Happy", "Hidden", "Jolly",
	"Lucky", "Mighty", "Noisy", "Odd", "Polite", "Quick", "Quiet", "Rapid",
	"Rusty", "Shiny", "Silly", "Sleepy", "Sneaky", "Spicy", "Swift", "Tiny",
	"Wild", "Witty", "Zesty", "Bouncy",
}

var idSubjects = []string{
	"Otter", "Taco", "Goat", "Cheese", "Pizza", "Cat", "Badger", "Falcon",
	"Llama", "Panda", "Walrus", "Yak", "Koala", "Lemur", "Moose", "Narwhal",
	"Owl", "Penguin", "Quokka", "Raccoon", "Salmon", "Tiger", "Turtle", "Wombat",
	"Donut", "Pickle", "Waffle", "Noodle", "Pretzel", "Muffin",
}

// newLobbyID 生成形如 Brave-Quiet-Otter-0042 的大厅 ID
func newLobbyID(r *rand.Rand) string {
	return fmt.Sprintf("%s-%s-%s-%04d",
		idAdjectives[r.IntN(len(idAdjectives))],
		idAdjectives[r.IntN(len(idAdjectives))],
		idSubjects[r.IntN(len(idSubjects))],
		r.IntN(10000),
	)
}
