package game

import "math/rand"

// The round vocabulary. Words are deliberately concrete and visual since
// every one of them becomes an image-generation subject.
var words = []string{
	"sunset", "dragon", "castle", "robot", "galaxy",
	"ocean", "mountain", "wizard", "spaceship", "unicorn",
	"forest", "phoenix", "portal", "cyborg", "temple",
	"volcano", "mermaid", "lighthouse", "ninja", "pyramid",
}

func randomWord() string {
	return words[rand.Intn(len(words))]
}
