// Package nickname generates the random Korean display names assigned at
// registration, one adjective plus one animal, e.g. "기쁜 쿼카".  The word
// lists are carried over from the original service unchanged so existing
// accounts and new ones draw from the same pool.
package nickname

import "math/rand/v2"

var adjectives = []string{
	"기쁜", "차분한",
	"추운", "시원한",
	"귀여운", "따분한",
	"공정한", "친절한",
	"예리한", "건강한",
}

var nouns = []string{
	"쿼카", "돌고래",
	"고양이", "강아지",
	"다람쥐", "여우",
	"사슴", "반달곰",
	"나무늘보", "고라니",
}

// Random returns a fresh "adjective noun" pair.
func Random() string {
	return adjectives[rand.IntN(len(adjectives))] + " " + nouns[rand.IntN(len(nouns))]
}
