// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package namegen generates short, throwaway display names for new customers
// ("Sleepy Otter", "Brave Kiwi").
package namegen

import (
	"math/rand/v2"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/freecom-tui/internal/util"
)

var adjectives = []string{
	"agile", "amber", "bold", "brave", "breezy", "bright", "calm", "clever",
	"cosmic", "crisp", "curious", "dapper", "eager", "fancy", "fuzzy", "gentle",
	"giddy", "happy", "jolly", "lucky", "mellow", "merry", "nimble", "plucky",
	"quiet", "rapid", "shiny", "silly", "sleepy", "snappy", "sunny", "swift",
	"tidy", "witty", "zany", "zesty",
}

var nouns = []string{
	"badger", "beaver", "bison", "crane", "falcon", "ferret", "gecko", "heron",
	"ibis", "koala", "kiwi", "lemur", "llama", "lynx", "marmot", "moose",
	"newt", "ocelot", "otter", "panda", "puffin", "quokka", "raven", "robin",
	"seal", "sloth", "squid", "tapir", "toucan", "walrus", "wombat", "yak",
}

// Generator produces names no longer than MaxLength runes.
type Generator struct {
	MaxLength int

	mu    sync.Mutex
	rng   *rand.Rand
	title cases.Caser
}

// New creates a generator with a randomly seeded source.
func New(maxLength int) *Generator {
	return NewWithSeed(maxLength, rand.Uint64(), rand.Uint64())
}

// NewWithSeed creates a deterministic generator. Used by tests.
func NewWithSeed(maxLength int, seed1, seed2 uint64) *Generator {
	return &Generator{
		MaxLength: maxLength,
		rng:       rand.New(rand.NewPCG(seed1, seed2)),
		title:     cases.Title(language.English),
	}
}

// Name returns a new display name. Combinations that do not fit are retried;
// if none fits, the shortest noun truncated to MaxLength is used.
func (g *Generator) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for attempt := 0; attempt < 16; attempt++ {
		adj := adjectives[g.rng.IntN(len(adjectives))]
		noun := nouns[g.rng.IntN(len(nouns))]

		name := g.title.String(adj + " " + noun)
		if g.fits(name) {
			return name
		}
		if short := g.title.String(noun); g.fits(short) {
			return short
		}
	}
	return util.TruncateRunes(g.title.String(shortestNoun()), g.MaxLength)
}

func (g *Generator) fits(name string) bool {
	return g.MaxLength <= 0 || len([]rune(name)) <= g.MaxLength
}

func shortestNoun() string {
	shortest := nouns[0]
	for _, n := range nouns[1:] {
		if len(n) < len(shortest) {
			shortest = n
		}
	}
	return strings.TrimSpace(shortest)
}
