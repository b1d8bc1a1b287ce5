package usecase

import (
	"strings"
	"unicode"
)

// Family is an olfactory family on the fragrance wheel
type Family string

const (
	FamilyCitrus   Family = "citrus"
	FamilyFloral   Family = "floral"
	FamilyWoody    Family = "woody"
	FamilyOriental Family = "oriental"
	FamilySpicy    Family = "spicy"
	FamilyFresh    Family = "fresh"
	FamilyGreen    Family = "green"
	FamilyFruity   Family = "fruity"
	FamilyGourmand Family = "gourmand"
	FamilyMusky    Family = "musky"
	FamilyAnimalic Family = "animalic"
	FamilyEarthy   Family = "earthy"
)

// Compatibility defaults
const (
	SameFamilyCompat    = 85 // cohesive but risks flatness, so never 100
	UndefinedPairCompat = 50
)

// Families lists every family in classification order. The first family whose
// keywords match a note wins.
var Families = []Family{
	FamilyCitrus, FamilyFloral, FamilyWoody, FamilyOriental, FamilySpicy, FamilyFresh,
	FamilyGreen, FamilyFruity, FamilyGourmand, FamilyMusky, FamilyAnimalic, FamilyEarthy,
}

// familyKeywords is the curated keyword list per family
var familyKeywords = map[Family][]string{
	FamilyCitrus: {
		"bergamot", "lemon", "orange", "grapefruit", "lime", "mandarin", "yuzu",
		"citron", "tangerine", "pomelo", "blood orange", "citrus", "neroli",
	},
	FamilyFloral: {
		"rose", "jasmine", "lily", "violet", "iris", "peony", "magnolia", "tuberose",
		"gardenia", "ylang-ylang", "orange blossom", "honeysuckle", "freesia",
		"carnation", "geranium", "lotus", "orchid", "plumeria", "frangipani", "heliotrope",
	},
	FamilyWoody: {
		"sandalwood", "cedar", "oud", "agarwood", "vetiver", "patchouli", "birch",
		"cypress", "guaiac wood", "teak", "driftwood", "mahogany", "ebony",
		"pine", "fir", "juniper", "bamboo", "oak",
	},
	FamilyOriental: {
		"vanilla", "amber", "benzoin", "labdanum", "incense", "myrrh", "frankincense",
		"opoponax", "copal", "balsam", "resin", "ambergris",
	},
	FamilySpicy: {
		"cinnamon", "cardamom", "pepper", "clove", "nutmeg", "ginger", "saffron",
		"cumin", "coriander", "anise", "star anise", "pink pepper", "black pepper",
		"white pepper",
	},
	FamilyFresh: {
		"mint", "eucalyptus", "tea", "green tea", "cucumber", "melon", "water",
		"marine", "aquatic", "ozonic", "aldehydes", "sea salt",
	},
	FamilyGreen: {
		"grass", "leaf", "green", "galbanum", "fig leaf", "basil", "artemisia",
		"tomato leaf", "violet leaf", "ivy",
	},
	FamilyFruity: {
		"apple", "peach", "apricot", "plum", "cherry", "raspberry", "strawberry",
		"blackberry", "blackcurrant", "pear", "coconut", "mango", "pineapple",
		"banana", "passion fruit", "lychee", "fig", "date", "pomegranate",
	},
	FamilyGourmand: {
		"chocolate", "coffee", "caramel", "honey", "praline", "almond", "hazelnut",
		"tonka", "cotton candy", "marshmallow", "cream", "milk", "butter",
		"brown sugar", "maple",
	},
	FamilyMusky: {
		"musk", "white musk", "skin", "cashmere", "suede", "leather",
	},
	FamilyAnimalic: {
		"civet", "castoreum", "hyraceum", "costus", "animalic",
	},
	FamilyEarthy: {
		"moss", "oakmoss", "earth", "soil", "peat", "mushroom", "truffle",
		"vetiver", "orris root",
	},
}

type familyPair struct {
	a, b Family
}

// declaredCompat lists each unordered pair once; compatMatrix fills both directions
var declaredCompat = []struct {
	a, b  Family
	score int
}{
	{FamilyCitrus, FamilyFloral, 85}, {FamilyCitrus, FamilyWoody, 70}, {FamilyCitrus, FamilyOriental, 60},
	{FamilyCitrus, FamilySpicy, 65}, {FamilyCitrus, FamilyFresh, 95}, {FamilyCitrus, FamilyGreen, 90},
	{FamilyCitrus, FamilyFruity, 80}, {FamilyCitrus, FamilyGourmand, 50}, {FamilyCitrus, FamilyMusky, 75},
	{FamilyCitrus, FamilyAnimalic, 40}, {FamilyCitrus, FamilyEarthy, 55},

	{FamilyFloral, FamilyWoody, 80}, {FamilyFloral, FamilyOriental, 85}, {FamilyFloral, FamilySpicy, 70},
	{FamilyFloral, FamilyFresh, 70}, {FamilyFloral, FamilyGreen, 75}, {FamilyFloral, FamilyFruity, 85},
	{FamilyFloral, FamilyGourmand, 70}, {FamilyFloral, FamilyMusky, 90}, {FamilyFloral, FamilyAnimalic, 60},
	{FamilyFloral, FamilyEarthy, 65},

	{FamilyWoody, FamilyOriental, 95}, {FamilyWoody, FamilySpicy, 90}, {FamilyWoody, FamilyFresh, 65},
	{FamilyWoody, FamilyGreen, 70}, {FamilyWoody, FamilyFruity, 55}, {FamilyWoody, FamilyGourmand, 75},
	{FamilyWoody, FamilyMusky, 85}, {FamilyWoody, FamilyAnimalic, 80}, {FamilyWoody, FamilyEarthy, 90},

	{FamilyOriental, FamilySpicy, 95}, {FamilyOriental, FamilyFresh, 45}, {FamilyOriental, FamilyGreen, 50},
	{FamilyOriental, FamilyFruity, 65}, {FamilyOriental, FamilyGourmand, 90}, {FamilyOriental, FamilyMusky, 90},
	{FamilyOriental, FamilyAnimalic, 85}, {FamilyOriental, FamilyEarthy, 80},

	{FamilySpicy, FamilyFresh, 50}, {FamilySpicy, FamilyGreen, 55}, {FamilySpicy, FamilyFruity, 60},
	{FamilySpicy, FamilyGourmand, 85}, {FamilySpicy, FamilyMusky, 80}, {FamilySpicy, FamilyAnimalic, 75},
	{FamilySpicy, FamilyEarthy, 75},

	{FamilyFresh, FamilyGreen, 95}, {FamilyFresh, FamilyFruity, 85}, {FamilyFresh, FamilyGourmand, 40},
	{FamilyFresh, FamilyMusky, 70}, {FamilyFresh, FamilyAnimalic, 30}, {FamilyFresh, FamilyEarthy, 55},

	{FamilyGreen, FamilyFruity, 75}, {FamilyGreen, FamilyGourmand, 45}, {FamilyGreen, FamilyMusky, 65},
	{FamilyGreen, FamilyAnimalic, 35}, {FamilyGreen, FamilyEarthy, 70},

	{FamilyFruity, FamilyGourmand, 90}, {FamilyFruity, FamilyMusky, 75}, {FamilyFruity, FamilyAnimalic, 45},
	{FamilyFruity, FamilyEarthy, 50},

	{FamilyGourmand, FamilyMusky, 80}, {FamilyGourmand, FamilyAnimalic, 70}, {FamilyGourmand, FamilyEarthy, 60},

	{FamilyMusky, FamilyAnimalic, 85}, {FamilyMusky, FamilyEarthy, 75},

	{FamilyAnimalic, FamilyEarthy, 80},
}

var compatMatrix = buildCompatMatrix()

func buildCompatMatrix() map[familyPair]int {
	m := make(map[familyPair]int, 2*len(declaredCompat))
	for _, d := range declaredCompat {
		m[familyPair{d.a, d.b}] = d.score
		m[familyPair{d.b, d.a}] = d.score
	}
	return m
}

// Classify maps a free-text note to its family. A note matches when it
// contains a keyword or a keyword contains it. Notes without letters never match.
func Classify(note string) (Family, bool) {
	normalized := strings.ToLower(strings.TrimSpace(note))
	if !strings.ContainsFunc(normalized, unicode.IsLetter) {
		return "", false
	}

	for _, family := range Families {
		for _, keyword := range familyKeywords[family] {
			if strings.Contains(normalized, keyword) || strings.Contains(keyword, normalized) {
				return family, true
			}
		}
	}
	return "", false
}

// Compat returns the pairing score of two families. It is symmetric.
func Compat(a, b Family) int {
	if a == b {
		return SameFamilyCompat
	}
	if score, ok := compatMatrix[familyPair{a, b}]; ok {
		return score
	}
	return UndefinedPairCompat
}

// Keywords returns a copy of the keyword list for a family
func Keywords(f Family) []string {
	return append([]string(nil), familyKeywords[f]...)
}
