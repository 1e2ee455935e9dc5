package sentiment

import "pulse/internal/domain/entity"

// The baseline lexicons. Matching is word-boundary based: every term is a
// single lowercase word compared against tokenized review text, so "bad"
// never matches inside "badge".
var positiveLexicon = []string{
	"amazing", "awesome", "excellent", "great", "good", "love", "loved",
	"delicious", "friendly", "fantastic", "wonderful", "perfect", "best",
	"tasty", "fresh", "clean", "fast", "recommend", "helpful", "cozy",
	"affordable",
}

var negativeLexicon = []string{
	"terrible", "awful", "bad", "horrible", "rude", "slow", "dirty",
	"cold", "expensive", "overpriced", "worst", "disappointing",
	"disgusting", "stale", "unfriendly", "avoid", "bland", "noisy",
}

// topicGroup is one fixed topic with its trigger keywords. A topic is present
// when any of its keywords appears in the text.
type topicGroup struct {
	name     string
	keywords []string
	tagWord  string             // Noun used when deriving the tag name, e.g. "staff".
	category entity.TagCategory // Reporting bucket for the derived tag.
}

// topicGroups is ordered; detected topics and derived tags follow this order
// so repeated runs produce identical output.
var topicGroups = []topicGroup{
	{
		name:     "service",
		keywords: []string{"service", "staff", "waiter", "waitress", "server", "friendly", "rude", "helpful"},
		tagWord:  "staff",
		category: entity.TagCategoryStaff,
	},
	{
		name:     "food",
		keywords: []string{"food", "meal", "dish", "menu", "delicious", "tasty", "breakfast", "lunch", "dinner"},
		tagWord:  "food",
		category: entity.TagCategoryProduct,
	},
	{
		name:     "coffee",
		keywords: []string{"coffee", "espresso", "latte", "cappuccino", "brew"},
		tagWord:  "coffee",
		category: entity.TagCategoryProduct,
	},
	{
		name:     "atmosphere",
		keywords: []string{"atmosphere", "ambiance", "vibe", "cozy", "decor", "music", "noisy"},
		tagWord:  "atmosphere",
		category: entity.TagCategoryAmbiance,
	},
	{
		name:     "price",
		keywords: []string{"price", "prices", "value", "expensive", "cheap", "affordable", "overpriced"},
		tagWord:  "value",
		category: entity.TagCategoryValue,
	},
	{
		name:     "location",
		keywords: []string{"location", "parking", "area", "neighborhood"},
		tagWord:  "location",
		category: entity.TagCategoryOther,
	},
	{
		name:     "cleanliness",
		keywords: []string{"clean", "dirty", "spotless", "filthy", "hygiene"},
		tagWord:  "cleanliness",
		category: entity.TagCategoryAmbiance,
	},
	{
		name:     "speed",
		keywords: []string{"fast", "slow", "quick", "wait", "waited", "prompt"},
		tagWord:  "speed",
		category: entity.TagCategoryService,
	},
}
