package tagmap_test

import (
	"fmt"

	"github.com/aryszka/tagmap"
)

func Example() {
	m := tagmap.New[string, string]()
	m.Set("elephant", "mammal", "herbivore", "large")
	m.Set("mouse", "mammal", "herbivore", "small")
	m.Set("snake", "reptile", "carnivore", "poisonous")
	m.Set("shark", "fish", "carnivore", "large")

	rule := tagmap.Rules(
		tagmap.Tags("carnivore"),
		tagmap.NotTags("poisonous"),
	)

	for key := range m.Matching(rule) {
		fmt.Println(key)
	}

	// Output:
	// shark
}

func ExampleTagMap_MatchingEntries() {
	m := tagmap.New[string, string]()
	m.Set("elephant", "mammal", "herbivore", "large")
	m.Set("snake", "reptile", "carnivore", "poisonous")

	for key, tags := range m.MatchingEntries(tagmap.AnyTag("reptile", "fish")) {
		fmt.Println(key, tags)
	}

	// Output:
	// snake [reptile carnivore poisonous]
}
