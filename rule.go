package tagmap

import (
	"fmt"
	"slices"
	"strings"
)

type ruleOp int

const (
	opTags ruleOp = iota
	opNotTags
	opAnyTag
	opRules
	opNotRules
	opAnyRule
)

// Rule is a predicate over a list of tags. Rules form a tree: the leaf
// variants (Tags, NotTags, AnyTag) test literal tags, while the composite
// variants (Rules, NotRules, AnyRule) combine nested rules. Rules are
// immutable once constructed, hold no reference to any TagMap, and can be
// reused across queries and containers.
type Rule[TAG comparable] struct {
	op    ruleOp
	tags  []TAG
	rules []*Rule[TAG]
}

// Tags returns a rule that matches when every listed tag is present.
// Multiplicity is ignored, only presence counts. With no tags it matches
// everything.
func Tags[TAG comparable](tags ...TAG) *Rule[TAG] {
	return &Rule[TAG]{op: opTags, tags: tags}
}

// NotTags returns a rule that matches when none of the listed tags is
// present. With no tags it matches everything.
func NotTags[TAG comparable](tags ...TAG) *Rule[TAG] {
	return &Rule[TAG]{op: opNotTags, tags: tags}
}

// AnyTag returns a rule that matches when at least one of the listed tags is
// present. With no tags it matches nothing.
func AnyTag[TAG comparable](tags ...TAG) *Rule[TAG] {
	return &Rule[TAG]{op: opAnyTag, tags: tags}
}

// Rules returns a rule that matches when every nested rule matches. With no
// rules it matches everything.
func Rules[TAG comparable](rules ...*Rule[TAG]) *Rule[TAG] {
	return &Rule[TAG]{op: opRules, rules: rules}
}

// NotRules returns a rule that matches when none of the nested rules
// matches. With no rules it matches everything.
func NotRules[TAG comparable](rules ...*Rule[TAG]) *Rule[TAG] {
	return &Rule[TAG]{op: opNotRules, rules: rules}
}

// AnyRule returns a rule that matches when at least one of the nested rules
// matches. With no rules it matches nothing.
func AnyRule[TAG comparable](rules ...*Rule[TAG]) *Rule[TAG] {
	return &Rule[TAG]{op: opAnyRule, rules: rules}
}

func every[E any](items []E, match func(E) bool) bool {
	for _, i := range items {
		if !match(i) {
			return false
		}
	}

	return true
}

func some[E any](items []E, match func(E) bool) bool {
	for _, i := range items {
		if match(i) {
			return true
		}
	}

	return false
}

// Match reports whether the tags satisfy the rule. It is pure: no
// allocation, no mutation of the rule or the tags. The tag list may contain
// duplicates, they count as simple presence.
func (r *Rule[TAG]) Match(tags []TAG) bool {
	has := func(t TAG) bool { return slices.Contains(tags, t) }
	matches := func(s *Rule[TAG]) bool { return s.Match(tags) }

	switch r.op {
	case opTags:
		return every(r.tags, has)
	case opNotTags:
		return !some(r.tags, has)
	case opAnyTag:
		return some(r.tags, has)
	case opRules:
		return every(r.rules, matches)
	case opNotRules:
		return !some(r.rules, matches)
	default:
		return some(r.rules, matches)
	}
}

func (r *Rule[TAG]) String() string {
	var name string
	switch r.op {
	case opTags:
		name = "tags"
	case opNotTags:
		name = "not-tags"
	case opAnyTag:
		name = "any-tag"
	case opRules:
		name = "rules"
	case opNotRules:
		name = "not-rules"
	default:
		name = "any-rule"
	}

	var items []string
	for _, t := range r.tags {
		items = append(items, fmt.Sprint(t))
	}

	for _, s := range r.rules {
		items = append(items, s.String())
	}

	return fmt.Sprintf("%s(%s)", name, strings.Join(items, ", "))
}
