/*
Package tagmap provides an associative container that indexes items by tags
and retrieves them with boolean tag-matching rules.

A TagMap associates each key with an ordered list of tags. Queries are
expressed as Rule trees built from six variants: Tags, NotTags and AnyTag
operate on literal tag lists, while Rules, NotRules and AnyRule combine
nested rules, allowing arbitrary conjunction, negation and disjunction over
both. Matching and MatchingEntries walk the container lazily in key order and
yield only the entries whose tags satisfy the rule, without collecting
intermediate results.

The package also provides a Stash that persists key-tag associations in a SQL
storage, caches the most often queried keys in memory, and materializes
TagMap instances for rule queries. Both the persistence layer and the cache
can be replaced with a custom implementation of a simple interface (Storage).
*/
package tagmap
