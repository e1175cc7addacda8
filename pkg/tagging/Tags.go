package tagging

import (
	"github.com/adampresley/adamgokit/slices"
)

/*
Taggable is anything that provides a list of tags.
*/
type Taggable interface {
	TagList() []string
}

/*
HasTag returns whether v has the given tag. Tags are compared exactly, so
"Processed" and "processed" are different tags.
*/
func HasTag(v Taggable, tag string) bool {
	return slices.IsInSlice(tag, v.TagList())
}

/*
Tags is a set-like list of tags. The zero value is an empty list.
*/
type Tags []string

// NewTags returns Tags with the given tags. Duplicates are removed.
func NewTags(tags ...string) Tags {
	return Tags{}.With(tags...)
}

func (t Tags) TagList() []string {
	return t
}

func (t Tags) Contains(tag string) bool {
	return HasTag(t, tag)
}

/*
With returns a copy of t with the given tags appended. Tags that are already
present are skipped.
*/
func (t Tags) With(tags ...string) Tags {
	result := make(Tags, 0, len(t)+len(tags))
	result = append(result, t...)

	for _, tag := range tags {
		if !result.Contains(tag) {
			result = append(result, tag)
		}
	}

	return result
}

// Without returns a copy of t with the given tags removed.
func (t Tags) Without(tags ...string) Tags {
	result := make(Tags, 0, len(t))

	for _, tag := range t {
		if !slices.IsInSlice(tag, tags) {
			result = append(result, tag)
		}
	}

	return result
}
