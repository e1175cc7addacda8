package tagging_test

import (
	"testing"

	"github.com/adampresley/mediaentity/pkg/tagging"
	"github.com/stretchr/testify/assert"
)

type photo struct {
	tags []string
}

func (p photo) TagList() []string {
	return p.tags
}

func TestHasTag(t *testing.T) {
	p := photo{tags: []string{"processed", "featured"}}

	assert.True(t, tagging.HasTag(p, "processed"))
	assert.True(t, tagging.HasTag(p, "featured"))
	assert.False(t, tagging.HasTag(p, "Processed"))
	assert.False(t, tagging.HasTag(p, " processed"))
	assert.False(t, tagging.HasTag(photo{}, "processed"))
}

func TestNewTagsRemovesDuplicates(t *testing.T) {
	tags := tagging.NewTags("foo", "bar", "foo", "baz", "bar")
	assert.Equal(t, tagging.Tags{"foo", "bar", "baz"}, tags)

	assert.NotNil(t, tagging.NewTags())
	assert.Empty(t, tagging.NewTags())
}

func TestTagsWithWithout(t *testing.T) {
	original := tagging.Tags{"foo"}

	added := original.With("bar", "foo", "baz")
	assert.Equal(t, tagging.Tags{"foo", "bar", "baz"}, added)
	assert.Equal(t, tagging.Tags{"foo"}, original)

	removed := added.Without("bar", "baz", "missing")
	assert.Equal(t, tagging.Tags{"foo"}, removed)
	assert.True(t, removed.Contains("foo"))
	assert.False(t, removed.Contains("bar"))
	assert.Len(t, added, 3)
}
