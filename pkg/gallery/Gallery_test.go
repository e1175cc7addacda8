package gallery_test

import (
	"testing"

	"github.com/adampresley/mediaentity/pkg/gallery"
	"github.com/adampresley/mediaentity/pkg/image/hydrateoptions"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrateMissingStacks(t *testing.T) {
	g := gallery.Hydrate(gallery.Response{})

	assert.NotNil(t, g.Stacks)
	assert.Empty(t, g.Stacks)
}

func TestHydrateKeepsStackOrder(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())

	require.Len(t, g.Stacks, 3)
	assert.Equal(t, "stack-1", g.Stacks[0].ID)
	assert.Equal(t, "stack-2", g.Stacks[1].ID)
	assert.Equal(t, "stack-3", g.Stacks[2].ID)
}

func TestHydrateDefaultsEveryStack(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())

	for _, stack := range g.Stacks {
		assert.NotNil(t, stack.Variants, stack.ID)
		assert.NotNil(t, stack.Tags, stack.ID)
	}
}

func TestHydrateFromJSON(t *testing.T) {
	payload := `{
		"stacks": [
			{
				"id": "a",
				"variants": [
					{
						"id": "v1",
						"original": true,
						"storage": {"provider": "s3", "path": "a/v1.jpg"},
						"filename": "v1.jpg",
						"filesize": 100,
						"dimensions": {"width": 10, "height": 20},
						"names": {"en": "Cat"},
						"descriptions": {"fr": "Un chat"}
					}
				]
			},
			{"id": "b", "tags": ["processed"]}
		]
	}`

	var raw gallery.Response
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	g := gallery.Hydrate(raw)
	require.Len(t, g.Stacks, 2)

	variant := g.Stacks[0].Variants[0]
	assert.Equal(t, "v1", variant.ID)
	assert.True(t, variant.Original)
	assert.Equal(t, "a/v1.jpg", variant.Storage.Path)
	assert.Equal(t, 20, variant.Dimensions.Height)
	assert.Equal(t, map[string]string{"en": "Cat"}, variant.Names)
	assert.Empty(t, variant.Descriptions)

	assert.Empty(t, g.Stacks[0].Tags)
	assert.Empty(t, g.Stacks[1].Variants)
	assert.True(t, gallery.WasProcessed(g.Stacks[1]))
}

func TestHydrateIsIdempotent(t *testing.T) {
	first := gallery.Hydrate(newGalleryResponse())

	b, err := json.Marshal(first)
	require.NoError(t, err)

	var raw gallery.Response
	require.NoError(t, json.Unmarshal(b, &raw))

	second := gallery.Hydrate(raw)
	assert.Equal(t, first, second)
	assert.Equal(t, first, gallery.Hydrate(first.Response()))
}

func TestHydratePassesLanguagesToVariants(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse(), hydrateoptions.WithLanguages("de"))

	for _, stack := range g.Stacks {
		for _, variant := range stack.Variants {
			assert.Equal(t, map[string]string{"de": "Foo Bild"}, variant.Names)
			assert.Equal(t, map[string]string{"de": "Ein Bild von Foo"}, variant.Descriptions)
		}
	}
}

func TestGalleryStack(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())

	stack, ok := g.Stack("stack-2")
	assert.True(t, ok)
	assert.Equal(t, "stack-2", stack.ID)

	_, ok = g.Stack("missing")
	assert.False(t, ok)
}

func TestGalleryReplaceStack(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())

	stack, _ := g.Stack("stack-3")
	updated, err := g.ReplaceStack(stack.Tag("featured"))
	require.NoError(t, err)

	replaced, _ := updated.Stack("stack-3")
	assert.True(t, replaced.Tags.Contains("featured"))

	unchanged, _ := g.Stack("stack-3")
	assert.False(t, unchanged.Tags.Contains("featured"))

	_, err = g.ReplaceStack(gallery.Stack{ID: "missing"})
	assert.ErrorIs(t, err, gallery.ErrStackNotFound)
}

func stackIDs(g gallery.Gallery) []string {
	ids := make([]string, 0, len(g.Stacks))
	for _, stack := range g.Stacks {
		ids = append(ids, stack.ID)
	}

	return ids
}

func TestGalleryNewStack(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())
	original := gallery.HydrateVariant(newVariantResponse("cover", false))
	original.Names = nil

	updated, stack, err := g.NewStack("stack-4", original)
	require.NoError(t, err)

	assert.Equal(t, []string{"stack-1", "stack-2", "stack-3", "stack-4"}, stackIDs(updated))
	assert.Len(t, g.Stacks, 3)

	require.Len(t, stack.Variants, 1)
	assert.True(t, stack.Variants[0].Original)
	assert.NotNil(t, stack.Variants[0].Names)
	assert.NotNil(t, stack.Tags)
	assert.True(t, stack.ContainsOriginal())
}

func TestGalleryNewStackErrors(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())
	variant := gallery.HydrateVariant(newVariantResponse("cover", true))

	_, _, err := g.NewStack("", variant)
	assert.ErrorIs(t, err, gallery.ErrEmptyID)

	_, _, err = g.NewStack("stack-4", gallery.Variant{})
	assert.ErrorIs(t, err, gallery.ErrEmptyID)

	_, _, err = g.NewStack("stack-1", variant)
	assert.ErrorIs(t, err, gallery.ErrDuplicateID)
}

func TestGalleryRemoveStack(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())

	updated, removed, err := g.RemoveStack("stack-2")
	require.NoError(t, err)

	assert.Equal(t, "stack-2", removed.ID)
	assert.Equal(t, []string{"stack-1", "stack-3"}, stackIDs(updated))
	assert.Equal(t, []string{"stack-1", "stack-2", "stack-3"}, stackIDs(g))

	_, _, err = g.RemoveStack("missing")
	assert.ErrorIs(t, err, gallery.ErrStackNotFound)
}

func TestGalleryNewVariant(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())
	img := gallery.HydrateVariant(newVariantResponse("large", false)).Image

	updated, stack, err := g.NewVariant("stack-2", "large", img)
	require.NoError(t, err)

	require.Len(t, stack.Variants, 2)
	last, ok := stack.Last()
	require.True(t, ok)
	assert.Equal(t, "large", last.ID)
	assert.False(t, last.Original)

	stored, _ := updated.Stack("stack-2")
	assert.Len(t, stored.Variants, 2)

	unchanged, _ := g.Stack("stack-2")
	assert.Len(t, unchanged.Variants, 1)

	_, _, err = g.NewVariant("stack-2", "only", img)
	assert.ErrorIs(t, err, gallery.ErrDuplicateID)

	_, _, err = g.NewVariant("stack-2", "", img)
	assert.ErrorIs(t, err, gallery.ErrEmptyID)

	_, _, err = g.NewVariant("missing", "large", img)
	assert.ErrorIs(t, err, gallery.ErrStackNotFound)
}

func TestGalleryRemoveVariant(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())

	updated, removed, err := g.RemoveVariant("stack-1", "small")
	require.NoError(t, err)
	assert.Equal(t, "small", removed.ID)

	stack, _ := updated.Stack("stack-1")
	require.Len(t, stack.Variants, 1)
	assert.Equal(t, "original", stack.Variants[0].ID)

	_, _, err = g.RemoveVariant("stack-1", "missing")
	assert.ErrorIs(t, err, gallery.ErrVariantNotFound)

	_, _, err = g.RemoveVariant("missing", "small")
	assert.ErrorIs(t, err, gallery.ErrStackNotFound)
}

func TestGalleryReplaceVariant(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())

	stack, _ := g.Stack("stack-1")
	small, _ := stack.Variant("small")
	small.Filename = "renamed.jpg"
	small.Descriptions = nil

	updated, replaced, err := g.ReplaceVariant("stack-1", small)
	require.NoError(t, err)

	variant, _ := replaced.Variant("small")
	assert.Equal(t, "renamed.jpg", variant.Filename)
	assert.NotNil(t, variant.Descriptions)

	stored, _ := updated.Stack("stack-1")
	variant, _ = stored.Variant("small")
	assert.Equal(t, "renamed.jpg", variant.Filename)

	unchanged, _ := g.Stack("stack-1")
	variant, _ = unchanged.Variant("small")
	assert.Equal(t, "small.jpg", variant.Filename)

	_, _, err = g.ReplaceVariant("stack-1", gallery.Variant{ID: "missing"})
	assert.ErrorIs(t, err, gallery.ErrVariantNotFound)

	_, _, err = g.ReplaceVariant("missing", small)
	assert.ErrorIs(t, err, gallery.ErrStackNotFound)
}

func TestGallerySort(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())

	type testCase struct {
		name     string
		ids      []string
		expected []string
	}

	testCases := []testCase{
		{name: "full order", ids: []string{"stack-3", "stack-1", "stack-2"}, expected: []string{"stack-3", "stack-1", "stack-2"}},
		{name: "partial order keeps the rest", ids: []string{"stack-3"}, expected: []string{"stack-3", "stack-1", "stack-2"}},
		{name: "unknown ids are ignored", ids: []string{"nope", "stack-2", "stack-1"}, expected: []string{"stack-2", "stack-1", "stack-3"}},
		{name: "duplicates count once", ids: []string{"stack-2", "stack-2", "stack-1"}, expected: []string{"stack-2", "stack-1", "stack-3"}},
		{name: "nothing to sort by", ids: nil, expected: []string{"stack-1", "stack-2", "stack-3"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stackIDs(g.Sort(tc.ids)))
		})
	}

	assert.Equal(t, []string{"stack-1", "stack-2", "stack-3"}, stackIDs(g))
}

func TestGalleryClear(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())

	cleared := g.Clear()
	assert.NotNil(t, cleared.Stacks)
	assert.Empty(t, cleared.Stacks)
	assert.Len(t, g.Stacks, 3)
}

func TestGalleryClone(t *testing.T) {
	g := gallery.Hydrate(newGalleryResponse())

	clone := g.Clone()
	clone.Stacks[0].Variants[0].Names["en"] = "changed"
	clone.Stacks[0].Tags[0] = "changed"

	assert.Equal(t, "Foo image", g.Stacks[0].Variants[0].Names["en"])
	assert.Equal(t, "processed", g.Stacks[0].Tags[0])
}
