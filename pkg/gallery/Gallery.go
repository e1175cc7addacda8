package gallery

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/adampresley/mediaentity/pkg/image"
	"github.com/adampresley/mediaentity/pkg/image/hydrateoptions"
	"github.com/adampresley/mediaentity/pkg/tagging"
)

var (
	ErrDuplicateID     = errors.New("duplicate id")
	ErrEmptyID         = errors.New("empty id")
	ErrStackNotFound   = errors.New("stack not found in gallery")
	ErrVariantNotFound = errors.New("variant not found in stack")
)

/*
Gallery is an image gallery. Each image in the gallery is a Stack, which holds
the variants of that image (for example the same photo in different sizes).
Stacks are kept in display order.
*/
type Gallery struct {
	Stacks []Stack `json:"stacks"`
}

// Response is a Gallery as it arrives from an API.
type Response struct {
	Stacks []StackResponse `json:"stacks,omitempty"`
}

/*
Hydrate builds a Gallery from an API response. A missing stack list becomes an
empty one. Options are passed on to the hydration of every variant.
*/
func Hydrate(raw Response, options ...hydrateoptions.HydrateOption) Gallery {
	stacks := raw.Stacks
	if stacks == nil {
		stacks = []StackResponse{}
	}

	result := Gallery{
		Stacks: make([]Stack, 0, len(stacks)),
	}

	for _, stack := range stacks {
		result.Stacks = append(result.Stacks, HydrateStack(stack, options...))
	}

	return result
}

// Response returns the Gallery in its wire shape.
func (g Gallery) Response() Response {
	result := Response{
		Stacks: make([]StackResponse, 0, len(g.Stacks)),
	}

	for _, stack := range g.Stacks {
		result.Stacks = append(result.Stacks, stack.Response())
	}

	return result
}

/*
Stack returns the Stack with the given id, or false if the gallery does not
contain it.
*/
func (g Gallery) Stack(id string) (Stack, bool) {
	for _, stack := range g.Stacks {
		if stack.ID == id {
			return stack, true
		}
	}

	return Stack{}, false
}

/*
ReplaceStack returns a copy of the gallery where the stack with the same ID as
the given one is replaced. ErrStackNotFound is returned if there is no such
stack.
*/
func (g Gallery) ReplaceStack(stack Stack) (Gallery, error) {
	index := g.indexOf(stack.ID)
	if index < 0 {
		return g, ErrStackNotFound
	}

	result := g.Clone()
	result.Stacks[index] = stack.Clone()
	return result, nil
}

/*
NewStack returns a copy of the gallery with a new stack appended. The given
variant becomes the only variant of the stack and is marked as its original.
An error wrapping ErrEmptyID is returned when the stack id or the variant id
is empty, and one wrapping ErrDuplicateID when the gallery already has a stack
with the id.
*/
func (g Gallery) NewStack(id string, original Variant) (Gallery, Stack, error) {
	if id == "" {
		return g, Stack{}, fmt.Errorf("stack id: %w", ErrEmptyID)
	}

	if original.ID == "" {
		return g, Stack{}, fmt.Errorf("variant id: %w", ErrEmptyID)
	}

	if _, ok := g.Stack(id); ok {
		return g, Stack{}, fmt.Errorf("stack id %s: %w", id, ErrDuplicateID)
	}

	original = original.Clone()
	original.Image = original.Image.Normalize()
	original.Original = true

	stack := Stack{
		ID:       id,
		Variants: []Variant{original},
		Tags:     tagging.Tags{},
	}

	result := g.Clone()
	result.Stacks = append(result.Stacks, stack)
	return result, stack.Clone(), nil
}

// RemoveStack returns a copy of the gallery without the stack with the given id, and the removed stack.
func (g Gallery) RemoveStack(id string) (Gallery, Stack, error) {
	index := g.indexOf(id)
	if index < 0 {
		return g, Stack{}, ErrStackNotFound
	}

	result := g.Clone()
	removed := result.Stacks[index]
	result.Stacks = slices.Delete(result.Stacks, index, index+1)
	return result, removed, nil
}

/*
NewVariant returns a copy of the gallery where img was added to the stack with
the given id as a new, non-original variant. The updated stack is returned as
well.
*/
func (g Gallery) NewVariant(stackID, variantID string, img image.Image) (Gallery, Stack, error) {
	stack, ok := g.Stack(stackID)
	if !ok {
		return g, Stack{}, ErrStackNotFound
	}

	if _, ok := stack.Variant(variantID); ok {
		return g, Stack{}, fmt.Errorf("variant id %s: %w", variantID, ErrDuplicateID)
	}

	variant, err := stack.NewVariant(variantID, img)
	if err != nil {
		return g, Stack{}, err
	}

	stack = stack.Clone()
	stack.Variants = append(stack.Variants, variant)

	result, err := g.ReplaceStack(stack)
	return result, stack, err
}

// RemoveVariant returns a copy of the gallery without the given variant, and the removed variant.
func (g Gallery) RemoveVariant(stackID, variantID string) (Gallery, Variant, error) {
	stack, ok := g.Stack(stackID)
	if !ok {
		return g, Variant{}, ErrStackNotFound
	}

	removed, ok := stack.Variant(variantID)
	if !ok {
		return g, Variant{}, ErrVariantNotFound
	}

	stack = stack.Clone()
	stack.Variants = slices.DeleteFunc(stack.Variants, func(v Variant) bool {
		return v.ID == variantID
	})

	result, err := g.ReplaceStack(stack)
	return result, removed.Clone(), err
}

/*
ReplaceVariant returns a copy of the gallery where the variant of the stack
with the same ID as the given variant is replaced.
*/
func (g Gallery) ReplaceVariant(stackID string, variant Variant) (Gallery, Stack, error) {
	stack, ok := g.Stack(stackID)
	if !ok {
		return g, Stack{}, ErrStackNotFound
	}

	index := slices.IndexFunc(stack.Variants, func(v Variant) bool {
		return v.ID == variant.ID
	})

	if index < 0 {
		return g, Stack{}, ErrVariantNotFound
	}

	variant = variant.Clone()
	variant.Image = variant.Image.Normalize()

	stack = stack.Clone()
	stack.Variants[index] = variant

	result, err := g.ReplaceStack(stack)
	return result, stack, err
}

/*
Sort returns a copy of the gallery with its stacks ordered by ids. Unknown ids
are ignored. Stacks that are not listed keep their relative order and are
placed after the listed ones.
*/
func (g Gallery) Sort(ids []string) Gallery {
	rank := make(map[string]int, len(ids))

	for _, id := range ids {
		if _, seen := rank[id]; seen || g.indexOf(id) < 0 {
			continue
		}

		rank[id] = len(rank)
	}

	result := g.Clone()

	if len(rank) == 0 {
		return result
	}

	slices.SortStableFunc(result.Stacks, func(a, b Stack) int {
		rankA, listedA := rank[a.ID]
		rankB, listedB := rank[b.ID]

		switch {
		case listedA && listedB:
			return cmp.Compare(rankA, rankB)
		case listedA:
			return -1
		case listedB:
			return 1
		}

		return 0
	})

	return result
}

// Clear returns an empty copy of the gallery.
func (g Gallery) Clear() Gallery {
	return Gallery{Stacks: []Stack{}}
}

// Clone returns a deep copy of the gallery.
func (g Gallery) Clone() Gallery {
	stacks := make([]Stack, len(g.Stacks))
	for index, stack := range g.Stacks {
		stacks[index] = stack.Clone()
	}

	return Gallery{Stacks: stacks}
}

func (g Gallery) indexOf(id string) int {
	return slices.IndexFunc(g.Stacks, func(s Stack) bool {
		return s.ID == id
	})
}
