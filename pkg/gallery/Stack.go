package gallery

import (
	"fmt"

	"github.com/adampresley/mediaentity/pkg/image"
	"github.com/adampresley/mediaentity/pkg/image/hydrateoptions"
	"github.com/adampresley/mediaentity/pkg/tagging"
)

// ProcessedTag is added to stacks whose variants were generated by a processor.
const ProcessedTag = "processed"

/*
Stack is a collection of images that are variants of the same image. One of
the variants is expected to be the original.
*/
type Stack struct {
	ID       string       `json:"id"`
	Variants []Variant    `json:"variants"`
	Tags     tagging.Tags `json:"tags"`
}

// StackResponse is a Stack as it arrives from an API.
type StackResponse struct {
	ID       string            `json:"id"`
	Variants []VariantResponse `json:"variants,omitempty"`
	Tags     []string          `json:"tags,omitempty"`
}

/*
Variant is an image within a Stack. The ID is unique within its stack.
*/
type Variant struct {
	image.Image

	ID       string `json:"id"`
	Original bool   `json:"original"`
}

// VariantResponse is a Variant as it arrives from an API.
type VariantResponse struct {
	image.Response

	ID       string `json:"id"`
	Original bool   `json:"original"`
}

/*
HydrateStack builds a Stack from an API response. Missing variants and tags
become empty lists.
*/
func HydrateStack(raw StackResponse, options ...hydrateoptions.HydrateOption) Stack {
	variants := raw.Variants
	if variants == nil {
		variants = []VariantResponse{}
	}

	tags := raw.Tags
	if tags == nil {
		tags = []string{}
	}

	result := Stack{
		ID:       raw.ID,
		Variants: make([]Variant, 0, len(variants)),
		Tags:     append(tagging.Tags{}, tags...),
	}

	for _, variant := range variants {
		result.Variants = append(result.Variants, HydrateVariant(variant, options...))
	}

	return result
}

// HydrateVariant builds a Variant from an API response.
func HydrateVariant(raw VariantResponse, options ...hydrateoptions.HydrateOption) Variant {
	return Variant{
		ID:       raw.ID,
		Original: raw.Original,
		Image:    image.Hydrate(raw.Response, options...),
	}
}

// WasProcessed returns whether the stack carries the ProcessedTag.
func WasProcessed(s Stack) bool {
	return tagging.HasTag(s, ProcessedTag)
}

/*
OriginalVariant returns the first variant of the stack that is marked as the
original, or false if there is none.
*/
func OriginalVariant(s Stack) (Variant, bool) {
	for _, variant := range s.Variants {
		if variant.Original {
			return variant, true
		}
	}

	return Variant{}, false
}

func (s Stack) TagList() []string {
	return s.Tags
}

// Variant returns the variant with the given id, or false if the stack does not contain it.
func (s Stack) Variant(id string) (Variant, bool) {
	for _, variant := range s.Variants {
		if variant.ID == id {
			return variant, true
		}
	}

	return Variant{}, false
}

/*
NewVariant builds a non-original variant from img. It does not add the variant
to the stack, and does not check whether the id is already taken.
*/
func (s Stack) NewVariant(id string, img image.Image) (Variant, error) {
	if id == "" {
		return Variant{}, fmt.Errorf("variant id: %w", ErrEmptyID)
	}

	return Variant{
		ID:       id,
		Original: false,
		Image:    img.Clone().Normalize(),
	}, nil
}

// Last returns the last variant of the stack, or false if the stack has no variants.
func (s Stack) Last() (Variant, bool) {
	if len(s.Variants) == 0 {
		return Variant{}, false
	}

	return s.Variants[len(s.Variants)-1], true
}

// ContainsOriginal returns whether one of the variants is marked as the original.
func (s Stack) ContainsOriginal() bool {
	_, ok := OriginalVariant(s)
	return ok
}

// Tag returns a copy of the stack with the given tags added.
func (s Stack) Tag(tags ...string) Stack {
	s = s.Clone()
	s.Tags = s.Tags.With(tags...)
	return s
}

// Untag returns a copy of the stack with the given tags removed.
func (s Stack) Untag(tags ...string) Stack {
	s = s.Clone()
	s.Tags = s.Tags.Without(tags...)
	return s
}

// Clear returns a copy of the stack with every variant removed except the original.
func (s Stack) Clear() Stack {
	s = s.Clone()

	variants := make([]Variant, 0, 1)
	for _, variant := range s.Variants {
		if variant.Original {
			variants = append(variants, variant)
		}
	}

	s.Variants = variants
	return s
}

// Clone returns a deep copy of the stack.
func (s Stack) Clone() Stack {
	variants := make([]Variant, len(s.Variants))
	for index, variant := range s.Variants {
		variants[index] = variant.Clone()
	}

	s.Variants = variants
	s.Tags = append(tagging.Tags{}, s.Tags...)
	return s
}

// Response returns the Stack in its wire shape.
func (s Stack) Response() StackResponse {
	result := StackResponse{
		ID:       s.ID,
		Variants: make([]VariantResponse, 0, len(s.Variants)),
		Tags:     append([]string{}, s.Tags...),
	}

	for _, variant := range s.Variants {
		result.Variants = append(result.Variants, variant.Response())
	}

	return result
}

// Clone returns a deep copy of the variant.
func (v Variant) Clone() Variant {
	v.Image = v.Image.Clone()
	return v
}

// Response returns the Variant in its wire shape.
func (v Variant) Response() VariantResponse {
	return VariantResponse{
		Response: v.Image.Response(),
		ID:       v.ID,
		Original: v.Original,
	}
}
