package gallery_test

import (
	"github.com/adampresley/mediaentity/pkg/gallery"
	"github.com/adampresley/mediaentity/pkg/image"
)

func newVariantResponse(id string, original bool) gallery.VariantResponse {
	return gallery.VariantResponse{
		ID:       id,
		Original: original,
		Response: image.Response{
			Storage:    image.Storage{Provider: "s3", Path: "galleries/1/" + id + ".jpg"},
			Filename:   id + ".jpg",
			Filesize:   2048,
			Dimensions: image.Dimensions{Width: 800, Height: 600},
			Names: map[string]string{
				"en": "Foo image",
				"de": "Foo Bild",
			},
			Descriptions: map[string]string{
				"en": "An image of Foo",
				"de": "Ein Bild von Foo",
				"fr": "Une image de Foo",
			},
		},
	}
}

func newGalleryResponse() gallery.Response {
	return gallery.Response{
		Stacks: []gallery.StackResponse{
			{
				ID: "stack-1",
				Variants: []gallery.VariantResponse{
					newVariantResponse("original", true),
					newVariantResponse("small", false),
				},
				Tags: []string{"processed"},
			},
			{
				ID:       "stack-2",
				Variants: []gallery.VariantResponse{newVariantResponse("only", true)},
			},
			{
				ID: "stack-3",
			},
		},
	}
}
