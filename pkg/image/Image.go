package image

import (
	"maps"

	"github.com/adampresley/mediaentity/pkg/image/hydrateoptions"
)

/*
Image is an image that may be stored in (cloud) storage.
*/
type Image struct {
	Storage      Storage           `json:"storage"`
	Filename     string            `json:"filename"`
	Filesize     int64             `json:"filesize"`
	Dimensions   Dimensions        `json:"dimensions"`
	Names        map[string]string `json:"names"`
	Descriptions map[string]string `json:"descriptions"`
}

// Storage is the storage location of an Image.
type Storage struct {
	Provider string `json:"provider"`
	Path     string `json:"path"`
}

// Dimensions are the width and height of an image, in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

/*
Response is an Image as it arrives from an API. Names and descriptions may be
missing, or carry languages the caller is not interested in.
*/
type Response struct {
	Storage      Storage           `json:"storage"`
	Filename     string            `json:"filename"`
	Filesize     int64             `json:"filesize"`
	Dimensions   Dimensions        `json:"dimensions"`
	Names        map[string]string `json:"names,omitempty"`
	Descriptions map[string]string `json:"descriptions,omitempty"`
}

/*
Hydrate builds an Image from an API response. When a language filter is given
with hydrateoptions.WithLanguages, only those languages are kept. Otherwise the
languages of the response's names are kept, for both names and descriptions.
Languages without a value in the response are left out.
*/
func Hydrate(raw Response, options ...hydrateoptions.HydrateOption) Image {
	opts := hydrateoptions.Apply(options...)

	languages := opts.Languages
	if !opts.HasLanguages {
		languages = make([]string, 0, len(raw.Names))
		for lang := range raw.Names {
			languages = append(languages, lang)
		}
	}

	return Image{
		Storage:      raw.Storage,
		Filename:     raw.Filename,
		Filesize:     raw.Filesize,
		Dimensions:   raw.Dimensions,
		Names:        pick(raw.Names, languages),
		Descriptions: pick(raw.Descriptions, languages),
	}
}

/*
Response returns the Image in its wire shape. Hydrating the result again
yields an equal Image.
*/
func (img Image) Response() Response {
	return Response{
		Storage:      img.Storage,
		Filename:     img.Filename,
		Filesize:     img.Filesize,
		Dimensions:   img.Dimensions,
		Names:        maps.Clone(img.Names),
		Descriptions: maps.Clone(img.Descriptions),
	}
}

// Normalize initializes nil Names and Descriptions with empty maps.
func (img Image) Normalize() Image {
	if img.Names == nil {
		img.Names = make(map[string]string)
	}

	if img.Descriptions == nil {
		img.Descriptions = make(map[string]string)
	}

	return img
}

// Clone returns a deep copy of the image.
func (img Image) Clone() Image {
	img.Names = maps.Clone(img.Names)
	img.Descriptions = maps.Clone(img.Descriptions)
	return img
}

func pick(values map[string]string, languages []string) map[string]string {
	result := make(map[string]string, len(languages))

	for _, lang := range languages {
		if value, ok := values[lang]; ok {
			result[lang] = value
		}
	}

	return result
}
