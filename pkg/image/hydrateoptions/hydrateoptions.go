package hydrateoptions

type HydrateOptions struct {
	Languages    []string
	HasLanguages bool
}

type HydrateOption func(options *HydrateOptions)

/*
WithLanguages restricts the localized names and descriptions of a hydrated
image to the given languages. Calling it with no languages keeps no
localized values at all.
*/
func WithLanguages(languages ...string) HydrateOption {
	return func(options *HydrateOptions) {
		options.Languages = languages
		options.HasLanguages = true
	}
}

// Apply builds HydrateOptions from a list of options.
func Apply(options ...HydrateOption) HydrateOptions {
	result := HydrateOptions{}

	for _, option := range options {
		option(&result)
	}

	return result
}
