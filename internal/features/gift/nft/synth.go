package nft

import "fmt"

const assetBaseURL = "https://nft.fragment.com/gift"

// Assets holds the media URLs of a gift. Empty fields mean "not known".
type Assets struct {
	ImageURL     string `json:"imageUrl,omitempty"`
	AnimationURL string `json:"animationUrl,omitempty"`
}

// DefaultImageURL is the fragment CDN preview image for a gift.
func DefaultImageURL(slug, number string) string {
	return fmt.Sprintf("%s/%s/%s.webp", assetBaseURL, Slugify(slug), number)
}

// DefaultAnimationURL is the fragment CDN lottie animation for a gift.
func DefaultAnimationURL(slug, number string) string {
	return fmt.Sprintf("%s/%s/%s.json", assetBaseURL, Slugify(slug), number)
}

// Synthesize resolves the asset URLs of id. Layers are ordered by
// precedence, highest first; each field takes the first non-empty value and
// falls back to the fragment CDN default independently of the other field.
func Synthesize(id Identity, layers ...Assets) Assets {
	out := Assets{}
	for _, l := range layers {
		if out.ImageURL == "" {
			out.ImageURL = l.ImageURL
		}
		if out.AnimationURL == "" {
			out.AnimationURL = l.AnimationURL
		}
	}

	number := id.Number
	if number == "" {
		number = PreviewNumber
	}
	if out.ImageURL == "" {
		out.ImageURL = DefaultImageURL(id.CollectionSlug, number)
	}
	if out.AnimationURL == "" {
		out.AnimationURL = DefaultAnimationURL(id.CollectionSlug, number)
	}
	return out
}
