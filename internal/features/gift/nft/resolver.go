// Package nft turns Telegram NFT gift links into canonical identities and
// derives the asset URLs served for them.
package nft

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// PreviewNumber is used when an identifier carries no item number.
const PreviewNumber = "preview"

// ErrInvalidLink is matched by every ParseError.
var ErrInvalidLink = errors.New("invalid gift link")

// ParseError describes why a link could not be resolved.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid gift link %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidLink
}

// Identity is the canonical form of an NFT gift.
type Identity struct {
	NFTID          string `json:"nftId"`
	CollectionName string `json:"collectionName"`
	CollectionSlug string `json:"collectionSlug"`
	Number         string `json:"number"`
	DisplayName    string `json:"displayName"`
}

var assetExtensions = []string{".webp", ".json", ".tgs", ".lottie"}

// Resolve parses a gift link or bare identifier. Accepted shapes:
//
//	https://t.me/nft/IonicDryer-7561   (scheme optional)
//	https://fragment.com/gift/ionicdryer-7561
//	https://nft.fragment.com/gift/ionicdryer-7561.webp
//	https://nft.fragment.com/gift/ionicdryer/7561.webp
//	IonicDryer-7561
//	IonicDryer
func Resolve(raw string) (Identity, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Identity{}, &ParseError{Input: raw, Reason: "empty"}
	}

	if !looksLikeURL(s) {
		if !validIdentifier(s) {
			return Identity{}, &ParseError{Input: raw, Reason: "unexpected characters"}
		}
		return identify(raw, s)
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return Identity{}, &ParseError{Input: raw, Reason: err.Error()}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := splitPath(u.Path)

	switch host {
	case "t.me", "telegram.me":
		if len(segments) != 2 || segments[0] != "nft" {
			return Identity{}, &ParseError{Input: raw, Reason: "not an nft link"}
		}
		return identifyChecked(raw, segments[1])

	case "fragment.com", "nft.fragment.com":
		// only the lowercase slug is available here, so the nftId is
		// "{slug}-{n}" rather than the t.me "{Name}-{n}"
		if len(segments) < 2 || segments[0] != "gift" {
			return Identity{}, &ParseError{Input: raw, Reason: "not a gift link"}
		}
		if len(segments) == 3 {
			// nft.fragment.com/gift/{slug}/{number}.ext
			number := stripExtension(segments[2])
			if !validIdentifier(segments[1]) || !validIdentifier(number) || strings.Contains(number, "-") {
				return Identity{}, &ParseError{Input: raw, Reason: "unexpected characters"}
			}
			return identify(raw, segments[1]+"-"+number)
		}
		if len(segments) != 2 {
			return Identity{}, &ParseError{Input: raw, Reason: "not a gift link"}
		}
		return identifyChecked(raw, stripExtension(segments[1]))
	}

	return Identity{}, &ParseError{Input: raw, Reason: "unsupported host " + host}
}

// FromID builds an identity from an already formed nftId. Unlike Resolve it
// does not reject unusual characters: the id is kept verbatim.
func FromID(id string) (Identity, error) {
	s := strings.TrimSpace(id)
	if s == "" {
		return Identity{}, &ParseError{Input: id, Reason: "empty"}
	}
	return identify(id, s)
}

func identifyChecked(raw, ident string) (Identity, error) {
	if !validIdentifier(ident) {
		return Identity{}, &ParseError{Input: raw, Reason: "unexpected characters"}
	}
	return identify(raw, ident)
}

func identify(raw, ident string) (Identity, error) {
	name, number := ident, PreviewNumber
	if i := strings.LastIndex(ident, "-"); i >= 0 {
		name, number = ident[:i], ident[i+1:]
		if name == "" || number == "" {
			return Identity{}, &ParseError{Input: raw, Reason: "missing collection or number"}
		}
	}

	collection := Humanize(name)
	slug := Slugify(name)
	if slug == "" {
		return Identity{}, &ParseError{Input: raw, Reason: "collection has no letters or digits"}
	}

	return Identity{
		NFTID:          ident,
		CollectionName: collection,
		CollectionSlug: slug,
		Number:         number,
		DisplayName:    DisplayName(collection, number),
	}, nil
}

// DisplayName renders "Collection #number", or just the collection for
// preview items.
func DisplayName(collection, number string) string {
	if number == "" || number == PreviewNumber {
		return collection
	}
	return collection + " #" + number
}

// Humanize converts CamelCase into "Camel Case" and upper-cases the first rune.
func Humanize(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			b.WriteRune(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Slugify lower-cases s and drops everything outside [a-z0-9].
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func looksLikeURL(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, "://")
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func stripExtension(seg string) string {
	lower := strings.ToLower(seg)
	for _, ext := range assetExtensions {
		if strings.HasSuffix(lower, ext) {
			return seg[:len(seg)-len(ext)]
		}
	}
	return seg
}
