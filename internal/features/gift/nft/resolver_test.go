package nft

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBareIdentifier(t *testing.T) {
	id, err := Resolve("IonicDryer-7561")
	require.NoError(t, err)

	assert.Equal(t, Identity{
		NFTID:          "IonicDryer-7561",
		CollectionName: "Ionic Dryer",
		CollectionSlug: "ionicdryer",
		Number:         "7561",
		DisplayName:    "Ionic Dryer #7561",
	}, id)
}

func TestResolveWithoutNumber(t *testing.T) {
	id, err := Resolve("Preview")
	require.NoError(t, err)

	assert.Equal(t, "preview", id.Number)
	assert.Equal(t, "Preview", id.NFTID)
	assert.Equal(t, "Preview", id.DisplayName)
}

func TestResolveSplitsOnLastHyphen(t *testing.T) {
	id, err := Resolve("Jack-in-the-Box-12")
	require.NoError(t, err)

	assert.Equal(t, "12", id.Number)
	assert.Equal(t, "jackinthebox", id.CollectionSlug)
	assert.Equal(t, "Jack-in-the-Box-12", id.NFTID)
}

func TestResolveURLForms(t *testing.T) {
	cases := map[string]string{
		"https://t.me/nft/IonicDryer-7561":                   "IonicDryer-7561",
		"http://t.me/nft/IonicDryer-7561/":                   "IonicDryer-7561",
		"t.me/nft/IonicDryer-7561":                           "IonicDryer-7561",
		"https://t.me/nft/IonicDryer-7561?startapp=1#top":    "IonicDryer-7561",
		"https://fragment.com/gift/ionicdryer-7561":          "ionicdryer-7561",
		"https://nft.fragment.com/gift/ionicdryer-7561.webp": "ionicdryer-7561",
		"https://nft.fragment.com/gift/ionicdryer-7561.TGS":  "ionicdryer-7561",
		"https://nft.fragment.com/gift/ionicdryer/7561.json": "ionicdryer-7561",
	}
	for raw, want := range cases {
		id, err := Resolve(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, id.NFTID, raw)
		assert.Equal(t, "ionicdryer", id.CollectionSlug, raw)
		assert.Equal(t, "7561", id.Number, raw)
	}
}

// Fragment links only carry the lowercase slug, so they resolve to a
// different nftId than the t.me form of the same item.
func TestResolveFragmentFormsKeepSlugID(t *testing.T) {
	tme, err := Resolve("https://t.me/nft/IonicDryer-7561")
	require.NoError(t, err)

	for _, link := range []string{
		"https://fragment.com/gift/ionicdryer-7561",
		"https://nft.fragment.com/gift/ionicdryer/7561.webp",
	} {
		id, err := Resolve(link)
		require.NoError(t, err, link)
		assert.Equal(t, "ionicdryer-7561", id.NFTID, link)
		assert.NotEqual(t, tme.NFTID, id.NFTID, link)
		assert.Equal(t, tme.CollectionSlug, id.CollectionSlug, link)
		assert.Equal(t, tme.Number, id.Number, link)
	}
}

func TestResolveRejectsInvalidInput(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"not a link",
		"https://example.com/nft/IonicDryer-7561",
		"https://t.me/durov",
		"https://t.me/nft/",
		"IonicDryer-",
		"-7561",
		"https://t.me/nft/Ionic%20Dryer-1",
	} {
		_, err := Resolve(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrInvalidLink), raw)

		var pe *ParseError
		assert.True(t, errors.As(err, &pe), raw)
	}
}

func TestFromIDKeepsIdentifierVerbatim(t *testing.T) {
	id, err := FromID("Plush Pepe-42")
	require.NoError(t, err)

	assert.Equal(t, "Plush Pepe-42", id.NFTID)
	assert.Equal(t, "plushpepe", id.CollectionSlug)
	assert.Equal(t, "42", id.Number)

	_, err = FromID("")
	assert.ErrorIs(t, err, ErrInvalidLink)
}

func TestSlugifyIsIdempotent(t *testing.T) {
	for _, s := range []string{"IonicDryer", "Jack-in-the-Box", "B-Day Candle!", "ÄÖÜ 123", "", "already1slug"} {
		once := Slugify(s)
		assert.Equal(t, once, Slugify(once), s)
		assert.Regexp(t, `^[a-z0-9]*$`, once, s)
	}
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Ionic Dryer", Humanize("IonicDryer"))
	assert.Equal(t, "Plush Pepe", Humanize("plushPepe"))
	assert.Equal(t, "NFT Box", Humanize("NFT Box"))
	assert.Equal(t, "", Humanize(""))
}
