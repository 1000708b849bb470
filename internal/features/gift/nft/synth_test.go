package nft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeDefaults(t *testing.T) {
	id, err := Resolve("https://t.me/nft/IonicDryer-7561")
	require.NoError(t, err)

	got := Synthesize(id)
	assert.Equal(t, "https://nft.fragment.com/gift/ionicdryer/7561.webp", got.ImageURL)
	assert.Equal(t, "https://nft.fragment.com/gift/ionicdryer/7561.json", got.AnimationURL)
}

func TestSynthesizePrecedenceIsPerField(t *testing.T) {
	id, err := Resolve("IonicDryer-7561")
	require.NoError(t, err)

	caller := Assets{ImageURL: "https://cdn.example/caller.webp"}
	lookup := Assets{ImageURL: "https://cdn.example/lookup.webp", AnimationURL: "https://cdn.example/lookup.json"}

	got := Synthesize(id, caller, lookup)
	assert.Equal(t, "https://cdn.example/caller.webp", got.ImageURL)
	assert.Equal(t, "https://cdn.example/lookup.json", got.AnimationURL)

	got = Synthesize(id, Assets{}, Assets{AnimationURL: "https://cdn.example/a.json"})
	assert.Equal(t, DefaultImageURL("ionicdryer", "7561"), got.ImageURL)
	assert.Equal(t, "https://cdn.example/a.json", got.AnimationURL)
}

func TestSynthesizePreviewItem(t *testing.T) {
	id, err := Resolve("Preview")
	require.NoError(t, err)

	got := Synthesize(id)
	assert.Equal(t, "https://nft.fragment.com/gift/preview/preview.webp", got.ImageURL)
}
