package models

import "time"

const (
	DefaultRarity = "common"
	UnknownPhone  = "unknown"
)

// GiftMetadata is the descriptive part of an owned gift.
type GiftMetadata struct {
	GiftName     string `json:"giftName" example:"Ionic Dryer #7561"`
	Rarity       string `json:"rarity" example:"common"`
	ImageURL     string `json:"imageUrl" example:"https://nft.fragment.com/gift/ionicdryer/7561.webp"`
	AnimationURL string `json:"animationUrl" example:"https://nft.fragment.com/gift/ionicdryer/7561.json"`
	ClaimedBy    string `json:"claimedBy,omitempty" example:"johndoe"`
	ClaimedAt    int64  `json:"claimedAt,omitempty" example:"1718000000000"`
}

// GiftRecord is one gift owned by one Telegram user.
type GiftRecord struct {
	NFTID          string       `json:"nftId" example:"IonicDryer-7561"`
	CollectionName string       `json:"collectionName" example:"Ionic Dryer"`
	CollectionSlug string       `json:"collectionSlug" example:"ionicdryer"`
	Phone          string       `json:"phone" example:"+15550100"`
	TelegramID     TelegramID   `json:"telegramId" swaggertype:"string" example:"123456789"`
	Quantity       int          `json:"quantity" example:"1"`
	Metadata       GiftMetadata `json:"metadata"`
	Source         string       `json:"source,omitempty" example:"share"`
	AddedAt        time.Time    `json:"addedAt"`
}

// RegistryKey identifies "nftId already granted to owner".
func RegistryKey(nftID string, owner TelegramID) string {
	return nftID + "_" + string(owner)
}

// TotalQuantity sums quantities; a record may stand for several units.
func TotalQuantity(gifts []GiftRecord) int {
	total := 0
	for _, g := range gifts {
		total += g.Quantity
	}
	return total
}
