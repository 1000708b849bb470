package models

import "time"

// ShareToken is a single-use offer of a gift from its creator.
type ShareToken struct {
	Token              string     `json:"shareToken"`
	NFTLink            string     `json:"nftLink"`
	NFTName            string     `json:"nftName"`
	NFTNumber          string     `json:"nftNumber"`
	CreatorTelegramID  TelegramID `json:"creatorTelegramId"`
	CreatorUsername    string     `json:"creatorUsername,omitempty"`
	IsReceived         bool       `json:"isReceived"`
	ReceiverTelegramID TelegramID `json:"receiverTelegramId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}
