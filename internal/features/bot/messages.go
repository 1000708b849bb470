package bot

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	tgmodels "github.com/go-telegram/bot/models"

	"gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/gift/nft"
)

const (
	helpText = "📚 <b>Help</b>\n\n" +
		"/start - Start the bot\n" +
		"/market - Open the marketplace\n" +
		"/profile - Your profile\n" +
		"/referral - Referral program\n" +
		"/auth - Sign in"

	authText = "🔐 <b>Sign in</b>\n\nShare your phone number to sign in 👇"
)

// GiftLink is the deep link that accepts a share token.
func GiftLink(botUsername, token string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%s", botUsername, giftPayloadPrefix, token)
}

// ReferralLink is the deep link that credits chatID as the referrer.
func ReferralLink(botUsername string, chatID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%d", botUsername, referralPayloadPrefix, chatID)
}

func (r *Router) tabURL(tab string) string {
	if tab == "" {
		return r.webAppURL
	}
	u, err := url.Parse(r.webAppURL)
	if err != nil {
		return r.webAppURL
	}
	q := u.Query()
	q.Set("tab", tab)
	u.RawQuery = q.Encode()
	return u.String()
}

func (r *Router) webAppKeyboard(tab string) *tgmodels.InlineKeyboardMarkup {
	text := "🛍 Open Market"
	if tab == "profile" {
		text = "👤 Open profile"
	}
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{{Text: text, WebApp: &tgmodels.WebAppInfo{URL: r.tabURL(tab)}}},
		},
	}
}

func contactKeyboard() *tgmodels.ReplyKeyboardMarkup {
	return &tgmodels.ReplyKeyboardMarkup{
		Keyboard: [][]tgmodels.KeyboardButton{
			{{Text: "📱 Share phone number", RequestContact: true}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

func codeIssuedText(phone, code string) string {
	return fmt.Sprintf("📱 <b>Number received!</b>\n\nPhone: <code>%s</code>\n\n🔑 <b>Your code:</b> <code>%s</code>\n\nEnter the code in the app.",
		html.EscapeString(phone), code)
}

func purchaseText(item, price string) string {
	return fmt.Sprintf("🎉 <b>Purchase complete!</b>\n\nYou bought: %s\nPrice: %s TON",
		html.EscapeString(item), html.EscapeString(price))
}

func welcomeText(firstName string) string {
	return fmt.Sprintf("👋 Hi, <b>%s</b>!\n\n"+
		"Welcome to <b>MARKETPLACE</b>, your NFT marketplace in Telegram!\n\n"+
		"🎁 <b>What's inside:</b>\n"+
		"• Buy and sell NFT gifts\n"+
		"• Join seasonal events\n"+
		"• Invite friends and earn bonuses\n\n"+
		"Tap the button below 👇", html.EscapeString(firstName))
}

func referralBonusText(firstName string, bonus int64) string {
	return fmt.Sprintf("🎉 <b>New referral!</b>\n\n%s joined with your link.\n\n💰 Bonus: +%d points",
		html.EscapeString(firstName), bonus)
}

func giftAcceptedText(creator string, share *models.ShareToken) string {
	nftID := share.NFTName
	if share.NFTNumber != "" {
		nftID += "-" + share.NFTNumber
	}
	link := viewURL(share.NFTLink, nftID)
	return fmt.Sprintf("🎁 <b>Gift accepted!</b>\n\n@%s sent you an <a href=\"%s\">NFT gift</a> right in the Telegram chat.\n\nIt is now in your web app inventory.",
		html.EscapeString(creator), html.EscapeString(link))
}

func profileText(balance int64, level, rating int) string {
	return fmt.Sprintf("👤 <b>Your profile</b>\n\n💰 Balance: <b>%d</b> points\n🔥 Level: <b>%d</b>\n⭐ Rating: <b>%d</b>",
		balance, level, rating)
}

func referralText(link string, count int64) string {
	return fmt.Sprintf("👥 <b>Referral program</b>\n\n"+
		"🔗 <b>Your link:</b>\n<code>%s</code>\n\n"+
		"📊 Invited: <b>%d</b> friends\n\n"+
		"💰 <b>Rewards:</b>\n"+
		"• 5 friends → +50 points\n"+
		"• 15 friends → +150 points\n"+
		"• 30 friends → +300 points\n"+
		"• 50 friends → +500 points", html.EscapeString(link), count)
}

func instructionArticle(botUsername string) tgmodels.InlineQueryResult {
	return &tgmodels.InlineQueryResultArticle{
		ID:          "instruction",
		Title:       "How to create a gift link",
		Description: "Type an NFT link after @" + botUsername,
		InputMessageContent: &tgmodels.InputTextMessageContent{
			MessageText: fmt.Sprintf("To create a gift link type: @%s {NFT link}", botUsername),
		},
	}
}

func invalidLinkArticle() tgmodels.InlineQueryResult {
	return &tgmodels.InlineQueryResultArticle{
		ID:          "invalid_link",
		Title:       "Invalid NFT link",
		Description: "Please enter a valid NFT link",
		InputMessageContent: &tgmodels.InputTextMessageContent{
			MessageText: "❌ Invalid NFT link. Use the format: https://t.me/nft/Name-Number",
		},
	}
}

func giftOfferArticle(share *models.ShareToken, id nft.Identity, acceptURL string) tgmodels.InlineQueryResult {
	name := html.EscapeString(id.DisplayName)
	view := viewURL(share.NFTLink, id.NFTID)
	return &tgmodels.InlineQueryResultArticle{
		ID:          giftPayloadPrefix + share.Token,
		Title:       "🎁 Gift " + id.DisplayName,
		Description: "NFT: " + id.DisplayName,
		InputMessageContent: &tgmodels.InputTextMessageContent{
			MessageText: fmt.Sprintf("🎁 You are being gifted an NFT: <a href=\"%s\">%s</a>\n\nTap the button below to accept.",
				html.EscapeString(view), name),
			ParseMode: tgmodels.ParseModeHTML,
		},
		ReplyMarkup: &tgmodels.InlineKeyboardMarkup{
			InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
				{{Text: "📱 View", URL: view}},
				{{Text: "🎁 Accept gift", URL: acceptURL}},
			},
		},
	}
}

// viewURL returns link as an absolute URL. Bare identifiers point at the
// t.me NFT page.
func viewURL(link, nftID string) string {
	switch {
	case strings.HasPrefix(link, "https://"), strings.HasPrefix(link, "http://"):
		return link
	case strings.Contains(link, "/"):
		return "https://" + link
	default:
		return "https://t.me/nft/" + nftID
	}
}
