package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"gift-market-backend/internal/common/logger"
	"gift-market-backend/internal/common/metrics"
	"gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/gift/nft"
	giftservice "gift-market-backend/internal/features/gift/service"
	userservice "gift-market-backend/internal/features/user/service"
	"gift-market-backend/internal/platform/telegram"
)

const (
	giftPayloadPrefix     = "gift_"
	referralPayloadPrefix = "ref_"
)

// Transfers issues and receives peer-to-peer gift offers.
type Transfers interface {
	Issue(ctx context.Context, link string, creator models.TelegramID, creatorUsername string) (*models.ShareToken, nft.Identity, error)
	Receive(ctx context.Context, token string, receiver models.TelegramID) (*giftservice.ReceiveResult, error)
}

// Router dispatches Telegram updates to the gift, referral and
// verification flows. Outbound sends are best effort: a failed reply is
// logged and never undoes what the flow already committed.
type Router struct {
	messenger telegram.Messenger
	username  *telegram.Username
	transfers Transfers
	users     userservice.UserService
	auth      userservice.AuthService
	metrics   *metrics.Metrics
	webAppURL string
}

func NewRouter(
	messenger telegram.Messenger,
	username *telegram.Username,
	transfers Transfers,
	users userservice.UserService,
	auth userservice.AuthService,
	m *metrics.Metrics,
	webAppURL string,
) *Router {
	return &Router{
		messenger: messenger,
		username:  username,
		transfers: transfers,
		users:     users,
		auth:      auth,
		metrics:   m,
		webAppURL: webAppURL,
	}
}

// Handle processes one update.
func (r *Router) Handle(ctx context.Context, update *tgmodels.Update) error {
	if update == nil {
		return nil
	}
	kind := updateKind(update)

	var err error
	switch kind {
	case "message":
		err = r.handleMessage(ctx, update.Message)
	case "inline_query":
		err = r.handleInlineQuery(ctx, update.InlineQuery)
	case "callback_query":
		err = r.handleCallback(ctx, update.CallbackQuery)
	default:
		logger.Debug().Int64("update_id", update.ID).Msg("Ignoring update")
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.metrics.WebhookUpdateTotal.WithLabelValues(kind, outcome).Inc()
	return err
}

func updateKind(update *tgmodels.Update) string {
	switch {
	case update.Message != nil:
		return "message"
	case update.InlineQuery != nil:
		return "inline_query"
	case update.CallbackQuery != nil:
		return "callback_query"
	default:
		return "other"
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *tgmodels.Message) error {
	chatID := msg.Chat.ID
	owner := models.FromInt64(chatID)

	var username, firstName string
	if msg.From != nil {
		username, firstName = msg.From.Username, msg.From.FirstName
	}
	if _, err := r.users.GetOrCreateUser(ctx, owner, username, firstName); err != nil {
		return fmt.Errorf("ensure user %s: %w", owner, err)
	}

	switch {
	case msg.Contact != nil:
		return r.handleContact(ctx, msg)
	case msg.WebAppData != nil:
		return r.handleWebAppData(ctx, chatID, msg.WebAppData.Data)
	}

	command, payload := splitCommand(msg.Text)
	switch command {
	case "/start":
		return r.handleStart(ctx, msg, payload)
	case "/help":
		r.send(ctx, chatID, helpText, r.webAppKeyboard(""))
	case "/market":
		r.send(ctx, chatID, "🛍 Open the marketplace:", r.webAppKeyboard(""))
	case "/profile":
		return r.handleProfile(ctx, chatID)
	case "/referral":
		return r.handleReferralInfo(ctx, chatID)
	case "/auth":
		r.send(ctx, chatID, authText, contactKeyboard())
	default:
		r.send(ctx, chatID, "👋 Use the button below:", r.webAppKeyboard(""))
	}
	return nil
}

// splitCommand returns the command without any @botname suffix and the
// first argument.
func splitCommand(text string) (string, string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", ""
	}
	command := fields[0]
	if i := strings.IndexByte(command, '@'); i > 0 {
		command = command[:i]
	}
	if len(fields) > 1 {
		return command, fields[1]
	}
	return command, ""
}

func (r *Router) handleContact(ctx context.Context, msg *tgmodels.Message) error {
	chatID := msg.Chat.ID
	contact := msg.Contact
	if msg.From != nil && contact.UserID != 0 && contact.UserID != msg.From.ID {
		r.send(ctx, chatID, "❌ Please share your own phone number.", contactKeyboard())
		return nil
	}

	code, err := r.auth.IssueCode(ctx, models.FromInt64(chatID), contact.PhoneNumber, "bot")
	if err != nil {
		r.send(ctx, chatID, "❌ Could not create a verification code. Try again later.", nil)
		return err
	}

	r.send(ctx, chatID, codeIssuedText(contact.PhoneNumber, code), &tgmodels.ReplyKeyboardRemove{RemoveKeyboard: true})
	r.send(ctx, chatID, "Open the marketplace and enter the code:", r.webAppKeyboard(""))
	return nil
}

type webAppPayload struct {
	Action string     `json:"action"`
	Code   flexString `json:"code"`
	Item   string     `json:"item"`
	Price  flexString `json:"price"`
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n)
	return nil
}

func (r *Router) handleWebAppData(ctx context.Context, chatID int64, raw string) error {
	var payload webAppPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Malformed web_app_data")
		return nil
	}

	switch payload.Action {
	case "verify_code":
		_, err := r.auth.VerifyCode(ctx, models.FromInt64(chatID), string(payload.Code))
		if errors.Is(err, userservice.ErrCodeMismatch) {
			r.send(ctx, chatID, "❌ Invalid code. Please try again.", nil)
			return nil
		}
		if err != nil {
			r.send(ctx, chatID, "❌ Verification failed. Please try again later.", nil)
			return err
		}
		r.send(ctx, chatID, "✅ <b>Signed in!</b>\n\nWelcome to MARKETPLACE!", r.webAppKeyboard(""))
	case "purchase":
		item := payload.Item
		if item == "" {
			item = "NFT"
		}
		price := string(payload.Price)
		if price == "" {
			price = "0"
		}
		r.send(ctx, chatID, purchaseText(item, price), nil)
	default:
		logger.Debug().Str("action", payload.Action).Msg("Unknown web_app_data action")
	}
	return nil
}

func (r *Router) handleStart(ctx context.Context, msg *tgmodels.Message, payload string) error {
	chatID := msg.Chat.ID
	if token, ok := strings.CutPrefix(payload, giftPayloadPrefix); ok {
		return r.handleGiftStart(ctx, chatID, token)
	}

	firstName := "friend"
	if msg.From != nil && msg.From.FirstName != "" {
		firstName = msg.From.FirstName
	}

	if ref, ok := strings.CutPrefix(payload, referralPayloadPrefix); ok {
		if err := r.applyReferral(ctx, chatID, ref, firstName); err != nil {
			logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to apply referral")
		}
	}

	r.send(ctx, chatID, welcomeText(firstName), r.webAppKeyboard(""))
	return nil
}

func (r *Router) applyReferral(ctx context.Context, chatID int64, rawReferrer, firstName string) error {
	referrer, err := models.ParseTelegramID(rawReferrer)
	if err != nil {
		return nil
	}

	res, err := r.users.ApplyReferral(ctx, models.FromInt64(chatID), referrer)
	if err != nil {
		return err
	}
	if res.Applied && res.Bonus > 0 {
		r.send(ctx, referrer.Int64(), referralBonusText(firstName, res.Bonus), nil)
	}
	return nil
}

func (r *Router) handleGiftStart(ctx context.Context, chatID int64, token string) error {
	res, err := r.transfers.Receive(ctx, token, models.FromInt64(chatID))
	if err != nil {
		r.send(ctx, chatID, "❌ Failed to process the gift.", nil)
		return err
	}

	switch res.Outcome {
	case giftservice.ReceiveNotFound:
		r.send(ctx, chatID, "❌ Gift link not found or no longer valid.", nil)
	case giftservice.ReceiveAlreadyReceived:
		r.send(ctx, chatID, "❌ This gift has already been accepted.", nil)
	case giftservice.ReceiveAlreadyOwned:
		r.send(ctx, chatID, "ℹ️ This gift is already in your inventory.", r.webAppKeyboard(""))
	case giftservice.ReceiveFailed:
		r.send(ctx, chatID, "❌ Failed to add the gift to your inventory.", nil)
	case giftservice.ReceiveAdded, giftservice.ReceiveAddedByFallback:
		creator := r.creatorName(ctx, res.Share)
		r.send(ctx, chatID, giftAcceptedText(creator, res.Share), r.webAppKeyboard(""))
	}
	return nil
}

func (r *Router) creatorName(ctx context.Context, share *models.ShareToken) string {
	if share.CreatorUsername != "" {
		return share.CreatorUsername
	}
	if profile, err := r.users.GetUser(ctx, share.CreatorTelegramID); err == nil && profile.Username != "" {
		return profile.Username
	}
	return "user"
}

func (r *Router) handleProfile(ctx context.Context, chatID int64) error {
	profile, err := r.users.GetUser(ctx, models.FromInt64(chatID))
	if err != nil {
		return err
	}
	r.send(ctx, chatID, profileText(profile.Balance, profile.Level, profile.Rating), r.webAppKeyboard("profile"))
	return nil
}

func (r *Router) handleReferralInfo(ctx context.Context, chatID int64) error {
	profile, err := r.users.GetUser(ctx, models.FromInt64(chatID))
	if err != nil {
		return err
	}
	link := ReferralLink(r.username.Get(ctx), chatID)

	keyboard := &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{{Text: "📤 Share", SwitchInlineQuery: "Join MARKETPLACE! " + link}},
			{{Text: "👥 Partners", WebApp: &tgmodels.WebAppInfo{URL: r.tabURL("partners")}}},
		},
	}
	r.send(ctx, chatID, referralText(link, profile.ReferralCount), keyboard)
	return nil
}

func (r *Router) handleInlineQuery(ctx context.Context, q *tgmodels.InlineQuery) error {
	query := strings.TrimSpace(q.Query)

	var result tgmodels.InlineQueryResult
	if query == "" {
		result = instructionArticle(r.username.Get(ctx))
	} else {
		var creator models.TelegramID
		var creatorUsername string
		if q.From != nil {
			creator = models.FromInt64(q.From.ID)
			creatorUsername = q.From.Username
		}

		share, id, err := r.transfers.Issue(ctx, query, creator, creatorUsername)
		switch {
		case errors.Is(err, nft.ErrInvalidLink):
			result = invalidLinkArticle()
		case err != nil:
			return fmt.Errorf("issue share for %s: %w", creator, err)
		default:
			result = giftOfferArticle(share, id, GiftLink(r.username.Get(ctx), share.Token))
		}
	}

	_, err := r.messenger.AnswerInlineQuery(ctx, &tgbot.AnswerInlineQueryParams{
		InlineQueryID: q.ID,
		Results:       []tgmodels.InlineQueryResult{result},
		CacheTime:     1,
		IsPersonal:    true,
	})
	if err != nil {
		logger.Warn().Err(err).Str("inline_query_id", q.ID).Msg("answerInlineQuery failed")
	}
	return nil
}

func (r *Router) handleCallback(ctx context.Context, cb *tgmodels.CallbackQuery) error {
	if _, err := r.messenger.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID}); err != nil {
		logger.Warn().Err(err).Str("callback_query_id", cb.ID).Msg("answerCallbackQuery failed")
	}

	chatID := messageChatID(cb.Message)
	if chatID == 0 {
		chatID = cb.From.ID
	}

	switch cb.Data {
	case "auth":
		r.send(ctx, chatID, authText, contactKeyboard())
	case "market":
		r.send(ctx, chatID, "🛍 Open the marketplace:", r.webAppKeyboard(""))
	default:
		logger.Debug().Str("data", cb.Data).Msg("Unhandled callback data")
	}
	return nil
}

func messageChatID(msg tgmodels.MaybeInaccessibleMessage) int64 {
	switch msg.Type {
	case tgmodels.MaybeInaccessibleMessageTypeMessage:
		if msg.Message != nil {
			return msg.Message.Chat.ID
		}
	case tgmodels.MaybeInaccessibleMessageTypeInaccessibleMessage:
		if msg.InaccessibleMessage != nil {
			return msg.InaccessibleMessage.Chat.ID
		}
	}
	return 0
}

func (r *Router) send(ctx context.Context, chatID int64, text string, markup tgmodels.ReplyMarkup) {
	params := &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := r.messenger.SendMessage(ctx, params); err != nil {
		logger.Warn().Err(err).Int64("chat_id", chatID).Msg("sendMessage failed")
	}
}
