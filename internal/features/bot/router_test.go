package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-market-backend/internal/common/metrics"
	"gift-market-backend/internal/features/gift/models"
	giftredis "gift-market-backend/internal/features/gift/repository/redis"
	giftservice "gift-market-backend/internal/features/gift/service"
	userredis "gift-market-backend/internal/features/user/repository/redis"
	userservice "gift-market-backend/internal/features/user/service"
	"gift-market-backend/internal/platform/telegram"
)

type sentMessage struct {
	ChatID int64
	Text   string
	Markup tgmodels.ReplyMarkup
}

type fakeMessenger struct {
	mu        sync.Mutex
	sent      []sentMessage
	inline    []*tgbot.AnswerInlineQueryParams
	callbacks []string
}

func (f *fakeMessenger) SendMessage(_ context.Context, p *tgbot.SendMessageParams) (*tgmodels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChatID: p.ChatID.(int64), Text: p.Text, Markup: p.ReplyMarkup})
	return &tgmodels.Message{}, nil
}

func (f *fakeMessenger) AnswerInlineQuery(_ context.Context, p *tgbot.AnswerInlineQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inline = append(f.inline, p)
	return true, nil
}

func (f *fakeMessenger) AnswerCallbackQuery(_ context.Context, p *tgbot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, p.CallbackQueryID)
	return true, nil
}

func (f *fakeMessenger) GetMe(context.Context) (*tgmodels.User, error) {
	return &tgmodels.User{Username: "gift_market_bot"}, nil
}

func (f *fakeMessenger) last(t *testing.T, chatID int64) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].ChatID == chatID {
			return f.sent[i]
		}
	}
	t.Fatalf("no message sent to %d", chatID)
	return sentMessage{}
}

func (f *fakeMessenger) countTo(chatID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.ChatID == chatID {
			n++
		}
	}
	return n
}

type fixture struct {
	router    *Router
	messenger *fakeMessenger
	metrics   *metrics.Metrics
	gifts     *giftservice.GiftService
	shares    *giftservice.ShareService
	users     userservice.UserService
	auth      userservice.AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := metrics.NewNop()
	auth := userservice.NewAuthService(userredis.NewAuthRepository(client), 0, 0)
	users := userservice.NewUserService(userredis.NewProfileRepository(client))
	ledger := giftservice.NewLedger(giftredis.NewRegistryRepository(client), giftredis.NewLedgerRepository(client))
	gifts := giftservice.NewGiftService(ledger, nil, auth, m)
	shares := giftservice.NewShareService(giftredis.NewShareRepository(client), 0, m)
	transfers := giftservice.NewTransferService(shares, gifts, nil, m)

	messenger := &fakeMessenger{}
	username := telegram.NewUsername(messenger, "", "MarketplaceBot")
	return &fixture{
		router:    NewRouter(messenger, username, transfers, users, auth, m, "https://market.example.com/"),
		messenger: messenger,
		metrics:   m,
		gifts:     gifts,
		shares:    shares,
		users:     users,
		auth:      auth,
	}
}

func decodeUpdate(t *testing.T, raw string) *tgmodels.Update {
	t.Helper()
	var u tgmodels.Update
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	return &u
}

func messageUpdate(t *testing.T, chatID int64, firstName, username, extra string) *tgmodels.Update {
	return decodeUpdate(t, fmt.Sprintf(`{"update_id":1,"message":{"message_id":1,"date":1718000000,
		"chat":{"id":%d,"type":"private"},
		"from":{"id":%d,"is_bot":false,"first_name":%q,"username":%q},%s}}`,
		chatID, chatID, firstName, username, extra))
}

func textUpdate(t *testing.T, chatID int64, firstName, text string) *tgmodels.Update {
	return messageUpdate(t, chatID, firstName, strings.ToLower(firstName), fmt.Sprintf(`"text":%q`, text))
}

func inlineUpdate(t *testing.T, from int64, username, query string) *tgmodels.Update {
	return decodeUpdate(t, fmt.Sprintf(`{"update_id":2,"inline_query":{"id":"q%d",
		"from":{"id":%d,"is_bot":false,"first_name":"Alice","username":%q},"query":%q,"offset":""}}`,
		from, from, username, query))
}

func webAppUpdate(t *testing.T, chatID int64, data string) *tgmodels.Update {
	encoded, err := json.Marshal(data)
	require.NoError(t, err)
	return messageUpdate(t, chatID, "Bob", "bob", fmt.Sprintf(`"web_app_data":{"data":%s,"button_text":"Market"}`, encoded))
}

func offeredToken(t *testing.T, f *fakeMessenger) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.inline)
	results := f.inline[len(f.inline)-1].Results
	require.Len(t, results, 1)
	article, ok := results[0].(*tgmodels.InlineQueryResultArticle)
	require.True(t, ok)
	token, ok := strings.CutPrefix(article.ID, giftPayloadPrefix)
	require.True(t, ok, "result id %q", article.ID)
	return token
}

func TestGiftShareEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.router.Handle(ctx, inlineUpdate(t, 100, "alice", "https://t.me/nft/IonicDryer-7561")))
	token := offeredToken(t, f.messenger)
	assert.Len(t, token, 32)

	article := f.messenger.inline[0].Results[0].(*tgmodels.InlineQueryResultArticle)
	assert.Equal(t, "🎁 Gift Ionic Dryer #7561", article.Title)
	raw, err := json.Marshal(article)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"url":"https://t.me/gift_market_bot?start=gift_`+token+`"`)

	require.NoError(t, f.router.Handle(ctx, textUpdate(t, 200, "Bob", "/start gift_"+token)))

	share, err := f.shares.Lookup(ctx, token)
	require.NoError(t, err)
	assert.True(t, share.IsReceived)
	assert.Equal(t, models.TelegramID("200"), share.ReceiverTelegramID)

	gifts, total, err := f.gifts.UserGifts(ctx, "200", "")
	require.NoError(t, err)
	require.Len(t, gifts, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "IonicDryer-7561", gifts[0].NFTID)
	assert.Equal(t, "https://nft.fragment.com/gift/ionicdryer/7561.webp", gifts[0].Metadata.ImageURL)

	reply := f.messenger.last(t, 200)
	assert.Contains(t, reply.Text, "Gift accepted")
	assert.Contains(t, reply.Text, "@alice")

	// a second receiver is turned away and nothing is written for them
	require.NoError(t, f.router.Handle(ctx, textUpdate(t, 300, "Carol", "/start gift_"+token)))
	assert.Contains(t, f.messenger.last(t, 300).Text, "already been accepted")
	gifts, _, err = f.gifts.UserGifts(ctx, "300", "")
	require.NoError(t, err)
	assert.Empty(t, gifts)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WebhookUpdateTotal.WithLabelValues("inline_query", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.WebhookUpdateTotal.WithLabelValues("message", "ok")))
}

func TestGiftStartUnknownToken(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.router.Handle(context.Background(), textUpdate(t, 200, "Bob", "/start gift_deadbeef")))
	assert.Contains(t, f.messenger.last(t, 200).Text, "not found")
}

func TestGiftStartAlreadyOwned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gifts.AddGift(ctx, giftservice.AddGiftInput{TelegramID: "200", NFTID: "IonicDryer-7561"})
	require.NoError(t, err)

	require.NoError(t, f.router.Handle(ctx, inlineUpdate(t, 100, "alice", "IonicDryer-7561")))
	token := offeredToken(t, f.messenger)

	require.NoError(t, f.router.Handle(ctx, textUpdate(t, 200, "Bob", "/start gift_"+token)))
	assert.Contains(t, f.messenger.last(t, 200).Text, "already in your inventory")

	gifts, _, err := f.gifts.UserGifts(ctx, "200", "")
	require.NoError(t, err)
	assert.Len(t, gifts, 1)
}

func TestInlineQueryResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.router.Handle(ctx, inlineUpdate(t, 100, "alice", "   ")))
	require.NoError(t, f.router.Handle(ctx, inlineUpdate(t, 100, "alice", "not a link!")))

	require.Len(t, f.messenger.inline, 2)
	first := f.messenger.inline[0].Results[0].(*tgmodels.InlineQueryResultArticle)
	second := f.messenger.inline[1].Results[0].(*tgmodels.InlineQueryResultArticle)
	assert.Equal(t, "instruction", first.ID)
	assert.Contains(t, first.Description, "@gift_market_bot")
	assert.Equal(t, "invalid_link", second.ID)
	assert.Equal(t, "q100", f.messenger.inline[1].InlineQueryID)
}

var codePattern = regexp.MustCompile(`<code>(\d{5})</code>`)

func TestContactAndVerifyCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	contact := messageUpdate(t, 200, "Bob", "bob", `"contact":{"phone_number":"+15550100","first_name":"Bob","user_id":200}`)
	require.NoError(t, f.router.Handle(ctx, contact))

	require.Equal(t, 2, f.messenger.countTo(200))
	issued := f.messenger.sent[0]
	assert.IsType(t, &tgmodels.ReplyKeyboardRemove{}, issued.Markup)
	match := codePattern.FindStringSubmatch(issued.Text)
	require.Len(t, match, 2)
	code := match[1]

	wrong := "99999"
	if code == wrong {
		wrong = "10000"
	}
	require.NoError(t, f.router.Handle(ctx, webAppUpdate(t, 200, fmt.Sprintf(`{"action":"verify_code","code":"%s"}`, wrong))))
	assert.Contains(t, f.messenger.last(t, 200).Text, "Invalid code")

	// the numeric form is accepted too and the code survived the mismatch
	require.NoError(t, f.router.Handle(ctx, webAppUpdate(t, 200, fmt.Sprintf(`{"action":"verify_code","code":%s}`, code))))
	assert.Contains(t, f.messenger.last(t, 200).Text, "Signed in")

	phone, err := f.auth.PhoneOf(ctx, "200")
	require.NoError(t, err)
	assert.Equal(t, "+15550100", phone)
}

func TestContactOfSomeoneElseIsRejected(t *testing.T) {
	f := newFixture(t)

	contact := messageUpdate(t, 200, "Bob", "bob", `"contact":{"phone_number":"+15550199","first_name":"Eve","user_id":999}`)
	require.NoError(t, f.router.Handle(context.Background(), contact))

	assert.Contains(t, f.messenger.last(t, 200).Text, "your own phone number")
	_, err := f.auth.VerifyCode(context.Background(), "200", "12345")
	assert.ErrorIs(t, err, userservice.ErrCodeMismatch)
}

func TestPurchaseAcknowledged(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.router.Handle(context.Background(), webAppUpdate(t, 200, `{"action":"purchase","item":"Ionic Dryer","price":12.5}`)))
	text := f.messenger.last(t, 200).Text
	assert.Contains(t, text, "Ionic Dryer")
	assert.Contains(t, text, "12.5 TON")
}

func TestReferralMilestoneNotifiesReferrer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.router.Handle(ctx, textUpdate(t, 500, "Rita", "/start")))
	for i := int64(0); i < 4; i++ {
		require.NoError(t, f.router.Handle(ctx, textUpdate(t, 600+i, "Friend", "/start ref_500")))
	}
	assert.Equal(t, 1, f.messenger.countTo(500), "no bonus before the fifth referral")

	require.NoError(t, f.router.Handle(ctx, textUpdate(t, 700, "Dora", "/start ref_500")))
	notice := f.messenger.last(t, 500)
	assert.Contains(t, notice.Text, "Dora")
	assert.Contains(t, notice.Text, "+50")

	profile, err := f.users.GetUser(ctx, "500")
	require.NoError(t, err)
	assert.Equal(t, int64(5), profile.ReferralCount)
	assert.Equal(t, int64(50), profile.Balance)

	// repeated and self referrals change nothing
	require.NoError(t, f.router.Handle(ctx, textUpdate(t, 700, "Dora", "/start ref_500")))
	require.NoError(t, f.router.Handle(ctx, textUpdate(t, 500, "Rita", "/start ref_500")))
	profile, err = f.users.GetUser(ctx, "500")
	require.NoError(t, err)
	assert.Equal(t, int64(5), profile.ReferralCount)
}

func TestProfileAndReferralCommands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.router.Handle(ctx, textUpdate(t, 200, "Bob", "/profile")))
	reply := f.messenger.last(t, 200)
	assert.Contains(t, reply.Text, "Level: <b>1</b>")
	keyboard := reply.Markup.(*tgmodels.InlineKeyboardMarkup)
	assert.Equal(t, "https://market.example.com/?tab=profile", keyboard.InlineKeyboard[0][0].WebApp.URL)

	require.NoError(t, f.router.Handle(ctx, textUpdate(t, 200, "Bob", "/referral@gift_market_bot")))
	assert.Contains(t, f.messenger.last(t, 200).Text, "https://t.me/gift_market_bot?start=ref_200")
}

func TestCommandsAndDefaultReply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.router.Handle(ctx, textUpdate(t, 200, "Bob", "/auth")))
	assert.IsType(t, &tgmodels.ReplyKeyboardMarkup{}, f.messenger.last(t, 200).Markup)

	require.NoError(t, f.router.Handle(ctx, textUpdate(t, 200, "Bob", "/help")))
	assert.Contains(t, f.messenger.last(t, 200).Text, "/referral")

	require.NoError(t, f.router.Handle(ctx, textUpdate(t, 200, "Bob", "hello")))
	assert.Contains(t, f.messenger.last(t, 200).Text, "Use the button below")
}

func TestCallbackQueryIsAlwaysAnswered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	auth := decodeUpdate(t, `{"update_id":3,"callback_query":{"id":"cb1","chat_instance":"ci",
		"from":{"id":300,"is_bot":false,"first_name":"Carol"},"data":"auth",
		"message":{"message_id":5,"date":1718000000,"chat":{"id":300,"type":"private"}}}}`)
	unknown := decodeUpdate(t, `{"update_id":4,"callback_query":{"id":"cb2","chat_instance":"ci",
		"from":{"id":300,"is_bot":false,"first_name":"Carol"},"data":"something_else"}}`)

	require.NoError(t, f.router.Handle(ctx, auth))
	require.NoError(t, f.router.Handle(ctx, unknown))

	assert.Equal(t, []string{"cb1", "cb2"}, f.messenger.callbacks)
	assert.Equal(t, 1, f.messenger.countTo(300))
	assert.IsType(t, &tgmodels.ReplyKeyboardMarkup{}, f.messenger.last(t, 300).Markup)
}

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		text, command, payload string
	}{
		{"/start", "/start", ""},
		{"/start gift_abc", "/start", "gift_abc"},
		{"/start@gift_market_bot ref_5", "/start", "ref_5"},
		{"  /help  ", "/help", ""},
		{"hello /start", "", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		command, payload := splitCommand(tc.text)
		assert.Equal(t, tc.command, command, tc.text)
		assert.Equal(t, tc.payload, payload, tc.text)
	}
}

func TestViewURL(t *testing.T) {
	assert.Equal(t, "https://t.me/nft/IonicDryer-7561", viewURL("https://t.me/nft/IonicDryer-7561", "x"))
	assert.Equal(t, "https://t.me/nft/IonicDryer-7561", viewURL("t.me/nft/IonicDryer-7561", "x"))
	assert.Equal(t, "https://t.me/nft/IonicDryer-7561", viewURL("IonicDryer-7561", "IonicDryer-7561"))
}
