package bot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"giftvault.app/telegram-shop/internal/config"
	"giftvault.app/telegram-shop/internal/features/admin"
	"giftvault.app/telegram-shop/internal/features/catalog"
)

func TestParseIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Intent
	}{
		{name: "start", text: "/start", want: Intent{Kind: IntentMainMenu}},
		{name: "menu", text: "/menu", want: Intent{Kind: IntentMainMenu}},
		{name: "start with bot suffix args", text: "/start ref123", want: Intent{Kind: IntentMainMenu}},
		{name: "balance command", text: "/balance", want: Intent{Kind: IntentBalance}},
		{name: "history command", text: "/history", want: Intent{Kind: IntentHistory}},
		{name: "admin command", text: "/admin", want: Intent{Kind: IntentAdmin}},
		{name: "pending command", text: "/pending", want: Intent{Kind: IntentPending}},
		{name: "unknown command falls through", text: "/frobnicate", want: Intent{Kind: IntentFreeText, Arg: "/frobnicate"}},

		{name: "gift cards button", text: catalog.ButtonGiftCards, want: Intent{Kind: IntentCategory, Arg: catalog.CategoryGiftCards}},
		{name: "streaming button", text: catalog.ButtonStreaming, want: Intent{Kind: IntentCategory, Arg: catalog.CategoryStreaming}},
		{name: "back button", text: catalog.ButtonBack, want: Intent{Kind: IntentBack}},
		{name: "top up button", text: ButtonTopUp, want: Intent{Kind: IntentTopUp}},
		{name: "balance button", text: ButtonBalance, want: Intent{Kind: IntentBalance}},
		{name: "coupon button", text: ButtonCoupon, want: Intent{Kind: IntentCoupon}},
		{name: "referral button", text: ButtonReferral, want: Intent{Kind: IntentReferral}},

		{name: "deposit method", text: "Deposit BTC", want: Intent{Kind: IntentDeposit, Arg: "BTC"}},
		{name: "deposit method multiword", text: "Deposit USDT TRC-20", want: Intent{Kind: IntentDeposit, Arg: "USDT TRC-20"}},
		{name: "deposit without method", text: "Deposit ", want: Intent{Kind: IntentFreeText, Arg: "Deposit"}},

		{name: "txid shape", text: "AAAA1111BBBB2222CCCC", want: Intent{Kind: IntentTxid, Arg: "AAAA1111BBBB2222CCCC"}},
		{name: "txid with padding chars", text: "aB3-_=+/aB3aB3aB3aB3aB3", want: Intent{Kind: IntentTxid, Arg: "aB3-_=+/aB3aB3aB3aB3aB3"}},
		{name: "short txid is free text", text: "abc123", want: Intent{Kind: IntentFreeText, Arg: "abc123"}},

		{name: "brand name is free text", text: "Amazon", want: Intent{Kind: IntentFreeText, Arg: "Amazon"}},
		{name: "offer label is free text", text: "$50 for $25", want: Intent{Kind: IntentFreeText, Arg: "$50 for $25"}},
		{name: "whitespace trimmed", text: "  /start  ", want: Intent{Kind: IntentMainMenu}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ParseIntent(tt.text))
		})
	}
}

// Аппрувы и /pending гейтятся только списком админов из конфига:
// истёкшая сессия панели не должна блокировать разбор депозитов.
// requireAdmin не трогает ни базу, ни Telegram API для админа из списка.
func TestRequireAdminNeedsNoPanelSession(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{AdminIDs: []int64{42}}
	b := &Bot{cfg: cfg, adminService: admin.NewService(nil, nil, cfg)}

	require.True(t, b.requireAdmin(1, 42))
}

func TestParseApprovalData(t *testing.T) {
	t.Parallel()

	alias, userID, ok := parseApprovalData("a1b2c3d4:777")
	require.True(t, ok)
	require.Equal(t, "a1b2c3d4", alias)
	require.Equal(t, int64(777), userID)

	_, _, ok = parseApprovalData("a1b2c3d4")
	require.False(t, ok)
	_, _, ok = parseApprovalData(":777")
	require.False(t, ok)
	_, _, ok = parseApprovalData("a1b2c3d4:notanumber")
	require.False(t, ok)
}
