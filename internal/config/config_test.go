package config

import "testing"

func TestParseWallets(t *testing.T) {
	t.Parallel()
	wallets, err := parseWallets(" BTC:bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh ; ETH:0x71C7656EC7ab88b098defB751B7401B5f6d8976F ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wallets) != 2 {
		t.Fatalf("expected 2 wallets, got %d", len(wallets))
	}
	if wallets[0].Method != "BTC" || wallets[1].Method != "ETH" {
		t.Fatalf("order not preserved: %+v", wallets)
	}
	if wallets[1].Address != "0x71C7656EC7ab88b098defB751B7401B5f6d8976F" {
		t.Fatalf("address not trimmed: %q", wallets[1].Address)
	}

	if _, err := parseWallets("BTC"); err == nil {
		t.Fatal("expected error for entry without address")
	}
	if _, err := parseWallets("BTC: "); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestParseInt64CSV(t *testing.T) {
	t.Parallel()
	ids, err := parseInt64CSV("1188902990, 42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1188902990 || ids[1] != 42 {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if _, err := parseInt64CSV("abc"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}
