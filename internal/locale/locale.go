// Package locale holds the fixed user-facing string tables. Pure lookup,
// no state.
package locale

import "strings"

// Strings is the set of user-facing messages for one language.
type Strings struct {
	EmbedTitle   string
	Cat          string
	Detail       string
	PayDesc      string
	BtnIndo      string
	BtnGlobal    string
	BtnClose     string
	BtnClaim     string
	QrisMsg      string
	GlobalMsg    string
	CloseReason  string
	StaffPoint   string
	Deleting     string
	SupportWait  string
	GiveawayWait string
	ClaimedBy    string
	OnlyStaff    string
	AlreadyDone  string
	NoPermission string
	Preparing    string
	Created      string
	CloseFailed  string
}

var tables = map[string]Strings{
	"id": {
		EmbedTitle:   "Detail Transaksi",
		Cat:          "Kategori",
		Detail:       "Detail Pesanan",
		PayDesc:      "Silahkan pilih metode pembayaran di bawah:",
		BtnIndo:      "Indonesia (QRIS)",
		BtnGlobal:    "Global (PayPal/Crypto)",
		BtnClose:     "Tutup Ticket",
		BtnClaim:     "Claim Ticket",
		QrisMsg:      "Silahkan scan QRIS dan kirim bukti transfer.",
		GlobalMsg:    "Hubungi staff untuk instruksi PayPal/Crypto.",
		CloseReason:  "Alasan Penutupan",
		StaffPoint:   "Total Point Staff",
		Deleting:     "Channel akan dihapus dalam 5 detik...",
		SupportWait:  "Silahkan tunggu staff merespon bantuan Anda.",
		GiveawayWait: "Silahkan kirimkan bukti kemenangan giveaway Anda.",
		ClaimedBy:    "Ticket telah di-claim oleh",
		OnlyStaff:    "❌ Hanya staff yang bisa meng-claim ticket ini!",
		AlreadyDone:  "❌ Ticket ini sudah di-claim oleh staff lain.",
		NoPermission: "❌ No Permission",
		Preparing:    "⏳ Menyiapkan transkrip dan menutup channel...",
		Created:      "✅ Ticket Created:",
		CloseFailed:  "❌ Terjadi kesalahan saat memproses penutupan ticket.",
	},
	"en": {
		EmbedTitle:   "Transaction Detail",
		Cat:          "Category",
		Detail:       "Order Detail",
		PayDesc:      "Please select a payment method below:",
		BtnIndo:      "Indonesia (QRIS)",
		BtnGlobal:    "Global (PayPal/Crypto)",
		BtnClose:     "Close Ticket",
		BtnClaim:     "Claim Ticket",
		QrisMsg:      "Please scan the QRIS and send proof of transfer.",
		GlobalMsg:    "Contact staff for PayPal/Crypto instructions.",
		CloseReason:  "Closing Reason",
		StaffPoint:   "Staff Total Points",
		Deleting:     "Channel will be deleted in 5 seconds...",
		SupportWait:  "Please wait for a staff member to respond.",
		GiveawayWait: "Please send your giveaway win proof.",
		ClaimedBy:    "Ticket has been claimed by",
		OnlyStaff:    "❌ Only staff can claim this ticket!",
		AlreadyDone:  "❌ This ticket is already claimed by another staff member.",
		NoPermission: "❌ No Permission",
		Preparing:    "⏳ Preparing transcript and closing the channel...",
		Created:      "✅ Ticket Created:",
		CloseFailed:  "❌ Something went wrong while closing the ticket.",
	},
}

// DefaultLang is used for any unrecognized language input.
const DefaultLang = "id"

// ResolveLang accepts exactly "en" case-insensitively; everything else,
// including empty and malformed input, falls back to "id".
func ResolveLang(input string) string {
	if strings.EqualFold(strings.TrimSpace(input), "en") {
		return "en"
	}
	return DefaultLang
}

// Table returns the string table for a language code, falling back to the
// default language for unknown codes.
func Table(lang string) Strings {
	if t, ok := tables[lang]; ok {
		return t
	}
	return tables[DefaultLang]
}
