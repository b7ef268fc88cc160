package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soko-market/soko_pay/internal/ledger"
	"github.com/soko-market/soko_pay/internal/middleware"
	"github.com/soko-market/soko_pay/internal/wallet"
)

// RegisterWalletRoutes wires the wallet and ledger endpoints. Deposits and
// sale credits are privileged; transfers enforce owner-or-admin inside the
// handler.
func RegisterWalletRoutes(r fiber.Router, wh *wallet.Handler, lh *ledger.Handler) {
	r.Get("/wallets/:userId", wh.Get)
	r.Get("/wallets/:userId/transactions", lh.History)
	r.Post("/wallets/:userId/deposits", middleware.RequireAdmin(), lh.Deposit)
	r.Post("/wallets/:userId/sales", middleware.RequireAdmin(), lh.CreditSale)
	r.Post("/wallets/:userId/transfers", lh.Transfer)
}
