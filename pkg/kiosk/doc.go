// Package kiosk implements per-owner custody and trading of uniquely owned
// assets.
//
// A Kiosk stores items and accumulated proceeds in an attachment store.
// Every privileged operation requires the OwnerCap issued by New. Items move
// between states through the operations below:
//
//	absent --Place--> placed --List--> listed --Purchase--> absent
//	absent --Lock---> locked (placed, withdrawal disabled)
//	placed --ListWithPurchaseCap--> listed exclusively --PurchaseWithCap--> absent
//	placed --Take--> absent
//	placed --BorrowVal--> on loan --ReturnVal--> placed
//
// Sales produce a policy.TransferRequest that must be confirmed by the
// policy for the asset type. Loans produce a Loan that must be returned
// with ReturnVal. Both are single-use; a linear.Ledger passed with
// WithLedger reports any that are dropped.
package kiosk
