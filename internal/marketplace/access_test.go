package marketplace

import (
	"testing"

	"github.com/beswib/beswib/internal/model"
)

func TestEvaluatePurchase(t *testing.T) {
	buyer := uint64(21)
	cases := []struct {
		name   string
		bib    model.Bib
		token  string
		can    bool
		reason DenialReason
	}{
		{
			name: "public available",
			bib:  model.Bib{Status: model.StatusAvailable, Listed: model.VisibilityPublic},
			can:  true,
		},
		{
			name:   "pending validation",
			bib:    model.Bib{Status: model.StatusPendingValidation, Listed: model.VisibilityPublic},
			reason: ReasonNotAvailable,
		},
		{
			name:   "withdrawn",
			bib:    model.Bib{Status: model.StatusWithdrawn, Listed: model.VisibilityPublic},
			reason: ReasonNotAvailable,
		},
		{
			name:   "sold",
			bib:    model.Bib{Status: model.StatusSold, Listed: model.VisibilityPublic, BuyerID: &buyer},
			reason: ReasonNotAvailable,
		},
		{
			name:   "private no token",
			bib:    model.Bib{Status: model.StatusAvailable, Listed: model.VisibilityPrivate, PrivateToken: "s3cret"},
			reason: ReasonTokenRequired,
		},
		{
			name:   "private wrong token",
			bib:    model.Bib{Status: model.StatusAvailable, Listed: model.VisibilityPrivate, PrivateToken: "s3cret"},
			token:  "guess",
			reason: ReasonInvalidToken,
		},
		{
			name:  "private right token",
			bib:   model.Bib{Status: model.StatusAvailable, Listed: model.VisibilityPrivate, PrivateToken: "s3cret"},
			token: "s3cret",
			can:   true,
		},
		{
			// Status wins over visibility: a stale private link to a
			// sold bib must not reveal whether the token was right.
			name:   "sold private with right token",
			bib:    model.Bib{Status: model.StatusSold, Listed: model.VisibilityPrivate, PrivateToken: "s3cret", BuyerID: &buyer},
			token:  "s3cret",
			reason: ReasonNotAvailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := EvaluatePurchase(&tc.bib, tc.token)
			if d.CanPurchase != tc.can {
				t.Fatalf("CanPurchase = %v, want %v", d.CanPurchase, tc.can)
			}
			if !tc.can && d.Reason != tc.reason {
				t.Fatalf("Reason = %s, want %s", d.Reason, tc.reason)
			}
		})
	}
}

func TestTokenRevocationByGoingPublic(t *testing.T) {
	// A seller flipping private -> public clears the token; the old
	// link's token must stop matching on the very next evaluation.
	b := model.Bib{Status: model.StatusAvailable, Listed: model.VisibilityPublic, PrivateToken: ""}
	d := EvaluatePurchase(&b, "old-token")
	if !d.CanPurchase {
		t.Fatalf("public listing refused: %+v", d)
	}

	// And a re-keyed private listing rejects the old token.
	b = model.Bib{Status: model.StatusAvailable, Listed: model.VisibilityPrivate, PrivateToken: "new-token"}
	d = EvaluatePurchase(&b, "old-token")
	if d.CanPurchase || d.Reason != ReasonInvalidToken {
		t.Fatalf("stale token accepted: %+v", d)
	}
}

func TestCanView(t *testing.T) {
	buyer := uint64(21)
	priv := model.Bib{
		SellerID: 7, Status: model.StatusAvailable,
		Listed: model.VisibilityPrivate, PrivateToken: "s3cret",
	}

	if CanView(&priv, 0, "") {
		t.Fatal("anonymous view of private listing allowed")
	}
	if CanView(&priv, 0, "guess") {
		t.Fatal("wrong token view allowed")
	}
	if !CanView(&priv, 0, "s3cret") {
		t.Fatal("right token view denied")
	}
	if !CanView(&priv, 7, "") {
		t.Fatal("seller view of own private listing denied")
	}

	soldPriv := priv
	soldPriv.Status = model.StatusSold
	soldPriv.BuyerID = &buyer
	if !CanView(&soldPriv, 21, "") {
		t.Fatal("buyer view of purchased listing denied")
	}

	pendingPub := model.Bib{SellerID: 7, Status: model.StatusPendingValidation, Listed: model.VisibilityPublic}
	if CanView(&pendingPub, 0, "") {
		t.Fatal("pending listing visible to the public")
	}
}
