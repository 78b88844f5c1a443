package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/marketplace"
	"github.com/beswib/beswib/internal/model"
	"github.com/beswib/beswib/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64. JWT numeric claims arrive as float64; tokens minted by other
// tooling sometimes carry the id as a string.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// domainError translates marketplace and repository errors into HTTP
// responses. Private-listing token failures map to 404 on purpose:
// a wrong or missing token must be indistinguishable from a listing
// that does not exist.
func domainError(c echo.Context, err error) error {
	var ve *marketplace.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
	}
	var pe *marketplace.ProfileIncompleteError
	if errors.As(err, &pe) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":   "profile incomplete",
			"missing": pe.Missing,
		})
	}
	var pay *marketplace.PaymentError
	if errors.As(err, &pay) {
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": pay.Error(), "stage": pay.Stage})
	}

	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, marketplace.ErrTokenRequired),
		errors.Is(err, marketplace.ErrInvalidToken):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, marketplace.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, marketplace.ErrAlreadySold):
		return c.JSON(http.StatusConflict, echo.Map{"error": "listing already sold"})
	case errors.Is(err, marketplace.ErrNotAvailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "listing not available"})
	case errors.Is(err, marketplace.ErrImmutable),
		errors.Is(err, marketplace.ErrAlreadyTerminal),
		errors.Is(err, marketplace.ErrNotPending),
		errors.Is(err, marketplace.ErrValidationPending),
		errors.Is(err, marketplace.ErrOwnListing),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, marketplace.ErrReconciliationRequired):
		// The honest answer: money was captured but the bib was not
		// handed over. Operators are already alerted; the buyer must
		// not retry payment.
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "payment captured but bib transfer failed; support has been notified, do not pay again",
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// ----- shared listing views -----

// bibView is the public projection of a listing. The private token
// and the buyer are never exposed here.
type bibView struct {
	ID                 uint64            `json:"id"`
	EventID            uint64            `json:"event_id"`
	RegistrationNumber string            `json:"registration_number"`
	PriceCents         int64             `json:"price_cents"`
	OriginalPriceCents *int64            `json:"original_price_cents,omitempty"`
	Status             string            `json:"status"`
	Listed             string            `json:"listed,omitempty"`
	OptionValues       map[string]string `json:"option_values,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// ownerBibView adds the seller-only fields on top of bibView.
type ownerBibView struct {
	bibView
	SellerID     uint64  `json:"seller_id"`
	PrivateToken string  `json:"private_token,omitempty"`
	BuyerID      *uint64 `json:"buyer_id,omitempty"`
}

func toBibView(b *model.Bib) bibView {
	return bibView{
		ID:                 b.ID,
		EventID:            b.EventID,
		RegistrationNumber: b.RegistrationNumber,
		PriceCents:         b.PriceCents,
		OriginalPriceCents: b.OriginalPriceCents,
		Status:             string(b.Status),
		Listed:             string(b.Listed),
		OptionValues:       b.OptionValues,
		CreatedAt:          b.CreatedAt,
	}
}

// eventView is the public projection of an event.
type eventView struct {
	ID                uint64     `json:"id"`
	OrganizerID       *uint64    `json:"organizer_id,omitempty"`
	Name              string     `json:"name"`
	Location          string     `json:"location"`
	EventDate         time.Time  `json:"event_date"`
	DistanceKm        float64    `json:"distance_km"`
	Type              string     `json:"type,omitempty"`
	PickupWindowBegin *time.Time `json:"pickup_window_begin,omitempty"`
	PickupWindowEnd   *time.Time `json:"pickup_window_end,omitempty"`
	TransferDeadline  *time.Time `json:"transfer_deadline,omitempty"`
	IsPublic          bool       `json:"is_public"`
}

func toEventView(e *model.Event) eventView {
	return eventView{
		ID:                e.ID,
		OrganizerID:       e.OrganizerID,
		Name:              e.Name,
		Location:          e.Location,
		EventDate:         e.EventDate,
		DistanceKm:        e.DistanceKm,
		Type:              e.Type,
		PickupWindowBegin: e.PickupWindowBegin,
		PickupWindowEnd:   e.PickupWindowEnd,
		TransferDeadline:  e.TransferDeadline,
		IsPublic:          e.IsPublic,
	}
}

func toOwnerBibView(b *model.Bib) ownerBibView {
	return ownerBibView{
		bibView:      toBibView(b),
		SellerID:     b.SellerID,
		PrivateToken: b.PrivateToken,
		BuyerID:      b.BuyerID,
	}
}
