package status_test

import (
	"encoding/json"
	"testing"
	"time"

	"attire-service/models"
	"attire-service/status"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var colombo = time.FixedZone("IST", 5*3600+1800)

func order(kind models.OrderType, courier time.Time, ret *time.Time) *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		Type:        kind,
		CourierDate: courier,
		ReturnDate:  ret,
		Fulfillment: models.FulfillmentActive,
		Items: []models.OrderItem{
			{ID: uuid.New(), Name: "Dress", Price: decimal.NewFromInt(15000)},
		},
		TotalPrice: decimal.NewFromInt(15000),
	}
}

func TestDispatch_SameDayEarlierClockIsToday(t *testing.T) {
	now := time.Date(2026, 5, 20, 16, 30, 0, 0, colombo)
	courier := time.Date(2026, 5, 20, 8, 0, 0, 0, colombo)

	assert.Equal(t, status.DispatchToday, status.Dispatch(order(models.OrderTypeSale, courier, nil), now))
}

func TestDispatch_DayBoundaries(t *testing.T) {
	now := time.Date(2026, 5, 20, 0, 5, 0, 0, colombo)

	tests := []struct {
		name    string
		courier time.Time
		want    status.DispatchStatus
	}{
		{"one minute before midnight yesterday", time.Date(2026, 5, 19, 23, 59, 0, 0, colombo), status.DispatchOverdue},
		{"midnight today", time.Date(2026, 5, 20, 0, 0, 0, 0, colombo), status.DispatchToday},
		{"late today", time.Date(2026, 5, 20, 23, 59, 0, 0, colombo), status.DispatchToday},
		{"tomorrow", time.Date(2026, 5, 21, 0, 0, 0, 0, colombo), status.Scheduled},
		// 19:00 UTC on the 19th is 00:30 on the 20th in Colombo
		{"utc timestamp read in local zone", time.Date(2026, 5, 19, 19, 0, 0, 0, time.UTC), status.DispatchToday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Dispatch(order(models.OrderTypeSale, tt.courier, nil), now))
		})
	}
}

func TestDispatch_DispatchedIsTerminal(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	o := order(models.OrderTypeSale, now.AddDate(0, 0, -3), nil)
	o.Fulfillment = models.FulfillmentDispatched

	assert.Equal(t, status.Dispatched, status.Dispatch(o, now))
}

func TestReturn(t *testing.T) {
	now := time.Date(2026, 5, 20, 18, 0, 0, 0, time.UTC)
	at := func(days int) *time.Time {
		t := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC).AddDate(0, 0, days)
		return &t
	}

	assert.Equal(t, status.ReturnOverdue, status.Return(order(models.OrderTypeRent, now, at(-1)), now))
	assert.Equal(t, status.ReturnToday, status.Return(order(models.OrderTypeRent, now, at(0)), now))
	assert.Equal(t, status.ReturnNone, status.Return(order(models.OrderTypeRent, now, at(2)), now))
	assert.Equal(t, status.ReturnNotApplicable, status.Return(order(models.OrderTypeSale, now, nil), now))
}

func TestPayment(t *testing.T) {
	o := order(models.OrderTypeSale, time.Now(), nil)
	assert.Equal(t, status.Unpaid, status.Payment(o))

	o.PaidAmount = decimal.NewFromInt(5000)
	assert.Equal(t, status.Partial, status.Payment(o))

	o.PaidAmount = o.TotalPrice
	assert.Equal(t, status.Paid, status.Payment(o))
}

func TestItemReturn(t *testing.T) {
	ret := time.Now()
	o := order(models.OrderTypeRent, time.Now(), &ret)
	o.Items = append(o.Items, models.OrderItem{ID: uuid.New(), Name: "Shawl"})

	assert.Equal(t, status.NotReturned, status.ItemReturn(o))
	o.Items[0].IsReturned = true
	assert.Equal(t, status.PartialReturn, status.ItemReturn(o))
	o.Items[1].IsReturned = true
	assert.Equal(t, status.Returned, status.ItemReturn(o))

	assert.Equal(t, status.ItemReturnNotApplicable, status.ItemReturn(order(models.OrderTypeSale, time.Now(), nil)))
}

func TestCalendarHelpers(t *testing.T) {
	now := time.Date(2026, 12, 31, 22, 0, 0, 0, time.UTC)

	assert.True(t, status.IsTomorrow(time.Date(2027, 1, 1, 1, 0, 0, 0, time.UTC), now))
	assert.True(t, status.IsBeforeToday(time.Date(2026, 12, 30, 23, 59, 0, 0, time.UTC), now))
	assert.False(t, status.IsBeforeToday(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), now))
	assert.True(t, status.SameDay(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), status.StartOfDay(now))
}

func TestOrderView_MarshalsStatusAlongsideOrder(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	o := order(models.OrderTypeSale, now, nil)

	raw, err := json.Marshal(status.Views([]models.Order{*o}, now)[0])
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, o.ID.String(), out["id"])
	assert.Equal(t, "15000", out["balance"])

	block, ok := out["status"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "dispatch_today", block["dispatch_status"])
	assert.Equal(t, "unpaid", block["payment_status"])
	assert.Equal(t, "not_applicable", block["return_status"])
}
