package notifier

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"attire-service/models"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type messageConfig struct {
	title string
	body  *template.Template
}

var funcs = template.FuncMap{
	"money": func(v decimal.Decimal) string { return "Rs. " + v.StringFixed(2) },
	"date":  func(t time.Time) string { return t.Format(dateLayout) },
	"join":  strings.Join,
}

func mustBody(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(text))
}

var messageConfigs = map[models.NotificationType]messageConfig{
	models.TypeOrderPlaced: {
		title: "Order Confirmed",
		body: mustBody("order_placed",
			`Dear {{.Name}}, your {{.Kind}} order #{{.Ref}} ({{join .Items ", "}}) has been placed. `+
				`Total {{money .Total}}, paid {{money .Paid}}, balance {{money .Balance}}. `+
				`Courier date: {{date .CourierDate}}.`),
	},
	models.TypeOrderCancelled: {
		title: "Order Cancelled",
		body: mustBody("order_cancelled",
			`Dear {{.Name}}, your {{.Kind}} order #{{.Ref}} has been cancelled.`),
	},
	models.TypeReturnReminder: {
		title: "Return Reminder",
		body: mustBody("return_reminder",
			`Dear {{.Name}}, please return {{join .Unreturned ", "}} for order #{{.Ref}} by {{date .ReturnDate}}.`),
	},
	models.TypePaymentReminder: {
		title: "Payment Reminder",
		body: mustBody("payment_reminder",
			`Dear {{.Name}}, a balance of {{money .Balance}} for order #{{.Ref}} is due by {{date .ReturnDate}}.`),
	},
	models.TypeOverdueReminder: {
		title: "Overdue Notice",
		body: mustBody("overdue_reminder",
			`Dear {{.Name}}, order #{{.Ref}} was due back on {{date .ReturnDate}}.`+
				`{{if .Unreturned}} Items not yet returned: {{join .Unreturned ", "}}.{{end}}`+
				`{{if .Balance.IsPositive}} Outstanding balance: {{money .Balance}}.{{end}}`+
				` Please contact us as soon as possible.`),
	},
}

type messageData struct {
	Name        string
	Kind        string
	Ref         string
	Items       []string
	Unreturned  []string
	Total       decimal.Decimal
	Paid        decimal.Decimal
	Balance     decimal.Decimal
	CourierDate time.Time
	ReturnDate  time.Time
}

// Compose renders a notification for order. Title and message are fixed at
// creation time. Return and payment reminders are scheduled for the day
// before the return date; everything else is due immediately.
func Compose(kind models.NotificationType, order *models.Order, phone string, now time.Time) (models.Notification, error) {
	cfg, ok := messageConfigs[kind]
	if !ok {
		return models.Notification{}, fmt.Errorf("unsupported notification type: %s", kind)
	}

	data := messageData{
		Name:        order.CustomerName,
		Kind:        "purchase",
		Ref:         shortRef(order),
		Total:       order.TotalPrice,
		Paid:        order.PaidAmount,
		Balance:     order.Balance(),
		CourierDate: order.CourierDate,
	}
	if order.IsRental() {
		data.Kind = "rental"
	}
	if order.ReturnDate != nil {
		data.ReturnDate = *order.ReturnDate
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, item.Name)
		if order.IsRental() && !item.IsReturned {
			data.Unreturned = append(data.Unreturned, item.Name)
		}
	}

	var buf bytes.Buffer
	if err := cfg.body.Execute(&buf, data); err != nil {
		return models.Notification{}, fmt.Errorf("template render failed: %w", err)
	}

	scheduledFor := now
	if (kind == models.TypeReturnReminder || kind == models.TypePaymentReminder) && order.ReturnDate != nil {
		scheduledFor = order.ReturnDate.Add(-24 * time.Hour)
	}

	return models.Notification{
		CustomerID:    order.CustomerID,
		CustomerName:  order.CustomerName,
		CustomerPhone: phone,
		OrderID:       order.ID,
		Type:          kind,
		Title:         cfg.title,
		Message:       buf.String(),
		Status:        models.StatusPending,
		ScheduledFor:  scheduledFor,
		CreatedAt:     now,
	}, nil
}

func shortRef(order *models.Order) string {
	return strings.ToUpper(order.ID.String()[:8])
}
