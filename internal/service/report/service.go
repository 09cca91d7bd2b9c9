package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"glalex-shop/internal/domain"
)

// Period selects the reporting window, always anchored to a reference
// instant in the shop's timezone.
type Period string

const (
	PeriodDay   Period = "day"   // the reference calendar day
	PeriodWeek  Period = "week"  // the 7 days ending at the reference
	PeriodMonth Period = "month" // the reference calendar month
	PeriodYear  Period = "year"  // the reference calendar year
)

type orderRepository interface {
	PaidBetween(ctx context.Context, from, to time.Time, query string) ([]domain.Order, error)
}

// Service computes sales reports over paid orders. Pending and failed
// payments never count as revenue.
type Service struct {
	orders orderRepository
	now    func() time.Time
}

func New(orders orderRepository) *Service {
	return &Service{orders: orders, now: time.Now}
}

// Sales is one report window with its matched orders.
type Sales struct {
	Period  Period          `json:"period"`
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Count   int             `json:"count"`
	Items   int             `json:"items"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  []domain.Order  `json:"orders"`
}

// Sales builds the report for the period around the reference time. The
// query narrows by order number, customer name or username.
func (s *Service) Sales(ctx context.Context, role domain.Role, period Period, query string) (*Sales, error) {
	if !role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	from, to, err := bounds(period, s.now())
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.PaidBetween(ctx, from, to, query)
	if err != nil {
		return nil, err
	}

	out := &Sales{Period: period, From: from, To: to, Orders: orders, Revenue: decimal.Zero}
	for _, o := range orders {
		out.Count++
		out.Revenue = out.Revenue.Add(o.Total)
		for _, l := range o.Lines {
			out.Items += l.Quantity
		}
	}
	return out, nil
}

func bounds(period Period, ref time.Time) (time.Time, time.Time, error) {
	y, m, d := ref.Date()
	loc := ref.Location()
	switch period {
	case PeriodDay:
		from := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 0, 1), nil
	case PeriodWeek:
		to := time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, 1)
		return to.AddDate(0, 0, -7), to, nil
	case PeriodMonth:
		from := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 1, 0), nil
	case PeriodYear:
		from := time.Date(y, 1, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(1, 0, 0), nil
	}
	return time.Time{}, time.Time{}, domain.NewValidationError("period", "unknown report period")
}
