package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"staybnb/internal/entities"
)

// ErrStaleQuote is returned to a caller whose request was superseded by a newer one.
var ErrStaleQuote = errors.New("quote superseded by a newer request")

type Calculator interface {
	Calculate(ctx context.Context, req entities.PriceRequest) (*entities.PriceBreakdown, error)
}

// QuoteInput is what the booking widget currently shows. Zero values mean unset.
type QuoteInput struct {
	PropertyID int
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
}

func (in QuoteInput) complete() bool {
	return in.PropertyID > 0 && !in.CheckIn.IsZero() && !in.CheckOut.IsZero() && in.Guests > 0
}

// Quoter keeps the displayed price in sync with the booking inputs. Only the
// most recent request may update the quote.
type Quoter struct {
	calc Calculator

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	quote  *entities.PriceBreakdown
	err    error
}

func NewQuoter(calc Calculator) *Quoter {
	return &Quoter{calc: calc}
}

// Update requests a new quote for in. An incomplete input clears the quote
// without a request.
func (q *Quoter) Update(ctx context.Context, in QuoteInput) (*entities.PriceBreakdown, error) {
	q.mu.Lock()
	q.seq++
	seq := q.seq
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	if !in.complete() {
		q.quote, q.err = nil, nil
		q.mu.Unlock()
		return nil, nil
	}
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.mu.Unlock()
	defer cancel()

	b, err := q.calc.Calculate(ctx, entities.PriceRequest{
		PropertyID: in.PropertyID,
		CheckIn:    in.CheckIn,
		CheckOut:   in.CheckOut,
		Guests:     in.Guests,
	})

	q.mu.Lock()
	defer q.mu.Unlock()
	if seq != q.seq {
		return nil, ErrStaleQuote
	}
	q.cancel = nil
	q.quote, q.err = b, err
	return b, err
}

// Current is the quote on display and the error of the last completed request.
func (q *Quoter) Current() (*entities.PriceBreakdown, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.quote, q.err
}
