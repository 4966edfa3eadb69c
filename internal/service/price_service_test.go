package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ckartner/hoodbot/internal/domain"
)

type fakeMarketSource struct {
	quoteCalls atomic.Int64
	quoteErr   error
}

func (f *fakeMarketSource) GetQuote(_ context.Context, symbol string) (domain.Quote, error) {
	f.quoteCalls.Add(1)
	if f.quoteErr != nil {
		return domain.Quote{}, f.quoteErr
	}
	return domain.Quote{
		Symbol: symbol,
		Price:  decimal.RequireFromString("150.00"),
	}, nil
}

func (f *fakeMarketSource) GetBestBidAsk(_ context.Context, symbols ...string) ([]domain.Quote, error) {
	quotes := make([]domain.Quote, 0, len(symbols))
	for _, s := range symbols {
		quotes = append(quotes, domain.Quote{Symbol: s})
	}
	return quotes, nil
}

func (f *fakeMarketSource) GetEstimatedPrice(context.Context, string, string, string) ([]domain.EstimatedPrice, error) {
	return []domain.EstimatedPrice{{Symbol: "BTC-USD"}}, nil
}

func (f *fakeMarketSource) GetTradingPair(_ context.Context, symbol string) (domain.TradingPair, error) {
	return domain.TradingPair{Symbol: symbol}, nil
}

func TestMonitorStopsOnCancel(t *testing.T) {
	market := &fakeMarketSource{}
	svc := NewPriceService(market, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var seen atomic.Int64

	err := svc.Monitor(ctx, []string{"BTC-USD", "ETH-USD"}, time.Millisecond, func(q domain.Quote) {
		if seen.Add(1) >= 6 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("Monitor: %v", err)
	}
	if seen.Load() < 6 {
		t.Errorf("handler saw %d quotes, want at least 6", seen.Load())
	}
}

func TestMonitorRequiresSymbols(t *testing.T) {
	svc := NewPriceService(&fakeMarketSource{}, nil)
	if err := svc.Monitor(context.Background(), nil, time.Second, nil); err == nil {
		t.Fatal("expected error for empty symbol list")
	}
}

func TestGetQuotesFansOut(t *testing.T) {
	svc := NewPriceService(&fakeMarketSource{}, nil)

	quotes, err := svc.GetQuotes(context.Background(), "BTC-USD", "ETH-USD")
	if err != nil {
		t.Fatalf("GetQuotes: %v", err)
	}
	if len(quotes) != 2 {
		t.Errorf("quotes = %d, want 2", len(quotes))
	}
}
