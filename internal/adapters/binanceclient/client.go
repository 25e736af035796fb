package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"liveRiskSizer/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"
)

// Client implements the ports.PriceSource interface using the go-binance
// futures client. Only public market-data endpoints are used, so API keys
// are optional.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
}

// Config holds configuration specific to the Binance price source adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
}

// New creates a new Binance price source adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	// Set BaseURL directly instead of using the global futures.UseTestnet.
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
		cfg.Logger.Info(context.Background(), "Binance client configured for Testnet", map[string]interface{}{"baseURL": client.BaseURL})
	} else {
		client.BaseURL = baseURLProduction
		cfg.Logger.Info(context.Background(), "Binance client configured for Production", map[string]interface{}{"baseURL": client.BaseURL})
	}

	return &Client{
		futuresClient: client,
		logger:        cfg.Logger,
	}, nil
}

// normalizeSymbol converts a pair like "BTC/USDT" to the exchange form "BTCUSDT".
func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(symbol), "/", ""))
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var finalErr error
	var apiErr *common.APIError
	switch {
	case errors.As(err, &apiErr):
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp outside of recvWindow
			mappedErr = ports.ErrTimeout
		case -1022: // Invalid signature
			mappedErr = ports.ErrAuthenticationFailed
		case -1100, -1101, -1102, -1104, -1121: // Parameter / unknown symbol errors
			mappedErr = ports.ErrInvalidRequest
		default:
			if apiErr.Code <= -1000 && apiErr.Code >= -1099 {
				mappedErr = ports.ErrExchangeUnavailable
			} else {
				mappedErr = ports.ErrUnknown
			}
		}
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrContextCanceled, err)
	case strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"),
		strings.Contains(err.Error(), "no such host"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// CurrentPrice retrieves the latest price for a symbol. It prefers the last
// traded price and falls back to the bid/ask mid from the book ticker when
// the last price is missing or unparseable. Both paths failing is reported
// as ErrPriceUnavailable so the caller can skip the cycle.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	op := "CurrentPrice"
	exchangeSymbol := normalizeSymbol(symbol)

	price, lastErr := c.lastPrice(ctx, exchangeSymbol)
	if lastErr == nil && price > 0 {
		return price, nil
	}
	if lastErr != nil {
		c.logger.Warn(ctx, op+": last price fetch failed, falling back to book ticker mid", map[string]interface{}{
			"symbol": exchangeSymbol,
			"error":  lastErr.Error(),
		})
	}

	mid, midErr := c.bookTickerMid(ctx, exchangeSymbol)
	if midErr == nil && mid > 0 {
		return mid, nil
	}

	err := fmt.Errorf("%w: no usable price for symbol %s", ports.ErrPriceUnavailable, exchangeSymbol)
	c.logger.Error(ctx, err, op+" failed", map[string]interface{}{"symbol": exchangeSymbol})
	return 0, err
}

// lastPrice fetches the 24h ticker statistics and returns the last traded price.
func (c *Client) lastPrice(ctx context.Context, symbol string) (float64, error) {
	op := "lastPrice"
	tickers, err := c.futuresClient.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	if len(tickers) == 0 {
		return 0, c.handleError(ctx, fmt.Errorf("no ticker data returned for symbol %s", symbol), op)
	}

	price, err := strconv.ParseFloat(tickers[0].LastPrice, 64)
	if err != nil {
		parseErr := fmt.Errorf("could not parse price '%s': %w", tickers[0].LastPrice, err)
		return 0, c.handleError(ctx, parseErr, op)
	}
	return price, nil
}

// bookTickerMid fetches the best bid/ask and returns their midpoint.
func (c *Client) bookTickerMid(ctx context.Context, symbol string) (float64, error) {
	op := "bookTickerMid"
	books, err := c.futuresClient.NewListBookTickersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	if len(books) == 0 {
		return 0, c.handleError(ctx, fmt.Errorf("no book ticker returned for symbol %s", symbol), op)
	}

	bid, err := strconv.ParseFloat(books[0].BidPrice, 64)
	if err != nil {
		return 0, c.handleError(ctx, fmt.Errorf("could not parse bid '%s': %w", books[0].BidPrice, err), op)
	}
	ask, err := strconv.ParseFloat(books[0].AskPrice, 64)
	if err != nil {
		return 0, c.handleError(ctx, fmt.Errorf("could not parse ask '%s': %w", books[0].AskPrice, err), op)
	}
	if bid <= 0 || ask <= 0 {
		return 0, c.handleError(ctx, fmt.Errorf("degenerate book for symbol %s (bid=%f ask=%f)", symbol, bid, ask), op)
	}
	return (bid + ask) / 2.0, nil
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	if err := c.futuresClient.NewPingService().Do(ctx); err != nil {
		return c.handleError(ctx, fmt.Errorf("ping failed: %w", err), op)
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}
