package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TickPulse/internal/domain/models"
	dservice "TickPulse/internal/domain/service"
	"TickPulse/internal/service/cache"
	"TickPulse/internal/service/ratelimit"
	apphttp "TickPulse/pkg/http"
	applogger "TickPulse/pkg/logger"
)

// oracle throttle: one fresh assessment per symbol every 2s on average.
const (
	limiterCapacity = 3
	limiterRefill   = 0.5
)

// Oracle queries an external risk-veto service over HTTP. Verdicts are cached
// per symbol and direction so repeated polls within the TTL do not hammer the
// oracle, and a token bucket caps the fresh-request rate per symbol.
type Oracle struct {
	baseURL    string
	attempts   int
	verdictTTL time.Duration
	client     *apphttp.Client
	cache      cache.BytesCache
	limiter    *ratelimit.Limiter
	log        *applogger.Logger
}

func NewOracle(baseURL string, timeout time.Duration, attempts int, verdictTTL time.Duration, c cache.BytesCache, log *applogger.Logger) dservice.RiskOracle {
	if attempts < 1 {
		attempts = 1
	}
	return &Oracle{
		baseURL:    baseURL,
		attempts:   attempts,
		verdictTTL: verdictTTL,
		client:     apphttp.NewClient(apphttp.WithTimeout(timeout)),
		cache:      c,
		limiter:    ratelimit.New(),
		log:        log,
	}
}

// Assess returns the oracle verdict for a trade proposal. On oracle outage a
// vetoing verdict is returned with the error so callers fail closed.
func (o *Oracle) Assess(ctx context.Context, p *models.TradeProposal) (models.RiskVerdict, error) {
	key := cacheKey(p)

	if b, ok, err := o.cache.GetBytes(key); err == nil && ok {
		var v models.RiskVerdict
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
	}

	if !o.limiter.Allow(p.Symbol, limiterCapacity, limiterRefill) {
		o.log.Debug("oracle rate limited", applogger.String("symbol", p.Symbol))
		return models.RiskVerdict{Veto: true, Reason: "rate limited", Timestamp: time.Now()}, nil
	}

	v, err := o.fetch(ctx, p)
	if err != nil {
		return models.RiskVerdict{Veto: true, Reason: "oracle unavailable", Timestamp: time.Now()}, err
	}

	if b, err := json.Marshal(v); err == nil {
		if err := o.cache.SetBytes(key, b, o.verdictTTL); err != nil {
			o.log.Warn("verdict cache write failed", applogger.Error(err))
		}
	}
	return v, nil
}

func (o *Oracle) fetch(ctx context.Context, p *models.TradeProposal) (models.RiskVerdict, error) {
	var lastErr error
	for i := 0; i < o.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return models.RiskVerdict{}, ctx.Err()
			case <-time.After(time.Duration(i) * 200 * time.Millisecond):
			}
		}
		var v models.RiskVerdict
		err := o.client.SendAndParse(ctx, &apphttp.RequestOptions{
			Method: apphttp.MethodPost,
			URL:    o.baseURL + "/assess",
			Body:   p,
		}, &v)
		if err == nil {
			return v, nil
		}
		lastErr = err
		o.log.Warn("oracle request failed",
			applogger.String("symbol", p.Symbol),
			applogger.Int("attempt", i+1),
			applogger.Error(err))
	}
	return models.RiskVerdict{}, fmt.Errorf("risk oracle after %d attempts: %w", o.attempts, lastErr)
}

func cacheKey(p *models.TradeProposal) string {
	return fmt.Sprintf("risk:%s:%s", p.Symbol, p.Direction)
}
