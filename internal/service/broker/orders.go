package broker

import (
	"context"
	"fmt"
	"time"

	"TickPulse/internal/domain/models"
	drepo "TickPulse/internal/domain/repository"
	apphttp "TickPulse/pkg/http"
	applogger "TickPulse/pkg/logger"
)

// OrderClient places orders against the brokerage REST API. When no order URL
// is configured it runs in paper mode and fills locally.
type OrderClient struct {
	orderURL string
	apiKey   string
	client   *apphttp.Client
	log      *applogger.Logger
}

func NewOrderClient(orderURL, apiKey string, timeout time.Duration, log *applogger.Logger) drepo.OrderPlacer {
	return &OrderClient{
		orderURL: orderURL,
		apiKey:   apiKey,
		client:   apphttp.NewClient(apphttp.WithTimeout(timeout)),
		log:      log,
	}
}

func (o *OrderClient) Place(ctx context.Context, req *models.OrderRequest) (*models.OrderResult, error) {
	if req.Action != "BUY" && req.Action != "SELL" {
		return nil, fmt.Errorf("invalid order action %q", req.Action)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("invalid order quantity %d", req.Quantity)
	}

	if o.orderURL == "" {
		o.log.Info("paper order filled",
			applogger.String("action", req.Action),
			applogger.Int("quantity", req.Quantity),
			applogger.Float64("price", req.Price))
		return &models.OrderResult{
			Status:  "filled",
			OrderID: fmt.Sprintf("paper-%d", time.Now().UnixNano()),
			Mode:    "paper",
		}, nil
	}

	var result models.OrderResult
	err := o.client.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodPost,
		URL:    o.orderURL,
		Headers: map[string]string{
			"Authorization": "Bearer " + o.apiKey,
		},
		Body: req,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	o.log.Info("order placed",
		applogger.String("action", req.Action),
		applogger.String("status", result.Status),
		applogger.String("order_id", result.OrderID))
	return &result, nil
}
