package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/evetrack/corphangar/internal/application/alerts"
	"github.com/evetrack/corphangar/internal/domain/entity"
)

var _ alerts.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier entrega alertas como POST JSON al webhook de cada regla.
type WebhookNotifier struct {
	httpClient *http.Client
}

// NewWebhookNotifier construye el notificador.
func NewWebhookNotifier(timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{httpClient: &http.Client{Timeout: timeout}}
}

type webhookPayload struct {
	Rule            string `json:"rule"`
	AlertType       string `json:"alert_type"`
	CorporationID   int64  `json:"corporation_id"`
	TransactionType string `json:"transaction_type"`
	TypeID          int64  `json:"type_id"`
	TypeName        string `json:"type_name"`
	OldQuantity     int64  `json:"old_quantity"`
	NewQuantity     int64  `json:"new_quantity"`
	QuantityChange  int64  `json:"quantity_change"`
	EstimatedValue  string `json:"estimated_value"`
	LocationID      int64  `json:"location_id"`
	DivisionID      *int64 `json:"division_id,omitempty"`
	DetectedAt      string `json:"detected_at"`
}

// Notify publica la transacción al webhook de la regla. Cualquier respuesta
// fuera de 2xx cuenta como fallo de entrega, para que el despachador reintente.
func (n *WebhookNotifier) Notify(ctx context.Context, rule *entity.AlertRule, tx *entity.HangarTransaction) error {
	if rule.WebhookURL == "" {
		return fmt.Errorf("regla %d sin webhook configurado", rule.ID)
	}

	payload := webhookPayload{
		Rule:            rule.Name,
		AlertType:       rule.AlertType,
		CorporationID:   tx.CorporationID,
		TransactionType: tx.TransactionType,
		TypeID:          tx.TypeID,
		TypeName:        tx.TypeName,
		OldQuantity:     tx.OldQuantity,
		NewQuantity:     tx.NewQuantity,
		QuantityChange:  tx.QuantityChange,
		EstimatedValue:  tx.EstimatedValue.String(),
		LocationID:      tx.LocationID,
		DivisionID:      tx.DivisionID,
		DetectedAt:      tx.DetectedAt.UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializando alerta: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rule.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("armando request de webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("entregando webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook devolvió %d", resp.StatusCode)
	}
	return nil
}
