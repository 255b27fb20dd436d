package esi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evetrack/corphangar/internal/application/sync"
	"github.com/evetrack/corphangar/internal/domain"
	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/pkg/config"
)

var _ sync.InventorySource = (*Client)(nil)

// Client cliente HTTP de la API de inventario (ESI). Implementa
// sync.InventorySource; los endpoints de metadata devuelven (nil, nil) ante
// 404 para que la ausencia de un ID en el directorio nunca aborte un ciclo.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient construye el cliente a partir de la configuración.
func NewClient(cfg config.ESIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type assetPayload struct {
	ItemID          int64  `json:"item_id"`
	TypeID          int64  `json:"type_id"`
	Quantity        int64  `json:"quantity"`
	LocationID      int64  `json:"location_id"`
	LocationFlag    string `json:"location_flag"`
	IsSingleton     bool   `json:"is_singleton"`
	IsBlueprintCopy bool   `json:"is_blueprint_copy"`
}

// FetchAssets trae el listado completo de assets de la corporación,
// siguiendo la paginación que informa el header X-Pages.
func (c *Client) FetchAssets(ctx context.Context, corporationID int64, token string) ([]*entity.AssetRecord, error) {
	path := fmt.Sprintf("/corporations/%d/assets/", corporationID)

	var all []*entity.AssetRecord
	page, pages := 1, 1
	for page <= pages {
		var payload []assetPayload
		hdr, err := c.getJSON(ctx, path, token, page, &payload)
		if err != nil {
			return nil, err
		}
		if n := parsePages(hdr); n > pages {
			pages = n
		}
		for _, a := range payload {
			all = append(all, &entity.AssetRecord{
				ItemID:          a.ItemID,
				TypeID:          a.TypeID,
				Quantity:        a.Quantity,
				LocationID:      a.LocationID,
				LocationFlag:    a.LocationFlag,
				IsSingleton:     a.IsSingleton,
				IsBlueprintCopy: a.IsBlueprintCopy,
			})
		}
		page++
	}
	return all, nil
}

// FetchDivisions nombres de las divisiones de hangar de la corporación.
func (c *Client) FetchDivisions(ctx context.Context, corporationID int64, token string) ([]sync.DivisionInfo, error) {
	var payload struct {
		Hangar []struct {
			Division int    `json:"division"`
			Name     string `json:"name"`
		} `json:"hangar"`
	}
	path := fmt.Sprintf("/corporations/%d/divisions/", corporationID)
	if _, err := c.getJSON(ctx, path, token, 0, &payload); err != nil {
		return nil, err
	}
	out := make([]sync.DivisionInfo, 0, len(payload.Hangar))
	for _, d := range payload.Hangar {
		out = append(out, sync.DivisionInfo{Division: d.Division, Name: d.Name})
	}
	return out, nil
}

// FetchWallets balances de wallet por división. La división 1 es el balance maestro.
func (c *Client) FetchWallets(ctx context.Context, corporationID int64, token string) ([]sync.WalletInfo, error) {
	var payload []struct {
		Division int     `json:"division"`
		Balance  float64 `json:"balance"`
	}
	path := fmt.Sprintf("/corporations/%d/wallets/", corporationID)
	if _, err := c.getJSON(ctx, path, token, 0, &payload); err != nil {
		return nil, err
	}
	out := make([]sync.WalletInfo, 0, len(payload))
	for _, w := range payload {
		out = append(out, sync.WalletInfo{
			Division: w.Division,
			Balance:  decimal.NewFromFloat(w.Balance),
		})
	}
	return out, nil
}

// FetchContainerLogs log de acceso a contenedores, paginado.
func (c *Client) FetchContainerLogs(ctx context.Context, corporationID int64, token string) ([]sync.ContainerLogEntry, error) {
	path := fmt.Sprintf("/corporations/%d/containers/logs/", corporationID)

	var all []sync.ContainerLogEntry
	page, pages := 1, 1
	for page <= pages {
		var payload []struct {
			CharacterID     int64     `json:"character_id"`
			ContainerID     int64     `json:"container_id"`
			ContainerTypeID int64     `json:"container_type_id"`
			Action          string    `json:"action"`
			TypeID          int64     `json:"type_id"`
			Quantity        *int64    `json:"quantity"`
			LocationID      int64     `json:"location_id"`
			LocationFlag    string    `json:"location_flag"`
			LoggedAt        time.Time `json:"logged_at"`
		}
		hdr, err := c.getJSON(ctx, path, token, page, &payload)
		if err != nil {
			return nil, err
		}
		if n := parsePages(hdr); n > pages {
			pages = n
		}
		for _, e := range payload {
			all = append(all, sync.ContainerLogEntry{
				CharacterID:     e.CharacterID,
				ContainerID:     e.ContainerID,
				ContainerTypeID: e.ContainerTypeID,
				Action:          e.Action,
				TypeID:          e.TypeID,
				Quantity:        e.Quantity,
				LocationID:      e.LocationID,
				LocationFlag:    e.LocationFlag,
				LoggedAt:        e.LoggedAt,
			})
		}
		page++
	}
	return all, nil
}

// FetchStation metadata de una estación NPC (endpoint público).
func (c *Client) FetchStation(ctx context.Context, stationID int64) (*sync.LocationInfo, error) {
	var payload struct {
		Name     string `json:"name"`
		SystemID int64  `json:"system_id"`
	}
	path := fmt.Sprintf("/universe/stations/%d/", stationID)
	found, err := c.getJSONOptional(ctx, path, "", &payload)
	if err != nil || !found {
		return nil, err
	}
	return &sync.LocationInfo{Name: payload.Name, SolarSystemID: payload.SystemID}, nil
}

// FetchStructure metadata de una estructura (requiere token; el acceso puede
// estar denegado, en cuyo caso la estructura queda como desconocida).
func (c *Client) FetchStructure(ctx context.Context, structureID int64, token string) (*sync.LocationInfo, error) {
	var payload struct {
		Name          string `json:"name"`
		SolarSystemID int64  `json:"solar_system_id"`
	}
	path := fmt.Sprintf("/universe/structures/%d/", structureID)
	found, err := c.getJSONOptional(ctx, path, token, &payload)
	if err != nil || !found {
		return nil, err
	}
	return &sync.LocationInfo{Name: payload.Name, SolarSystemID: payload.SolarSystemID}, nil
}

// FetchTypeName nombre de un type_id; "" si el directorio no lo conoce.
func (c *Client) FetchTypeName(ctx context.Context, typeID int64) (string, error) {
	var payload struct {
		Name string `json:"name"`
	}
	path := fmt.Sprintf("/universe/types/%d/", typeID)
	found, err := c.getJSONOptional(ctx, path, "", &payload)
	if err != nil || !found {
		return "", err
	}
	return payload.Name, nil
}

// FetchSolarSystem metadata de un sistema solar.
func (c *Client) FetchSolarSystem(ctx context.Context, systemID int64) (*sync.SolarSystemInfo, error) {
	var payload struct {
		Name            string `json:"name"`
		ConstellationID int64  `json:"constellation_id"`
	}
	path := fmt.Sprintf("/universe/systems/%d/", systemID)
	found, err := c.getJSONOptional(ctx, path, "", &payload)
	if err != nil || !found {
		return nil, err
	}
	return &sync.SolarSystemInfo{Name: payload.Name, ConstellationID: payload.ConstellationID}, nil
}

// FetchConstellationRegion region_id de una constelación; 0 si no se conoce.
func (c *Client) FetchConstellationRegion(ctx context.Context, constellationID int64) (int64, error) {
	var payload struct {
		RegionID int64 `json:"region_id"`
	}
	path := fmt.Sprintf("/universe/constellations/%d/", constellationID)
	found, err := c.getJSONOptional(ctx, path, "", &payload)
	if err != nil || !found {
		return 0, err
	}
	return payload.RegionID, nil
}

// FetchRegionName nombre de una región; "" si no se conoce.
func (c *Client) FetchRegionName(ctx context.Context, regionID int64) (string, error) {
	var payload struct {
		Name string `json:"name"`
	}
	path := fmt.Sprintf("/universe/regions/%d/", regionID)
	found, err := c.getJSONOptional(ctx, path, "", &payload)
	if err != nil || !found {
		return "", err
	}
	return payload.Name, nil
}

// FetchPrices tabla global de precios de mercado. Se prefiere average_price y
// se cae a adjusted_price cuando el primero no viene.
func (c *Client) FetchPrices(ctx context.Context) (map[int64]decimal.Decimal, error) {
	var payload []struct {
		TypeID        int64    `json:"type_id"`
		AveragePrice  *float64 `json:"average_price"`
		AdjustedPrice *float64 `json:"adjusted_price"`
	}
	if _, err := c.getJSON(ctx, "/markets/prices/", "", 0, &payload); err != nil {
		return nil, err
	}
	prices := make(map[int64]decimal.Decimal, len(payload))
	for _, p := range payload {
		switch {
		case p.AveragePrice != nil:
			prices[p.TypeID] = decimal.NewFromFloat(*p.AveragePrice)
		case p.AdjustedPrice != nil:
			prices[p.TypeID] = decimal.NewFromFloat(*p.AdjustedPrice)
		}
	}
	return prices, nil
}

// getJSON ejecuta un GET y decodifica el body JSON en out. page > 0 agrega el
// query param de paginación. Devuelve los headers de la respuesta.
func (c *Client) getJSON(ctx context.Context, path, token string, page int, out any) (http.Header, error) {
	resp, err := c.do(ctx, path, token, page)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s devolvió %d", domain.ErrSourceUnreachable, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("%w: decodificando GET %s: %v", domain.ErrSourceUnreachable, path, err)
	}
	return resp.Header, nil
}

// getJSONOptional como getJSON pero tolera 404/403: devuelve (false, nil) para
// que la metadata ausente se resuelva con placeholders y no aborte el ciclo.
func (c *Client) getJSONOptional(ctx context.Context, path, token string, out any) (bool, error) {
	resp, err := c.do(ctx, path, token, 0)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("%w: GET %s devolvió %d", domain.ErrSourceUnreachable, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%w: decodificando GET %s: %v", domain.ErrSourceUnreachable, path, err)
	}
	return true, nil
}

func (c *Client) do(ctx context.Context, path, token string, page int) (*http.Response, error) {
	url := c.baseURL + path
	if page > 0 {
		url = fmt.Sprintf("%s?page=%d", url, page)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("armando request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", domain.ErrSourceUnreachable, path, err)
	}
	return resp, nil
}

func parsePages(hdr http.Header) int {
	n, err := strconv.Atoi(hdr.Get("X-Pages"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
