package apple

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pickupwatch/pkg/config"
	"pickupwatch/pkg/logger"

	"go.uber.org/zap"
)

// pickupAvailable is the pickupDisplay value of an in-store part
const pickupAvailable = "available"

// FulfillmentClient queries the fulfillment-messages endpoint
type FulfillmentClient struct {
	httpClient *http.Client
	userAgent  string
}

// NewFulfillmentClient creates a fulfillment client
func NewFulfillmentClient(cfg *config.AppleConfig, client *http.Client) *FulfillmentClient {
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second}
	}
	return &FulfillmentClient{httpClient: client, userAgent: cfg.UserAgent}
}

// Apple API response structures
type AppleAPIResponse struct {
	Head *APIHead `json:"head"`
	Body *APIBody `json:"body"`
}

type APIHead struct {
	Status string `json:"status"`
}

type APIBody struct {
	Content *APIContent `json:"content"`
}

type APIContent struct {
	PickupMessage *APIPickupMessage `json:"pickupMessage"`
}

type APIPickupMessage struct {
	ErrorMessage *string    `json:"errorMessage"`
	Stores       []APIStore `json:"stores"`
}

type APIStore struct {
	StoreName         string                          `json:"storeName"`
	City              string                          `json:"city"`
	State             string                          `json:"state"`
	PartsAvailability map[string]*APIPartAvailability `json:"partsAvailability"`
}

type APIPartAvailability struct {
	PickupDisplay     string `json:"pickupDisplay"`
	PickupSearchQuote string `json:"pickupSearchQuote"`
}

// Store is a retail store offering pickup of a model
type Store struct {
	City  string `json:"city"`
	State string `json:"state,omitempty"`
	Name  string `json:"name"`
}

// ModelAvailability is the pickup state of one requested model
type ModelAvailability struct {
	Model   Model   `json:"model"`
	Present bool    `json:"present"`
	Stores  []Store `json:"stores"`
}

// CheckAvailability asks which stores near zip can hand over the selected models today
func (f *FulfillmentClient) CheckAvailability(ctx context.Context, cookie string, sel *Selection) ([]ModelAvailability, error) {
	log := logger.FromContext(ctx)

	fullURL, err := fulfillmentURL(sel)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	} else {
		log.Warn("❌ No cookie available for fulfillment API request!")
	}

	log.Debug("🔗 Requesting fulfillment API", zap.String("url", fullURL))

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == StatusAuthRejected {
		log.Error("❌ Apple API returned 541 - Authentication failed",
			zap.Int("cookie_length", len(cookie)))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(fullURL, resp.StatusCode, data)
	}

	if logger.DebugEnabled() {
		log.Debug("Response body", zap.ByteString("body", data))
	}

	var apiResponse AppleAPIResponse
	if err := json.Unmarshal(data, &apiResponse); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return parseResponse(sel.Models, &apiResponse)
}

// fulfillmentURL builds the query for every selected model
func fulfillmentURL(sel *Selection) (string, error) {
	base, err := url.Parse(sel.Country.FulfillmentURL)
	if err != nil {
		return "", fmt.Errorf("invalid fulfillment url: %w", err)
	}

	params := url.Values{}
	params.Set("pl", "true")
	params.Set("mts.0", "regular")
	if sel.Country.PartPrefix != "" {
		params.Set("cppart", sel.Country.PartPrefix)
	}
	params.Set("location", sel.Zip)
	for i, model := range sel.Models {
		params.Set("parts."+strconv.Itoa(i), model.Code)
	}

	base.RawQuery = params.Encode()
	return base.String(), nil
}

// parseResponse collects the stores offering each requested model
func parseResponse(models []Model, response *AppleAPIResponse) ([]ModelAvailability, error) {
	result := make([]ModelAvailability, len(models))
	for i, model := range models {
		result[i] = ModelAvailability{Model: model, Stores: []Store{}}
	}

	if response.Body == nil || response.Body.Content == nil || response.Body.Content.PickupMessage == nil {
		return result, nil
	}

	pickup := response.Body.Content.PickupMessage
	if pickup.ErrorMessage != nil {
		return nil, fmt.Errorf("%w: %s", ErrPickupMessage, *pickup.ErrorMessage)
	}

	for _, store := range pickup.Stores {
		for i, model := range models {
			part, ok := store.PartsAvailability[model.Code]
			if !ok || part == nil || part.PickupDisplay != pickupAvailable {
				continue
			}
			result[i].Present = true
			result[i].Stores = append(result[i].Stores, Store{
				City:  store.City,
				State: store.State,
				Name:  store.StoreName,
			})
		}
	}

	return result, nil
}
