// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sergei Gurin

// Package adapter implements the REST client for the hosted feature-layer
// service. All requests carry a portal session token obtained from the
// token endpoint and refreshed when the service reports it stale.
package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sgurin/geosync/internal/config"
	"github.com/sgurin/geosync/internal/logger"
	"github.com/sgurin/geosync/models"
)

const (
	objectIDField = "OBJECTID"
	queryPageSize = 1000

	// tokens are requested for an hour and refreshed a minute early
	tokenLifetime = time.Hour
	tokenSlack    = time.Minute
)

type restLayerAdapter struct {
	client *resty.Client

	portalURL    string
	portalUser   string
	portalPass   string
	layerURL     string
	webmapItemID string
	layerName    string
	keyColumn    string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time

	logger *logger.Logger
}

// NewRESTLayerAdapter constructs a LayerAdapter over the feature service
// named in the secrets bundle. keyColumn is the layer attribute shared with
// the export's unique-key column.
func NewRESTLayerAdapter(secrets *config.Secrets, adapterCfg config.Adapter, keyColumn string, log *logger.Logger) (LayerAdapter, error) {
	if secrets.FeatureLayerURL == "" || secrets.PortalURL == "" {
		return nil, fmt.Errorf("%w: feature layer and portal URLs are required", ErrService)
	}

	client := resty.New().
		SetTimeout(adapterCfg.RequestTimeout)

	return &restLayerAdapter{
		client:       client,
		portalURL:    strings.TrimRight(secrets.PortalURL, "/"),
		portalUser:   secrets.PortalUser,
		portalPass:   secrets.PortalPassword,
		layerURL:     strings.TrimRight(secrets.FeatureLayerURL, "/"),
		webmapItemID: secrets.WebmapItemID,
		layerName:    secrets.LayerName,
		keyColumn:    keyColumn,
		logger:       log,
	}, nil
}

// QueryKeys implements [LayerAdapter]. It pages through the layer with
// resultOffset until the service stops reporting exceededTransferLimit.
func (a *restLayerAdapter) QueryKeys(ctx context.Context) (map[string]int64, error) {
	keys := make(map[string]int64)
	offset := 0

	for {
		page, more, err := a.queryPage(ctx, map[string]string{
			"where":             "1=1",
			"outFields":         a.keyColumn + "," + objectIDField,
			"returnGeometry":    "false",
			"resultOffset":      strconv.Itoa(offset),
			"resultRecordCount": strconv.Itoa(queryPageSize),
			"f":                 "json",
		})
		if err != nil {
			return nil, fmt.Errorf("query existing keys: %w", err)
		}

		for _, feature := range page {
			key := attributeString(feature.Attributes, a.keyColumn)
			objectID, ok := attributeInt(feature.Attributes, objectIDField)
			if key == "" || !ok {
				continue
			}
			keys[key] = objectID
		}

		if !more {
			return keys, nil
		}
		offset += len(page)
	}
}

// QueryValues implements [LayerAdapter].
func (a *restLayerAdapter) QueryValues(ctx context.Context, field string) ([]float64, error) {
	var values []float64
	offset := 0

	for {
		page, more, err := a.queryPage(ctx, map[string]string{
			"where":             field + " IS NOT NULL",
			"outFields":         field,
			"returnGeometry":    "false",
			"resultOffset":      strconv.Itoa(offset),
			"resultRecordCount": strconv.Itoa(queryPageSize),
			"f":                 "json",
		})
		if err != nil {
			return nil, fmt.Errorf("query %s values: %w", field, err)
		}

		for _, feature := range page {
			if v, ok := attributeFloat(feature.Attributes, field); ok {
				values = append(values, v)
			}
		}

		if !more {
			return values, nil
		}
		offset += len(page)
	}
}

// ApplyEdits implements [LayerAdapter]. Adds and updates travel in one call;
// the service reports success or failure per item.
func (a *restLayerAdapter) ApplyEdits(ctx context.Context, adds []models.ExportRecord, updates []models.FeatureUpdate) ([]models.EditResult, error) {
	addsPayload := make([]editFeature, 0, len(adds))
	for _, record := range adds {
		addsPayload = append(addsPayload, editFeature{Attributes: record.Attributes})
	}

	updatesPayload := make([]editFeature, 0, len(updates))
	for _, update := range updates {
		attributes := make(map[string]any, len(update.Record.Attributes)+1)
		for k, v := range update.Record.Attributes {
			attributes[k] = v
		}
		attributes[objectIDField] = update.ObjectID
		updatesPayload = append(updatesPayload, editFeature{Attributes: attributes})
	}

	form := map[string]string{"f": "json"}
	if len(addsPayload) > 0 {
		encoded, err := json.Marshal(addsPayload)
		if err != nil {
			return nil, fmt.Errorf("encode adds: %w", err)
		}
		form["adds"] = string(encoded)
	}
	if len(updatesPayload) > 0 {
		encoded, err := json.Marshal(updatesPayload)
		if err != nil {
			return nil, fmt.Errorf("encode updates: %w", err)
		}
		form["updates"] = string(encoded)
	}

	var reply applyEditsResponse
	if err := a.post(ctx, a.layerURL+"/applyEdits", form, &reply); err != nil {
		return nil, fmt.Errorf("apply edits: %w", err)
	}

	results := make([]models.EditResult, 0, len(adds)+len(updates))
	for i, r := range reply.AddResults {
		key := ""
		if i < len(adds) {
			key = adds[i].Key
		}
		results = append(results, r.toModel(key))
	}
	for i, r := range reply.UpdateResults {
		key := ""
		if i < len(updates) {
			key = updates[i].Record.Key
		}
		results = append(results, r.toModel(key))
	}

	return results, nil
}

// DeleteFeatures implements [LayerAdapter].
func (a *restLayerAdapter) DeleteFeatures(ctx context.Context, objectIDs []int64) ([]models.EditResult, error) {
	if len(objectIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(objectIDs))
	for _, id := range objectIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	var reply applyEditsResponse
	form := map[string]string{"deletes": strings.Join(ids, ","), "f": "json"}
	if err := a.post(ctx, a.layerURL+"/applyEdits", form, &reply); err != nil {
		return nil, fmt.Errorf("delete features: %w", err)
	}

	results := make([]models.EditResult, 0, len(reply.DeleteResults))
	for _, r := range reply.DeleteResults {
		results = append(results, r.toModel(""))
	}
	return results, nil
}

// UpdateRenderer implements [LayerAdapter]. It reads the webmap item JSON,
// rewrites the named layer's class break values and pushes the document back
// in a single item update.
func (a *restLayerAdapter) UpdateRenderer(ctx context.Context, breaks models.ClassBreaks) error {
	itemURL := a.portalURL + "/sharing/rest/content/items/" + a.webmapItemID

	var doc map[string]any
	if err := a.post(ctx, itemURL+"/data", map[string]string{"f": "json"}, &doc); err != nil {
		return fmt.Errorf("fetch webmap document: %w", err)
	}

	if err := rewriteClassBreaks(doc, a.layerName, breaks.Values); err != nil {
		return err
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode webmap document: %w", err)
	}

	var reply struct {
		Success bool `json:"success"`
	}
	form := map[string]string{"text": string(encoded), "f": "json"}
	if err = a.post(ctx, itemURL+"/update", form, &reply); err != nil {
		return fmt.Errorf("update webmap item: %w", err)
	}
	if !reply.Success {
		return fmt.Errorf("%w: webmap item update reported failure", ErrService)
	}

	a.logger.Info().Floats64("breaks", breaks.Values).Msg("webmap renderer updated")
	return nil
}

// ── wire types ───────────────────────────────────────────────────────────────

type editFeature struct {
	Attributes map[string]any `json:"attributes"`
}

type queryResponse struct {
	Features              []editFeature `json:"features"`
	ExceededTransferLimit bool          `json:"exceededTransferLimit"`
	Error                 *serviceError `json:"error"`
}

type applyEditsResponse struct {
	AddResults    []editResult  `json:"addResults"`
	UpdateResults []editResult  `json:"updateResults"`
	DeleteResults []editResult  `json:"deleteResults"`
	Error         *serviceError `json:"error"`
}

type editResult struct {
	ObjectID int64 `json:"objectId"`
	Success  bool  `json:"success"`
	Error    *struct {
		Description string `json:"description"`
	} `json:"error"`
}

func (r editResult) toModel(key string) models.EditResult {
	result := models.EditResult{Key: key, ObjectID: r.ObjectID, Success: r.Success}
	if r.Error != nil {
		result.Message = r.Error.Description
	}
	return result
}

// serviceError is the error envelope the service returns inside an HTTP 200.
type serviceError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *serviceError) toError() error {
	if e == nil {
		return nil
	}
	if e.Code == http.StatusUnauthorized || e.Code == 498 { // 498: invalid token
		return fmt.Errorf("%w: %s", ErrUnauthorized, e.Message)
	}
	return fmt.Errorf("%w: code %d: %s", ErrService, e.Code, e.Message)
}

// ── transport plumbing ───────────────────────────────────────────────────────

func (a *restLayerAdapter) queryPage(ctx context.Context, form map[string]string) ([]editFeature, bool, error) {
	var reply queryResponse
	if err := a.post(ctx, a.layerURL+"/query", form, &reply); err != nil {
		return nil, false, err
	}
	return reply.Features, reply.ExceededTransferLimit, nil
}

// post sends one token-authenticated form request and decodes the JSON body
// into out. A stale-token envelope triggers exactly one token refresh and
// retry; every other service error is surfaced as is.
func (a *restLayerAdapter) post(ctx context.Context, url string, form map[string]string, out any) error {
	err := a.postOnce(ctx, url, form, out)
	if err == nil || !errors.Is(err, ErrUnauthorized) {
		return err
	}

	a.invalidateToken()
	return a.postOnce(ctx, url, form, out)
}

func (a *restLayerAdapter) postOnce(ctx context.Context, url string, form map[string]string, out any) error {
	token, err := a.ensureToken(ctx)
	if err != nil {
		return err
	}

	payload := make(map[string]string, len(form)+1)
	for k, v := range form {
		payload[k] = v
	}
	payload["token"] = token

	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(payload).
		Post(url)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrService, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	// the service reports most failures inside an HTTP 200 envelope
	var envelope struct {
		Error *serviceError `json:"error"`
	}
	if err = json.Unmarshal(resp.Body(), &envelope); err == nil {
		if err = envelope.Error.toError(); err != nil {
			return err
		}
	}

	if err = json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: decode response: %s", ErrService, err)
	}
	return nil
}

func (a *restLayerAdapter) ensureToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.tokenExpiry.Add(-tokenSlack)) {
		return a.token, nil
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username":   a.portalUser,
			"password":   a.portalPass,
			"client":     "referer",
			"referer":    a.portalURL,
			"expiration": strconv.Itoa(int(tokenLifetime / time.Minute)),
			"f":          "json",
		}).
		Post(a.portalURL + "/sharing/rest/generateToken")
	if err != nil {
		return "", fmt.Errorf("%w: generate token: %s", ErrService, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	var reply struct {
		Token   string        `json:"token"`
		Expires int64         `json:"expires"` // unix milliseconds
		Error   *serviceError `json:"error"`
	}
	if err = json.Unmarshal(resp.Body(), &reply); err != nil {
		return "", fmt.Errorf("%w: decode token response: %s", ErrService, err)
	}
	if reply.Error != nil {
		return "", fmt.Errorf("%w: generate token: %s", ErrUnauthorized, reply.Error.Message)
	}
	if reply.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrUnauthorized)
	}

	a.token = reply.Token
	a.tokenExpiry = time.UnixMilli(reply.Expires)
	if reply.Expires == 0 {
		a.tokenExpiry = time.Now().Add(tokenLifetime)
	}

	return a.token, nil
}

func (a *restLayerAdapter) invalidateToken() {
	a.mu.Lock()
	a.token = ""
	a.mu.Unlock()
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("%w: http %d: %s", ErrService, resp.StatusCode(), body)
}

// ── attribute coercion ───────────────────────────────────────────────────────

func attributeString(attributes map[string]any, name string) string {
	switch v := attributes[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func attributeInt(attributes map[string]any, name string) (int64, bool) {
	v, ok := attributes[name].(float64)
	if !ok {
		return 0, false
	}
	return int64(v), true
}

func attributeFloat(attributes map[string]any, name string) (float64, bool) {
	v, ok := attributes[name].(float64)
	return v, ok
}
