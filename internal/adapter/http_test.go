package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgurin/geosync/internal/config"
	"github.com/sgurin/geosync/internal/logger"
	"github.com/sgurin/geosync/models"
)

type fakeService struct {
	mux *http.ServeMux

	tokenCalls int
	queryCalls int
	editBodies []url.Values
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	t.Helper()
	f := &fakeService{mux: http.NewServeMux()}

	f.mux.HandleFunc("/sharing/rest/generateToken", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls++
		fmt.Fprintf(w, `{"token":"tok-%d","expires":%d}`, f.tokenCalls, time.Now().Add(time.Hour).UnixMilli())
	})

	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func newTestAdapter(t *testing.T, srv *httptest.Server) *restLayerAdapter {
	t.Helper()
	secrets := &config.Secrets{
		PortalURL:       srv.URL,
		PortalUser:      "robot",
		PortalPassword:  "secret",
		FeatureLayerURL: srv.URL + "/layer",
		WebmapItemID:    "abc123",
		LayerName:       "Aggregate Payments",
	}
	a, err := NewRESTLayerAdapter(secrets, config.Adapter{RequestTimeout: 5 * time.Second}, "zip5", logger.Nop())
	require.NoError(t, err)
	return a.(*restLayerAdapter)
}

func TestQueryKeys_Paginates(t *testing.T) {
	f, srv := newFakeService(t)
	f.mux.HandleFunc("/layer/query", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.queryCalls++
		if r.FormValue("resultOffset") == "0" {
			fmt.Fprint(w, `{"features":[
				{"attributes":{"zip5":"84101","OBJECTID":1}},
				{"attributes":{"zip5":"84102","OBJECTID":2}}],
				"exceededTransferLimit":true}`)
			return
		}
		fmt.Fprint(w, `{"features":[{"attributes":{"zip5":"84103","OBJECTID":3}}]}`)
	})

	a := newTestAdapter(t, srv)
	keys, err := a.QueryKeys(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, f.queryCalls)
	assert.Equal(t, map[string]int64{"84101": 1, "84102": 2, "84103": 3}, keys)
	assert.Equal(t, 1, f.tokenCalls, "token fetched once and reused")
}

func TestQueryValues_SkipsNulls(t *testing.T) {
	f, srv := newFakeService(t)
	f.mux.HandleFunc("/layer/query", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "Amount IS NOT NULL", r.FormValue("where"))
		fmt.Fprint(w, `{"features":[
			{"attributes":{"Amount":100.5}},
			{"attributes":{"Amount":null}},
			{"attributes":{"Amount":250}}]}`)
	})

	a := newTestAdapter(t, srv)
	values, err := a.QueryValues(context.Background(), "Amount")
	require.NoError(t, err)
	assert.Equal(t, []float64{100.5, 250}, values)
}

func TestApplyEdits_MapsPerItemResults(t *testing.T) {
	f, srv := newFakeService(t)
	f.mux.HandleFunc("/layer/applyEdits", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.editBodies = append(f.editBodies, r.PostForm)
		fmt.Fprint(w, `{
			"addResults":[{"objectId":10,"success":true}],
			"updateResults":[
				{"objectId":2,"success":true},
				{"objectId":3,"success":false,"error":{"description":"value out of range"}}]}`)
	})

	a := newTestAdapter(t, srv)

	adds := []models.ExportRecord{{Key: "84101", Attributes: map[string]any{"zip5": "84101", "Amount": 100.0}}}
	updates := []models.FeatureUpdate{
		{ObjectID: 2, Record: models.ExportRecord{Key: "84102", Attributes: map[string]any{"zip5": "84102", "Amount": 200.0}}},
		{ObjectID: 3, Record: models.ExportRecord{Key: "84103", Attributes: map[string]any{"zip5": "84103", "Amount": 300.0}}},
	}

	results, err := a.ApplyEdits(context.Background(), adds, updates)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, models.EditResult{Key: "84101", ObjectID: 10, Success: true}, results[0])
	assert.Equal(t, models.EditResult{Key: "84102", ObjectID: 2, Success: true}, results[1])
	assert.False(t, results[2].Success)
	assert.Equal(t, "84103", results[2].Key)
	assert.Equal(t, "value out of range", results[2].Message)

	// the update payload must carry the object id alongside the attributes
	var updatesPayload []editFeature
	require.NoError(t, json.Unmarshal([]byte(f.editBodies[0].Get("updates")), &updatesPayload))
	require.Len(t, updatesPayload, 2)
	assert.EqualValues(t, 2, updatesPayload[0].Attributes[objectIDField])
}

func TestPost_RefreshesStaleTokenOnce(t *testing.T) {
	f, srv := newFakeService(t)
	f.mux.HandleFunc("/layer/query", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.queryCalls++
		if r.FormValue("token") == "tok-1" {
			fmt.Fprint(w, `{"error":{"code":498,"message":"Invalid token"}}`)
			return
		}
		fmt.Fprint(w, `{"features":[{"attributes":{"zip5":"84101","OBJECTID":1}}]}`)
	})

	a := newTestAdapter(t, srv)
	keys, err := a.QueryKeys(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"84101": 1}, keys)
	assert.Equal(t, 2, f.tokenCalls)
	assert.Equal(t, 2, f.queryCalls)
}

func TestPost_UnauthorizedAfterRefreshFails(t *testing.T) {
	f, srv := newFakeService(t)
	f.mux.HandleFunc("/layer/query", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":498,"message":"Invalid token"}}`)
	})

	a := newTestAdapter(t, srv)
	_, err := a.QueryKeys(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 2, f.tokenCalls, "exactly one refresh attempt")
}

func TestPost_ServiceErrorEnvelope(t *testing.T) {
	f, srv := newFakeService(t)
	f.mux.HandleFunc("/layer/query", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":400,"message":"Invalid query"}}`)
	})

	a := newTestAdapter(t, srv)
	_, err := a.QueryKeys(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrService)
	assert.Equal(t, 1, f.tokenCalls)
}

func TestUpdateRenderer_RewritesBreaksAndPushesItem(t *testing.T) {
	f, srv := newFakeService(t)

	doc := map[string]any{
		"operationalLayers": []any{
			map[string]any{
				"title": "Aggregate Payments",
				"layerDefinition": map[string]any{
					"drawingInfo": map[string]any{
						"renderer": map[string]any{
							"classBreakInfos": []any{
								map[string]any{"classMaxValue": 1.0},
								map[string]any{"classMaxValue": 2.0},
								map[string]any{"classMaxValue": 3.0},
							},
						},
					},
				},
			},
		},
	}

	var pushed map[string]any
	f.mux.HandleFunc("/sharing/rest/content/items/abc123/data", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(doc))
	})
	f.mux.HandleFunc("/sharing/rest/content/items/abc123/update", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("text")), &pushed))
		fmt.Fprint(w, `{"success":true}`)
	})

	a := newTestAdapter(t, srv)
	breaks := models.ClassBreaks{Method: models.ClassMethodQuantile, Values: []float64{100, 200, 300}}
	require.NoError(t, a.UpdateRenderer(context.Background(), breaks))

	layer := pushed["operationalLayers"].([]any)[0].(map[string]any)
	infos := layer["layerDefinition"].(map[string]any)["drawingInfo"].(map[string]any)["renderer"].(map[string]any)["classBreakInfos"].([]any)
	assert.Equal(t, 100.0, infos[0].(map[string]any)["classMaxValue"])
	assert.Equal(t, 300.0, infos[2].(map[string]any)["classMaxValue"])
}

func TestUpdateRenderer_ShapeMismatchLeavesItemAlone(t *testing.T) {
	f, srv := newFakeService(t)

	updateCalled := false
	f.mux.HandleFunc("/sharing/rest/content/items/abc123/data", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"operationalLayers":[{"title":"Aggregate Payments","layerDefinition":{"drawingInfo":{"renderer":{"classBreakInfos":[{"classMaxValue":1}]}}}}]}`)
	})
	f.mux.HandleFunc("/sharing/rest/content/items/abc123/update", func(w http.ResponseWriter, r *http.Request) {
		updateCalled = true
		fmt.Fprint(w, `{"success":true}`)
	})

	a := newTestAdapter(t, srv)
	err := a.UpdateRenderer(context.Background(), models.ClassBreaks{Values: []float64{1, 2, 3}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRendererShape)
	assert.False(t, updateCalled)
}
