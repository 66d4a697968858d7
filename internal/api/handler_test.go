package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/helios-lab/project-helios/internal/model"
	"github.com/helios-lab/project-helios/internal/rdb"
)

func testDB(t *testing.T) (*rdb.Database, *rdb.Entry) {
	t.Helper()
	db := rdb.New()
	entry, err := db.AddEntry(&model.Solved{
		Name:      "scenario one",
		Snapshots: []string{"t0", "t1", "t2"},
		Components: []model.Component{
			{
				Name:       "A",
				Attributes: map[string]string{"carrier": "heat", "direction": "out", "type": "Profile", "node": "grid_heat"},
				Results:    map[string][]float64{"flow": {1, 2, 3}},
			},
			{
				Name:       "B",
				Attributes: map[string]string{"carrier": "heat", "direction": "in", "type": "Profile", "node": "grid_heat"},
				Results:    map[string][]float64{"flow": {4, 5, 6}},
			},
			{
				Name:       "grid_heat",
				Attributes: map[string]string{"carrier": "heat", "type": "Node"},
				Results:    map[string][]float64{"shadowprice": {10, 10, 12}},
			},
		},
	})
	require.NoError(t, err)
	return db, entry
}

func testRouter(t *testing.T) (*gin.Engine, *rdb.Entry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, entry := testDB(t)
	r := gin.New()
	NewService(db).RegisterRoutes(r)
	return r, entry
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var parsed map[string]interface{}
	if strings.HasPrefix(resp.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &parsed))
	}
	return resp, parsed
}

func TestHandleListEntries(t *testing.T) {
	r, entry := testRouter(t)

	resp, body := doJSON(t, r, http.MethodGet, "/v1/entries", "")
	require.Equal(t, http.StatusOK, resp.Code)

	entries := body["entries"].([]interface{})
	require.Len(t, entries, 1)
	first := entries[0].(map[string]interface{})
	require.Equal(t, entry.ID(), first["id"])
	require.Equal(t, "scenario_one", first["name"])
	require.Equal(t, float64(3), first["snapshots"])
	require.Equal(t, float64(3), first["components"])
}

func TestHandleGetEntry_ByIDAndByName(t *testing.T) {
	r, entry := testRouter(t)

	resp, body := doJSON(t, r, http.MethodGet, "/v1/entries/"+entry.ID(), "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "scenario_one", body["name"])

	resp, body = doJSON(t, r, http.MethodGet, "/v1/entries/scenario_one", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, entry.ID(), body["id"])

	resp, body = doJSON(t, r, http.MethodGet, "/v1/entries/nope", "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "not_found", body["error_type"])
}

func TestHandleListComponents_WithQuery(t *testing.T) {
	r, entry := testRouter(t)

	resp, body := doJSON(t, r, http.MethodGet, "/v1/entries/"+entry.ID()+"/components", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, []interface{}{"A", "B", "grid_heat"}, body["components"])

	query := "?query=" + url.QueryEscape("carrier = 'heat' AND direction = 'out'")
	resp, body = doJSON(t, r, http.MethodGet, "/v1/entries/"+entry.ID()+"/components"+query, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, []interface{}{"A"}, body["components"])

	resp, body = doJSON(t, r, http.MethodGet, "/v1/entries/"+entry.ID()+"/components?query=bogus%20%3D%20'x'", "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "invalid_query", body["error_type"])
}

func TestHandleGetComponent(t *testing.T) {
	r, entry := testRouter(t)

	resp, body := doJSON(t, r, http.MethodGet, "/v1/entries/"+entry.ID()+"/components/grid_heat", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "grid_heat", body["name"])
	require.Equal(t, []interface{}{"shadowprice"}, body["modes"])
	attrs := body["attributes"].(map[string]interface{})
	require.Equal(t, "Node", attrs["type"])

	resp, body = doJSON(t, r, http.MethodGet, "/v1/entries/"+entry.ID()+"/components/missing", "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "not_found", body["error_type"])
}

func TestHandleSelect(t *testing.T) {
	r, entry := testRouter(t)
	path := "/v1/entries/" + entry.ID() + "/select"

	resp, body := doJSON(t, r, http.MethodPost, path,
		`{"components": ["A", "B"], "mode": "flow"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "flow", body["mode"])
	require.Equal(t, []interface{}{"t0", "t1", "t2"}, body["row_labels"])
	columns := body["columns"].([]interface{})
	require.Len(t, columns, 2)
	first := columns[0].(map[string]interface{})
	require.Equal(t, "A", first["component"])
	require.Equal(t, []interface{}{float64(1), float64(2), float64(3)}, first["values"])
}

func TestHandleSelect_QueryTargetSignAndBuckets(t *testing.T) {
	r, entry := testRouter(t)
	path := "/v1/entries/" + entry.ID() + "/select"

	resp, body := doJSON(t, r, http.MethodPost, path,
		`{"query": "carrier = 'heat' AND type = 'Profile'", "mode": "flow", "sign": -1.0, "buckets": 1}`)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, float64(1), body["buckets"])

	columns := body["columns"].([]interface{})
	require.Len(t, columns, 2)
	a := columns[0].(map[string]interface{})
	b := columns[1].(map[string]interface{})
	require.Equal(t, "A", a["component"])
	require.Equal(t, []interface{}{float64(-6)}, a["values"])
	require.Equal(t, "B", b["component"])
	require.Equal(t, []interface{}{float64(-15)}, b["values"])
}

func TestHandleSelect_Validation(t *testing.T) {
	r, entry := testRouter(t)
	path := "/v1/entries/" + entry.ID() + "/select"

	resp, body := doJSON(t, r, http.MethodPost, path, `{"components": ["A"]}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "invalid_json", body["error_type"])

	resp, body = doJSON(t, r, http.MethodPost, path, `{"mode": "flow"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "invalid_json", body["error_type"])

	resp, body = doJSON(t, r, http.MethodPost, path,
		`{"components": ["A"], "mode": "shadowprice"}`)
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "missing_series", body["error_type"])
	details := body["details"].(map[string]interface{})
	require.Equal(t, "A", details["component"])

	resp, body = doJSON(t, r, http.MethodPost, path,
		`{"components": ["A"], "mode": "flow", "buckets": 99}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "invalid_aggregation", body["error_type"])
}

func TestHandleSelect_MaterializeAndFetchTable(t *testing.T) {
	r, entry := testRouter(t)

	resp, _ := doJSON(t, r, http.MethodPost, "/v1/entries/"+entry.ID()+"/select",
		`{"components": ["A"], "mode": "flow", "materialize_as": "x"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	resp, body := doJSON(t, r, http.MethodGet, "/v1/entries/"+entry.ID()+"/tables", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, []interface{}{"x"}, body["tables"])

	resp, body = doJSON(t, r, http.MethodGet, "/v1/entries/"+entry.ID()+"/tables/x", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "flow", body["mode"])

	// Overwrite under the same name, then fetch the new content.
	resp, _ = doJSON(t, r, http.MethodPost, "/v1/entries/"+entry.ID()+"/select",
		`{"components": ["B"], "mode": "flow", "materialize_as": "x"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	_, body = doJSON(t, r, http.MethodGet, "/v1/entries/"+entry.ID()+"/tables/x", "")
	columns := body["columns"].([]interface{})
	require.Equal(t, "B", columns[0].(map[string]interface{})["component"])

	resp, body = doJSON(t, r, http.MethodGet, "/v1/entries/"+entry.ID()+"/tables/unknown", "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "not_found", body["error_type"])
}

func TestHandleDiagram(t *testing.T) {
	r, entry := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/entries/"+entry.ID()+"/diagram", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "application/xml", resp.Header().Get("Content-Type"))
	require.Contains(t, resp.Body.String(), "<mxfile")
	require.Contains(t, resp.Body.String(), `value="grid_heat"`)
}
