//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helios-lab/project-helios/internal/api"
	"github.com/helios-lab/project-helios/internal/model"
	"github.com/helios-lab/project-helios/internal/rdb"
	"github.com/helios-lab/project-helios/internal/server"
)

const solvedModelYAML = `
name: district heat
snapshots: [t0, t1, t2, t3]
components:
  - name: boiler
    attributes:
      type: Unit
      carrier: heat
      node_out: grid_heat
    results:
      flow: [2, 2, 3, 3]
  - name: demand
    attributes:
      type: Profile
      carrier: heat
      node: grid_heat
      direction: in
    results:
      flow: [2, 2, 3, 3]
  - name: grid_heat
    attributes:
      type: Node
      carrier: heat
      has_state: "true"
    results:
      shadowprice: [10, 10, 12, 12]
`

type harness struct {
	baseURL    string
	client     *http.Client
	entryID    string
	cancel     context.CancelFunc
	serverDone chan error
}

func (h *harness) close(t *testing.T) {
	t.Helper()
	h.cancel()
	select {
	case <-h.serverDone:
	case <-time.After(5 * time.Second):
		t.Log("server shutdown timed out")
	}
}

func startHarness(t *testing.T) *harness {
	t.Helper()

	modelPath := filepath.Join(t.TempDir(), "district_heat.yaml")
	require.NoError(t, os.WriteFile(modelPath, []byte(solvedModelYAML), 0o644))

	ctx, cancel := context.WithCancel(context.Background())

	db := rdb.New()
	solved, err := model.Load(modelPath)
	require.NoError(t, err)
	entry, err := db.AddEntry(solved)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	srv := server.New(addr, db, "release")
	api.NewService(db).RegisterRoutes(srv.Engine)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Run(ctx)
	}()

	h := &harness{
		baseURL:    "http://" + addr,
		client:     &http.Client{Timeout: 5 * time.Second},
		entryID:    entry.ID(),
		cancel:     cancel,
		serverDone: serverDone,
	}
	waitHealthy(t, h)
	return h
}

func waitHealthy(t *testing.T, h *harness) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := h.client.Get(h.baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("server never became healthy")
}

func getJSON(t *testing.T, h *harness, path string, out interface{}) int {
	t.Helper()
	resp, err := h.client.Get(h.baseURL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, h *harness, path string, payload interface{}, out interface{}) int {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := h.client.Post(h.baseURL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func TestInspection_E2ELifecycle(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	t.Run("health endpoint counts entries", func(t *testing.T) {
		var health struct {
			Status  string `json:"status"`
			Entries int    `json:"entries"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, h, "/health", &health))
		require.Equal(t, "healthy", health.Status)
		require.Equal(t, 1, health.Entries)
	})

	t.Run("entry is listed under its sanitized name", func(t *testing.T) {
		var listing struct {
			Entries []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"entries"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, h, "/v1/entries", &listing))
		require.Len(t, listing.Entries, 1)
		require.Equal(t, h.entryID, listing.Entries[0].ID)
		require.Equal(t, "district_heat", listing.Entries[0].Name)
	})

	t.Run("predicate query narrows components", func(t *testing.T) {
		var components struct {
			Components []string `json:"components"`
		}
		query := url.QueryEscape("carrier = 'heat' AND type != 'Node'")
		path := fmt.Sprintf("/v1/entries/%s/components?query=%s", h.entryID, query)
		require.Equal(t, http.StatusOK, getJSON(t, h, path, &components))
		require.Equal(t, []string{"boiler", "demand"}, components.Components)
	})

	var table struct {
		Mode      string   `json:"mode"`
		RowLabels []string `json:"row_labels"`
		Columns   []struct {
			Component string    `json:"component"`
			Values    []float64 `json:"values"`
		} `json:"columns"`
	}

	t.Run("select aggregates and materializes", func(t *testing.T) {
		payload := map[string]interface{}{
			"query":          "type = 'Unit' OR type = 'Profile'",
			"mode":           "flow",
			"buckets":        2,
			"materialize_as": "flows",
		}
		status := postJSON(t, h, "/v1/entries/"+h.entryID+"/select", payload, &table)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, []string{"t0..t1", "t2..t3"}, table.RowLabels)
		require.Len(t, table.Columns, 2)
		require.Equal(t, "boiler", table.Columns[0].Component)
		require.Equal(t, []float64{4, 6}, table.Columns[0].Values)
	})

	t.Run("materialized table is readable back", func(t *testing.T) {
		var stored struct {
			Mode string `json:"mode"`
		}
		path := "/v1/entries/" + h.entryID + "/tables/flows"
		require.Equal(t, http.StatusOK, getJSON(t, h, path, &stored))
		require.Equal(t, "flow", stored.Mode)
	})

	t.Run("diagram export is drawio xml", func(t *testing.T) {
		resp, err := h.client.Get(h.baseURL + "/v1/entries/" + h.entryID + "/diagram")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		require.Contains(t, string(body), "<mxfile")
		require.Contains(t, string(body), "hexagon")
	})

	t.Run("metrics endpoint exposes counters", func(t *testing.T) {
		resp, err := h.client.Get(h.baseURL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, string(body), "helios_rdb_selections_total")
	})
}
