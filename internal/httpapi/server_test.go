package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kitbox/internal/sqlstore"
	"github.com/mesh-intelligence/kitbox/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t     *testing.T
	h     http.Handler
	boxA  int64
	boxB  int64
	led   int64 // max 5
	servo int64 // max 1
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	b := sqlstore.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })

	s := NewServer(b, Options{Version: "test", Logger: zerolog.Nop()})
	ts := &testServer{t: t, h: s.Handler()}

	ts.boxA = ts.createID("/api/boxes", `{"name":"Box A"}`)
	ts.boxB = ts.createID("/api/boxes", `{"name":"Box B"}`)
	ts.led = ts.createID("/api/component_types", `{"name":"LED","category":"Electronics","max_per_box":5}`)
	ts.servo = ts.createID("/api/component_types", `{"name":"Servo SG90","category":"Motors","max_per_box":1}`)
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	ts.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.h.ServeHTTP(w, req)
	return w
}

func (ts *testServer) post(path string, body any) result {
	ts.t.Helper()
	data, err := json.Marshal(body)
	require.NoError(ts.t, err)
	w := ts.do(http.MethodPost, path, string(data))
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())
	var res result
	require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func (ts *testServer) createID(path, body string) int64 {
	ts.t.Helper()
	w := ts.do(http.MethodPost, path, body)
	require.Equal(ts.t, http.StatusOK, w.Code)
	var res result
	require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(ts.t, res.Success, res.Message)
	require.NotZero(ts.t, res.ID)
	return res.ID
}

func (ts *testServer) contents(boxID int64) []boxComponent {
	ts.t.Helper()
	w := ts.do(http.MethodGet, "/api/get_box_components/"+itoa(boxID), "")
	require.Equal(ts.t, http.StatusOK, w.Code)
	var items []boxComponent
	require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &items))
	return items
}

func itoa(n int64) string { return types.FormatID(n) }

func stock(box, ct int64, qty any) map[string]any {
	return map[string]any{"box_id": box, "component_type_id": ct, "quantity": qty}
}

func TestHealth(t *testing.T) {
	ts := setupServer(t)
	w := ts.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.NotEmpty(t, body["uptime"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupServer(t)
	ts.post("/api/add_component", stock(ts.boxA, ts.led, 1))

	w := ts.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kitbox_ledger_operations_total")
	assert.Contains(t, w.Body.String(), "kitbox_http_requests_total")
}

func TestAddComponent(t *testing.T) {
	ts := setupServer(t)

	res := ts.post("/api/add_component", stock(ts.boxA, ts.led, 3))
	assert.True(t, res.Success)
	assert.Equal(t, "Added 3 LED(s) to Box A", res.Message)

	res = ts.post("/api/add_component", stock(ts.boxA, ts.led, 3))
	assert.False(t, res.Success)
	assert.Equal(t, "Cannot add 3 LED(s). Maximum allowed: 5, Current: 3", res.Message)

	// Numeric strings are accepted.
	res = ts.post("/api/add_component", stock(ts.boxA, ts.led, "2"))
	assert.True(t, res.Success, res.Message)

	assert.Equal(t, []boxComponent{{ID: ts.led, Name: "LED", Quantity: 5}}, ts.contents(ts.boxA))
}

func TestAddComponentRejectsBadInput(t *testing.T) {
	ts := setupServer(t)

	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"zero", stock(ts.boxA, ts.led, 0), "Quantity must be positive"},
		{"negative", stock(ts.boxA, ts.led, -2), "Quantity must be positive"},
		{"fraction", stock(ts.boxA, ts.led, 1.5), "quantity must be an integer"},
		{"text", stock(ts.boxA, ts.led, "lots"), "quantity must be an integer"},
		{"missing", map[string]any{"box_id": ts.boxA, "component_type_id": ts.led}, "quantity is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ts.post("/api/add_component", tt.body)
			assert.False(t, res.Success)
			assert.Equal(t, tt.message, res.Message)
		})
	}

	w := ts.do(http.MethodPost, "/api/add_component", "not json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), errBadBody.Error())

	res := ts.post("/api/add_component", stock(999, ts.led, 1))
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, types.ErrNotFound.Error())

	assert.Empty(t, ts.contents(ts.boxA))
}

func TestRemoveComponent(t *testing.T) {
	ts := setupServer(t)
	ts.post("/api/add_component", stock(ts.boxA, ts.led, 4))

	res := ts.post("/api/remove_component", stock(ts.boxB, ts.led, 1))
	assert.False(t, res.Success)
	assert.Equal(t, "Component not found in box", res.Message)

	res = ts.post("/api/remove_component", stock(ts.boxA, ts.led, 9))
	assert.False(t, res.Success)
	assert.Equal(t, "Cannot remove 9 items. Only 4 available", res.Message)

	res = ts.post("/api/remove_component", stock(ts.boxA, ts.led, 1))
	assert.True(t, res.Success)
	assert.Equal(t, "Removed 1 LED(s) from Box A", res.Message)

	res = ts.post("/api/remove_component", stock(ts.boxA, ts.led, 3))
	assert.True(t, res.Success)
	assert.Empty(t, ts.contents(ts.boxA), "drained entry disappears")
}

func TestTransferComponent(t *testing.T) {
	ts := setupServer(t)
	ts.post("/api/add_component", stock(ts.boxA, ts.led, 4))
	ts.post("/api/add_component", stock(ts.boxB, ts.led, 3))
	ts.post("/api/add_component", stock(ts.boxA, ts.servo, 1))

	transfer := func(from, to, ct int64, qty int) result {
		return ts.post("/api/transfer_component", map[string]any{
			"from_box_id": from, "to_box_id": to, "component_type_id": ct, "quantity": qty,
		})
	}

	res := transfer(ts.boxA, ts.boxA, ts.led, 1)
	assert.Equal(t, "Cannot transfer to the same box", res.Message)

	res = transfer(ts.boxB, ts.boxA, ts.servo, 1)
	assert.Equal(t, "Insufficient quantity in source box", res.Message)

	res = transfer(ts.boxA, ts.boxB, ts.led, 3)
	assert.False(t, res.Success)
	assert.Equal(t, "Transfer would exceed capacity. Max: 5, Current in destination: 3", res.Message)

	res = transfer(ts.boxA, ts.boxB, ts.led, 2)
	assert.True(t, res.Success)
	assert.Equal(t, "Transferred 2 LED(s) from Box A to Box B", res.Message)

	res = transfer(ts.boxA, ts.boxB, ts.servo, 1)
	assert.True(t, res.Success)

	assert.Equal(t, []boxComponent{{ID: ts.led, Name: "LED", Quantity: 2}}, ts.contents(ts.boxA))
	assert.Equal(t, []boxComponent{
		{ID: ts.led, Name: "LED", Quantity: 5},
		{ID: ts.servo, Name: "Servo SG90", Quantity: 1},
	}, ts.contents(ts.boxB))
}

func TestGetBoxComponentsUnknownBox(t *testing.T) {
	ts := setupServer(t)

	w := ts.do(http.MethodGet, "/api/get_box_components/4242", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = ts.do(http.MethodGet, "/api/get_box_components/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBoxes(t *testing.T) {
	ts := setupServer(t)

	res := ts.post("/api/boxes", map[string]any{"name": "Box A"})
	assert.False(t, res.Success)
	assert.Equal(t, "Box name already exists!", res.Message)

	res = ts.post("/api/boxes", map[string]any{"name": "  "})
	assert.False(t, res.Success)

	w := ts.do(http.MethodGet, "/api/boxes", "")
	require.Equal(t, http.StatusOK, w.Code)
	var boxes []types.Box
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &boxes))
	require.Len(t, boxes, 2)
	assert.Equal(t, "Box A", boxes[0].Name)

	ts.post("/api/add_component", stock(ts.boxA, ts.led, 2))
	w = ts.do(http.MethodGet, "/api/boxes/"+itoa(ts.boxA), "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail boxDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Box A", detail.Box.Name)
	require.Len(t, detail.Components, 1)
	assert.Equal(t, 2, detail.Components[0].Quantity)
	assert.Equal(t, 5, detail.Components[0].MaxPerBox)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/boxes/999", "").Code)

	w = ts.do(http.MethodDelete, "/api/boxes/"+itoa(ts.boxA), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/boxes/"+itoa(ts.boxA), "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/boxes/"+itoa(ts.boxA), "").Code)
}

func TestComponentTypes(t *testing.T) {
	ts := setupServer(t)

	res := ts.post("/api/component_types", map[string]any{"name": "LED", "max_per_box": 3})
	assert.False(t, res.Success)
	assert.Equal(t, "Component type already exists!", res.Message)

	res = ts.post("/api/component_types", map[string]any{"name": "Relay", "max_per_box": 0})
	assert.False(t, res.Success)

	res = ts.post("/api/component_types", map[string]any{"name": "Relay"})
	assert.False(t, res.Success)
	assert.Equal(t, "max_per_box is required", res.Message)

	w := ts.do(http.MethodGet, "/api/component_types", "")
	var all []types.ComponentType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = ts.do(http.MethodGet, "/api/component_types?category=Motors", "")
	var motors []types.ComponentType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &motors))
	require.Len(t, motors, 1)
	assert.Equal(t, "Servo SG90", motors[0].Name)
}

func TestSearchAndSummary(t *testing.T) {
	ts := setupServer(t)
	ts.post("/api/add_component", stock(ts.boxA, ts.led, 2))
	ts.post("/api/add_component", stock(ts.boxB, ts.led, 1))
	ts.post("/api/add_component", stock(ts.boxB, ts.servo, 1))

	w := ts.do(http.MethodGet, "/api/search?q=le", "")
	require.Equal(t, http.StatusOK, w.Code)
	var found searchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	assert.Equal(t, "le", found.Query)
	require.Len(t, found.Results, 2)
	assert.Equal(t, "Box A", found.Results[0].BoxName)

	w = ts.do(http.MethodGet, "/api/search", "")
	assert.JSONEq(t, `{"query":"","results":[]}`, w.Body.String())

	w = ts.do(http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sum types.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, 2, sum.Boxes)
	assert.Equal(t, 2, sum.ComponentTypes)
	assert.Equal(t, 3, sum.Entries)
	require.Len(t, sum.PerBox, 2)
	assert.Equal(t, 2, sum.PerBox[1].TotalItems)
}

func TestCORSPreflight(t *testing.T) {
	ts := setupServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/boxes", nil)
	req.Header.Set("Origin", "http://localhost:5000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	ts.h.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST"))
}

func TestLedgerMessage(t *testing.T) {
	capacity := &types.LedgerError{Err: types.ErrCapacityExceeded, Component: "LED", Quantity: 4, Current: 3, Max: 5}
	short := &types.LedgerError{Err: types.ErrInsufficientQuantity, Quantity: 4, Current: 1}

	assert.Equal(t, "Cannot add 4 LED(s). Maximum allowed: 5, Current: 3", ledgerMessage(opAdd, capacity))
	assert.Equal(t, "Transfer would exceed capacity. Max: 5, Current in destination: 3", ledgerMessage(opTransfer, capacity))
	assert.Equal(t, "Cannot remove 4 items. Only 1 available", ledgerMessage(opRemove, short))
	assert.Equal(t, "Insufficient quantity in source box", ledgerMessage(opTransfer, short))
	assert.Equal(t, "disk full", ledgerMessage(opAdd, errors.New("disk full")), "plain errors pass through")
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{`7`, 7, false},
		{`"12"`, 12, false},
		{`" 3 "`, 3, false},
		{`4.0`, 4, false},
		{`4.5`, 0, true},
		{`"x"`, 0, true},
		{`true`, 0, true},
		{`{}`, 0, true},
		{`9223372036854775808.0`, 0, true},
		{`-9223372036854775808.0`, math.MinInt64, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseInt("n", json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, isFieldError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
