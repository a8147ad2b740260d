package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cheetahx/dispatch/core/model"
)

type fakeProcessor struct {
	result model.DispatchResult
	err    error
	got    model.Order
}

func (f *fakeProcessor) ProcessOrder(_ context.Context, order model.Order) (model.DispatchResult, error) {
	f.got = order
	return f.result, f.err
}

func orderBody(t *testing.T) string {
	t.Helper()
	o := model.Order{
		ID:           "ORD-100",
		VehicleClass: model.VehicleCar,
		Window: model.TimeWindow{
			PickupBy:  time.Now().Add(30 * time.Minute),
			DeliverBy: time.Now().Add(90 * time.Minute),
		},
	}
	b, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestIntakeHandler_Assigned(t *testing.T) {
	proc := &fakeProcessor{result: model.DispatchResult{
		OrderID:          "ORD-100",
		Status:           model.StatusAssigned,
		AssignedDriverID: "DRV001",
	}}
	h := NewIntakeHandler(proc, "", nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/orders", strings.NewReader(orderBody(t)))
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var out model.DispatchResult
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.AssignedDriverID != "DRV001" || out.Status != model.StatusAssigned {
		t.Fatalf("unexpected result %#v", out)
	}
	if proc.got.ID != "ORD-100" {
		t.Fatalf("order not passed through: %#v", proc.got)
	}
}

func TestIntakeHandler_ValidationError(t *testing.T) {
	proc := &fakeProcessor{err: model.Order{}.Validate()}
	h := NewIntakeHandler(proc, "", nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/orders", strings.NewReader(`{"order_id":""}`))
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "order id is required") {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestIntakeHandler_BadJSON(t *testing.T) {
	proc := &fakeProcessor{}
	h := NewIntakeHandler(proc, "", nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/orders", strings.NewReader("{not json"))
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestIntakeHandler_MethodNotAllowed(t *testing.T) {
	h := NewIntakeHandler(&fakeProcessor{}, "", nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/orders", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestIntakeHandler_Auth(t *testing.T) {
	h := NewIntakeHandler(&fakeProcessor{}, "secret", nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/orders", strings.NewReader(orderBody(t)))
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/orders", strings.NewReader(orderBody(t)))
	req.Header.Set("Authorization", "Bearer secret")
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
