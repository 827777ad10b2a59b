package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "stowaway/pkg/errors"
	"stowaway/pkg/identity"
	"stowaway/pkg/logger"
	"stowaway/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStorageUnitService struct {
	listActiveFunc func(ctx context.Context) ([]*model.StorageUnit, error)
	listAllFunc    func(ctx context.Context) ([]*model.StorageUnit, error)
	getDetailsFunc func(ctx context.Context, id string, requester identity.Identity) (*model.StorageUnitDetails, error)
	createFunc     func(ctx context.Context, input *model.StorageUnitInput, requester identity.Identity) (*model.StorageUnit, error)
	updateFunc     func(ctx context.Context, id string, input *model.StorageUnitInput, requester identity.Identity) (*model.StorageUnit, error)
	deleteFunc     func(ctx context.Context, id string, requester identity.Identity) error
}

func (m *mockStorageUnitService) ListActive(ctx context.Context) ([]*model.StorageUnit, error) {
	return m.listActiveFunc(ctx)
}

func (m *mockStorageUnitService) ListAll(ctx context.Context) ([]*model.StorageUnit, error) {
	return m.listAllFunc(ctx)
}

func (m *mockStorageUnitService) GetByID(ctx context.Context, id string) (*model.StorageUnit, error) {
	details, err := m.getDetailsFunc(ctx, id, identity.Identity{})
	if err != nil {
		return nil, err
	}
	return details.StorageUnit, nil
}

func (m *mockStorageUnitService) GetDetails(ctx context.Context, id string, requester identity.Identity) (*model.StorageUnitDetails, error) {
	return m.getDetailsFunc(ctx, id, requester)
}

func (m *mockStorageUnitService) Create(ctx context.Context, input *model.StorageUnitInput, requester identity.Identity) (*model.StorageUnit, error) {
	return m.createFunc(ctx, input, requester)
}

func (m *mockStorageUnitService) Update(ctx context.Context, id string, input *model.StorageUnitInput, requester identity.Identity) (*model.StorageUnit, error) {
	return m.updateFunc(ctx, id, input, requester)
}

func (m *mockStorageUnitService) Delete(ctx context.Context, id string, requester identity.Identity) error {
	return m.deleteFunc(ctx, id, requester)
}

func newRouter(svc *mockStorageUnitService) *httprouter.Router {
	router := httprouter.New()
	NewStorageUnitHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, req *http.Request, caller identity.Identity) *httptest.ResponseRecorder {
	if caller.Authenticated() {
		req = req.WithContext(identity.WithIdentity(req.Context(), caller))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

var adminCaller = identity.Identity{UserID: "admin-1", IsAdmin: true}

func TestList(t *testing.T) {
	units := []*model.StorageUnit{{ID: "u1", Name: "Small Locker A", Size: "5x5", MonthlyPrice: 3999, IsActive: true}}
	svc := &mockStorageUnitService{
		listActiveFunc: func(context.Context) ([]*model.StorageUnit, error) { return units, nil },
		listAllFunc:    func(context.Context) ([]*model.StorageUnit, error) { return nil, nil },
	}
	router := newRouter(svc)

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantCount float64
	}{
		{name: "active only", target: "/api/v1/units?active=true", wantCode: http.StatusOK, wantCount: 1},
		{name: "all units empty list", target: "/api/v1/units", wantCode: http.StatusOK, wantCount: 0},
		{name: "bad flag", target: "/api/v1/units?active=maybe", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, httptest.NewRequest(http.MethodGet, tt.target, nil), identity.Identity{})
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCount, body["total_count"])
			assert.NotNil(t, body["data"])
		})
	}
}

func TestList_PriceRendersAsDecimal(t *testing.T) {
	svc := &mockStorageUnitService{
		listAllFunc: func(context.Context) ([]*model.StorageUnit, error) {
			return []*model.StorageUnit{{ID: "u1", Name: "A", Size: "5x5", MonthlyPrice: 3999}}, nil
		},
	}

	rec := serve(newRouter(svc), httptest.NewRequest(http.MethodGet, "/api/v1/units", nil), identity.Identity{})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"monthly_price":39.99`)
}

func TestGetByID_PassesCaller(t *testing.T) {
	var gotCaller identity.Identity
	svc := &mockStorageUnitService{
		getDetailsFunc: func(_ context.Context, id string, requester identity.Identity) (*model.StorageUnitDetails, error) {
			gotCaller = requester
			if id != "u1" {
				return nil, apperrors.NotFoundWithID("Storage unit", id)
			}
			return &model.StorageUnitDetails{StorageUnit: &model.StorageUnit{ID: "u1"}}, nil
		},
	}
	router := newRouter(svc)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/units/id/u1", nil), adminCaller)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, adminCaller, gotCaller)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/units/id/missing", nil), identity.Identity{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.CodeNotFound, decodeError(t, rec).Code)
}

func TestCreate(t *testing.T) {
	svc := &mockStorageUnitService{
		createFunc: func(_ context.Context, input *model.StorageUnitInput, _ identity.Identity) (*model.StorageUnit, error) {
			return &model.StorageUnit{ID: "u1", Name: input.Name, Size: input.Size, MonthlyPrice: input.MonthlyPrice, IsActive: true}, nil
		},
	}
	router := newRouter(svc)
	body := `{"name":"Small Locker A","size":"5x5","monthly_price":"39.99"}`

	tests := []struct {
		name     string
		caller   identity.Identity
		body     string
		wantCode int
		wantErr  string
	}{
		{name: "admin creates", caller: adminCaller, body: body, wantCode: http.StatusCreated},
		{name: "anonymous", body: body, wantCode: http.StatusUnauthorized, wantErr: apperrors.CodeUnauthorized},
		{name: "not admin", caller: identity.Identity{UserID: "user-1"}, body: body, wantCode: http.StatusForbidden, wantErr: apperrors.CodeForbidden},
		{name: "unknown field", caller: adminCaller, body: `{"name":"A","colour":"red"}`, wantCode: http.StatusBadRequest, wantErr: apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/units", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := serve(router, req, tt.caller)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeError(t, rec).Code)
				return
			}
			assert.Contains(t, rec.Body.String(), `"monthly_price":39.99`)
		})
	}
}

func TestUpdate_ValidationError(t *testing.T) {
	svc := &mockStorageUnitService{
		updateFunc: func(context.Context, string, *model.StorageUnitInput, identity.Identity) (*model.StorageUnit, error) {
			return nil, apperrors.ValidationFields("Storage unit validation failed", map[string]string{"name": "name is required"})
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/units/id/u1", strings.NewReader(`{"name":""}`))
	rec := serve(newRouter(svc), req, adminCaller)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeValidation, resp.Code)
	assert.Equal(t, map[string]any{"name": "name is required"}, resp.Details["fields"])
}

func TestDelete(t *testing.T) {
	deleted := ""
	svc := &mockStorageUnitService{
		deleteFunc: func(_ context.Context, id string, _ identity.Identity) error {
			if id == "reserved" {
				return apperrors.Conflict("Storage unit has 1 reservation(s) and cannot be deleted")
			}
			deleted = id
			return nil
		},
	}
	router := newRouter(svc)

	rec := serve(router, httptest.NewRequest(http.MethodDelete, "/api/v1/units/id/u1", nil), adminCaller)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", deleted)

	rec = serve(router, httptest.NewRequest(http.MethodDelete, "/api/v1/units/id/reserved", nil), adminCaller)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
