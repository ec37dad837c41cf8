package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cargo-placement/internal/application/dto"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	apphttp "github.com/jhoicas/cargo-placement/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/cargo-placement/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "cargo-placement-test"
	testExpMin    = 60
)

// ──────────────────────────────────────────────────────────────────────────────
// Permisos por rol sobre las rutas reales del router
// ──────────────────────────────────────────────────────────────────────────────

type routeAccess struct {
	method, path string
	allowed      []string
}

// routeMatrix quién entra a cada grupo: anyRole, staff (admin+operator) y adminOnly.
// Los cuerpos van vacíos: a un rol autorizado le basta con no recibir 401/403.
var routeMatrix = []routeAccess{
	{http.MethodPost, "/api/placements", []string{entity.RoleAdmin, entity.RoleOperator, entity.RoleCourier}},
	{http.MethodPost, "/api/cells/verify", []string{entity.RoleAdmin, entity.RoleOperator, entity.RoleCourier}},
	{http.MethodGet, "/api/requests/R1/progress", []string{entity.RoleAdmin, entity.RoleOperator, entity.RoleCourier}},
	{http.MethodGet, "/api/units/R1/01/01", []string{entity.RoleAdmin, entity.RoleOperator, entity.RoleCourier}},
	{http.MethodGet, "/api/warehouses", []string{entity.RoleAdmin, entity.RoleOperator, entity.RoleCourier}},
	{http.MethodDelete, "/api/placements/R1%2F01%2F01", []string{entity.RoleAdmin, entity.RoleOperator}},
	{http.MethodPost, "/api/requests", []string{entity.RoleAdmin, entity.RoleOperator}},
	{http.MethodGet, "/api/warehouses/WID/occupancy.xlsx", []string{entity.RoleAdmin, entity.RoleOperator}},
	{http.MethodGet, "/api/placements/log", []string{entity.RoleAdmin}},
	{http.MethodDelete, "/api/requests/NO-EXISTE", []string{entity.RoleAdmin}},
	{http.MethodPost, "/api/warehouses", []string{entity.RoleAdmin}},
	{http.MethodPut, "/api/warehouses/WID", []string{entity.RoleAdmin}},
	{http.MethodPost, "/api/admin/reconcile?dry_run=true", []string{entity.RoleAdmin}},
}

func TestRouter_PermisosPorRol(t *testing.T) {
	f := newAPI(t)
	roles := []string{entity.RoleAdmin, entity.RoleOperator, entity.RoleCourier, "auditor"}

	for _, route := range routeMatrix {
		path := replaceWarehouseID(route.path, f.warehouseID)
		for _, role := range roles {
			t.Run(route.method+" "+route.path+" "+role, func(t *testing.T) {
				var fail dto.ErrorResponse
				resp := f.call(t, route.method, path, role, nil, nil)
				defer resp.Body.Close()

				if !lo.Contains(route.allowed, role) {
					require.Equal(t, http.StatusForbidden, resp.StatusCode)
					decode(t, resp, &fail)
					assert.Equal(t, "FORBIDDEN", fail.Code)
					return
				}
				assert.NotEqual(t, http.StatusForbidden, resp.StatusCode)
				assert.NotEqual(t, http.StatusUnauthorized, resp.StatusCode)
			})
		}
	}
}

func TestRouter_RutasPublicas(t *testing.T) {
	f := newAPI(t)
	resp := f.call(t, http.MethodGet, "/api/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallas de autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_Rechazos(t *testing.T) {
	f := newAPI(t)

	sign := func(secret string, s pkgjwt.Session, expMin int) string {
		tok, err := pkgjwt.Generate(secret, s, testIssuer, expMin)
		require.NoError(t, err)
		return "Bearer " + tok
	}
	courier := pkgjwt.Session{UserID: "op-1", WarehouseID: f.warehouseID, Role: entity.RoleCourier}

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto", "Basic b3A6MTIz", "INVALID_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"token expirado", sign(testJWTSecret, courier, -1), "INVALID_TOKEN"},
		{"firmado con otro secret", sign("otro-secret", courier, testExpMin), "INVALID_TOKEN"},
		{"sin claim de rol", sign(testJWTSecret, pkgjwt.Session{UserID: "op-1"}, testExpMin), "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/warehouses", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := f.app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			var fail dto.ErrorResponse
			decode(t, resp, &fail)
			assert.Equal(t, tc.code, fail.Code)
		})
	}
}

// La bodega de la sesión llega a los handlers: es la bodega por defecto de los códigos legados.
func TestAuthMiddleware_SesionEnLocals(t *testing.T) {
	app := fiber.New()
	app.Get("/session", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(pkgjwt.Session{
			UserID:      apphttp.GetUserID(c),
			WarehouseID: apphttp.GetWarehouseID(c),
			Role:        apphttp.GetRole(c),
		})
	})
	want := pkgjwt.Session{UserID: "op-77", WarehouseID: "w-001", Role: entity.RoleOperator}
	tok, err := pkgjwt.Generate(testJWTSecret, want, testIssuer, testExpMin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "bearer "+tok)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got pkgjwt.Session
	decode(t, resp, &got)
	assert.Equal(t, want, got)
}

func replaceWarehouseID(path, id string) string {
	return strings.ReplaceAll(path, "WID", id)
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
