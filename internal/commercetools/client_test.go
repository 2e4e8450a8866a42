package commercetools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
)

func testClient(t *testing.T, apiHandler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   3600,
			"token_type":   "Bearer",
		})
	})
	mux.HandleFunc("/oauth/proj/anonymous/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "anon-token-" + r.PostForm.Get("anonymous_id"),
			"refresh_token": "anon-refresh",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("/", apiHandler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := New(Config{
		AuthURL:      srv.URL,
		APIURL:       srv.URL,
		ProjectKey:   "proj",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, srv
}

func TestGetCartSendsBearerTokenAndExpansions(t *testing.T) {
	var gotAuth string
	var gotExpand []string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/proj/carts/cart-1" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotExpand = r.URL.Query()["expand"]
		_ = json.NewEncoder(w).Encode(Cart{ID: "cart-1", Version: 2, CartState: "Active"})
	})

	cart, err := client.GetCart(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if cart.ID != "cart-1" || cart.Version != 2 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if len(gotExpand) != 3 {
		t.Fatalf("expected 3 expansions, got %v", gotExpand)
	}
}

func TestAccessTokenIsCached(t *testing.T) {
	requests := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		_ = json.NewEncoder(w).Encode(Cart{ID: "cart-1"})
	})

	ctx := context.Background()
	if _, err := client.GetCart(ctx, "cart-1"); err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if _, err := client.GetCart(ctx, "cart-1"); err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if requests != 2 {
		t.Fatalf("expected 2 api requests, got %d", requests)
	}
	if client.token != "test-token" {
		t.Fatalf("token not cached: %q", client.token)
	}
}

func TestConflictDecodesToConcurrentModification(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{
			"statusCode": 409,
			"message": "Object has a different version",
			"errors": [{"code": "ConcurrentModification", "currentVersion": 8}]
		}`))
	})

	_, err := client.UpdateCart(context.Background(), "cart-1", CartUpdate{Version: 5})
	var conflict *domain.ConcurrentModificationError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConcurrentModificationError, got %v", err)
	}
	if conflict.CurrentVersion != 8 {
		t.Fatalf("current version %d, want 8", conflict.CurrentVersion)
	}
	if conflict.ErrorCode != "ConcurrentModification" {
		t.Fatalf("unexpected error code %q", conflict.ErrorCode)
	}
}

func TestRemoteErrorDecodesToExternalError(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{
			"statusCode": 400,
			"message": "The discount code is not applicable",
			"errors": [{"code": "DiscountCodeNonApplicable"}]
		}`))
	})

	_, err := client.UpdateCart(context.Background(), "cart-1", CartUpdate{Version: 1})
	var extErr *domain.ExternalError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExternalError, got %v", err)
	}
	if extErr.StatusCode != 400 || extErr.ErrorCode != "DiscountCodeNonApplicable" {
		t.Fatalf("remote detail lost: %+v", extErr)
	}
	var conflict *domain.ConcurrentModificationError
	if errors.As(err, &conflict) {
		t.Fatal("a 400 must not decode as a conflict")
	}
}

func TestAnonymousTokenCarriesIdentifier(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected api request %s", r.URL.Path)
	})

	tok, err := client.AnonymousToken(context.Background(), "anon-1")
	if err != nil {
		t.Fatalf("AnonymousToken: %v", err)
	}
	if tok.AccessToken != "anon-token-anon-1" {
		t.Fatalf("identifier not forwarded: %q", tok.AccessToken)
	}
	if tok.RefreshToken != "anon-refresh" {
		t.Fatalf("refresh token missing: %q", tok.RefreshToken)
	}
	if tok.Expired() {
		t.Fatal("fresh token must not be expired")
	}
}

func TestRefreshTokenKeepsOldRefreshToken(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected api request %s", r.URL.Path)
	})

	tok, err := client.RefreshToken(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if tok.AccessToken != "test-token" {
		t.Fatalf("unexpected access token %q", tok.AccessToken)
	}
	if tok.RefreshToken != "ref-1" {
		t.Fatalf("old refresh token not kept: %q", tok.RefreshToken)
	}
}

func TestGetOrderByNumberPath(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/proj/orders/order-number=ord-1" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Order{ID: "order-1", OrderNumber: "ord-1"})
	})

	order, err := client.GetOrderByNumber(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("GetOrderByNumber: %v", err)
	}
	if order.OrderNumber != "ord-1" {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestDeleteCartSendsVersion(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("unexpected method %q", r.Method)
		}
		if r.URL.Query().Get("version") != "4" {
			t.Fatalf("version not sent: %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{}`))
	})

	if err := client.DeleteCart(context.Background(), "cart-1", 4); err != nil {
		t.Fatalf("DeleteCart: %v", err)
	}
}
