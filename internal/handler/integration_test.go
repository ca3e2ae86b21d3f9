package handler_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/rightnow/internal/domain"
	"github.com/msomdec/rightnow/internal/handler"
)

type listingsResponse struct {
	Listings []handler.ListingDTO `json:"listings"`
	Error    string               `json:"error"`
}

type listingResponse struct {
	Listing handler.ListingDTO `json:"listing"`
}

type userResponse struct {
	User  handler.UserDTO `json:"user"`
	Token string          `json:"token"`
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func listingIDs(listings []handler.ListingDTO) []string {
	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	return ids
}

func TestIntegration_LoginCreateLogout(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()
	client := newClient(t)

	// 1. Anonymous browse, sorted by expiry.
	var list listingsResponse
	if code := doJSON(t, client, http.MethodGet, srv.URL+"/api/listings", nil, &list); code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", code)
	}
	if got := strings.Join(listingIDs(list.Listings), ","); got != "4,1,5,2,6,3" {
		t.Fatalf("list: unexpected order %s", got)
	}
	first := list.Listings[0]
	if first.Price != "Free" || first.Category != "free" || first.CategoryLabel != "Free" {
		t.Fatalf("list: unexpected display fields %+v", first)
	}
	if first.TimeRemaining == nil || *first.TimeRemaining != "1h" {
		t.Fatalf("list: expected 1h remaining, got %v", first.TimeRemaining)
	}
	if first.Distance != "< 0.1 mi" || first.Expired {
		t.Fatalf("list: unexpected distance/expiry %+v", first)
	}

	// 2. Creating requires a session.
	newListing := domain.NewListing{Title: "Desk Lamp", PriceCents: 1500, ImageURL: "https://example.com/lamp.jpg"}
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/listings", newListing, nil); code != http.StatusUnauthorized {
		t.Fatalf("create anonymous: expected 401, got %d", code)
	}

	// 3. Bad logins.
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", domain.Credentials{Email: "alex@example.com", Password: "wrongpass"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("login wrong password: expected 401, got %d", code)
	}
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", domain.Credentials{Email: "alex@example.com", Password: "abc"}, nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("login short password: expected 422, got %d", code)
	}

	// 4. Good login sets the cookie.
	var session userResponse
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", domain.Credentials{Email: "alex@example.com", Password: "rightnow"}, &session); code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", code)
	}
	if session.User.ID != "user1" || session.Token == "" {
		t.Fatalf("login: unexpected response %+v", session)
	}
	srvURL, _ := url.Parse(srv.URL)
	var hasAuthToken bool
	for _, c := range client.Jar.Cookies(srvURL) {
		if c.Name == "auth_token" {
			hasAuthToken = true
		}
	}
	if !hasAuthToken {
		t.Fatal("expected auth_token cookie to be set after login")
	}

	var me userResponse
	if code := doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil, &me); code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", code)
	}
	if me.User.Name != "Alex Johnson" {
		t.Fatalf("me: unexpected user %+v", me.User)
	}

	// 5. Create, then find it by owner and id.
	var created listingResponse
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/listings", newListing, &created); code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", code)
	}
	if created.Listing.OwnerUserID != "user1" || created.Listing.TimeRemaining != nil {
		t.Fatalf("create: unexpected listing %+v", created.Listing)
	}

	var mine listingsResponse
	if code := doJSON(t, client, http.MethodGet, srv.URL+"/api/listings?owner=user1", nil, &mine); code != http.StatusOK {
		t.Fatalf("owner filter: expected 200, got %d", code)
	}
	if len(mine.Listings) != 4 || mine.Listings[0].ID != created.Listing.ID {
		t.Fatalf("owner filter: expected the new listing first, got %v", listingIDs(mine.Listings))
	}

	var got listingResponse
	if code := doJSON(t, client, http.MethodGet, srv.URL+"/api/listings/"+created.Listing.ID, nil, &got); code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", code)
	}
	if got.Listing.Title != "Desk Lamp" || got.Listing.Price != "$15.00" {
		t.Fatalf("get: unexpected listing %+v", got.Listing)
	}

	var byUser listingsResponse
	if code := doJSON(t, client, http.MethodGet, srv.URL+"/api/users/user1/listings", nil, &byUser); code != http.StatusOK {
		t.Fatalf("user listings: expected 200, got %d", code)
	}
	if len(byUser.Listings) == 0 || byUser.Listings[0].ID != created.Listing.ID {
		t.Fatalf("user listings: expected the new listing first, got %v", listingIDs(byUser.Listings))
	}

	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/listings", domain.NewListing{PriceCents: -1}, nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("create invalid: expected 422, got %d", code)
	}

	// 6. Profile update.
	loc := "Menlo Park, CA"
	var updated userResponse
	if code := doJSON(t, client, http.MethodPatch, srv.URL+"/api/auth/me", domain.ProfilePatch{LocationText: &loc}, &updated); code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", code)
	}
	if updated.User.Location != loc {
		t.Fatalf("update: expected location %q, got %q", loc, updated.User.Location)
	}

	// 7. Logout ends the session, and is repeatable.
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/logout", nil, nil); code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", code)
	}
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/logout", nil, nil); code != http.StatusNoContent {
		t.Fatalf("second logout: expected 204, got %d", code)
	}
	if code := doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401, got %d", code)
	}
	if env.auth.IsLoggedIn() {
		t.Fatal("expected the auth container to be logged out")
	}
}

func TestIntegration_StaleTokenCannotLogOutOthers(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	if code := doJSON(t, newClient(t), http.MethodPost, srv.URL+"/api/auth/dev-login", nil, nil); code != http.StatusOK {
		t.Fatalf("dev login: expected 200, got %d", code)
	}

	// A client without the session only clears its own cookie.
	if code := doJSON(t, newClient(t), http.MethodPost, srv.URL+"/api/auth/logout", nil, nil); code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", code)
	}
	if !env.auth.IsLoggedIn() {
		t.Fatal("expected the session to survive an anonymous logout")
	}
}

func TestIntegration_Signup(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()
	client := newClient(t)

	signup := domain.Signup{Name: "Jane Smith", Email: "jane@example.com", Password: "secret1", LocationText: "Palo Alto, CA"}
	var resp userResponse
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/signup", signup, &resp); code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", code)
	}
	if resp.User.Email != "jane@example.com" || resp.User.AvatarURL == "" {
		t.Fatalf("signup: unexpected user %+v", resp.User)
	}

	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/signup", signup, nil); code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %d", code)
	}

	resp2, err := client.Post(srv.URL+"/api/auth/signup", "application/json", strings.NewReader(`{"name":"J","email":"bad","password":"x"}`))
	if err != nil {
		t.Fatalf("POST /api/auth/signup: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid signup: expected 422, got %d", resp2.StatusCode)
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, f := range []string{"name", "email", "password"} {
		if body.Fields[f] == "" {
			t.Fatalf("expected a %s field error, got %v", f, body.Fields)
		}
	}
}

func TestIntegration_ListFilters(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()
	client := newClient(t)

	tests := []struct {
		query string
		want  string
	}{
		{"category=free", "4,2,6"},
		{"category=general", "1,5,3"},
		{"q=BIKE", "5"},
		{"category=free&q=kitchen", "6"},
		{"owner=user2", "5,2"},
		{"status=current", "4,1,5,2,6,3"},
		{"status=expired", ""},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			var resp listingsResponse
			if code := doJSON(t, client, http.MethodGet, srv.URL+"/api/listings?"+tc.query, nil, &resp); code != http.StatusOK {
				t.Fatalf("expected 200, got %d", code)
			}
			if got := strings.Join(listingIDs(resp.Listings), ","); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}

	for _, bad := range []string{"category=cars", "status=old", "lat=37.4", "lat=abc&lng=1", "lat=91&lng=0"} {
		if code := doJSON(t, client, http.MethodGet, srv.URL+"/api/listings?"+bad, nil, nil); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", bad, code)
		}
	}

	if code := doJSON(t, client, http.MethodGet, srv.URL+"/api/listings/nope", nil, nil); code != http.StatusNotFound {
		t.Fatalf("missing listing: expected 404, got %d", code)
	}

	// Distances follow the supplied reference point (San Francisco).
	var far listingsResponse
	if code := doJSON(t, client, http.MethodGet, srv.URL+"/api/listings?lat=37.7749&lng=-122.4194", nil, &far); code != http.StatusOK {
		t.Fatalf("reference point: expected 200, got %d", code)
	}
	if far.Listings[0].Distance != "28 mi" {
		t.Fatalf("expected 28 mi, got %q", far.Listings[0].Distance)
	}

	var refreshed listingsResponse
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/listings/refresh", nil, &refreshed); code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", code)
	}
	if len(refreshed.Listings) != 6 {
		t.Fatalf("refresh: expected 6 listings, got %d", len(refreshed.Listings))
	}
}

func TestIntegration_LoginRateLimited(t *testing.T) {
	env := newTestEnvWithLimiter(t, 0.001, 2)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()
	client := newClient(t)

	creds := domain.Credentials{Email: "alex@example.com", Password: "wrongpass"}
	for i := range 2 {
		if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", creds, nil); code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, code)
		}
	}
	if code := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", creds, nil); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
}

func TestIntegration_Feed(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/listings/feed", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/listings/feed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected an event stream, got %q", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	waitForLine := func(substr string) {
		t.Helper()
		for lines.Scan() {
			if strings.Contains(lines.Text(), substr) {
				return
			}
		}
		t.Fatalf("stream ended before %q: %v", substr, lines.Err())
	}

	waitForLine("Free Plant Pots")

	if _, err := env.auth.DevLogin(ctx); err != nil {
		t.Fatalf("DevLogin: %v", err)
	}
	if _, err := env.items.Create(ctx, domain.NewListing{Title: "Streamed Kayak", PriceCents: 30000, ImageURL: "u"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	waitForLine("Streamed Kayak")
}
