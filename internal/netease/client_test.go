package netease

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/five82/cadence/internal/qrlogin"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultAPIBase {
		t.Fatalf("host = %q, want %q", u.Host, defaultAPIBase)
	}

	u, err = parseBaseURL("https://music.example:8443/api?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	c.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return c
}

func TestClient_QREndpointsEncodeQueries(t *testing.T) {
	t.Parallel()

	queries := map[string]url.Values{}
	var gotUserAgent string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries[r.URL.Path] = r.URL.Query()
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/login/qr/key":
			_, _ = w.Write([]byte(`{"code":200,"data":{"code":200,"unikey":"abc-123"}}`))
		case "/login/qr/create":
			_, _ = w.Write([]byte(`{"code":200,"data":{"qrurl":"https://music.163.com/login?codekey=abc-123","qrimg":"data:image/png;base64,iVBOR"}}`))
		case "/login/qr/check":
			_, _ = w.Write([]byte(`{"code":803,"message":"授权登录成功","cookie":"MUSIC_U=xyz; Max-Age=1296000; Path=/;"}`))
		default:
			http.NotFound(w, r)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	key, err := c.QRKey(ctx)
	if err != nil {
		t.Fatalf("QRKey returned error: %v", err)
	}
	if key.Code != 200 || key.Data.UniKey != "abc-123" {
		t.Fatalf("QRKey = %#v, want code 200 unikey abc-123", key)
	}

	created, err := c.QRCreate(ctx, "abc-123")
	if err != nil {
		t.Fatalf("QRCreate returned error: %v", err)
	}
	if created.Data.QRImg == "" || !strings.Contains(created.Data.QRURL, "abc-123") {
		t.Fatalf("QRCreate = %#v, want image and url", created)
	}

	check, err := c.QRCheck(ctx, "abc-123")
	if err != nil {
		t.Fatalf("QRCheck returned error: %v", err)
	}
	if check.Code != 803 || !strings.HasPrefix(check.Cookie, "MUSIC_U=xyz") {
		t.Fatalf("QRCheck = %#v, want 803 with cookie", check)
	}

	for path, q := range queries {
		if q.Get("timestamp") != "1700000000123" {
			t.Fatalf("%s timestamp = %q, want cache buster", path, q.Get("timestamp"))
		}
	}
	if got := queries["/login/qr/create"]; got.Get("key") != "abc-123" || got.Get("qrimg") != "true" {
		t.Fatalf("create query = %v, want key and qrimg", got)
	}
	if got := queries["/login/qr/check"]; got.Get("key") != "abc-123" {
		t.Fatalf("check query = %v, want key", got)
	}
	if !strings.HasPrefix(gotUserAgent, "cadence/") {
		t.Fatalf("User-Agent = %q, want cadence/*", gotUserAgent)
	}
}

func TestClient_QRCheckRequiresCode(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"no code here"}`))
	})

	_, err := c.QRCheck(context.Background(), "abc")
	if err == nil || !strings.Contains(err.Error(), "no code field") {
		t.Fatalf("QRCheck error = %v, want missing code error", err)
	}
}

func TestClient_RequiresKey(t *testing.T) {
	c, err := NewClient("127.0.0.1:1", 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.QRCreate(context.Background(), " "); err == nil {
		t.Fatalf("QRCreate returned nil error, want error")
	}
	if _, err := c.QRCheck(context.Background(), ""); err == nil {
		t.Fatalf("QRCheck returned nil error, want error")
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login/qr/key":
			_, _ = w.Write([]byte("{not-json"))
		case "/login/qr/check":
			http.Error(w, "nope", http.StatusBadGateway)
		case "/login/qr/create":
			_, _ = w.Write([]byte(`{"code":400,"data":{}}`))
		default:
			http.NotFound(w, r)
		}
	})

	if _, err := c.QRKey(context.Background()); err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("QRKey error = %v, want decode response error", err)
	}
	if _, err := c.QRCheck(context.Background(), "k"); err == nil || !strings.Contains(err.Error(), "returned status 502") {
		t.Fatalf("QRCheck error = %v, want status 502 error", err)
	}
	if _, err := c.QRCreate(context.Background(), "k"); err == nil || !strings.Contains(err.Error(), "returned code 400") {
		t.Fatalf("QRCreate error = %v, want code 400 error", err)
	}
}

func TestClient_AccountAndLogoutSendCookie(t *testing.T) {
	t.Parallel()

	var accountCookie, logoutCookie, logoutMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/account":
			accountCookie = r.Header.Get("Cookie")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"code":    200,
				"account": map[string]any{"id": 42, "userName": "0_x"},
				"profile": map[string]any{"userId": 42, "nickname": "listener"},
			})
		case "/logout":
			logoutCookie = r.Header.Get("Cookie")
			logoutMethod = r.Method
			_, _ = w.Write([]byte(`{"code":200}`))
		default:
			http.NotFound(w, r)
		}
	})

	account, err := c.Account(context.Background(), "MUSIC_U=xyz")
	if err != nil {
		t.Fatalf("Account returned error: %v", err)
	}
	if account.UserID() != 42 || account.Nickname() != "listener" {
		t.Fatalf("Account = %#v, want id 42 nickname listener", account)
	}
	if accountCookie != "MUSIC_U=xyz" {
		t.Fatalf("account Cookie header = %q, want MUSIC_U=xyz", accountCookie)
	}

	if err := c.Logout(context.Background(), "MUSIC_U=xyz"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if logoutMethod != http.MethodPost || logoutCookie != "MUSIC_U=xyz" {
		t.Fatalf("logout = %s with cookie %q, want POST with cookie", logoutMethod, logoutCookie)
	}
}

func TestAccountResponse_NullProfile(t *testing.T) {
	var resp AccountResponse
	if err := json.Unmarshal([]byte(`{"code":200,"account":{"id":7},"profile":null}`), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.UserID() != 7 || resp.Nickname() != "" {
		t.Fatalf("UserID/Nickname = %d/%q, want 7/empty", resp.UserID(), resp.Nickname())
	}
}

func TestQRRemote_MapsReplies(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login/qr/key":
			_, _ = w.Write([]byte(`{"code":200,"data":{"code":200,"unikey":"k9"}}`))
		case "/login/qr/create":
			_, _ = w.Write([]byte(`{"code":200,"data":{"qrurl":"https://music.163.com/login?codekey=k9"}}`))
		case "/login/qr/check":
			_, _ = w.Write([]byte(`{"code":999,"message":"odd"}`))
		}
	})
	remote := NewQRRemote(c)
	ctx := context.Background()

	key, err := remote.IssueKey(ctx)
	if err != nil || key != (qrlogin.KeyReply{Code: 200, Key: "k9"}) {
		t.Fatalf("IssueKey = %#v, %v", key, err)
	}
	code, err := remote.RenderCode(ctx, "k9")
	if err != nil || code.Image != "" || code.URL == "" {
		t.Fatalf("RenderCode = %#v, %v; want url only", code, err)
	}
	status, err := remote.CheckStatus(ctx, "k9")
	if err != nil || status.Code != 999 || status.Message != "odd" {
		t.Fatalf("CheckStatus = %#v, %v; want raw 999 passed through", status, err)
	}
}
