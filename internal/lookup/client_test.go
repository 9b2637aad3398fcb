package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	tokenCalls   atomic.Int32
	playersCalls atomic.Int32
	tokenBody    string
	tokenStatus  int
	playersBody  string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "master-key", r.Header.Get("apiKey"))
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			return
		}
		w.Write([]byte(f.tokenBody))
	})
	mux.HandleFunc("/api/ncaa/ncaa-baseball-players/0", func(w http.ResponseWriter, r *http.Request) {
		f.playersCalls.Add(1)
		if r.Header.Get("tempToken") != "temp-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(f.playersBody))
	})
	return mux
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL + "/",
		MasterKey:  "master-key",
	})
}

func TestFetchPlayers(t *testing.T) {
	api := &fakeAPI{
		tokenBody:   `{"token":"temp-123"}`,
		playersBody: `[{"fullName":"John Smith","playerId":42,"team":"SHSU"},{"fullName":"Jane Doe","playerId":"a-77"}]`,
	}
	client := newTestClient(t, api)

	entries, err := client.FetchPlayers(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "John Smith", entries[0].FullName)
	assert.True(t, entries[0].PlayerID.IsNumeric())
	assert.Equal(t, int64(42), entries[0].PlayerID.CellValue())

	assert.Equal(t, "Jane Doe", entries[1].FullName)
	assert.False(t, entries[1].PlayerID.IsNumeric())
	assert.Equal(t, "a-77", entries[1].PlayerID.CellValue())
}

func TestFetchPlayers_ReusesValidToken(t *testing.T) {
	api := &fakeAPI{tokenBody: `{"token":"temp-123"}`, playersBody: `[]`}
	client := newTestClient(t, api)

	for i := 0; i < 3; i++ {
		_, err := client.FetchPlayers(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), api.tokenCalls.Load())
	assert.Equal(t, int32(3), api.playersCalls.Load())
}

func TestTokenSource_RefreshesExpiredToken(t *testing.T) {
	api := &fakeAPI{tokenBody: `{"token":"temp-123"}`}
	client := newTestClient(t, api)

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	tokens := client.Tokens()
	tokens.now = func() time.Time { return now }

	first, err := tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTokenTTL), first.ExpiresAt)

	now = now.Add(DefaultTokenTTL - time.Second)
	_, err = tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), api.tokenCalls.Load())

	now = now.Add(2 * time.Second)
	second, err := tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), api.tokenCalls.Load())
	assert.True(t, second.ExpiresAt.After(first.ExpiresAt))
}

func TestTokenSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		api     *fakeAPI
		wantErr error
	}{
		{
			name:    "missing token field",
			api:     &fakeAPI{tokenBody: `{"message":"ok"}`},
			wantErr: ErrEmptyToken,
		},
		{
			name:    "empty token",
			api:     &fakeAPI{tokenBody: `{"token":"  "}`},
			wantErr: ErrEmptyToken,
		},
		{
			name:    "rejected master key",
			api:     &fakeAPI{tokenStatus: http.StatusForbidden},
			wantErr: ErrUnexpectedStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.api)

			_, err := client.FetchPlayers(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, int32(0), tt.api.playersCalls.Load())
		})
	}
}

func TestFetchPlayers_BadPayload(t *testing.T) {
	api := &fakeAPI{tokenBody: `{"token":"temp-123"}`, playersBody: `{"error":"not an array"}`}
	client := newTestClient(t, api)

	_, err := client.FetchPlayers(context.Background())
	assert.Error(t, err)
}

func TestToken_Valid(t *testing.T) {
	now := time.Now()

	assert.True(t, Token{Value: "x", ExpiresAt: now.Add(time.Minute)}.Valid(now))
	assert.False(t, Token{Value: "x", ExpiresAt: now}.Valid(now))
	assert.False(t, Token{Value: "", ExpiresAt: now.Add(time.Minute)}.Valid(now))
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{MasterKey: "k"})

	assert.Equal(t, DefaultBaseURL+DefaultPlayersPath, client.playersURL)
	assert.Equal(t, DefaultBaseURL+DefaultTokenPath, client.tokens.tokenURL)
	assert.Equal(t, DefaultTokenTTL, client.tokens.ttl)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
}

func TestPlayerID_JSON(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantValue   string
		wantNumeric bool
		wantZero    bool
		wantErr     bool
	}{
		{name: "number", in: `42`, wantValue: "42", wantNumeric: true},
		{name: "string", in: `"abc-1"`, wantValue: "abc-1"},
		{name: "null", in: `null`, wantZero: true},
		{name: "bool", in: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id PlayerID
			err := id.UnmarshalJSON([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, id.String())
			assert.Equal(t, tt.wantNumeric, id.IsNumeric())
			assert.Equal(t, tt.wantZero, id.IsZero())

			out, err := sonic.Marshal(id)
			require.NoError(t, err)
			assert.JSONEq(t, tt.in, string(out))
		})
	}
}
