package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"undercover-be/internal/config"
	"undercover-be/internal/service"
	"undercover-be/internal/service/auth"
	"undercover-be/internal/service/voice"
	"undercover-be/internal/state"
	"undercover-be/internal/words"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "default123"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.AppConfig{
		Host:          "127.0.0.1",
		Port:          8080,
		Password:      testPassword,
		MaxVoiceBytes: 1024,
		MessageRate:   10,
		MessageBurst:  20,
	}

	deck, err := words.LoadDeck("")
	require.NoError(t, err)

	coordinator := service.NewCoordinator(
		service.DefaultCoordinatorConfig(),
		service.NewRoomRegistry(deck),
		service.NewScheduler(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go coordinator.Run(ctx)

	store, err := voice.NewStore(t.TempDir(), cfg.MaxVoiceBytes, "/api/v1/voice")
	require.NoError(t, err)

	app := NewApp(state.NewAppState(cfg, coordinator, auth.NewGate(cfg.Password), store))
	require.NoError(t, app.Build())

	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	return srv
}

func do(t *testing.T, req *nethttp.Request) (*nethttp.Response, []byte) {
	t.Helper()

	resp, err := nethttp.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func verify(t *testing.T, srv *httptest.Server, password, sessionID string) int {
	t.Helper()

	payload, err := json.Marshal(VerifyPasswordRequest{Password: password, SessionID: sessionID})
	require.NoError(t, err)

	req, err := nethttp.NewRequest(nethttp.MethodPost, srv.URL+"/api/v1/verify-password", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, _ := do(t, req)
	return resp.StatusCode
}

func TestVerifyPassword(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, nethttp.StatusBadRequest, verify(t, srv, testPassword, ""))
	assert.Equal(t, nethttp.StatusUnauthorized, verify(t, srv, "wrong", "s1"))
	assert.Equal(t, nethttp.StatusOK, verify(t, srv, testPassword, "s1"))
}

func TestListRooms_RequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	req, err := nethttp.NewRequest(nethttp.MethodGet, srv.URL+"/api/v1/rooms", nil)
	require.NoError(t, err)

	resp, _ := do(t, req)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	require.Equal(t, nethttp.StatusOK, verify(t, srv, testPassword, "s1"))
	req.Header.Set(SESSION_HEADER, "s1")

	resp, body := do(t, req)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	req, err = nethttp.NewRequest(nethttp.MethodGet, srv.URL+"/api/v1/rooms?password="+testPassword, nil)
	require.NoError(t, err)

	resp, _ = do(t, req)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func voiceUpload(t *testing.T, srv *httptest.Server, contentType string, content []byte) (*nethttp.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="clip.webm"`, VOICE_FORM_FIELD))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := nethttp.NewRequest(nethttp.MethodPost, srv.URL+"/api/v1/voice?password="+testPassword, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return do(t, req)
}

func TestVoice_UploadAndServe(t *testing.T) {
	srv := newTestServer(t)

	resp, body := voiceUpload(t, srv, "audio/webm", []byte("opus-bytes"))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(body))

	var uploaded struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(body, &uploaded))
	require.True(t, strings.HasPrefix(uploaded.URL, "/api/v1/voice/"))

	req, err := nethttp.NewRequest(nethttp.MethodGet, srv.URL+uploaded.URL+"?password="+testPassword, nil)
	require.NoError(t, err)

	resp, body = do(t, req)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "opus-bytes", string(body))
}

func TestVoice_Rejections(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := voiceUpload(t, srv, "image/png", []byte("png"))
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp, _ = voiceUpload(t, srv, "audio/webm", bytes.Repeat([]byte("x"), 2048))
	assert.Equal(t, nethttp.StatusRequestEntityTooLarge, resp.StatusCode)

	req, err := nethttp.NewRequest(nethttp.MethodGet, srv.URL+"/api/v1/voice/missing.webm?password="+testPassword, nil)
	require.NoError(t, err)

	resp, _ = do(t, req)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}
