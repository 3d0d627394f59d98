package credential

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpadapter "bootbridge/internal/adapters/http"
	"bootbridge/internal/domain"
	bberrors "bootbridge/internal/errors"
	"bootbridge/internal/mocks"
	"bootbridge/internal/services/handshake"
	"bootbridge/internal/testutil"
)

func stepNamed(name string) any {
	return mock.MatchedBy(func(step domain.HandshakeStep) bool {
		return step.Name == name
	})
}

func TestPipeline_Run_MissingToken_StopsBeforeTicket(t *testing.T) {
	executor := mocks.NewMockStepExecutor(t)
	deliverer := mocks.NewMockCredentialDeliverer(t)

	executor.On("Execute", mock.Anything, stepNamed(StepCSRF)).
		Return(domain.StepResult{Status: http.StatusOK}, nil).Once()

	pipeline := NewPipeline(executor, deliverer, DefaultEndpoints(), testutil.Logger())
	outcome, err := pipeline.Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.True(t, bberrors.IsMissingToken(err))
	executor.AssertNotCalled(t, "Execute", mock.Anything, stepNamed(StepTicket))
	executor.AssertNotCalled(t, "Execute", mock.Anything, stepNamed(StepRedeem))
	deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestPipeline_Run_MissingTicket_ThreadsTokenAndStopsBeforeRedeem(t *testing.T) {
	executor := mocks.NewMockStepExecutor(t)
	deliverer := mocks.NewMockCredentialDeliverer(t)
	endpoints := DefaultEndpoints()

	executor.On("Execute", mock.Anything, mock.MatchedBy(func(step domain.HandshakeStep) bool {
		return step.Name == StepCSRF &&
			step.Method == http.MethodPost &&
			step.URL == endpoints.LoginURL &&
			step.Credentials == domain.CredentialsInclude &&
			step.ExpectedHeader == HeaderCSRFToken
	})).Return(domain.StepResult{Value: "tok123", Status: http.StatusForbidden}, nil).Once()

	executor.On("Execute", mock.Anything, mock.MatchedBy(func(step domain.HandshakeStep) bool {
		return step.Name == StepTicket &&
			step.URL == endpoints.TicketURL &&
			step.Credentials == domain.CredentialsInclude &&
			step.Headers[HeaderCSRFToken] == "tok123" &&
			step.Headers["Referer"] == endpoints.Referer &&
			step.ExpectedHeader == HeaderAuthTicket
	})).Return(domain.StepResult{Value: "", Status: http.StatusOK}, nil).Once()

	pipeline := NewPipeline(executor, deliverer, endpoints, testutil.Logger())
	_, err := pipeline.Run(context.Background())

	require.Error(t, err)
	assert.True(t, bberrors.IsMissingTicket(err))
	assert.False(t, bberrors.IsMissingToken(err))
	executor.AssertNotCalled(t, "Execute", mock.Anything, stepNamed(StepRedeem))
	deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestPipeline_Run_RequestFailedPropagates(t *testing.T) {
	executor := mocks.NewMockStepExecutor(t)
	failure := bberrors.NewHandshakeError(bberrors.KindRequestFailed, StepCSRF, "", errors.New("timeout"))

	executor.On("Execute", mock.Anything, stepNamed(StepCSRF)).
		Return(domain.StepResult{}, failure).Once()

	pipeline := NewPipeline(executor, nil, DefaultEndpoints(), testutil.Logger())
	_, err := pipeline.Run(context.Background())

	require.Error(t, err)
	assert.True(t, bberrors.IsRequestFailed(err))
	assert.False(t, bberrors.IsMissingToken(err))
}

func TestPipeline_Run_RedeemsAndDelivers(t *testing.T) {
	executor := mocks.NewMockStepExecutor(t)
	deliverer := mocks.NewMockCredentialDeliverer(t)

	executor.On("Execute", mock.Anything, stepNamed(StepCSRF)).
		Return(domain.StepResult{Value: "tok123"}, nil).Once()
	executor.On("Execute", mock.Anything, stepNamed(StepTicket)).
		Return(domain.StepResult{Value: "ticket-xyz"}, nil).Once()
	executor.On("Execute", mock.Anything, mock.MatchedBy(func(step domain.HandshakeStep) bool {
		body, ok := step.Body.(redeemRequest)
		return step.Name == StepRedeem &&
			step.Headers[HeaderTicketNegotiation] == "ticket-xyz" &&
			step.Headers["Content-Type"] == "application/json;charset=UTF-8" &&
			ok && body.AuthenticationTicket == "ticket-xyz"
	})).Return(domain.StepResult{
		Status: http.StatusOK,
		Header: http.Header{"Set-Cookie": []string{
			"RBXEventTrackerV2=abc; path=/",
			".ROBLOSECURITY=session-secret; domain=.roblox.com; path=/; secure; HttpOnly",
		}},
		Body: []byte(`{}`),
	}, nil).Once()

	deliverer.On("Deliver", mock.Anything, mock.MatchedBy(func(outcome *domain.RedemptionOutcome) bool {
		return outcome.RunID != "" && outcome.SessionCookie == "session-secret"
	})).Return(nil).Once()

	fixed := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	pipeline := NewPipeline(executor, deliverer, DefaultEndpoints(), testutil.Logger())
	pipeline.now = func() time.Time { return fixed }

	outcome, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.True(t, outcome.Redeemed())
	assert.Equal(t, "session-secret", outcome.SessionCookie)
	assert.Equal(t, fixed, outcome.CompletedAt)
}

func TestPipeline_Run_RejectedRedemptionIsStillDelivered(t *testing.T) {
	executor := mocks.NewMockStepExecutor(t)
	deliverer := mocks.NewMockCredentialDeliverer(t)

	executor.On("Execute", mock.Anything, stepNamed(StepCSRF)).Return(domain.StepResult{Value: "t"}, nil)
	executor.On("Execute", mock.Anything, stepNamed(StepTicket)).Return(domain.StepResult{Value: "k"}, nil)
	executor.On("Execute", mock.Anything, stepNamed(StepRedeem)).
		Return(domain.StepResult{Status: http.StatusForbidden, Body: []byte(`{"errors":[]}`)}, nil)
	deliverer.On("Deliver", mock.Anything, mock.Anything).Return(nil).Once()

	pipeline := NewPipeline(executor, deliverer, DefaultEndpoints(), testutil.Logger())
	outcome, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.False(t, outcome.Redeemed())
	assert.Empty(t, outcome.SessionCookie)
}

func TestPipeline_Run_DeliveryError(t *testing.T) {
	executor := mocks.NewMockStepExecutor(t)
	deliverer := mocks.NewMockCredentialDeliverer(t)

	executor.On("Execute", mock.Anything, stepNamed(StepCSRF)).Return(domain.StepResult{Value: "t"}, nil)
	executor.On("Execute", mock.Anything, stepNamed(StepTicket)).Return(domain.StepResult{Value: "k"}, nil)
	executor.On("Execute", mock.Anything, stepNamed(StepRedeem)).Return(domain.StepResult{Status: http.StatusOK}, nil)
	deliverer.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("host closed"))

	pipeline := NewPipeline(executor, deliverer, DefaultEndpoints(), testutil.Logger())
	outcome, err := pipeline.Run(context.Background())

	require.Error(t, err)
	assert.ErrorContains(t, err, "host closed")
	assert.NotNil(t, outcome)
}

// fakeIdentityProvider records the order of the calls it receives.
type fakeIdentityProvider struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeIdentityProvider) record(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
}

func (f *fakeIdentityProvider) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/login", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		cookie, err := r.Cookie(domain.SessionCookieName)
		if assert.NoError(t, err, "credentials must be included") {
			assert.Equal(t, "browser-session", cookie.Value)
		}
		w.Header().Set(HeaderCSRFToken, "tok123")
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/v1/authentication-ticket", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		assert.Equal(t, "tok123", r.Header.Get(HeaderCSRFToken))
		assert.Equal(t, "https://www.roblox.com", r.Header.Get("Referer"))
		w.Header().Set(HeaderAuthTicket, "ticket-xyz")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/authentication-ticket/redeem", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		assert.Equal(t, "ticket-xyz", r.Header.Get(HeaderTicketNegotiation))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"authenticationTicket": "ticket-xyz"}, body)

		http.SetCookie(w, &http.Cookie{Name: domain.SessionCookieName, Value: "redeemed-session", Path: "/"})
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})
	return mux
}

func TestPipeline_Run_EndToEnd(t *testing.T) {
	provider := &fakeIdentityProvider{}
	server := httptest.NewServer(provider.handler(t))
	defer server.Close()

	adapter, err := httpadapter.NewAdapter(httpadapter.Options{Timeout: 5 * time.Second}, testutil.Logger())
	require.NoError(t, err)
	require.NoError(t, adapter.SeedCookie(server.URL, &http.Cookie{
		Name:  domain.SessionCookieName,
		Value: "browser-session",
		Path:  "/",
	}))

	endpoints := Endpoints{
		LoginURL:  server.URL + "/v2/login",
		TicketURL: server.URL + "/v1/authentication-ticket",
		RedeemURL: server.URL + "/v1/authentication-ticket/redeem",
		Referer:   "https://www.roblox.com",
	}
	pipeline := NewPipeline(handshake.NewClient(adapter, nil, testutil.Logger()), nil, endpoints, testutil.Logger())

	outcome, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, outcome.Redeemed())
	assert.Equal(t, "redeemed-session", outcome.SessionCookie)
	assert.Equal(t, []string{
		"/v2/login",
		"/v1/authentication-ticket",
		"/v1/authentication-ticket/redeem",
	}, provider.calls)
}

func TestSessionCookie(t *testing.T) {
	assert.Empty(t, sessionCookie(nil))
	assert.Empty(t, sessionCookie(http.Header{"Set-Cookie": []string{"other=1"}}))
	assert.Equal(t, "v", sessionCookie(http.Header{"Set-Cookie": []string{".ROBLOSECURITY=v; path=/"}}))
}
