package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"item-crowdfund/internal/adapter/memory"
	"item-crowdfund/internal/adapter/usecase"
	"item-crowdfund/internal/core/domain"
	"item-crowdfund/internal/core/port/mocks"
)

const (
	authority = "crowdfund.test"
	coin      = "usdc.test"
	operator  = "operator.test"
	minter    = "minter.test"
)

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	minter *mocks.MockMinter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewRepository()
	mintMock := mocks.NewMockMinter(t)
	tokenizer := usecase.NewTokenizer(repo, repo, mintMock, 0, logger)
	svc := usecase.NewCrowdfundUseCase(repo, tokenizer, usecase.Options{
		Authority:            authority,
		AcceptedCoin:         coin,
		DefaultFeePercentage: domain.DefaultFeePercentage,
		MinterAccount:        minter,
	}, logger)

	srv := httptest.NewServer(NewHandler(svc, logger).Router())
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, minter: mintMock}
}

func (s *testServer) do(method, path, who string, body any) (*http.Response, []byte) {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.srv.URL+"/api/v1"+path, rd)
	require.NoError(s.t, err)
	if who != "" {
		req.Header.Set(AccountHeader, who)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp, out
}

func (s *testServer) setup() {
	s.t.Helper()
	resp, _ := s.do(http.MethodPost, "/operators", authority, addOperatorRequest{Account: operator})
	require.Equal(s.t, http.StatusNoContent, resp.StatusCode)
	resp, body := s.do(http.MethodPost, "/items", operator, createItemRequest{
		Goal:     1000,
		Metadata: domain.ItemMetadata{Title: "rolex", Media: "ipfs://rolex"},
	})
	require.Equal(s.t, http.StatusCreated, resp.StatusCode, string(body))
}

func TestCreateItemForbiddenForNonOperator(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(http.MethodPost, "/items", "mallory", createItemRequest{Goal: 10})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/operators", operator, addOperatorRequest{Account: "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(http.MethodGet, "/items", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestPaymentFlow(t *testing.T) {
	s := newTestServer(t)
	s.setup()

	resp, body := s.do(http.MethodPost, "/payments", coin, paymentRequest{SenderID: "alice", Amount: 400, Msg: "0"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var pay paymentResponse
	require.NoError(t, json.Unmarshal(body, &pay))
	assert.Equal(t, paymentResponse{ItemIndex: 0, Net: 384, Fee: 16, Status: domain.StatusInProgress}, pay)

	var sent domain.MintRequest
	s.minter.EXPECT().
		DispatchMint(mock.Anything, mock.Anything).
		Run(func(_ context.Context, req domain.MintRequest) { sent = req }).
		Return(nil).
		Once()

	resp, body = s.do(http.MethodPost, "/payments", coin, paymentRequest{SenderID: "bob", Amount: 700, Msg: "0", TransferID: "t2"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &pay))
	assert.Equal(t, int64(58), pay.Leftover)
	assert.True(t, pay.GoalReached)
	assert.Equal(t, domain.StatusTransporting, pay.Status)

	resp, body = s.do(http.MethodGet, "/items/0/progress", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"index":0,"amount":1000}`, string(body))

	resp, body = s.do(http.MethodGet, "/items/0/fee-percentage", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"index":0,"fee_percentage":"4"}`, string(body))

	resp, body = s.do(http.MethodGet, "/items/0/ledger", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[
		{"contributor":"alice","net_funded":384,"fees_paid":16},
		{"contributor":"bob","net_funded":616,"fees_paid":26}
	]`, string(body))

	resp, _ = s.do(http.MethodPost, "/payments", coin, paymentRequest{SenderID: "carol", Amount: 5, Msg: "0"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// callback confirms the mint
	resp, _ = s.do(http.MethodPost, "/items/0/tokenization/callback", minter, mintCallbackRequest{DispatchID: sent.DispatchID, Success: true})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, body = s.do(http.MethodGet, "/items/0", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var item itemResponse
	require.NoError(t, json.Unmarshal(body, &item))
	assert.Equal(t, domain.StatusTokenized, item.Status)
	assert.Equal(t, "rolex", item.Metadata.Title)
	assert.Len(t, item.Ledger, 2)
}

func TestPaymentErrors(t *testing.T) {
	s := newTestServer(t)
	s.setup()

	cases := []struct {
		name string
		who  string
		req  paymentRequest
		want int
	}{
		{"unaccepted coin", "dai.test", paymentRequest{SenderID: "a", Amount: 10, Msg: "0"}, http.StatusForbidden},
		{"malformed msg", coin, paymentRequest{SenderID: "a", Amount: 10, Msg: "x"}, http.StatusBadRequest},
		{"unknown item", coin, paymentRequest{SenderID: "a", Amount: 10, Msg: "9"}, http.StatusNotFound},
		{"zero amount", coin, paymentRequest{SenderID: "a", Msg: "0"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := s.do(http.MethodPost, "/payments", tc.who, tc.req)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}

	resp, _ := s.do(http.MethodGet, "/items/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMintFailureAndRetry(t *testing.T) {
	s := newTestServer(t)
	s.setup()

	s.minter.EXPECT().DispatchMint(mock.Anything, mock.Anything).Return(nil).Twice()
	resp, _ := s.do(http.MethodPost, "/payments", coin, paymentRequest{SenderID: "alice", Amount: 2000, Msg: "0"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/items/0/tokenization/callback", authority, mintCallbackRequest{Success: false, Error: "rejected"})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, body := s.do(http.MethodGet, "/items/0/tokenization", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dispatches []domain.Dispatch
	require.NoError(t, json.Unmarshal(body, &dispatches))
	require.Len(t, dispatches, 1)
	assert.Equal(t, domain.DispatchFailed, dispatches[0].State)

	resp, _ = s.do(http.MethodPost, "/items/0/tokenization/retry", operator, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = s.do(http.MethodPost, "/items/0/tokenization/retry", authority, nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))
	var d domain.Dispatch
	require.NoError(t, json.Unmarshal(body, &d))
	assert.Equal(t, 2, d.Attempt)

	resp, _ = s.do(http.MethodPost, "/items/0/tokenization/retry", authority, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCallbackForUnknownItemAccepted(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(http.MethodPost, "/items/5/tokenization/callback", minter, mintCallbackRequest{Success: true})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestCallbackRequiresMinterIdentity(t *testing.T) {
	s := newTestServer(t)
	s.setup()

	s.minter.EXPECT().DispatchMint(mock.Anything, mock.Anything).Return(nil).Once()
	resp, _ := s.do(http.MethodPost, "/payments", coin, paymentRequest{SenderID: "alice", Amount: 2000, Msg: "0"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, who := range []string{"", operator, "alice", coin} {
		resp, _ = s.do(http.MethodPost, "/items/0/tokenization/callback", who, mintCallbackRequest{Success: true})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, who)
	}

	resp, body := s.do(http.MethodGet, "/items/0", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var item itemResponse
	require.NoError(t, json.Unmarshal(body, &item))
	assert.Equal(t, domain.StatusTransporting, item.Status)

	resp, _ = s.do(http.MethodPost, "/items/0/tokenization/callback", minter, mintCallbackRequest{Success: true})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, body = s.do(http.MethodGet, "/items/0", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &item))
	assert.Equal(t, domain.StatusTokenized, item.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.setup()

	resp, err := http.Get(s.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_request_duration_seconds")
}
