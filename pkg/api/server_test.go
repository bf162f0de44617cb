package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tokengate/pkg/chain"
	"tokengate/pkg/chain/chaintest"
	"tokengate/pkg/contract"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const holder = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func newTestRouter(t *testing.T) (*gin.Engine, *chaintest.Backend) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	desc, err := contract.Load()
	require.NoError(t, err)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	backend := chaintest.NewBackend(desc.ABI(), 11155111)
	client := chain.NewClient(backend, key, common.HexToAddress("0x00000000000000000000000000000000000000aa"), desc.ABI(), 2_000_000)
	binding, err := contract.NewBinding(desc, client)
	require.NoError(t, err)

	log := zap.NewNop()
	return NewRouter(NewHandler(binding, log), NewMetrics(), log), backend
}

func do(r http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestExecBalanceOf(t *testing.T) {
	r, backend := newTestRouter(t)
	backend.SetResult("balanceOf", big.NewInt(4200))

	w, body := do(r, http.MethodGet, "/exec/balanceOf/"+holder)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"method": "balanceOf", "result": "4200"}, body)
}

func TestExecZeroArgMethods(t *testing.T) {
	r, backend := newTestRouter(t)
	backend.SetResult("name", "Premap Token")
	backend.SetResult("symbol", "PMT")
	backend.SetResult("decimals", uint8(18))
	backend.SetResult("totalSupply", big.NewInt(1_000_000))

	for _, method := range []string{"name", "symbol", "decimals", "totalSupply"} {
		w, body := do(r, http.MethodGet, "/exec/"+method)
		require.Equal(t, http.StatusOK, w.Code, method)
		assert.Equal(t, method, body["method"])
		assert.Contains(t, body, "result")
	}
}

func TestExecUnknownMethod(t *testing.T) {
	r, backend := newTestRouter(t)

	for _, path := range []string{"/exec/frobnicate", "/exec/frobnicate/1", "/exec/transfer/" + holder} {
		w, body := do(r, http.MethodGet, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, map[string]interface{}{"error": MsgMethodNotInABI}, body)
	}
	assert.Equal(t, 0, backend.Calls())
}

func TestExecMissingArgument(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := do(r, http.MethodGet, "/exec/balanceOf")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, body["error"])
}

func TestExecDownstreamError(t *testing.T) {
	r, backend := newTestRouter(t)
	backend.FailCalls(errors.New("execution reverted: paused"))

	w, body := do(r, http.MethodGet, "/exec/totalSupply")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "execution reverted: paused", body["error"])
}

func TestGetVariant(t *testing.T) {
	r, backend := newTestRouter(t)
	backend.SetResult("isTokenHolder", true)

	w, body := do(r, http.MethodGet, "/get/isTokenHolder/"+holder)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"field": "isTokenHolder", "result": true}, body)

	w, body = do(r, http.MethodGet, "/get/owner")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, MsgInvalidField, body["error"])
}

func TestTransfer(t *testing.T) {
	r, backend := newTestRouter(t)

	w, body := do(r, http.MethodPost, "/transfer/"+holder+"/1000")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	sent := backend.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, 1, backend.CallCount("eth_sendRawTransaction"))

	receipt, ok := body["receipt"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, sent[0].Hash().Hex(), receipt["transactionHash"])
	assert.Equal(t, "0x1", receipt["status"])
}

func TestTransferInvalidRecipient(t *testing.T) {
	r, backend := newTestRouter(t)

	w, body := do(r, http.MethodPost, "/transfer/0xABC/1000")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]interface{}{"error": MsgInvalidRecipient}, body)
	assert.Equal(t, 0, backend.Calls())
}

func TestTransferDownstreamError(t *testing.T) {
	r, backend := newTestRouter(t)
	backend.FailSends(errors.New("insufficient funds for gas * price + value"))

	w, body := do(r, http.MethodPost, "/transfer/"+holder+"/1000")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "insufficient funds for gas * price + value", body["error"])
}

func TestTransferReverted(t *testing.T) {
	r, backend := newTestRouter(t)
	backend.RevertAll()

	w, body := do(r, http.MethodPost, "/transfer/"+holder+"/1000")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, body["error"], "reverted")
}

func TestTransferMalformedAmount(t *testing.T) {
	r, backend := newTestRouter(t)

	w, body := do(r, http.MethodPost, "/transfer/"+holder+"/lots")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, body["error"])
	assert.Empty(t, backend.Sent())
}

func TestConcurrentTransfersAreIndependent(t *testing.T) {
	r, backend := newTestRouter(t)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, _ := do(r, http.MethodPost, "/transfer/"+holder+"/77")
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []int{http.StatusOK, http.StatusOK}, codes)
	sent := backend.Sent()
	require.Len(t, sent, 2)
	assert.NotEqual(t, sent[0].Hash(), sent[1].Hash())
	assert.Equal(t, 2, backend.CallCount("eth_sendRawTransaction"))
}

func TestTransferRequiresPost(t *testing.T) {
	r, backend := newTestRouter(t)

	w, _ := do(r, http.MethodGet, "/transfer/"+holder+"/1")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, backend.Calls())
}

func TestRequestIDAndMetrics(t *testing.T) {
	r, backend := newTestRouter(t)
	backend.SetResult("symbol", "PMT")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/exec/symbol", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))

	w, _ = do(r, http.MethodGet, "/exec/symbol")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(),
		`tokengate_api_requests_total{method="GET",route="/exec/:method",status="200"} 2`))
}

func TestServerRunShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer("127.0.0.1:0", http.NotFoundHandler(), zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
