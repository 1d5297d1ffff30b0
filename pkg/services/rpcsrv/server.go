package rpcsrv

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/enpitsuLin/taiyi/pkg/config"
	"github.com/enpitsuLin/taiyi/pkg/core"
	"github.com/enpitsuLin/taiyi/pkg/core/block"
	"github.com/enpitsuLin/taiyi/pkg/core/transaction"
	"github.com/enpitsuLin/taiyi/pkg/io"
)

var rpcCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "taiyi",
	Name:      "rpc_requests_total",
	Help:      "Number of RPC requests processed, by method and success.",
}, []string{"method", "success"})

// Ingress is the part of the write pipeline the RPC server drives.
type Ingress interface {
	AcceptBlock(b *block.Block, currentlySyncing bool, skip core.ValidationSteps) (bool, error)
	AcceptTransaction(tx *transaction.Transaction) error
}

// Server is the chain API JSON-RPC server.
type Server struct {
	ingress Ingress
	cfg     config.RPC
	log     *zap.Logger

	https    []*http.Server
	started  *sync.Once
	shutdown *sync.Once
	errChan  chan<- error
}

// request is a JSON-RPC 2.0 call.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// response is a JSON-RPC 2.0 answer.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// pushResult is what push_block and push_transaction return.
type pushResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// pushBlockParams carries the serialized block in hex form.
type pushBlockParams struct {
	Block            string `json:"block"`
	CurrentlySyncing bool   `json:"currently_syncing"`
}

// New creates a Server over the given ingress. Fatal serving errors are
// reported via errChan.
func New(ingress Ingress, cfg config.RPC, log *zap.Logger, errChan chan<- error) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	srv := &Server{
		ingress:  ingress,
		cfg:      cfg,
		log:      log.With(zap.String("service", "rpc")),
		started:  new(sync.Once),
		shutdown: new(sync.Once),
		errChan:  errChan,
	}
	for _, addr := range cfg.Addresses {
		srv.https = append(srv.https, &http.Server{
			Addr:              addr,
			Handler:           srv,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}
	return srv
}

// Start begins serving if the service is enabled.
func (s *Server) Start() {
	if !s.cfg.Enabled {
		s.log.Info("RPC server is not enabled")
		return
	}
	s.started.Do(func() {
		for _, srv := range s.https {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				s.errChan <- fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
				return
			}
			srv.Addr = ln.Addr().String()
			s.log.Info("starting rpc-server", zap.String("endpoint", srv.Addr))
			go func(srv *http.Server) {
				err := srv.Serve(ln)
				if !errors.Is(err, http.ErrServerClosed) {
					s.errChan <- err
				}
			}(srv)
		}
	})
}

// Shutdown stops serving. Calls after the first one do nothing.
func (s *Server) Shutdown() {
	s.shutdown.Do(func() {
		for _, srv := range s.https {
			s.log.Info("shutting down rpc-server", zap.String("endpoint", srv.Addr))
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = srv.Shutdown(ctx)
			cancel()
		}
	})
}

// Addresses returns the actual listening addresses, available after Start.
func (s *Server) Addresses() []string {
	addrs := make([]string, len(s.https))
	for i, srv := range s.https {
		addrs[i] = srv.Addr
	}
	return addrs
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "JSON-RPC requires POST", http.StatusMethodNotAllowed)
		return
	}
	if s.cfg.MaxRequestBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxRequestBodyBytes))
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeResponse(w, response{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: -32700, Message: "parse error"},
		})
		return
	}

	resp := response{JSONRPC: "2.0", ID: req.ID}
	switch req.Method {
	case "push_block":
		resp.Result = s.pushBlock(req.Params)
	case "push_transaction":
		resp.Result = s.pushTransaction(req.Params)
	default:
		resp.Error = &rpcError{Code: -32601, Message: "method not found"}
	}
	s.writeResponse(w, resp)
}

func (s *Server) writeResponse(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("failed to write response", zap.Error(err))
	}
}

// pushBlock handles the push_block method. The block is the hex form of its
// binary serialization.
func (s *Server) pushBlock(raw json.RawMessage) pushResult {
	var params pushBlockParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return s.observe("push_block", pushResult{Error: "invalid params: " + err.Error()})
	}
	data, err := hex.DecodeString(params.Block)
	if err != nil {
		return s.observe("push_block", pushResult{Error: "invalid block hex: " + err.Error()})
	}
	b := new(block.Block)
	if err := io.FromByteArray(b, data); err != nil {
		return s.observe("push_block", pushResult{Error: "malformed block: " + err.Error()})
	}

	ok, err := s.ingress.AcceptBlock(b, params.CurrentlySyncing, core.SkipNothing)
	if err != nil {
		return s.observe("push_block", pushResult{Error: err.Error()})
	}
	return s.observe("push_block", pushResult{Success: ok})
}

// pushTransaction handles the push_transaction method. The parameter is the
// hex form of the signed transaction.
func (s *Server) pushTransaction(raw json.RawMessage) pushResult {
	var txHex string
	if err := json.Unmarshal(raw, &txHex); err != nil {
		return s.observe("push_transaction", pushResult{Error: "invalid params: " + err.Error()})
	}
	data, err := hex.DecodeString(txHex)
	if err != nil {
		return s.observe("push_transaction", pushResult{Error: "invalid transaction hex: " + err.Error()})
	}
	tx := new(transaction.Transaction)
	if err := io.FromByteArray(tx, data); err != nil {
		return s.observe("push_transaction", pushResult{Error: "malformed transaction: " + err.Error()})
	}

	if err := s.ingress.AcceptTransaction(tx); err != nil {
		return s.observe("push_transaction", pushResult{Error: err.Error()})
	}
	return s.observe("push_transaction", pushResult{Success: true})
}

// observe counts the call outcome and passes the result through.
func (s *Server) observe(method string, res pushResult) pushResult {
	rpcCounter.WithLabelValues(method, fmt.Sprintf("%t", res.Success)).Inc()
	return res
}
