package httpapi

import (
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/greetings"
	"github.com/weegigs/wee-greetings/runtime"
)

type HandlerOption func(service *httpService)

func Logger(log *zerolog.Logger) HandlerOption {
	return func(service *httpService) {
		service.log = log
	}
}

type AirdropRequest struct {
	Address  chain.PublicKey `json:"address"`
	Lamports uint64          `json:"lamports"`
}

func NewHandler(greetingService greetings.Service, options ...HandlerOption) http.Handler {
	service := &httpService{greetings: greetingService}
	for _, option := range options {
		option(service)
	}
	if service.log == nil {
		service.log = &log.Logger
	}

	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Method("POST", "/transactions", service.submitTransaction())
	r.Method("POST", "/airdrop", service.airdrop())
	r.Method("GET", "/greetings/{owner}", service.getGreeting())
	r.Method("GET", "/accounts/{address}", service.getAccount())
	r.Method("GET", "/wallets/{address}", service.getWallet())
	r.Method("GET", "/idl", service.getIDL())

	return otelhttp.NewHandler(r, "wee-greetings")
}

type httpService struct {
	log       *zerolog.Logger
	greetings greetings.Service
}

func (service *httpService) submitTransaction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tx runtime.Transaction
		if !service.decode(w, r, &tx) {
			return
		}

		receipt, err := service.greetings.Submit(r.Context(), &tx)
		if err != nil {
			service.fail(w, r, err, "failed to process transaction")
			return
		}

		render.JSON(w, r, receipt)
	}
}

func (service *httpService) airdrop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request AirdropRequest
		if !service.decode(w, r, &request) {
			return
		}

		wallet, err := service.greetings.Airdrop(r.Context(), request.Address, request.Lamports)
		if err != nil {
			service.fail(w, r, err, "failed to airdrop")
			return
		}

		render.JSON(w, r, wallet)
	}
}

func (service *httpService) getGreeting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := service.publicKey(w, r, "owner")
		if !ok {
			return
		}

		greeting, err := service.greetings.Greeting(r.Context(), owner)
		if err != nil {
			service.fail(w, r, err, "failed to load greeting")
			return
		}

		encodeGreeting(w, r, greeting)
	}
}

func (service *httpService) getAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address, ok := service.publicKey(w, r, "address")
		if !ok {
			return
		}

		greeting, err := service.greetings.GreetingAt(r.Context(), address)
		if err != nil {
			service.fail(w, r, err, "failed to load account")
			return
		}

		encodeGreeting(w, r, greeting)
	}
}

func (service *httpService) getWallet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address, ok := service.publicKey(w, r, "address")
		if !ok {
			return
		}

		wallet, err := service.greetings.Wallet(r.Context(), address)
		if err != nil {
			service.fail(w, r, err, "failed to load wallet")
			return
		}

		render.JSON(w, r, wallet)
	}
}

func (service *httpService) getIDL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, service.greetings.Program().IDL())
	}
}

func (service *httpService) publicKey(w http.ResponseWriter, r *http.Request, param string) (chain.PublicKey, bool) {
	key, err := chain.ParsePublicKey(chi.URLParam(r, param))
	if err != nil {
		service.log.Info().Err(err).Str(param, chi.URLParam(r, param)).Msg("invalid public key")
		writeError(w, r, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return chain.PublicKey{}, false
	}

	return key, true
}

func (service *httpService) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-type"))
	if mediaType != "application/json" || err != nil {
		writeError(w, r, http.StatusUnsupportedMediaType, CodeInvalidRequest, "unsupported content type")
		return false
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, CodeInvalidRequest, "request body too large")
			return false
		}
		writeError(w, r, http.StatusBadRequest, CodeInvalidRequest, "invalid request body")
		return false
	}

	if err := json.UnmarshalContext(r.Context(), body, v); err != nil {
		service.log.Info().Err(err).Msg("failed to unmarshal request")
		writeError(w, r, http.StatusBadRequest, CodeInvalidRequest, "invalid request body")
		return false
	}

	return true
}

func (service *httpService) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		service.log.Error().Err(err).Msg(msg)
	} else {
		service.log.Info().Err(err).Msg(msg)
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = msg
	}

	writeError(w, r, status, string(runtime.CodeOf(err)), message)
}

var errorStatus = map[runtime.ErrorCode]int{
	runtime.CodeAlreadyExists:      http.StatusConflict,
	runtime.CodeNotFound:           http.StatusNotFound,
	runtime.CodeUnauthorized:       http.StatusUnauthorized,
	runtime.CodeInsufficientFunds:  http.StatusPaymentRequired,
	runtime.CodeOverflow:           http.StatusUnprocessableEntity,
	runtime.CodeAlreadyProcessed:   http.StatusConflict,
	runtime.CodeUnknownProgram:     http.StatusBadRequest,
	runtime.CodeInvalidTransaction: http.StatusBadRequest,
	runtime.CodeInvalidInstruction: http.StatusBadRequest,
	runtime.CodeConflict:           http.StatusConflict,
}

// StatusOf maps an error to the HTTP status reported for it.
func StatusOf(err error) int {
	if status, ok := errorStatus[runtime.CodeOf(err)]; ok {
		return status
	}

	return http.StatusInternalServerError
}

const CodeInvalidRequest = "invalid-request"

// MaxRequestBytes bounds request bodies. A transaction is well under a kilobyte.
const MaxRequestBytes = 64 << 10

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: code, Message: message})
}

// AsError rebuilds the error a response body describes, so clients can match
// it against the runtime sentinels.
func (e ErrorResponse) AsError() error {
	if sentinel := runtime.ErrorFor(runtime.ErrorCode(e.Error)); sentinel != nil {
		return errors.Wrap(sentinel, e.Message)
	}

	return errors.New(e.Message)
}
