package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/connectors/httpapi"
	"github.com/weegigs/wee-greetings/program"
	"github.com/weegigs/wee-greetings/runtime"
)

// Client talks to a greetings server over its HTTP API. Errors the server
// reports are returned wrapping the matching runtime sentinel.
type Client struct {
	url  string
	http *http.Client

	lk      sync.Mutex
	program *program.Program
}

type Option func(c *Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// WithProgramID skips reading the program id from the server's IDL.
func WithProgramID(id program.ProgramID) Option {
	return func(c *Client) {
		c.program = program.New(id)
	}
}

func New(url string, options ...Option) *Client {
	c := &Client{
		url: strings.TrimRight(url, "/"),
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, option := range options {
		option(c)
	}

	return c
}

func (c *Client) IDL(ctx context.Context) (program.IDL, error) {
	var idl program.IDL
	err := c.do(ctx, http.MethodGet, "/idl", nil, &idl)
	return idl, err
}

// Program returns the greeting program the server hosts.
func (c *Client) Program(ctx context.Context) (*program.Program, error) {
	c.lk.Lock()
	defer c.lk.Unlock()

	if c.program != nil {
		return c.program, nil
	}

	idl, err := c.IDL(ctx)
	if err != nil {
		return nil, err
	}

	id, err := chain.ParsePublicKey(idl.Address)
	if err != nil {
		return nil, errors.Wrap(err, "server returned an invalid program id")
	}

	c.program = program.New(program.ProgramID(id))
	return c.program, nil
}

func (c *Client) Submit(ctx context.Context, tx *runtime.Transaction) (runtime.Receipt, error) {
	var receipt runtime.Receipt
	err := c.do(ctx, http.MethodPost, "/transactions", tx, &receipt)
	return receipt, err
}

func (c *Client) Airdrop(ctx context.Context, address chain.PublicKey, lamports uint64) (runtime.Wallet, error) {
	var wallet runtime.Wallet
	err := c.do(ctx, http.MethodPost, "/airdrop", httpapi.AirdropRequest{Address: address, Lamports: lamports}, &wallet)
	return wallet, err
}

func (c *Client) Wallet(ctx context.Context, address chain.PublicKey) (runtime.Wallet, error) {
	var wallet runtime.Wallet
	err := c.do(ctx, http.MethodGet, "/wallets/"+address.String(), nil, &wallet)
	return wallet, err
}

func (c *Client) Greeting(ctx context.Context, owner chain.PublicKey) (httpapi.GreetingResource, error) {
	var resource httpapi.GreetingResource
	err := c.do(ctx, http.MethodGet, "/greetings/"+owner.String(), nil, &resource)
	return resource, err
}

func (c *Client) Account(ctx context.Context, address chain.PublicKey) (httpapi.GreetingResource, error) {
	var resource httpapi.GreetingResource
	err := c.do(ctx, http.MethodGet, "/accounts/"+address.String(), nil, &resource)
	return resource, err
}

func (c *Client) Create(ctx context.Context, owner chain.Keypair) (httpapi.GreetingResource, error) {
	return c.execute(ctx, owner, (*program.Program).CreateGreeting)
}

func (c *Client) Increment(ctx context.Context, owner chain.Keypair) (httpapi.GreetingResource, error) {
	return c.execute(ctx, owner, (*program.Program).IncrementGreeting)
}

func (c *Client) execute(ctx context.Context, owner chain.Keypair, build func(*program.Program, chain.PublicKey) (runtime.Instruction, error)) (httpapi.GreetingResource, error) {
	greeter, err := c.Program(ctx)
	if err != nil {
		return httpapi.GreetingResource{}, err
	}

	ix, err := build(greeter, owner.PublicKey())
	if err != nil {
		return httpapi.GreetingResource{}, err
	}

	tx := runtime.NewTransaction(uuid.NewString(), ix)
	if err := tx.Sign(owner); err != nil {
		return httpapi.GreetingResource{}, err
	}

	if _, err := c.Submit(ctx, tx); err != nil {
		return httpapi.GreetingResource{}, err
	}

	return c.Greeting(ctx, owner.PublicKey())
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		payload = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.url+path, payload)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return errors.Wrapf(err, "%s %s failed", method, path)
	}
	defer response.Body.Close()

	content, err := io.ReadAll(response.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if response.StatusCode >= http.StatusBadRequest {
		var reported httpapi.ErrorResponse
		if err := json.Unmarshal(content, &reported); err != nil || reported.Error == "" {
			return errors.Errorf("%s %s failed with status %d", method, path, response.StatusCode)
		}
		return reported.AsError()
	}

	return errors.Wrap(json.Unmarshal(content, out), "failed to decode response")
}
