package httpapi

import (
	"encoding/base64"
	"net/http"

	"github.com/go-chi/render"

	"github.com/weegigs/wee-greetings/program"
)

// GreetingResource is a greeting as served over HTTP: its state, the
// ledger identity under $-prefixed keys, and the raw account data.
type GreetingResource struct {
	Id       string `json:"$id"`
	Type     string `json:"$type"`
	Revision string `json:"$revision"`
	program.Greeting
	Data string `json:"data"`
}

func NewGreetingResource(greeting program.Greeting) GreetingResource {
	return GreetingResource{
		Id:       program.GreetingId(greeting.Address).Encode().String(),
		Type:     program.GreetingType,
		Revision: greeting.Revision.String(),
		Greeting: greeting,
		Data:     base64.StdEncoding.EncodeToString(program.Encode(greeting)),
	}
}

func encodeGreeting(w http.ResponseWriter, r *http.Request, greeting program.Greeting) {
	render.JSON(w, r, NewGreetingResource(greeting))
}
