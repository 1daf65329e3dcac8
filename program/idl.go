package program

import (
	"github.com/goccy/go-json"

	"github.com/weegigs/wee-greetings/chain"
	"github.com/weegigs/wee-greetings/runtime"
)

// IDL is the Anchor interface description clients use to build
// instructions and decode accounts.
type IDL struct {
	Address      string           `json:"address"`
	Metadata     IDLMetadata      `json:"metadata"`
	Instructions []IDLInstruction `json:"instructions"`
	Accounts     []IDLAccount     `json:"accounts"`
	Types        []IDLType        `json:"types"`
}

type IDLMetadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Spec    string `json:"spec"`
}

type IDLInstruction struct {
	Name          string                  `json:"name"`
	Discriminator []int                   `json:"discriminator"`
	Accounts      []IDLInstructionAccount `json:"accounts"`
	Args          []IDLField              `json:"args"`
}

type IDLInstructionAccount struct {
	Name     string  `json:"name"`
	Writable bool    `json:"writable,omitempty"`
	Signer   bool    `json:"signer,omitempty"`
	Address  string  `json:"address,omitempty"`
	PDA      *IDLPDA `json:"pda,omitempty"`
}

type IDLPDA struct {
	Seeds []IDLSeed `json:"seeds"`
}

type IDLSeed struct {
	Kind  string `json:"kind"`
	Value []int  `json:"value,omitempty"`
	Path  string `json:"path,omitempty"`
}

type IDLAccount struct {
	Name          string `json:"name"`
	Discriminator []int  `json:"discriminator"`
}

type IDLType struct {
	Name string      `json:"name"`
	Type IDLTypeBody `json:"type"`
}

type IDLTypeBody struct {
	Kind   string     `json:"kind"`
	Fields []IDLField `json:"fields"`
}

type IDLField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (p *Program) IDL() IDL {
	greeting := IDLInstructionAccount{
		Name:     "greeting_account",
		Writable: true,
		PDA: &IDLPDA{Seeds: []IDLSeed{
			{Kind: "const", Value: bytesOf(GreetingSeed)},
			{Kind: "account", Path: "user"},
		}},
	}

	return IDL{
		Address: p.id.String(),
		Metadata: IDLMetadata{
			Name:    "wee_greetings",
			Version: "0.1.0",
			Spec:    "0.1.0",
		},
		Instructions: []IDLInstruction{
			{
				Name:          CreateGreetingInstruction,
				Discriminator: discriminatorOf(runtime.InstructionDiscriminator(CreateGreetingInstruction)),
				Accounts: []IDLInstructionAccount{
					greeting,
					{Name: "user", Writable: true, Signer: true},
					{Name: "system_program", Address: chain.SystemProgramID.String()},
				},
				Args: []IDLField{},
			},
			{
				Name:          IncrementGreetingInstruction,
				Discriminator: discriminatorOf(runtime.InstructionDiscriminator(IncrementGreetingInstruction)),
				Accounts: []IDLInstructionAccount{
					greeting,
					{Name: "user", Signer: true},
				},
				Args: []IDLField{},
			},
		},
		Accounts: []IDLAccount{
			{Name: "GreetingAccount", Discriminator: discriminatorOf(GreetingAccountDiscriminator)},
		},
		Types: []IDLType{
			{
				Name: "GreetingAccount",
				Type: IDLTypeBody{Kind: "struct", Fields: []IDLField{{Name: "counter", Type: "u64"}}},
			},
		},
	}
}

func (idl IDL) Document() ([]byte, error) {
	return json.MarshalIndent(idl, "", "  ")
}

func bytesOf(s string) []int {
	return intsOf([]byte(s))
}

func discriminatorOf(d runtime.Discriminator) []int {
	return intsOf(d[:])
}

func intsOf(b []byte) []int {
	values := make([]int, len(b))
	for i := range values {
		values[i] = int(b[i])
	}

	return values
}
