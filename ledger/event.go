package ledger

import (
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
)

type EventID string

func (id EventID) String() string {
	return string(id)
}

type EventType string

func (et EventType) String() string {
	return string(et)
}

type EventTyped interface {
	EventType() EventType
}

// CorrelationID ties the events of one transaction together. The runtime
// uses the transaction signature.
type CorrelationID string

func (id CorrelationID) String() string {
	return string(id)
}

type Data struct {
	Encoding string `json:"encoding"`
	Data     []byte `json:"data"`
}

type DomainEvent any

// EventTypeOf names an event "package:kebab-type" from its Go type, pointers
// included, unless the event reports its own type.
func EventTypeOf(event DomainEvent) EventType {
	if typed, ok := event.(EventTyped); ok {
		return typed.EventType()
	}

	kind := reflect.TypeOf(event)
	for kind.Kind() == reflect.Pointer {
		kind = kind.Elem()
	}

	namespace, _, _ := strings.Cut(kind.String(), ".")
	return EventType(strcase.ToKebab(namespace) + ":" + strcase.ToKebab(kind.Name()))
}

type RecordedEventMetadata struct {
	CausationId   EventID       `json:"causationId,omitempty"`
	CorrelationId CorrelationID `json:"correlationId,omitempty"`
}

type RecordedEvent struct {
	AccountId AccountId             `json:"account"`
	Revision  Revision              `json:"revision"`
	EventID   EventID               `json:"id"`
	EventType EventType             `json:"type"`
	Timestamp Timestamp             `json:"timestamp"`
	Metadata  RecordedEventMetadata `json:"metadata"`
	Data      Data                  `json:"data"`
}
