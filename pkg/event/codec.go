package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/LICODX/rnr-poh/pkg/core"
)

var (
	ErrUnknownKind = errors.New("event: unknown kind")
	ErrNilEvent    = errors.New("event: nil event")
)

// Envelope is the self-describing wire form of an event: the kind byte
// followed by the RLP encoding of the variant.
type Envelope struct {
	Kind    core.EventKind
	Payload rlp.RawValue
}

type timestampRLP struct {
	From core.PublicKey
	At   uint64
	Sig  core.Signature
}

func Wrap(ev Event) (Envelope, error) {
	var body interface{}
	switch v := ev.(type) {
	case *Transaction:
		if v == nil {
			return Envelope{}, ErrNilEvent
		}
		body = v
	case *Signature:
		if v == nil {
			return Envelope{}, ErrNilEvent
		}
		body = v
	case *Timestamp:
		if v == nil {
			return Envelope{}, ErrNilEvent
		}
		body = &timestampRLP{From: v.From, At: uint64(v.At.UnixNano()), Sig: v.Sig}
	case nil:
		return Envelope{}, ErrNilEvent
	default:
		return Envelope{}, fmt.Errorf("%w: %T", ErrUnknownKind, ev)
	}

	payload, err := rlp.EncodeToBytes(body)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s event: %w", ev.Kind(), err)
	}
	return Envelope{Kind: ev.Kind(), Payload: payload}, nil
}

func (e Envelope) Unwrap() (Event, error) {
	switch e.Kind {
	case core.KindTransaction:
		var tx Transaction
		if err := rlp.DecodeBytes(e.Payload, &tx); err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}
		return &tx, nil
	case core.KindSignature:
		var sig Signature
		if err := rlp.DecodeBytes(e.Payload, &sig); err != nil {
			return nil, fmt.Errorf("failed to decode signature: %w", err)
		}
		return &sig, nil
	case core.KindTimestamp:
		var ts timestampRLP
		if err := rlp.DecodeBytes(e.Payload, &ts); err != nil {
			return nil, fmt.Errorf("failed to decode timestamp: %w", err)
		}
		return &Timestamp{From: ts.From, At: time.Unix(0, int64(ts.At)).UTC(), Sig: ts.Sig}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, e.Kind)
	}
}

// EncodeRLP returns the RLP encoding of a single event envelope.
func EncodeRLP(ev Event) ([]byte, error) {
	env, err := Wrap(ev)
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(&env)
}

func DecodeRLP(data []byte) (Event, error) {
	var env Envelope
	if err := rlp.DecodeBytes(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode event envelope: %w", err)
	}
	return env.Unwrap()
}

type jsonEnvelope struct {
	Kind string          `json:"kind"`
	Body json.RawMessage `json:"body"`
}

func MarshalJSON(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, ErrNilEvent
	}
	switch ev.(type) {
	case *Transaction, *Signature, *Timestamp:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, ev)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonEnvelope{Kind: ev.Kind().String(), Body: body})
}

func UnmarshalJSON(data []byte) (Event, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	kind, ok := core.ParseEventKind(env.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}

	var ev Event
	switch kind {
	case core.KindTransaction:
		ev = new(Transaction)
	case core.KindSignature:
		ev = new(Signature)
	case core.KindTimestamp:
		ev = new(Timestamp)
	}
	if err := json.Unmarshal(env.Body, ev); err != nil {
		return nil, fmt.Errorf("failed to parse %s body: %w", kind, err)
	}
	return ev, nil
}
