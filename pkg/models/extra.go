package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TxID is a transaction id. Wallets write it either as a JSON number or as a string.
type TxID string

func (id *TxID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = TxID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("transaction id: %w", err)
	}
	*id = TxID(n.String())
	return nil
}

// splitExtra decodes b into typed and returns the members whose keys are not in known.
// It returns a nil map when there are none.
func splitExtra(b []byte, typed interface{}, known ...string) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(b, typed); err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// joinExtra encodes typed and adds extra members. Typed fields win on key clashes.
func joinExtra(typed interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(typed)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	merged := make(map[string]json.RawMessage, len(extra)+len(fields))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func copyExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}

type identityFields Identity

func (i *Identity) UnmarshalJSON(b []byte) error {
	var f identityFields
	extra, err := splitExtra(b, &f, "address", "name")
	if err != nil {
		return err
	}
	*i = Identity(f)
	i.Extra = extra
	return nil
}

func (i Identity) MarshalJSON() ([]byte, error) {
	return joinExtra(identityFields(i), i.Extra)
}

type sendAccountFields SendAccount

func (a *SendAccount) UnmarshalJSON(b []byte) error {
	var f sendAccountFields
	extra, err := splitExtra(b, &f, "address", "balance", "name")
	if err != nil {
		return err
	}
	*a = SendAccount(f)
	a.Extra = extra
	return nil
}

func (a SendAccount) MarshalJSON() ([]byte, error) {
	return joinExtra(sendAccountFields(a), a.Extra)
}

// Clone returns a copy that shares no maps with a. A nil account clones to nil.
func (a *SendAccount) Clone() *SendAccount {
	if a == nil {
		return nil
	}
	c := *a
	c.Extra = copyExtra(a.Extra)
	return &c
}

type transactionFields Transaction

func (t *Transaction) UnmarshalJSON(b []byte) error {
	var f transactionFields
	extra, err := splitExtra(b, &f, "id", "time", "status", "type", "hash", "txParams", "msgParams")
	if err != nil {
		return err
	}
	*t = Transaction(f)
	t.Extra = extra
	return nil
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return joinExtra(transactionFields(t), t.Extra)
}
